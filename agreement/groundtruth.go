package agreement

import (
	"fmt"

	"github.com/RyanBlaney/sonido-labels/chroma"
	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// DefaultConfidenceThreshold is the minimum model score an expected
// class needs before the model is considered to have found it.
const DefaultConfidenceThreshold = 0.3

// GroundTruthResult reports whether a prediction and an independent
// chroma analysis each recovered the notes a fixture is known to
// contain. The two checks stay separate: the chroma oracle can vouch
// for the audio itself even when the model misses.
type GroundTruthResult struct {
	ExpectedNotes   []string       `json:"expected_notes"`
	ExpectedIndices []int          `json:"expected_indices"`
	ModelPass       bool           `json:"model_pass"`
	ChromaPass      bool           `json:"chroma_pass"`
	OverallPass     bool           `json:"overall_pass"`
	ExpectedRanks   map[string]int `json:"expected_ranks"` // 1-based rank of each expected note in the scores
}

// Checker validates predictions against known fixture content.
type Checker struct {
	confidenceThreshold float64
	peakThreshold       float64
	decoder             *label.PredictionDecoder
	logger              logging.Logger
}

// NewChecker creates a checker with the default model and chroma thresholds.
func NewChecker() *Checker {
	return NewCheckerWithThresholds(DefaultConfidenceThreshold, chroma.DefaultPeakThreshold)
}

// NewCheckerWithThresholds creates a checker with explicit thresholds.
func NewCheckerWithThresholds(confidenceThreshold, peakThreshold float64) *Checker {
	return &Checker{
		confidenceThreshold: confidenceThreshold,
		peakThreshold:       peakThreshold,
		decoder:             label.NewPredictionDecoder(),
		logger: logging.WithFields(logging.Fields{
			"component": "ground_truth_checker",
		}),
	}
}

// CompareToGroundTruth checks a score vector and a chroma profile's
// peaks against the notes the audio is known to contain. The model
// passes when any expected class index scores above the confidence
// threshold; the chroma oracle passes when any sufficiently strong
// peak names an expected pitch class. The overall verdict is the
// disjunction of the two.
func (c *Checker) CompareToGroundTruth(scores []float64, peaks []chroma.PitchClassPeak, expected []label.Note) (*GroundTruthResult, error) {
	if len(scores) != label.NumClasses {
		return nil, fmt.Errorf("score vector has width %d, expected %d", len(scores), label.NumClasses)
	}
	if len(expected) == 0 {
		return nil, fmt.Errorf("no expected notes given")
	}

	result := &GroundTruthResult{
		ExpectedNotes:   make([]string, 0, len(expected)),
		ExpectedIndices: make([]int, 0, len(expected)),
		ExpectedRanks:   make(map[string]int, len(expected)),
	}

	expectedClasses := make(map[int]bool, len(expected))
	for _, note := range expected {
		index := label.ClassIndex(note)
		result.ExpectedNotes = append(result.ExpectedNotes, note.Name())
		result.ExpectedIndices = append(result.ExpectedIndices, index)
		expectedClasses[note.Semitone] = true

		if scores[index] > c.confidenceThreshold {
			result.ModelPass = true
		}
	}

	for _, peak := range peaks {
		if peak.Energy > c.peakThreshold && expectedClasses[peak.PitchClass] {
			result.ChromaPass = true
			break
		}
	}

	ranked, err := c.decoder.Decode(scores, label.NumClasses)
	if err != nil {
		return nil, err
	}
	rankByClass := make(map[int]int, len(ranked))
	for _, scored := range ranked {
		rankByClass[scored.ClassIndex] = scored.Rank
	}
	for i, note := range expected {
		result.ExpectedRanks[note.Name()] = rankByClass[result.ExpectedIndices[i]]
	}

	result.OverallPass = result.ModelPass || result.ChromaPass

	c.logger.Debug("checked prediction against ground truth", logging.Fields{
		"expected":    result.ExpectedNotes,
		"model_pass":  result.ModelPass,
		"chroma_pass": result.ChromaPass,
	})
	return result, nil
}
