package label

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-labels/logging"
)

// ScoredNote is one ranked decode of a score vector.
type ScoredNote struct {
	PredictedNote string  `json:"predicted_note"`
	Confidence    float64 `json:"confidence"`
	Rank          int     `json:"rank"`
	ClassIndex    int     `json:"class_index"`
}

// PredictionDecoder turns NumClasses-wide score vectors back into ranked
// note names. It is the exact inverse of the forward class mapping.
type PredictionDecoder struct {
	logger logging.Logger
}

// NewPredictionDecoder creates a decoder.
func NewPredictionDecoder() *PredictionDecoder {
	return &PredictionDecoder{
		logger: logging.WithFields(logging.Fields{
			"component": "prediction_decoder",
		}),
	}
}

// Decode returns the topK highest-scoring classes as note names, ordered
// by descending confidence. Ties keep ascending class index order, so
// the result is deterministic. topK outside [1, NumClasses] means all
// classes. A score vector of the wrong width is a caller bug and errors.
func (d *PredictionDecoder) Decode(scores []float64, topK int) ([]ScoredNote, error) {
	if len(scores) != NumClasses {
		return nil, fmt.Errorf("score vector has %d entries, want %d", len(scores), NumClasses)
	}
	if topK <= 0 || topK > NumClasses {
		topK = NumClasses
	}

	order := make([]int, NumClasses)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	decoded := make([]ScoredNote, 0, topK)
	for rank, idx := range order[:topK] {
		decoded = append(decoded, ScoredNote{
			PredictedNote: ClassName(idx),
			Confidence:    scores[idx],
			Rank:          rank + 1,
			ClassIndex:    idx,
		})
	}
	return decoded, nil
}

// Top1 returns the single best decode.
func (d *PredictionDecoder) Top1(scores []float64) (ScoredNote, error) {
	decoded, err := d.Decode(scores, 1)
	if err != nil {
		return ScoredNote{}, err
	}
	return decoded[0], nil
}
