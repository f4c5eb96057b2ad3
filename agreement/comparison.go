package agreement

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// DefaultTopK is the number of ranked predictions considered when
// measuring overlap between two backends.
const DefaultTopK = 5

// Report captures how closely two score vectors for the same audio
// agree with each other.
type Report struct {
	MAE                float64            `json:"mae"`
	MSE                float64            `json:"mse"`
	PearsonCorrelation float64            `json:"pearson_correlation"` // NaN when either vector has zero variance
	OverlapCount       int                `json:"overlap_count"`
	OverlapPct         float64            `json:"overlap_pct"`
	Top1Match          bool               `json:"top1_match"`
	TopA               []label.ScoredNote `json:"top_a"`
	TopB               []label.ScoredNote `json:"top_b"`
}

// MarshalJSON emits an undefined correlation as null, since JSON has
// no NaN literal.
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	aux := struct {
		alias
		PearsonCorrelation *float64 `json:"pearson_correlation"`
	}{alias: alias(r)}
	if !math.IsNaN(r.PearsonCorrelation) {
		value := r.PearsonCorrelation
		aux.PearsonCorrelation = &value
	}
	return json.Marshal(aux)
}

// UnmarshalJSON restores a null correlation to NaN.
func (r *Report) UnmarshalJSON(data []byte) error {
	type alias Report
	aux := struct {
		*alias
		PearsonCorrelation *float64 `json:"pearson_correlation"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PearsonCorrelation == nil {
		r.PearsonCorrelation = math.NaN()
	} else {
		r.PearsonCorrelation = *aux.PearsonCorrelation
	}
	return nil
}

// FileReport pairs a per-file agreement report with the file it came from.
type FileReport struct {
	Path   string  `json:"path"`
	Report *Report `json:"report"`
}

// Summary aggregates agreement reports across a batch of files.
type Summary struct {
	RunID           string       `json:"run_id"`
	CreatedAt       time.Time    `json:"created_at"`
	Count           int          `json:"count"`
	MeanMAE         float64      `json:"mean_mae"`
	MeanMSE         float64      `json:"mean_mse"`
	MeanCorrelation float64      `json:"mean_correlation"` // Over non-degenerate pairs only
	DegenerateCount int          `json:"degenerate_count"`
	Top1MatchPct    float64      `json:"top1_match_pct"`
	Files           []FileReport `json:"files"`
}

// MarshalJSON emits an undefined mean correlation as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	aux := struct {
		alias
		MeanCorrelation *float64 `json:"mean_correlation"`
	}{alias: alias(s)}
	if !math.IsNaN(s.MeanCorrelation) {
		value := s.MeanCorrelation
		aux.MeanCorrelation = &value
	}
	return json.Marshal(aux)
}

// UnmarshalJSON restores a null mean correlation to NaN.
func (s *Summary) UnmarshalJSON(data []byte) error {
	type alias Summary
	aux := struct {
		*alias
		MeanCorrelation *float64 `json:"mean_correlation"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.MeanCorrelation == nil {
		s.MeanCorrelation = math.NaN()
	} else {
		s.MeanCorrelation = *aux.MeanCorrelation
	}
	return nil
}

// Comparator measures agreement between score vectors produced by two
// different inference backends for the same audio.
type Comparator struct {
	topK    int
	decoder *label.PredictionDecoder
	logger  logging.Logger
}

// NewComparator creates a comparator with the default top-5 overlap window.
func NewComparator() *Comparator {
	return NewComparatorWithTopK(DefaultTopK)
}

// NewComparatorWithTopK creates a comparator with an explicit overlap window.
func NewComparatorWithTopK(topK int) *Comparator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Comparator{
		topK:    topK,
		decoder: label.NewPredictionDecoder(),
		logger: logging.WithFields(logging.Fields{
			"component": "agreement_comparator",
		}),
	}
}

// Compare computes elementwise error, correlation, and top-k overlap
// between two score vectors. Mismatched lengths are a caller bug and
// propagate as an error; zero-variance input degrades the correlation
// to NaN without failing.
func (c *Comparator) Compare(scoresA, scoresB []float64) (*Report, error) {
	if len(scoresA) != len(scoresB) {
		return nil, fmt.Errorf("score vectors have mismatched lengths %d and %d", len(scoresA), len(scoresB))
	}
	if len(scoresA) != label.NumClasses {
		return nil, fmt.Errorf("score vectors have width %d, expected %d", len(scoresA), label.NumClasses)
	}

	var absSum, sqSum float64
	for i := range scoresA {
		diff := scoresA[i] - scoresB[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(scoresA))

	correlation := stat.Correlation(scoresA, scoresB, nil)
	if math.IsNaN(correlation) {
		c.logger.Warn("zero variance input, correlation undefined", logging.Fields{
			"width": len(scoresA),
		})
	}

	topA, err := c.decoder.Decode(scoresA, c.topK)
	if err != nil {
		return nil, err
	}
	topB, err := c.decoder.Decode(scoresB, c.topK)
	if err != nil {
		return nil, err
	}

	inA := make(map[int]bool, len(topA))
	for _, scored := range topA {
		inA[scored.ClassIndex] = true
	}
	overlap := 0
	for _, scored := range topB {
		if inA[scored.ClassIndex] {
			overlap++
		}
	}

	report := &Report{
		MAE:                absSum / n,
		MSE:                sqSum / n,
		PearsonCorrelation: correlation,
		OverlapCount:       overlap,
		OverlapPct:         100.0 * float64(overlap) / float64(c.topK),
		Top1Match:          topA[0].ClassIndex == topB[0].ClassIndex,
		TopA:               topA,
		TopB:               topB,
	}
	return report, nil
}

// CompareBatch compares paired score vectors for a list of files and
// aggregates the per-file reports into a summary. Row i of scoresA and
// scoresB both describe paths[i].
func (c *Comparator) CompareBatch(paths []string, scoresA, scoresB [][]float64) (*Summary, error) {
	if len(scoresA) != len(scoresB) {
		return nil, fmt.Errorf("backends produced %d and %d score rows, expected equal counts", len(scoresA), len(scoresB))
	}
	if len(paths) != len(scoresA) {
		return nil, fmt.Errorf("got %d paths for %d score rows", len(paths), len(scoresA))
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Count:     len(paths),
		Files:     make([]FileReport, 0, len(paths)),
	}

	maes := make([]float64, 0, len(paths))
	mses := make([]float64, 0, len(paths))
	correlations := make([]float64, 0, len(paths))
	matches := 0

	for i, path := range paths {
		report, err := c.Compare(scoresA[i], scoresB[i])
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s: %w", path, err)
		}

		maes = append(maes, report.MAE)
		mses = append(mses, report.MSE)
		if math.IsNaN(report.PearsonCorrelation) {
			summary.DegenerateCount++
		} else {
			correlations = append(correlations, report.PearsonCorrelation)
		}
		if report.Top1Match {
			matches++
		}
		summary.Files = append(summary.Files, FileReport{Path: path, Report: report})
	}

	if len(paths) > 0 {
		summary.MeanMAE = stat.Mean(maes, nil)
		summary.MeanMSE = stat.Mean(mses, nil)
		summary.Top1MatchPct = 100.0 * float64(matches) / float64(len(paths))
	}
	if len(correlations) > 0 {
		summary.MeanCorrelation = stat.Mean(correlations, nil)
	} else {
		summary.MeanCorrelation = math.NaN()
	}

	c.logger.Info("compared backend outputs", logging.Fields{
		"files":          summary.Count,
		"top1_match_pct": summary.Top1MatchPct,
		"degenerate":     summary.DegenerateCount,
	})
	return summary, nil
}
