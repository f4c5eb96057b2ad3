package agreement

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// ClassMetrics holds per-class retrieval metrics.
type ClassMetrics struct {
	ClassName string  `json:"class_name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"` // Rows whose true class this is
}

// EvaluationResult summarizes argmax accuracy of predictions against
// one-hot targets.
type EvaluationResult struct {
	Total          int                  `json:"total"`
	Correct        int                  `json:"correct"`
	Accuracy       float64              `json:"accuracy"`
	MacroPrecision float64              `json:"macro_precision"`
	MacroRecall    float64              `json:"macro_recall"`
	MacroF1        float64              `json:"macro_f1"`
	PerClass       map[int]ClassMetrics `json:"per_class"`
	Confusion      map[int]map[int]int  `json:"confusion"` // true class -> predicted class -> count
}

// Evaluator scores batches of predictions against encoded targets.
type Evaluator struct {
	logger logging.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		logger: logging.WithFields(logging.Fields{
			"component": "evaluator",
		}),
	}
}

// Evaluate compares prediction rows against one-hot target rows by
// argmax. Row i of scores corresponds to row i of targets. Macro
// metrics average over the classes that appear as a true class.
func (e *Evaluator) Evaluate(scores, targets [][]float64) (*EvaluationResult, error) {
	if len(scores) != len(targets) {
		return nil, fmt.Errorf("got %d prediction rows for %d target rows", len(scores), len(targets))
	}

	result := &EvaluationResult{
		Total:     len(scores),
		PerClass:  make(map[int]ClassMetrics),
		Confusion: make(map[int]map[int]int),
	}

	truePositives := make(map[int]int)
	falsePositives := make(map[int]int)
	support := make(map[int]int)

	for i := range scores {
		if len(scores[i]) != label.NumClasses || len(targets[i]) != label.NumClasses {
			return nil, fmt.Errorf("row %d has width %d/%d, expected %d", i, len(scores[i]), len(targets[i]), label.NumClasses)
		}

		predicted := argmax(scores[i])
		truth := argmax(targets[i])

		support[truth]++
		if result.Confusion[truth] == nil {
			result.Confusion[truth] = make(map[int]int)
		}
		result.Confusion[truth][predicted]++

		if predicted == truth {
			result.Correct++
			truePositives[predicted]++
		} else {
			falsePositives[predicted]++
		}
	}

	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}

	classes := make([]int, 0, len(support))
	for class := range support {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		tp := truePositives[class]
		fp := falsePositives[class]
		fn := support[class] - tp

		metrics := ClassMetrics{
			ClassName: label.ClassName(class),
			Support:   support[class],
		}
		if tp+fp > 0 {
			metrics.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall = float64(tp) / float64(tp+fn)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}

		result.PerClass[class] = metrics
		result.MacroPrecision += metrics.Precision
		result.MacroRecall += metrics.Recall
		result.MacroF1 += metrics.F1
	}

	if len(classes) > 0 {
		n := float64(len(classes))
		result.MacroPrecision /= n
		result.MacroRecall /= n
		result.MacroF1 /= n
	}

	e.logger.Info("evaluated predictions", logging.Fields{
		"total":    result.Total,
		"correct":  result.Correct,
		"accuracy": result.Accuracy,
		"classes":  len(classes),
	})
	return result, nil
}

// argmax returns the index of the highest value, lowest index winning ties.
func argmax(row []float64) int {
	best := 0
	for i, value := range row {
		if value > row[best] {
			best = i
		}
	}
	return best
}
