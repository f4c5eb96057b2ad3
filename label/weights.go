package label

import (
	"fmt"
)

// ClassWeightConfig tunes inverse-frequency class weighting.
type ClassWeightConfig struct {
	// ChordBoost multiplies the weight of classes that appear in any
	// multi-label row, pushing training loss toward chord members.
	ChordBoost float64 `json:"chord_boost"`
}

// DefaultClassWeightConfig returns the weighting the training pipeline
// uses.
func DefaultClassWeightConfig() *ClassWeightConfig {
	return &ClassWeightConfig{
		ChordBoost: 3.0,
	}
}

// ComputeClassWeights returns one weight per class for a target matrix:
// rows / (NumClasses * count[c]) for classes that occur, 0 for classes
// that never do, with cfg.ChordBoost applied to classes active in at
// least one multi-label row. A nil cfg means defaults.
func ComputeClassWeights(targets [][]float64, cfg *ClassWeightConfig) ([]float64, error) {
	if cfg == nil {
		cfg = DefaultClassWeightConfig()
	}

	counts := make([]float64, NumClasses)
	chordMember := make([]bool, NumClasses)
	for i, row := range targets {
		if len(row) != NumClasses {
			return nil, fmt.Errorf("target row %d has %d entries, want %d", i, len(row), NumClasses)
		}

		active := 0
		for _, v := range row {
			if v > 0 {
				active++
			}
		}
		for c, v := range row {
			if v > 0 {
				counts[c]++
				if active > 1 {
					chordMember[c] = true
				}
			}
		}
	}

	weights := make([]float64, NumClasses)
	rows := float64(len(targets))
	for c := range weights {
		if counts[c] == 0 {
			continue
		}
		weights[c] = rows / (float64(NumClasses) * counts[c])
		if chordMember[c] {
			weights[c] *= cfg.ChordBoost
		}
	}
	return weights, nil
}
