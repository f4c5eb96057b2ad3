package label

import (
	"fmt"

	"github.com/RyanBlaney/sonido-labels/logging"
)

// EncodeMode selects the target vector encoding.
type EncodeMode int

const (
	// OneHot sets exactly one index per row: the legacy single-label
	// evaluation encoding.
	OneHot EncodeMode = iota

	// MultiHot sets one index per resolved class: one for a note or a
	// root-reduced chord, one per octave replica for a key, one per
	// constituent note for chords under ChordFullMembership.
	MultiHot
)

func (m EncodeMode) String() string {
	switch m {
	case OneHot:
		return "one-hot"
	case MultiHot:
		return "multi-hot"
	default:
		return "unknown"
	}
}

// ParseEncodeMode maps a mode name to an EncodeMode. A bad name is a
// caller bug and errors out.
func ParseEncodeMode(s string) (EncodeMode, error) {
	switch s {
	case "one-hot", "onehot":
		return OneHot, nil
	case "multi-hot", "multihot":
		return MultiHot, nil
	}
	return 0, fmt.Errorf("unsupported encode mode %q (want one-hot or multi-hot)", s)
}

// TargetEncoder builds target matrices from batches of raw labels. It is
// stateless between calls: the same labels always produce the same
// matrix, and row i always corresponds to label i.
type TargetEncoder struct {
	mapper *Mapper
	logger logging.Logger
}

// NewTargetEncoder creates an encoder over a default root-only mapper.
func NewTargetEncoder() *TargetEncoder {
	return NewTargetEncoderWithMapper(nil)
}

// NewTargetEncoderWithMapper creates an encoder over a caller-configured
// mapper. A nil mapper falls back to the default.
func NewTargetEncoderWithMapper(mapper *Mapper) *TargetEncoder {
	if mapper == nil {
		mapper = NewMapper()
	}
	return &TargetEncoder{
		mapper: mapper,
		logger: logging.WithFields(logging.Fields{
			"component": "target_encoder",
		}),
	}
}

// Encode builds a single NumClasses-wide target row.
func (e *TargetEncoder) Encode(label RawLabel, mode EncodeMode) ([]float64, error) {
	row := make([]float64, NumClasses)

	switch mode {
	case OneHot:
		row[e.mapper.ResolveClass(label)] = 1.0
	case MultiHot:
		for _, idx := range e.mapper.ResolveIndices(label) {
			row[idx] = 1.0
		}
	default:
		return nil, fmt.Errorf("unsupported encode mode %d", mode)
	}

	return row, nil
}

// EncodeBatch builds a len(labels) x NumClasses target matrix. Labels are
// processed independently; a malformed label degrades its own row to the
// unknown class and the batch continues.
func (e *TargetEncoder) EncodeBatch(labels []RawLabel, mode EncodeMode) ([][]float64, error) {
	targets := make([][]float64, len(labels))
	for i, lab := range labels {
		row, err := e.Encode(lab, mode)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		targets[i] = row
	}

	e.logger.Debug("encoded label batch", logging.Fields{
		"labels": len(labels),
		"mode":   mode.String(),
	})
	return targets, nil
}
