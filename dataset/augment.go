package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AugmentationKind names one derived variant the preparation stage
// produces from a source recording.
type AugmentationKind string

const (
	AugmentPitchDown   AugmentationKind = "pitch-1"
	AugmentPitchUp     AugmentationKind = "pitch1"
	AugmentStretchSlow AugmentationKind = "stretch0.9"
	AugmentStretchFast AugmentationKind = "stretch1.1"
	AugmentNoiseLow    AugmentationKind = "noise0.05"
	AugmentNoiseHigh   AugmentationKind = "noise0.1"
)

// AugmentationKinds lists every variant in production order: pitch
// shifts by a semitone, time stretches by 10%, then additive noise at
// 5% and 10%.
var AugmentationKinds = []AugmentationKind{
	AugmentPitchDown,
	AugmentPitchUp,
	AugmentStretchSlow,
	AugmentStretchFast,
	AugmentNoiseLow,
	AugmentNoiseHigh,
}

// AugmentedName renders the output file name for a variant of the
// source file: "{stem}_{kind}.wav".
func AugmentedName(sourcePath string, kind AugmentationKind) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s.wav", stem, kind)
}

// AugmentationPlan lists the variant file names a source recording
// expands into. The augmentation itself is audio processing owned by
// the preparation stage; the plan lets manifests account for the
// derived rows before those files exist.
func AugmentationPlan(sourcePath string) []string {
	names := make([]string, 0, len(AugmentationKinds))
	for _, kind := range AugmentationKinds {
		names = append(names, AugmentedName(sourcePath, kind))
	}
	return names
}

// LabelPreservedBy reports whether a variant keeps the source's label.
// Pitch shifts move every pitch by a semitone, so the original class
// indices no longer describe the audio; stretches and noise leave pitch
// content alone.
func LabelPreservedBy(kind AugmentationKind) bool {
	switch kind {
	case AugmentPitchDown, AugmentPitchUp:
		return false
	default:
		return true
	}
}
