package chroma

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// DefaultPeakThreshold is the minimum normalized energy a pitch class
// needs before it counts as present in a recording.
const DefaultPeakThreshold = 0.1

// PitchClassPeak is one active pitch class in a chroma profile.
type PitchClassPeak struct {
	PitchClass int     `json:"pitch_class"` // Semitone 0-11
	Name       string  `json:"name"`        // Semitone name (C, C#, ...)
	Energy     float64 `json:"energy"`      // Normalized energy (max bin = 1.0)
}

// Extractor computes octave-folded pitch class profiles from audio
// samples. All octaves of a note collapse into the same bin, which is
// what makes the profile comparable against note and chord labels.
type Extractor struct {
	sampleRate int
	tuningFreq float64 // A4 frequency (default 440 Hz)
	windowSize int
	hopSize    int
	minFreq    float64
	maxFreq    float64
	window     []float64
	logger     logging.Logger
}

// NewExtractor creates an extractor with standard A4=440Hz tuning and
// a 2048/512 analysis window.
func NewExtractor(sampleRate int) *Extractor {
	return NewExtractorWithParams(sampleRate, 440.0, 2048, 512)
}

// NewExtractorWithParams creates an extractor with explicit tuning and
// framing parameters.
func NewExtractorWithParams(sampleRate int, tuningFreq float64, windowSize, hopSize int) *Extractor {
	e := &Extractor{
		sampleRate: sampleRate,
		tuningFreq: tuningFreq,
		windowSize: windowSize,
		hopSize:    hopSize,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
		logger: logging.WithFields(logging.Fields{
			"component": "chroma_extractor",
		}),
	}
	e.window = hannWindow(windowSize)
	return e
}

// Profile computes the mean pitch class profile of a signal. Each
// frame is folded into 12 bins and normalized to unit energy, then the
// frames are averaged and rescaled so the strongest bin is 1.0.
func (e *Extractor) Profile(signal []float64) ([]float64, error) {
	if len(signal) < e.windowSize {
		return nil, fmt.Errorf("signal length %d is shorter than window size %d", len(signal), e.windowSize)
	}

	mapping := e.chromaMapping()
	profile := make([]float64, 12)
	frames := 0

	windowed := make([]float64, e.windowSize)
	for start := 0; start+e.windowSize <= len(signal); start += e.hopSize {
		for i := 0; i < e.windowSize; i++ {
			windowed[i] = signal[start+i] * e.window[i]
		}

		spectrum := fft.FFTReal(windowed)

		frame := make([]float64, 12)
		for f := 0; f <= e.windowSize/2; f++ {
			bin := mapping[f]
			if bin < 0 {
				continue
			}
			magnitude := cmplx.Abs(spectrum[f])
			// Use magnitude squared for energy
			frame[bin] += magnitude * magnitude
		}

		normalizeFrame(frame)
		floats.Add(profile, frame)
		frames++
	}

	floats.Scale(1.0/float64(frames), profile)

	// Rescale so the dominant pitch class sits at exactly 1.0.
	if peak := floats.Max(profile); peak > 1e-10 {
		for i := range profile {
			profile[i] /= peak
		}
	}

	e.logger.Debug("computed chroma profile", logging.Fields{
		"frames":      frames,
		"sample_rate": e.sampleRate,
	})
	return profile, nil
}

// Peaks returns the pitch classes whose normalized energy exceeds the
// threshold, strongest first.
func (e *Extractor) Peaks(profile []float64, threshold float64) []PitchClassPeak {
	peaks := make([]PitchClassPeak, 0, len(profile))
	for pc, energy := range profile {
		if energy > threshold {
			peaks = append(peaks, PitchClassPeak{
				PitchClass: pc,
				Name:       label.SemitoneName(pc),
				Energy:     energy,
			})
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Energy > peaks[j].Energy
	})
	return peaks
}

// chromaMapping maps FFT bins to chroma bins, or -1 for frequencies
// outside the analysis range.
func (e *Extractor) chromaMapping() []int {
	freqResolution := float64(e.sampleRate) / float64(e.windowSize)
	mapping := make([]int, e.windowSize/2+1)

	for f := range mapping {
		frequency := float64(f) * freqResolution
		if frequency < e.minFreq || frequency > e.maxFreq {
			mapping[f] = -1
			continue
		}

		midiNote := e.frequencyToMIDI(frequency)
		mapping[f] = int(math.Round(midiNote)) % 12
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number.
// A4 (440 Hz) = MIDI note 69.
func (e *Extractor) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(frequency/e.tuningFreq)
}

// Helper functions

func hannWindow(size int) []float64 {
	coefficients := make([]float64, size)
	denominator := float64(size - 1)
	for i := range coefficients {
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
	return coefficients
}

func normalizeFrame(frame []float64) {
	if total := floats.Sum(frame); total > 1e-10 {
		floats.Scale(1.0/total, frame)
	}
}
