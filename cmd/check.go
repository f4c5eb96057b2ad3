package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/agreement"
	"github.com/RyanBlaney/sonido-labels/audio"
	"github.com/RyanBlaney/sonido-labels/chroma"
	"github.com/RyanBlaney/sonido-labels/dataset"
	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

var (
	checkNotes    string
	checkTaxonomy string
	checkScores   string
	checkOut      string
)

var checkCmd = &cobra.Command{
	Use:   "check <audio-file>",
	Short: "Verify a recording contains the notes its label claims",
	Long: `check decodes a recording with FFmpeg, extracts its chroma profile
and compares the pitch class peaks against the notes the file is expected
to contain. Expected notes come from --notes or, failing that, from the
filename under the chosen taxonomy. With --scores pointing at a backend
prediction file the model's own verdict is checked too.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkNotes, "notes", "", "expected notes as a label token, e.g. C4 or C4-E4-G4")
	checkCmd.Flags().StringVar(&checkTaxonomy, "taxonomy", "note", "taxonomy for filename extraction when --notes is absent")
	checkCmd.Flags().StringVar(&checkScores, "scores", "", "backend prediction JSON keyed by file path")
	checkCmd.Flags().StringVar(&checkOut, "out", "", "write the check result as JSON")
	rootCmd.AddCommand(checkCmd)
}

// checkArtifact is the JSON shape written by --out.
type checkArtifact struct {
	File        string                       `json:"file"`
	Duration    float64                      `json:"duration_seconds"`
	Codec       string                       `json:"codec,omitempty"`
	Peaks       []chroma.PitchClassPeak      `json:"peaks"`
	GroundTruth *agreement.GroundTruthResult `json:"ground_truth,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := logging.WithFields(logging.Fields{"component": "check_cmd"})
	path := args[0]

	expected, err := expectedNotesFor(path)
	if err != nil {
		return err
	}

	decoderConfig := audio.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = cfg.Chroma.SampleRate
	decoderConfig.MaxDuration = 2 * time.Minute
	decoder := audio.NewDecoder(decoderConfig)

	clip, err := decoder.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	extractor := chroma.NewExtractorWithParams(clip.SampleRate, cfg.Chroma.TuningFreq, cfg.Chroma.WindowSize, cfg.Chroma.HopSize)
	profile, err := extractor.Profile(clip.Samples)
	if err != nil {
		return fmt.Errorf("failed to extract chroma profile: %w", err)
	}
	peaks := extractor.Peaks(profile, cfg.Agreement.PeakThreshold)

	fmt.Printf("File:     %s\n", path)
	fmt.Printf("Decoded:  %.2fs at %d Hz (%s)\n", clip.Duration.Seconds(), clip.SampleRate, clip.Codec)
	fmt.Printf("Expected: %s\n", noteNames(expected))
	fmt.Println("Peaks:")
	for _, peak := range peaks {
		fmt.Printf("  %-2s %.3f\n", peak.Name, peak.Energy)
	}
	if len(peaks) == 0 {
		fmt.Println("  (none above threshold)")
	}

	artifact := checkArtifact{
		File:     path,
		Duration: clip.Duration.Seconds(),
		Codec:    clip.Codec,
		Peaks:    peaks,
	}

	if checkScores != "" {
		scoresByPath, err := loadScoreFile(checkScores)
		if err != nil {
			return err
		}
		scores, ok := scoresByPath[path]
		if !ok {
			return fmt.Errorf("no prediction for %s in %s (%d entries)", path, checkScores, len(scoresByPath))
		}

		checker := agreement.NewCheckerWithThresholds(cfg.Agreement.ConfidenceThreshold, cfg.Agreement.PeakThreshold)
		result, err := checker.CompareToGroundTruth(scores, peaks, expected)
		if err != nil {
			return err
		}
		artifact.GroundTruth = result

		fmt.Printf("Model:    %s\n", passString(result.ModelPass))
		fmt.Printf("Chroma:   %s\n", passString(result.ChromaPass))
		fmt.Printf("Overall:  %s\n", passString(result.OverallPass))
		for _, name := range result.ExpectedNotes {
			fmt.Printf("  %-4s rank %d\n", name, result.ExpectedRanks[name])
		}
	} else {
		// Without predictions only the audio side can be judged.
		fmt.Printf("Chroma:   %s\n", passString(peaksCoverExpected(peaks, expected)))
	}

	if checkOut != "" {
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal check result: %w", err)
		}
		if err := os.WriteFile(checkOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", checkOut, err)
		}
		logger.Info("wrote check result", logging.Fields{"path": checkOut})
	}

	return nil
}

// expectedNotesFor resolves the notes a file should contain, either from
// the --notes flag or from the filename under the chosen taxonomy. Chord
// tokens expand to their full membership so every constituent note counts
// as expected content.
func expectedNotesFor(path string) ([]label.Note, error) {
	token := checkNotes
	if token == "" {
		taxonomy, err := label.ParseTaxonomy(checkTaxonomy)
		if err != nil {
			return nil, err
		}
		raw, err := dataset.NewExtractor().Extract(path, taxonomy)
		if err != nil {
			return nil, err
		}
		switch raw.Kind {
		case label.KindNote, label.KindChord:
			token = raw.Token
		case label.KindKey:
			token = raw.Key
		default:
			return nil, fmt.Errorf("could not derive expected notes from %s, pass --notes", path)
		}
	}

	chord, err := label.ParseChord(token)
	if err != nil {
		return nil, fmt.Errorf("invalid expected notes %q: %w", token, err)
	}
	return chord.IdentityNotes(label.ChordFullMembership), nil
}

func noteNames(notes []label.Note) string {
	names := ""
	for i, note := range notes {
		if i > 0 {
			names += " "
		}
		names += note.Name()
	}
	return names
}

func peaksCoverExpected(peaks []chroma.PitchClassPeak, expected []label.Note) bool {
	expectedClasses := make(map[int]bool, len(expected))
	for _, note := range expected {
		expectedClasses[note.Semitone] = true
	}
	for _, peak := range peaks {
		if expectedClasses[peak.PitchClass] {
			return true
		}
	}
	return false
}

func passString(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
