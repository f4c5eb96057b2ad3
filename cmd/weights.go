package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/dataset"
	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

var (
	weightsBoost float64
	weightsOut   string
)

func init() {
	weightsCmd.Flags().Float64Var(&weightsBoost, "chord-boost", label.DefaultClassWeightConfig().ChordBoost, "weight multiplier for classes that appear in chords")
	weightsCmd.Flags().StringVarP(&weightsOut, "out", "o", "", "write the weight vector as JSON to this file")
	rootCmd.AddCommand(weightsCmd)
}

var weightsCmd = &cobra.Command{
	Use:   "weights <manifest.json>",
	Short: "Computes class weights for training from a manifest",
	Long: `Encodes a manifest's labels as multi-hot targets and derives
inverse-frequency class weights, boosting classes that participate in
chords so sparse chord members still influence training.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWeights(args[0])
	},
}

type weightsArtifact struct {
	ManifestID string    `json:"manifest_id"`
	ChordBoost float64   `json:"chord_boost"`
	Weights    []float64 `json:"weights"`
}

func runWeights(manifestPath string) error {
	manifest, err := dataset.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	encoder := label.NewTargetEncoder()
	targets, err := encoder.EncodeBatch(manifest.Labels(), label.MultiHot)
	if err != nil {
		return err
	}

	weights, err := label.ComputeClassWeights(targets, &label.ClassWeightConfig{ChordBoost: weightsBoost})
	if err != nil {
		return err
	}

	// Show the heaviest classes first; zero-weight classes are absent
	// from the dataset entirely.
	type ranked struct {
		class  int
		weight float64
	}
	present := make([]ranked, 0, len(weights))
	for class, weight := range weights {
		if weight > 0 {
			present = append(present, ranked{class: class, weight: weight})
		}
	}
	sort.Slice(present, func(i, j int) bool {
		return present[i].weight > present[j].weight
	})

	fmt.Printf("manifest %s: %d of %d classes present\n", manifest.ID, len(present), label.NumClasses)
	for i, entry := range present {
		if i >= 10 {
			fmt.Printf("  ... %d more\n", len(present)-10)
			break
		}
		fmt.Printf("  %-4s (class %2d) weight %.4f\n", label.ClassName(entry.class), entry.class, entry.weight)
	}

	if weightsOut == "" {
		return nil
	}

	artifact := weightsArtifact{
		ManifestID: manifest.ID,
		ChordBoost: weightsBoost,
		Weights:    weights,
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	if err := os.WriteFile(weightsOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", weightsOut, err)
	}

	logging.Info("wrote class weights", logging.Fields{
		"path":    weightsOut,
		"present": len(present),
	})
	return nil
}
