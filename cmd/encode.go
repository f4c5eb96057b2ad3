package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

var (
	encodeMode string
	encodeOut  string
)

func init() {
	encodeCmd.Flags().StringVarP(&encodeMode, "mode", "m", "multi-hot", "target encoding: one-hot or multi-hot")
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "", "write the target matrix as JSON to this file")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <label>...",
	Short: "Encodes label tokens into 96-class training targets",
	Long: `Encodes bare label tokens (note names like C4, chord lists like
C4-E4-G4) into rows of the 96-class target space and prints the
resolved class indices.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncode(args)
	},
}

type encodeArtifact struct {
	Mode    string           `json:"mode"`
	Labels  []label.RawLabel `json:"labels"`
	Targets [][]float64      `json:"targets"`
}

func runEncode(tokens []string) error {
	mode, err := label.ParseEncodeMode(encodeMode)
	if err != nil {
		return err
	}

	labels := make([]label.RawLabel, len(tokens))
	for i, token := range tokens {
		labels[i] = label.ClassifyToken(token)
	}

	encoder := label.NewTargetEncoder()
	targets, err := encoder.EncodeBatch(labels, mode)
	if err != nil {
		return err
	}

	for i, token := range tokens {
		fmt.Printf("%-16s %-8s classes %v\n", token, labels[i].Kind, activeClasses(targets[i]))
	}

	if encodeOut == "" {
		return nil
	}

	artifact := encodeArtifact{Mode: mode.String(), Labels: labels, Targets: targets}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal targets: %w", err)
	}
	if err := os.WriteFile(encodeOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", encodeOut, err)
	}

	logging.Info("wrote target matrix", logging.Fields{
		"path": encodeOut,
		"rows": len(targets),
		"mode": mode.String(),
	})
	return nil
}

func activeClasses(row []float64) []int {
	active := make([]int, 0, 1)
	for i, value := range row {
		if value > 0 {
			active = append(active, i)
		}
	}
	return active
}
