package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/agreement"
	"github.com/RyanBlaney/sonido-labels/logging"
	"github.com/RyanBlaney/sonido-labels/store"
)

var (
	compareTopK int
	compareOut  string
	compareSave bool
)

func init() {
	compareCmd.Flags().IntVarP(&compareTopK, "top-k", "k", 0, "overlap window (0 uses the configured default)")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "write the agreement summary as JSON to this file")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "persist the agreement run to the local database")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <scores-a.json> <scores-b.json>",
	Short: "Measures agreement between two backends' prediction files",
	Long: `Loads two JSON files mapping audio paths to 96-class score
vectors, compares the backends file by file, and reports error,
correlation, and top-k overlap statistics.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompare(args[0], args[1])
	},
}

func loadScoreFile(path string) (map[string][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var scores map[string][]float64
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return scores, nil
}

func runCompare(pathA, pathB string) error {
	scoresA, err := loadScoreFile(pathA)
	if err != nil {
		return err
	}
	scoresB, err := loadScoreFile(pathB)
	if err != nil {
		return err
	}

	// Compare only the files both backends scored.
	common := make([]string, 0, len(scoresA))
	for path := range scoresA {
		if _, ok := scoresB[path]; ok {
			common = append(common, path)
		}
	}
	sort.Strings(common)
	if len(common) == 0 {
		return fmt.Errorf("no common files between %s and %s", pathA, pathB)
	}
	if skipped := len(scoresA) + len(scoresB) - 2*len(common); skipped > 0 {
		logging.Warn("skipping files present in only one backend", logging.Fields{
			"common":  len(common),
			"skipped": skipped,
		})
	}

	rowsA := make([][]float64, len(common))
	rowsB := make([][]float64, len(common))
	for i, path := range common {
		rowsA[i] = scoresA[path]
		rowsB[i] = scoresB[path]
	}

	topK := compareTopK
	if topK <= 0 {
		topK = cfg.Agreement.TopK
	}
	comparator := agreement.NewComparatorWithTopK(topK)
	summary, err := comparator.CompareBatch(common, rowsA, rowsB)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d files\n", summary.RunID, summary.Count)
	fmt.Printf("  mean mae         %.6f\n", summary.MeanMAE)
	fmt.Printf("  mean mse         %.6f\n", summary.MeanMSE)
	fmt.Printf("  mean correlation %.4f (%d degenerate)\n", summary.MeanCorrelation, summary.DegenerateCount)
	fmt.Printf("  top-1 match      %.1f%%\n", summary.Top1MatchPct)

	if compareOut != "" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		if err := os.WriteFile(compareOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", compareOut, err)
		}
		logging.Info("wrote agreement summary", logging.Fields{"path": compareOut})
	}

	if compareSave {
		client, err := store.NewSQLiteClient(cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.SaveAgreementSummary(summary); err != nil {
			return err
		}
		logging.Info("saved agreement run", logging.Fields{"run_id": summary.RunID, "db": cfg.Store.DSN})
	}

	return nil
}
