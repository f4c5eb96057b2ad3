package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/dataset"
	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
	"github.com/RyanBlaney/sonido-labels/store"
)

var (
	manifestTaxonomy string
	manifestOut      string
	manifestSplit    float64
	manifestSave     bool
)

func init() {
	manifestCmd.Flags().StringVarP(&manifestTaxonomy, "taxonomy", "t", "note", "label taxonomy: note, chord or key_tuning")
	manifestCmd.Flags().StringVarP(&manifestOut, "out", "o", "", "write the manifest as JSON to this file")
	manifestCmd.Flags().Float64Var(&manifestSplit, "split", 0, "also write train/val manifests at this ratio (0 disables)")
	manifestCmd.Flags().BoolVar(&manifestSave, "save", false, "persist the manifest to the local database")
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest <dataset-root>",
	Short: "Builds a labeled dataset manifest from a directory tree",
	Long: `Walks a directory of harmonica recordings, extracts labels from
file and directory names under the chosen taxonomy, and writes a
manifest with resolved class indices and per-class counts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManifest(args[0])
	},
}

func runManifest(root string) error {
	taxonomy, err := label.ParseTaxonomy(manifestTaxonomy)
	if err != nil {
		return err
	}

	builder := dataset.NewBuilderWithMapper(nil, cfg.Dataset.Extensions)
	manifest, err := builder.Build(root, taxonomy)
	if err != nil {
		return err
	}

	fmt.Printf("manifest %s: %d files, %d unknown, %d classes\n",
		manifest.ID, len(manifest.Entries), manifest.UnknownCount, len(manifest.ClassCounts))

	if manifestOut != "" {
		if err := manifest.WriteJSON(manifestOut); err != nil {
			return err
		}
		logging.Info("wrote manifest", logging.Fields{"path": manifestOut})
	}

	if manifestSplit > 0 {
		train, val, err := dataset.SplitManifest(manifest, manifestSplit, cfg.Dataset.Seed)
		if err != nil {
			return err
		}

		base := strings.TrimSuffix(manifestOut, ".json")
		if base == "" {
			base = "manifest"
		}
		trainPath := base + "_train.json"
		valPath := base + "_val.json"
		if err := train.WriteJSON(trainPath); err != nil {
			return err
		}
		if err := val.WriteJSON(valPath); err != nil {
			return err
		}
		fmt.Printf("split %d train / %d val (ratio %.2f, seed %d)\n",
			len(train.Entries), len(val.Entries), manifestSplit, cfg.Dataset.Seed)
	}

	if manifestSave {
		client, err := store.NewSQLiteClient(cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.SaveManifest(manifest); err != nil {
			return err
		}
		logging.Info("saved manifest", logging.Fields{"id": manifest.ID, "db": cfg.Store.DSN})
	}

	return nil
}
