package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/config"
	"github.com/RyanBlaney/sonido-labels/logging"
)

var (
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sonido-labels",
	Short: "Harmonica note and chord label tooling",
	Long: `sonido-labels builds dataset manifests from harmonica recordings,
encodes note, chord and key labels into 96-class training targets, and
checks how well prediction backends agree with each other and with the
audio itself.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
