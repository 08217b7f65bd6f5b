package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/celldown/celldown/internal/log"
)

var (
	chdir    string
	fileName string
	verbose  bool
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "celldown",
		Short:         "Run and edit cell documents: shell code cells interleaved with markdown text cells",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.Set(zapcore.DebugLevel)
			}
			applyProjectConfig()
		},
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&chdir, "chdir", ".", "Switch to a different working directory before running the command.")
	pflags.StringVar(&fileName, "filename", "notebook.cdown", "A name of the document file.")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(fmtCmd())
	cmd.AddCommand(listCmd())

	return &cmd
}
