package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/celldown/celldown/pkg/document"
)

func fmtCmd() *cobra.Command {
	var write bool

	cmd := cobra.Command{
		Use:   "fmt",
		Short: "Reformat a document into canonical block layout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := documentPath()
			if len(args) == 1 {
				path = args[0]
			}

			var data []byte
			var err error
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "failed to read from stdin")
				}
				write = false
			} else {
				data, err = os.ReadFile(path)
				if err != nil {
					return errors.Wrapf(err, "failed to read file %q", path)
				}
			}

			result := document.Serialize(document.Parse(data))

			if write {
				return errors.Wrapf(os.WriteFile(path, result, 0o600), "failed to write file %q", path)
			}
			_, err = cmd.OutOrStdout().Write(result)
			return errors.Wrap(err, "failed to write result")
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the result back instead of printing it.")

	return &cmd
}
