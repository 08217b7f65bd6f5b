package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/celldown/celldown/internal/log"
	"github.com/celldown/celldown/internal/runner"
	"github.com/celldown/celldown/internal/source"
	"github.com/celldown/celldown/pkg/document"
	"github.com/celldown/celldown/pkg/notebook"
)

func runCmd() *cobra.Command {
	var (
		cellIndex int
		write     bool
	)

	cmd := cobra.Command{
		Use:   "run",
		Short: "Run the document's code cells in order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := openNotebook(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = nb.Close() }()

			ctx := cmd.Context()
			if cellIndex >= 0 {
				cells := nb.Cells()
				if cellIndex >= len(cells) {
					return errors.Errorf("no cell at index %d; document has %d cells", cellIndex, len(cells))
				}
				nb.RunCell(ctx, cells[cellIndex].ID())
			} else {
				nb.RunAll(ctx)
			}

			printOutputs(cmd, nb)

			if write {
				if err := os.WriteFile(documentPath(), nb.Export(), 0o600); err != nil {
					return errors.Wrap(err, "failed to write document")
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cellIndex, "cell", -1, "Run only the cell at this index instead of all code cells.")
	cmd.Flags().BoolVar(&write, "write", false, "Write the document back with captured outputs.")

	return &cmd
}

// openNotebook loads the configured document into a fresh notebook with
// the scope seeded from the project config.
func openNotebook(cmd *cobra.Command) (*notebook.Notebook, error) {
	loader := source.NewLoader(nil, log.Get())

	path := documentPath()
	var (
		cells []document.Snapshot
		err   error
	)
	if strings.HasPrefix(fileName, "https://") || strings.HasPrefix(fileName, "http://") {
		cells, err = loader.URL(cmd.Context(), fileName)
	} else {
		cells, err = loader.File(path)
	}
	if err != nil {
		// The loader degraded to a usable fallback document; tell the user
		// and carry on.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", err)
	}

	engine := runner.NewEngine(runner.Options{
		Dir:    chdir,
		Logger: log.Get(),
	})
	nb := notebook.New(notebook.Options{Engine: engine, Logger: log.Get()})
	nb.Load(cells)

	for name, value := range loadedConfig.Env {
		nb.Engine().Scope().Set(name, value)
	}
	return nb, nil
}

func printOutputs(cmd *cobra.Command, nb *notebook.Notebook) {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	for _, cell := range nb.Cells() {
		for _, out := range cell.Outputs() {
			switch out.Kind {
			case document.ErrorOutput:
				fmt.Fprintln(stderr, out.Text)
			case document.ImageOutput:
				fmt.Fprintf(stdout, "[image %s, %d bytes]\n", out.Mime, len(out.Data))
			default:
				fmt.Fprintln(stdout, out.Text)
			}
		}
	}
}
