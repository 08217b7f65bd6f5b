package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/celldown/celldown/pkg/document"
)

func listCmd() *cobra.Command {
	var condition string

	cmd := cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the document's cells.",
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := openNotebook(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = nb.Close() }()

			var filter *cellFilter
			if condition != "" {
				filter = &cellFilter{Condition: condition}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tKIND\tEXECUTED\tOUTPUTS\tFIRST LINE")

			for i, cell := range nb.Cells() {
				text := nb.Text(cell.ID())

				if filter != nil {
					keep, err := filter.Evaluate(filterCellEnv{
						Kind:     cell.Kind().String(),
						Executed: cell.Execution().Executed,
						Rendered: cell.Mode() == document.RenderedMode,
						Outputs:  len(cell.Outputs()),
						Text:     text,
					})
					if err != nil {
						return err
					}
					if !keep {
						continue
					}
				}

				fmt.Fprintf(
					w,
					"%d\t%s\t%t\t%d\t%s\n",
					i,
					cell.Kind(),
					cell.Execution().Executed,
					len(cell.Outputs()),
					firstLine(text),
				)
			}

			return errors.Wrap(w.Flush(), "failed to render table")
		},
	}

	cmd.Flags().StringVar(&condition, "filter", "", `Keep cells matching an expression, e.g. 'kind == "code" && !executed'.`)

	return &cmd
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
