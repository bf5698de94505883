package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/internal/utils"
)

func newCompleteCommand(app *App) *cobra.Command {
	var (
		cursor int
		marker string
	)

	cmd := &cobra.Command{
		Use:   "complete FILE",
		Short: "Suggest names at a cursor position",
		Long: `Suggest handler parameter names or route placeholder names at a cursor.

The cursor is a byte offset given with --cursor, or the position of a marker
string given with --marker, which is removed before analysis. FILE may be "-"
to read from standard input.`,
		Example: `  routelens complete Program.cs --cursor 120
  echo 'app.MapGet("/{id}", (int $$' | routelens complete - --marker '$$'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, source, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			offset := cursor
			if marker != "" {
				offset = strings.Index(source, marker)
				if offset < 0 {
					return errors.Newf(errors.InputErrorCode, "marker %q not found", marker).
						WithLocation(errors.SourceLocation{File: name})
				}
				source = source[:offset] + source[offset+len(marker):]
			}
			if offset < 0 || offset > len(source) {
				return errors.InvalidCursor(name, offset, len(source))
			}

			app.diagnostics.Debug("completing %s at offset %d", name, offset)
			result := app.engine.Complete(name, source, offset)
			return writeCompletion(cmd.OutOrStdout(), app.config.Output, result)
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", -1, "cursor byte offset")
	cmd.Flags().StringVar(&marker, "marker", "", "cursor marker to locate and strip from the source")
	return cmd
}

// readInput reads a named file, or standard input for "-"
func readInput(cmd *cobra.Command, arg string) (string, string, error) {
	if arg != "-" {
		source, err := utils.ReadSource(arg)
		return arg, source, err
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", errors.WrapFileSystemError("read", "stdin", err)
	}
	return "stdin.cs", string(data), nil
}
