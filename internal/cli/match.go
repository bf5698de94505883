package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/pkg/routelens"
)

// ErrNoMatch is returned by match when the path does not match the template
var ErrNoMatch = stderrors.New("path does not match template")

func newMatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "match TEMPLATE PATH",
		Short: "Match a request path against a route template",
		Long: `Match a request path against a route template, checking route constraints
such as int, guid, range(1,10) or regex(...). Prints the captured values and exits
with status 1 when the path does not match.`,
		Example: `  routelens match '/users/{id:int}/files/{*path}' /users/7/files/docs/a.txt
  routelens match '/pages/{page:int=1}' /pages -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.engine.Template(args[0]).MatchPath(args[1])
			if err != nil {
				return errors.Wrap(errors.InputErrorCode, "invalid route template", err).
					WithContext("template", args[0]).
					WithSuggestion(fmt.Sprintf("known constraints: %v", routelens.KnownConstraints()))
			}
			if !result.Matched && result.Rejected != "" {
				app.diagnostics.Info("parameter %q rejected by constraint %q", result.Rejected, result.Constraint)
			}

			if err := writeMatch(cmd.OutOrStdout(), app.config.Output, result); err != nil {
				return err
			}
			if !result.Matched {
				return ErrNoMatch
			}
			return nil
		},
	}
}

// writeMatch prints "name=value" lines in text form, sorted by name
func writeMatch(w io.Writer, format string, result routelens.PathMatch) error {
	if format != OutputText {
		return writeStructured(w, format, result)
	}
	if !result.Matched {
		_, err := fmt.Fprintln(w, "no match")
		return err
	}
	names := make([]string, 0, len(result.Values))
	for name := range result.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, result.Values[name]); err != nil {
			return err
		}
	}
	return nil
}
