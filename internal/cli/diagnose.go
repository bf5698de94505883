package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/internal/utils"
	"github.com/toyz/routelens/pkg/routelens"
)

// ErrFindings is returned by diagnose when any error-severity diagnostic was reported
var ErrFindings = stderrors.New("route template errors found")

func newDiagnoseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose [PATTERN...]",
		Short: "Report malformed route templates",
		Long: `Report malformed route templates in every mapped route.

Patterns follow the Go convention: "./..." scans recursively, a directory scans
only its own files, and a file is analysed whatever its extension. The default
pattern is "./...".`,
		Example: `  routelens diagnose
  routelens diagnose ./src/... -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"./..."}
			}

			files, err := utils.NewSourceFinder(app.config.Extensions...).Find(args)
			if err != nil {
				return err
			}
			app.diagnostics.Section("Diagnosing route templates")
			app.diagnostics.Indent()
			app.diagnostics.Verbose("analysing %d files with %d workers", len(files), app.config.Workers)
			reports, readErr := app.diagnoseFiles(files)
			var multi *errors.MultipleErrors
			if stderrors.As(readErr, &multi) {
				for _, e := range multi.Errors {
					app.diagnostics.Warn("skipped unreadable file %v", e.Context()["path"])
				}
			}
			app.diagnostics.Unindent()

			if err := writeDiagnostics(cmd.OutOrStdout(), app.config.Output, app.diagnostics, reports); err != nil {
				return err
			}

			total, failing := 0, 0
			for _, report := range reports {
				for _, d := range report.Diagnostics {
					total++
					if d.Severity == routelens.SeverityError {
						failing++
					}
				}
			}
			app.diagnostics.Summary("Diagnose complete", map[string]any{
				"Files":       len(files),
				"Diagnostics": total,
			})
			if readErr != nil {
				return readErr
			}
			if failing > 0 {
				return ErrFindings
			}
			return nil
		},
	}
	return cmd
}

// diagnoseFiles analyses files concurrently. Reports keep the order of files; a
// file that cannot be read is collected as an error without stopping the others.
func (a *App) diagnoseFiles(files []string) ([]FileReport, error) {
	reports := make([]FileReport, len(files))
	readErrs := make([]errors.RoutelensError, len(files))

	var g errgroup.Group
	g.SetLimit(a.config.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			source, err := utils.ReadSource(file)
			if err != nil {
				var rlErr errors.RoutelensError
				if stderrors.As(err, &rlErr) {
					readErrs[i] = rlErr
				} else {
					readErrs[i] = errors.WrapFileSystemError("read", file, err)
				}
				return nil
			}
			reports[i] = FileReport{File: file, Diagnostics: a.engine.Diagnose(file, source)}
			a.logger.Debug("diagnosed file", "file", file, "diagnostics", len(reports[i].Diagnostics))
			return nil
		})
	}
	_ = g.Wait()

	var errs errors.MultipleErrors
	kept := reports[:0]
	for i, report := range reports {
		if readErrs[i] != nil {
			errs.Add(readErrs[i])
			continue
		}
		kept = append(kept, report)
	}
	return kept, errs.ErrorOrNil()
}
