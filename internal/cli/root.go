// Package cli implements the routelens command line.
package cli

import (
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/internal/utils"
	"github.com/toyz/routelens/pkg/routelens/engine"
)

// App carries the state every command shares once flags and config are resolved
type App struct {
	viper       *viper.Viper
	config      *Config
	diagnostics *utils.DiagnosticSystem
	logger      *slog.Logger
	engine      *engine.Engine
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	app := &App{viper: NewViper(), engine: engine.New()}
	var configFile string

	root := &cobra.Command{
		Use:   "routelens",
		Short: "Route template completion and diagnostics for minimal API sources",
		Long: `routelens understands the route templates embedded in minimal API mapping calls
such as app.MapGet("/users/{id}", (int id) => ...).

It suggests handler parameter names from route placeholders and placeholder names
from handler parameters, and reports malformed route templates.

Configuration is read from flags, ROUTELENS_* environment variables and an optional
routelens.yaml in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				app.viper.SetConfigFile(configFile)
			}
			return app.load(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./routelens.yaml)")
	flags.StringP("output", "o", OutputText, "output format: text, json or yaml")
	flags.String("verbosity", "info", "silent, quiet, warn, info, verbose or debug")
	_ = app.viper.BindPFlag("output", flags.Lookup("output"))
	_ = app.viper.BindPFlag("verbosity", flags.Lookup("verbosity"))

	root.AddCommand(
		newCompleteCommand(app),
		newDiagnoseCommand(app),
		newMatchCommand(app),
		newServeCommand(app),
	)
	return root
}

// load resolves configuration and builds the shared output helpers
func (a *App) load(stdout, stderr io.Writer) error {
	cfg, err := LoadConfig(a.viper)
	if err != nil {
		return err
	}
	a.config = cfg

	level := utils.ParseDiagnosticLevel(cfg.Verbosity)
	a.diagnostics = utils.NewDiagnosticSystemWithWriters(level, stdout, stderr, utils.ColorEnabled())

	logLevel := slog.LevelInfo
	switch {
	case level >= utils.DiagnosticDebug:
		logLevel = slog.LevelDebug
	case level <= utils.DiagnosticError:
		logLevel = slog.LevelError
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	return nil
}

// Execute runs the root command, reporting failures on stderr
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	if !stderrors.Is(err, ErrFindings) && !stderrors.Is(err, ErrNoMatch) {
		verbose, _ := root.PersistentFlags().GetString("verbosity")
		NewErrorReporter(stderr, utils.ParseDiagnosticLevel(verbose) >= utils.DiagnosticVerbose).ReportError(err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	var rlErr errors.RoutelensError
	if stderrors.As(err, &rlErr) && rlErr.ErrorCode() == errors.ConfigurationErrorCode {
		return 2
	}
	return 1
}
