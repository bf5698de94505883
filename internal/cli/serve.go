package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/routelens/internal/server"
)

func newServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Serve completion and diagnostics over HTTP",
		Long: `Serve the completion and diagnostic engine over HTTP.

Endpoints:
  POST /v1/complete            {"filename", "source", "cursor"}
  POST /v1/diagnostics         {"filename", "source"}
  GET  /v1/templates/{*template}
  GET  /healthz`,
		Example: `  routelens serve --addr :9090 --framework echo`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("framework", "gin", "web framework: gin, echo or fiber")
	_ = app.viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = app.viper.BindPFlag("server.framework", cmd.Flags().Lookup("framework"))
	return cmd
}

// serve runs the HTTP service until ctx is cancelled or the listener fails
func (a *App) serve(ctx context.Context) error {
	web, err := server.NewWebServer(a.config.Server.Framework)
	if err != nil {
		return err
	}
	srv := server.New(web, a.engine, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(a.config.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
