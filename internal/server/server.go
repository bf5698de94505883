// Package server exposes the completion and diagnostic engine over HTTP on any of
// the supported web frameworks.
package server

import (
	"context"
	"log/slog"
	"strings"

	rlerrors "github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/pkg/routelens"
	"github.com/toyz/routelens/pkg/routelens/adapters"
	"github.com/toyz/routelens/pkg/routelens/engine"
)

// Frameworks lists the accepted values for Config.Framework
var Frameworks = []string{"gin", "echo", "fiber"}

// NewWebServer creates the adapter for a framework name
func NewWebServer(framework string) (routelens.WebServer, error) {
	switch strings.ToLower(framework) {
	case "", "gin":
		return adapters.NewDefaultGinAdapter(), nil
	case "echo":
		return adapters.NewDefaultEchoAdapter(), nil
	case "fiber":
		return adapters.NewDefaultFiberAdapter(), nil
	}
	return nil, rlerrors.InvalidOption("framework", framework, Frameworks...)
}

// Server serves the /v1 API
type Server struct {
	web    routelens.WebServer
	engine *engine.Engine
	logger *slog.Logger
}

// New registers the API routes and middleware on web
func New(web routelens.WebServer, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{web: web, engine: eng, logger: logger}

	web.Use(RequestID())
	web.Use(Logging(logger))

	web.RegisterRoute("GET", routelens.ParseTemplate("/healthz"), s.health)

	v1 := web.RegisterGroup("/v1")
	v1.RegisterRoute("POST", routelens.ParseTemplate("/complete"), s.complete)
	v1.RegisterRoute("POST", routelens.ParseTemplate("/diagnostics"), s.diagnostics)
	v1.RegisterRoute("GET", routelens.ParseTemplate("/templates/{*template}"), s.template)
	v1.RegisterRoute("POST", routelens.ParseTemplate("/match"), s.match)

	return s
}

// Start blocks serving addr until Stop is called
func (s *Server) Start(addr string) error {
	s.logger.Info("starting server", "addr", addr, "framework", s.web.Name())
	if err := s.web.Start(addr); err != nil {
		return rlerrors.WrapServerError("start", err).WithContext("addr", addr)
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	if err := s.web.Stop(ctx); err != nil {
		return rlerrors.WrapServerError("stop", err)
	}
	return nil
}

// Name returns the framework the server runs on
func (s *Server) Name() string {
	return s.web.Name()
}
