package server

import (
	"net/http"
	"net/url"

	"github.com/toyz/routelens/pkg/routelens"
)

// CompleteRequest is the body of POST /v1/complete. Cursor is a byte offset into Source.
type CompleteRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Cursor   *int   `json:"cursor"`
}

// CompleteResponse is the body returned by POST /v1/complete
type CompleteResponse struct {
	Kind  routelens.CompletionKind `json:"kind"`
	Items []routelens.Item         `json:"items"`
}

// DiagnosticsRequest is the body of POST /v1/diagnostics
type DiagnosticsRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
}

// DiagnosticsResponse is the body returned by POST /v1/diagnostics
type DiagnosticsResponse struct {
	Diagnostics []routelens.Diagnostic `json:"diagnostics"`
}

// TemplateResponse is the body returned by GET /v1/templates/{*template}
type TemplateResponse struct {
	Template   *routelens.Template `json:"template"`
	Parameters []string            `json:"parameters"`
	Paths      map[string]string   `json:"paths"`
}

// MatchRequest is the body of POST /v1/match
type MatchRequest struct {
	Template string `json:"template"`
	Path     string `json:"path"`
}

func (s *Server) health(c routelens.RequestContext) error {
	return c.Response().JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"framework": s.web.Name(),
	})
}

func (s *Server) complete(c routelens.RequestContext) error {
	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		return routelens.ErrBadRequest("request body must be a JSON object").WithInternal(err)
	}
	if req.Cursor == nil {
		return routelens.ErrUnprocessableEntity("cursor is required")
	}
	if *req.Cursor < 0 || *req.Cursor > len(req.Source) {
		return routelens.ErrUnprocessableEntity("cursor is outside the source").
			WithDetails(map[string]int{"cursor": *req.Cursor, "size": len(req.Source)})
	}

	result := s.engine.Complete(filename(req.Filename), req.Source, *req.Cursor)
	return c.Response().JSON(http.StatusOK, CompleteResponse{Kind: result.Kind, Items: result.Items})
}

func (s *Server) diagnostics(c routelens.RequestContext) error {
	var req DiagnosticsRequest
	if err := c.Bind(&req); err != nil {
		return routelens.ErrBadRequest("request body must be a JSON object").WithInternal(err)
	}

	diags := s.engine.Diagnose(filename(req.Filename), req.Source)
	return c.Response().JSON(http.StatusOK, DiagnosticsResponse{Diagnostics: diags})
}

func (s *Server) template(c routelens.RequestContext) error {
	raw := c.Param("template")
	// Some routers hand catch-all values over undecoded
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if raw == "" {
		return routelens.ErrBadRequest("template is required")
	}

	tmpl := s.engine.Template(raw)
	names := tmpl.ParameterNames()
	if names == nil {
		names = []string{}
	}
	return c.Response().JSON(http.StatusOK, TemplateResponse{
		Template:   tmpl,
		Parameters: names,
		Paths: map[string]string{
			"gin":   tmpl.FrameworkPath(routelens.GinStyle),
			"echo":  tmpl.FrameworkPath(routelens.EchoStyle),
			"fiber": tmpl.FrameworkPath(routelens.FiberStyle),
		},
	})
}

func (s *Server) match(c routelens.RequestContext) error {
	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return routelens.ErrBadRequest("request body must be a JSON object").WithInternal(err)
	}
	if req.Template == "" {
		return routelens.ErrUnprocessableEntity("template is required")
	}

	result, err := s.engine.Template(req.Template).MatchPath(req.Path)
	if err != nil {
		return routelens.ErrUnprocessableEntity(err.Error()).WithInternal(err)
	}
	return c.Response().JSON(http.StatusOK, result)
}

func filename(name string) string {
	if name == "" {
		return "untitled.cs"
	}
	return name
}
