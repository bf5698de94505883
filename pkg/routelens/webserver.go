package routelens

import "context"

// WebServer is a web framework behind a common routing API. Routes are declared
// as route templates and each adapter renders them in its router's syntax.
type WebServer interface {
	RegisterRoute(method string, route *Template, handler HandlerFunc, middlewares ...MiddlewareFunc)
	RegisterGroup(prefix string) RouteGroup
	Use(middleware MiddlewareFunc)

	// Start blocks until the server stops. A graceful Stop makes it return nil.
	Start(addr string) error
	Stop(ctx context.Context) error

	// Name is the framework name, e.g. "gin"
	Name() string
}

// RouteGroup shares a path prefix and middleware between routes
type RouteGroup interface {
	RegisterRoute(method string, route *Template, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	Group(prefix string) RouteGroup
}

// RequestContext is one in-flight request, whatever framework carries it
type RequestContext interface {
	Method() string
	Path() string
	RealIP() string

	// Param reads a route value by template name. Catch-all values have no
	// leading '/'.
	Param(name string) string
	QueryParam(name string) string

	Request() Request
	Response() Response

	// Bind decodes a JSON request body into v
	Bind(v any) error

	// Get and Set carry per-request values between middleware and handlers
	Get(key string) any
	Set(key string, value any)
}

// Request exposes the incoming request
type Request interface {
	Header(name string) string
	Body() []byte
	ContentType() string
}

// Response writes the reply
type Response interface {
	Status() int
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	Blob(code int, contentType string, b []byte) error
}

// HandlerFunc serves a matched route
type HandlerFunc func(RequestContext) error

// MiddlewareFunc wraps a handler
type MiddlewareFunc func(next HandlerFunc) HandlerFunc
