package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/routelens/pkg/routelens"
)

// EchoAdapter implements routelens.WebServer for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a quiet Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoAdapter{engine: e}
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	wildcard := wildcardName(route)
	ea.engine.Add(method, route.FrameworkPath(routelens.EchoStyle), ea.convertHandler(handler, wildcard), ea.convertMiddlewares(middlewares, wildcard)...)
}

// RegisterGroup creates a new route group
func (ea *EchoAdapter) RegisterGroup(prefix string) routelens.RouteGroup {
	return &EchoGroupAdapter{group: ea.engine.Group(prefix), adapter: ea}
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware routelens.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware, ""))
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// EchoGroupAdapter implements routelens.RouteGroup for Echo groups
type EchoGroupAdapter struct {
	group   *echo.Group
	adapter *EchoAdapter
}

// RegisterRoute registers a route with the group
func (ega *EchoGroupAdapter) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	wildcard := wildcardName(route)
	ega.group.Add(method, route.FrameworkPath(routelens.EchoStyle), ega.adapter.convertHandler(handler, wildcard), ega.adapter.convertMiddlewares(middlewares, wildcard)...)
}

// Use adds middleware to the group
func (ega *EchoGroupAdapter) Use(middleware routelens.MiddlewareFunc) {
	ega.group.Use(ega.adapter.convertMiddleware(middleware, ""))
}

// Group creates a sub-group
func (ega *EchoGroupAdapter) Group(prefix string) routelens.RouteGroup {
	return &EchoGroupAdapter{group: ega.group.Group(prefix), adapter: ega.adapter}
}

// convertHandler converts routelens.HandlerFunc to echo.HandlerFunc
func (ea *EchoAdapter) convertHandler(handler routelens.HandlerFunc, wildcard string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := handler(&EchoRequestContext{context: c, wildcard: wildcard}); err != nil {
			return c.JSON(errorBody(err))
		}
		return nil
	}
}

func (ea *EchoAdapter) convertMiddlewares(middlewares []routelens.MiddlewareFunc, wildcard string) []echo.MiddlewareFunc {
	converted := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		converted[i] = ea.convertMiddleware(mw, wildcard)
	}
	return converted
}

// convertMiddleware converts routelens.MiddlewareFunc to echo.MiddlewareFunc
func (ea *EchoAdapter) convertMiddleware(middleware routelens.MiddlewareFunc, wildcard string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			handler := middleware(func(routelens.RequestContext) error {
				return next(c)
			})
			if err := handler(&EchoRequestContext{context: c, wildcard: wildcard}); err != nil {
				return c.JSON(errorBody(err))
			}
			return nil
		}
	}
}

// EchoRequestContext implements routelens.RequestContext for Echo
type EchoRequestContext struct {
	context  echo.Context
	wildcard string
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// RealIP returns the real IP address
func (erc *EchoRequestContext) RealIP() string {
	return erc.context.RealIP()
}

// Param returns path parameter by name. Echo names every catch-all "*".
func (erc *EchoRequestContext) Param(key string) string {
	if key != "" && key == erc.wildcard {
		return erc.context.Param("*")
	}
	return erc.context.Param(key)
}

// QueryParam returns query parameter by name
func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() routelens.Request {
	return &EchoRequest{request: erc.context.Request()}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() routelens.Response {
	return &EchoResponse{context: erc.context}
}

// Bind binds request body to provided struct
func (erc *EchoRequestContext) Bind(i any) error {
	return erc.context.Bind(i)
}

// Get retrieves data from context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set stores data in context
func (erc *EchoRequestContext) Set(key string, val any) {
	erc.context.Set(key, val)
}

// EchoRequest implements routelens.Request for Echo
type EchoRequest struct {
	request *http.Request
}

func (er *EchoRequest) Header(key string) string {
	return er.request.Header.Get(key)
}

func (er *EchoRequest) Body() []byte {
	body, err := io.ReadAll(er.request.Body)
	if err != nil {
		return nil
	}
	return body
}

func (er *EchoRequest) ContentType() string {
	return er.request.Header.Get(echo.HeaderContentType)
}

// EchoResponse implements routelens.Response for Echo
type EchoResponse struct {
	context echo.Context
}

func (er *EchoResponse) Status() int {
	return er.context.Response().Status
}

func (er *EchoResponse) Header(key string) string {
	return er.context.Response().Header().Get(key)
}

func (er *EchoResponse) SetHeader(key, value string) {
	er.context.Response().Header().Set(key, value)
}

func (er *EchoResponse) JSON(code int, i any) error {
	return er.context.JSON(code, i)
}

func (er *EchoResponse) String(code int, s string) error {
	return er.context.String(code, s)
}

func (er *EchoResponse) Blob(code int, contentType string, b []byte) error {
	return er.context.Blob(code, contentType, b)
}
