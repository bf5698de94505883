package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/routelens/pkg/routelens"
)

// GinAdapter implements routelens.WebServer for Gin framework
type GinAdapter struct {
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with panic recovery
func NewDefaultGinAdapter() *GinAdapter {
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinAdapter{engine: engine}
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	ga.engine.Handle(method, route.FrameworkPath(routelens.GinStyle), ga.handlers(route, handler, middlewares)...)
}

func (ga *GinAdapter) handlers(route *routelens.Template, handler routelens.HandlerFunc, middlewares []routelens.MiddlewareFunc) []gin.HandlerFunc {
	wildcard := wildcardName(route)
	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(middleware, wildcard))
	}
	return append(handlers, ga.convertHandler(handler, wildcard))
}

// RegisterGroup registers a route group with the Gin server
func (ga *GinAdapter) RegisterGroup(prefix string) routelens.RouteGroup {
	return &GinRouteGroup{group: ga.engine.Group(prefix), adapter: ga}
}

// Use registers a global middleware with the Gin server
func (ga *GinAdapter) Use(middleware routelens.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware, ""))
}

// Start serves the engine until Stop is called
func (ga *GinAdapter) Start(addr string) error {
	ga.mu.Lock()
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	server := ga.server
	ga.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down a started server
func (ga *GinAdapter) Stop(ctx context.Context) error {
	ga.mu.Lock()
	server := ga.server
	ga.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// GinRouteGroup implements routelens.RouteGroup for Gin
type GinRouteGroup struct {
	group   *gin.RouterGroup
	adapter *GinAdapter
}

// RegisterRoute registers a route within the group
func (grg *GinRouteGroup) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	grg.group.Handle(method, route.FrameworkPath(routelens.GinStyle), grg.adapter.handlers(route, handler, middlewares)...)
}

// Use registers middleware with the group
func (grg *GinRouteGroup) Use(middleware routelens.MiddlewareFunc) {
	grg.group.Use(grg.adapter.convertMiddleware(middleware, ""))
}

// Group creates a sub-group
func (grg *GinRouteGroup) Group(prefix string) routelens.RouteGroup {
	return &GinRouteGroup{group: grg.group.Group(prefix), adapter: grg.adapter}
}

// convertHandler converts routelens.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler routelens.HandlerFunc, wildcard string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler(&GinRequestContext{ctx: c, wildcard: wildcard}); err != nil {
			c.JSON(errorBody(err))
		}
	}
}

// convertMiddleware converts routelens.MiddlewareFunc to gin.HandlerFunc
func (ga *GinAdapter) convertMiddleware(middleware routelens.MiddlewareFunc, wildcard string) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := func(routelens.RequestContext) error {
			c.Next()
			return nil
		}
		if err := middleware(next)(&GinRequestContext{ctx: c, wildcard: wildcard}); err != nil {
			c.AbortWithStatusJSON(errorBody(err))
		}
	}
}

// GinRequestContext implements routelens.RequestContext for Gin
type GinRequestContext struct {
	ctx      *gin.Context
	wildcard string
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// RealIP returns the client IP address
func (grc *GinRequestContext) RealIP() string {
	return grc.ctx.ClientIP()
}

// Param returns a path parameter. Gin keeps the leading '/' on catch-all values.
func (grc *GinRequestContext) Param(key string) string {
	if key != "" && key == grc.wildcard {
		return strings.TrimPrefix(grc.ctx.Param(key), "/")
	}
	return grc.ctx.Param(key)
}

// QueryParam returns a query parameter
func (grc *GinRequestContext) QueryParam(key string) string {
	return grc.ctx.Query(key)
}

// Request returns the request interface
func (grc *GinRequestContext) Request() routelens.Request {
	return &GinRequest{ctx: grc.ctx}
}

// Response returns the response interface
func (grc *GinRequestContext) Response() routelens.Response {
	return &GinResponse{ctx: grc.ctx}
}

// Bind binds a JSON request body to a struct
func (grc *GinRequestContext) Bind(i any) error {
	return grc.ctx.ShouldBindJSON(i)
}

// Get returns a value from context
func (grc *GinRequestContext) Get(key string) any {
	value, _ := grc.ctx.Get(key)
	return value
}

// Set sets a value in context
func (grc *GinRequestContext) Set(key string, val any) {
	grc.ctx.Set(key, val)
}

// GinRequest implements routelens.Request for Gin
type GinRequest struct {
	ctx *gin.Context
}

func (gr *GinRequest) Header(key string) string {
	return gr.ctx.GetHeader(key)
}

func (gr *GinRequest) Body() []byte {
	body, err := io.ReadAll(gr.ctx.Request.Body)
	if err != nil {
		return nil
	}
	return body
}

func (gr *GinRequest) ContentType() string {
	return gr.ctx.ContentType()
}

// GinResponse implements routelens.Response for Gin
type GinResponse struct {
	ctx *gin.Context
}

func (gr *GinResponse) Status() int {
	return gr.ctx.Writer.Status()
}

func (gr *GinResponse) Header(key string) string {
	return gr.ctx.Writer.Header().Get(key)
}

func (gr *GinResponse) SetHeader(key, value string) {
	gr.ctx.Header(key, value)
}

func (gr *GinResponse) JSON(code int, i any) error {
	gr.ctx.JSON(code, i)
	return nil
}

func (gr *GinResponse) String(code int, s string) error {
	gr.ctx.String(code, "%s", s)
	return nil
}

func (gr *GinResponse) Blob(code int, contentType string, b []byte) error {
	gr.ctx.Data(code, contentType, b)
	return nil
}
