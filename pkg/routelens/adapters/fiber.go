package adapters

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/routelens/pkg/routelens"
)

// FiberAdapter wraps a Fiber app to implement routelens.WebServer
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter instance. Path parameters are
// unescaped so every adapter hands handlers the same decoded values.
func NewFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(routelens.NewHTTPError(code, err.Error()))
		},
	})

	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with panic recovery
func NewDefaultFiberAdapter() *FiberAdapter {
	adapter := NewFiberAdapter()
	adapter.app.Use(recover.New())
	return adapter
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	fa.app.Add(strings.ToUpper(method), route.FrameworkPath(routelens.FiberStyle), fiberHandlers(route, handler, middlewares)...)
}

func fiberHandlers(route *routelens.Template, handler routelens.HandlerFunc, middlewares []routelens.MiddlewareFunc) []fiber.Handler {
	wildcard := wildcardName(route)
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, convertMiddlewareToFiber(mw, wildcard))
	}
	return append(handlers, convertHandlerToFiber(handler, wildcard))
}

// RegisterGroup creates a new route group with the given prefix
func (fa *FiberAdapter) RegisterGroup(prefix string) routelens.RouteGroup {
	return &FiberRouteGroup{group: fa.app.Group(prefix)}
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware routelens.MiddlewareFunc) {
	fa.app.Use(convertMiddlewareToFiber(middleware, ""))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// FiberRouteGroup wraps a Fiber route group to implement routelens.RouteGroup
type FiberRouteGroup struct {
	group fiber.Router
}

// RegisterRoute registers a route with this group
func (frg *FiberRouteGroup) RegisterRoute(method string, route *routelens.Template, handler routelens.HandlerFunc, middlewares ...routelens.MiddlewareFunc) {
	frg.group.Add(strings.ToUpper(method), route.FrameworkPath(routelens.FiberStyle), fiberHandlers(route, handler, middlewares)...)
}

// Use adds middleware to this group
func (frg *FiberRouteGroup) Use(middleware routelens.MiddlewareFunc) {
	frg.group.Use(convertMiddlewareToFiber(middleware, ""))
}

// Group creates a sub-group
func (frg *FiberRouteGroup) Group(prefix string) routelens.RouteGroup {
	return &FiberRouteGroup{group: frg.group.Group(prefix)}
}

// convertHandlerToFiber converts a routelens handler to a Fiber handler
func convertHandlerToFiber(handler routelens.HandlerFunc, wildcard string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(&FiberRequestContext{ctx: c, wildcard: wildcard}); err != nil {
			code, body := errorBody(err)
			return c.Status(code).JSON(body)
		}
		return nil
	}
}

// convertMiddlewareToFiber converts a routelens middleware to a Fiber middleware
func convertMiddlewareToFiber(middleware routelens.MiddlewareFunc, wildcard string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := middleware(func(routelens.RequestContext) error {
			return c.Next()
		})(&FiberRequestContext{ctx: c, wildcard: wildcard})

		if err != nil {
			code, body := errorBody(err)
			return c.Status(code).JSON(body)
		}
		return nil
	}
}

// FiberRequestContext wraps fiber.Ctx to implement routelens.RequestContext
type FiberRequestContext struct {
	ctx      *fiber.Ctx
	wildcard string
}

func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

func (frc *FiberRequestContext) RealIP() string {
	return frc.ctx.IP()
}

// Param returns a path parameter. Fiber names every catch-all "*".
func (frc *FiberRequestContext) Param(name string) string {
	if name != "" && name == frc.wildcard {
		return frc.ctx.Params("*")
	}
	return frc.ctx.Params(name)
}

func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.ctx.Query(key)
}

func (frc *FiberRequestContext) Request() routelens.Request {
	return &FiberRequest{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Response() routelens.Response {
	return &FiberResponse{ctx: frc.ctx}
}

// Bind parses the request body according to its content type
func (frc *FiberRequestContext) Bind(obj any) error {
	return frc.ctx.BodyParser(obj)
}

func (frc *FiberRequestContext) Get(key string) any {
	return frc.ctx.Locals(key)
}

func (frc *FiberRequestContext) Set(key string, val any) {
	frc.ctx.Locals(key, val)
}

// FiberRequest implements routelens.Request for Fiber
type FiberRequest struct {
	ctx *fiber.Ctx
}

func (fr *FiberRequest) Header(key string) string {
	return fr.ctx.Get(key)
}

func (fr *FiberRequest) Body() []byte {
	return fr.ctx.Body()
}

func (fr *FiberRequest) ContentType() string {
	return fr.ctx.Get(fiber.HeaderContentType)
}

// FiberResponse implements routelens.Response for Fiber
type FiberResponse struct {
	ctx *fiber.Ctx
}

func (fr *FiberResponse) Status() int {
	return fr.ctx.Response().StatusCode()
}

func (fr *FiberResponse) Header(key string) string {
	return fr.ctx.GetRespHeader(key)
}

func (fr *FiberResponse) SetHeader(key, value string) {
	fr.ctx.Set(key, value)
}

func (fr *FiberResponse) JSON(code int, data any) error {
	return fr.ctx.Status(code).JSON(data)
}

func (fr *FiberResponse) String(code int, s string) error {
	return fr.ctx.Status(code).SendString(s)
}

func (fr *FiberResponse) Blob(code int, contentType string, data []byte) error {
	fr.ctx.Set(fiber.HeaderContentType, contentType)
	return fr.ctx.Status(code).Send(data)
}
