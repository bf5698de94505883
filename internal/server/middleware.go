package server

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/routelens/pkg/routelens"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestID assigns every request an id, reusing one sent by the client
func RequestID() routelens.MiddlewareFunc {
	return func(next routelens.HandlerFunc) routelens.HandlerFunc {
		return func(c routelens.RequestContext) error {
			id := c.Request().Header(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Set(requestIDKey, id)
			c.Response().SetHeader(RequestIDHeader, id)
			return next(c)
		}
	}
}

// Logging logs one line per request
func Logging(logger *slog.Logger) routelens.MiddlewareFunc {
	return func(next routelens.HandlerFunc) routelens.HandlerFunc {
		return func(c routelens.RequestContext) error {
			start := time.Now()
			err := next(c)

			// the framework writes the error response after the chain returns
			status := c.Response().Status()
			if err != nil {
				status = routelens.AsHTTPError(err).Code
			}
			attrs := []any{
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", time.Since(start),
			}
			if id, ok := c.Get(requestIDKey).(string); ok {
				attrs = append(attrs, "request_id", id)
			}
			if err != nil {
				logger.Error("request failed", append(attrs, "error", err)...)
				return err
			}
			logger.Info("request", attrs...)
			return nil
		}
	}
}
