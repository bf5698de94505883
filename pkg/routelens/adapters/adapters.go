// Package adapters implements routelens.WebServer for gin, echo and fiber.
package adapters

import (
	"github.com/toyz/routelens/pkg/routelens"
)

// wildcardName returns the name a route's catch-all parameter is read back by,
// or "" when the route has none
func wildcardName(route *routelens.Template) string {
	for _, part := range route.Parameters() {
		if part.CatchAll {
			if part.Value == "" {
				return "path"
			}
			return part.Value
		}
	}
	return ""
}

// errorBody is the JSON error payload shared by all adapters
func errorBody(err error) (int, *routelens.HTTPError) {
	httpErr := routelens.AsHTTPError(err)
	return httpErr.Code, httpErr
}
