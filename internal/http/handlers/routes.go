package handlers

import (
	"fmt"
	"net/http"
)

// Route is one entry of the static route table.
type Route struct {
	Method       string
	Path         string
	Handler      http.HandlerFunc
	RequiresAuth bool
}

// Pattern returns the ServeMux pattern for the route.
func (r Route) Pattern() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

// Mount registers routes on mux, wrapping those that require authentication
// with guard.
func Mount(mux *http.ServeMux, guard func(http.Handler) http.Handler, routes ...Route) {
	for _, route := range routes {
		var h http.Handler = route.Handler
		if route.RequiresAuth {
			h = guard(h)
		}
		mux.Handle(route.Pattern(), h)
	}
}
