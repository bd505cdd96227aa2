// Package middleware provides reusable HTTP middleware for the trip companion API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// preflightMaxAge is how long, in seconds, a browser may cache a preflight.
// The settings form issues one PUT per keystroke.
const preflightMaxAge = 300

// NewCORSHandler allows browser clients on allowedOrigins (full origins, no
// trailing slash) to call the roster, tab, settings and expense routes.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         preflightMaxAge,
	})
	return c.Handler
}
