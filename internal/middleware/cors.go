// Package middleware provides reusable HTTP middleware for the slot scheduler API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// preflightMaxAge is how long, in seconds, browsers may cache a preflight answer.
const preflightMaxAge = 600

// slotMethods is the method set of the /api/slots surface, plus preflight.
var slotMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodOptions,
}

// NewCORSHandler returns a middleware that admits cross-origin calls from
// allowedOrigins. Entries are full origins; surrounding blanks and a trailing
// slash are dropped, and empty entries are ignored, so an empty list admits none.
// Retry-After and X-Request-Id are readable by clients after a 429 or a failure.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: normalizeOrigins(allowedOrigins),
		AllowedMethods: slotMethods,
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         preflightMaxAge,
	}
	if len(opts.AllowedOrigins) == 0 {
		// rs/cors treats an empty origin list as "allow all".
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
