package mid

import (
	"context"
	"net/http"
	"slices"

	"github.com/ardanlabs/powchain/foundation/web"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// An origin of "*" allows every origin.
func Cors(origins ...string) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			reqOrigin := r.Header.Get("Origin")

			switch {
			case slices.Contains(origins, "*"):
				w.Header().Set("Access-Control-Allow-Origin", "*")

			case reqOrigin != "" && slices.Contains(origins, reqOrigin):
				w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
			w.Header().Set("Access-Control-Max-Age", "86400")

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
