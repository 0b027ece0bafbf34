package controller

import "net/http"

const (
	corsAllowedHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, " +
		"Cache-Control, X-Request-Id"
	corsAllowedMethods = "GET, POST, DELETE, OPTIONS"
	// corsMaxAge lets browsers cache preflight results for ten minutes.
	corsMaxAge = "600"
)

// WithCORS returns a middleware that allows cross-origin calls to the API and
// short-circuits OPTIONS preflight requests with 204 No Content. The request
// origin is echoed back so credentialed requests work; requests without an
// Origin header get a wildcard.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if origin := r.Header.Get("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Set("Access-Control-Expose-Headers", "X-Request-Id")

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
