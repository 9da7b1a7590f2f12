package server

import "net/http"

// pageHeaders are set on every response. The picker page embeds only its
// own stylesheet and sprite images, and never needs to be framed.
var pageHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "same-origin",
	"Content-Security-Policy": "default-src 'self'; img-src 'self' data: https:; " +
		"style-src 'self' 'unsafe-inline'; script-src 'none'; frame-ancestors 'none'",
}

// NewSecurityHeadersMiddleware sets the static security headers
func NewSecurityHeadersMiddleware() MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range pageHeaders {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// noStore marks a response as uncacheable. Pages carrying a CSRF token or a
// provider selection must not be served from a shared cache.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
