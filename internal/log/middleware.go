package log

import "net/http"

// Middleware creates HTTP middleware that adds a logger to the request
// context, so handlers can use FromContext without threading it through.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}
