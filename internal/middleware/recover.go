package middleware

import (
	"net/http"
	"runtime/debug"

	"geocam/internal/logger"
)

// Recover turns a panicking handler into a 500 "Something went wrong" reply
// and logs the panic with its stack.
func Recover(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					http.Error(w, "Something went wrong", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
