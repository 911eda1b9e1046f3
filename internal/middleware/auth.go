package middleware

import (
	"net/http"
	"strings"
)

// publicPrefixes are reachable without logging in: the login page, static
// assets and the camera device feed.
var publicPrefixes = []string{"/static/", "/css/", "/js/", "/camera"}

// AuthMiddleware checks that the auth cookie carries a session token issued at login.
// A disabled middleware passes every request through.
func AuthMiddleware(enabled bool, cookieName string, sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || !sessions.Valid(cookie.Value) {
				// API clients get 401, browsers are sent to the login page
				if strings.HasPrefix(r.URL.Path, "/api/") ||
					r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
					r.Header.Get("Content-Type") == "application/json" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPublic(path string) bool {
	if path == "/login" || path == "/auth/login" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
