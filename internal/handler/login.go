package handler

import (
	"net/http"

	"geocam/internal/config"
	"geocam/internal/logger"
	"geocam/internal/middleware"
)

// AuthCookie marks an authenticated browser session.
const AuthCookie = "authenticated"

// LoginHandler handles POST /auth/login by checking the password against the
// configured bcrypt hash and issuing a session token in the auth cookie.
func LoginHandler(cfg *config.Config, sessions *middleware.Sessions, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password := r.FormValue("password")
		if !cfg.CheckPassword(password) {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     AuthCookie,
			Value:    sessions.Create(),
			Path:     "/",
			MaxAge:   2592000, // 30 days
			HttpOnly: true,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler revokes the session and clears the auth cookie.
func LogoutHandler(sessions *middleware.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(AuthCookie); err == nil {
			sessions.Revoke(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     AuthCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
