package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"geocam/internal/config"
	"geocam/internal/logger"

	"github.com/gorilla/mux"
)

var logFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// ShowLogsHandler serves /logs/{level} as text/plain.
func ShowLogsHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logFiles[mux.Vars(r)["level"]]
		if !ok {
			http.NotFound(w, r)
			return
		}

		filePath := filepath.Join(cfg.LogDirectory, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + filename))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates /logs/{level} via the logger.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logFiles[mux.Vars(r)["level"]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := logger.CleanLogs(filename); err != nil {
			http.Error(w, "Unable to clear "+filename, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
