package route

import (
	"net/http"
	"os"
	"path/filepath"

	"geocam/internal/config"
	"geocam/internal/handler"
	"geocam/internal/logger"
	"geocam/internal/middleware"
	"geocam/internal/repository"
	"geocam/internal/service/capture"
	"geocam/internal/service/location"
	"geocam/internal/service/permission"

	"github.com/gorilla/mux"
)

// Devices is the camera side the device feed writes to.
type Devices interface {
	handler.FrameSink
	handler.DeviceStatus
}

// Services are the components the HTTP surface is built on.
type Services struct {
	Pipeline *capture.Pipeline
	Gate     handler.CameraAccess
	Registry *permission.Registry
	Devices  Devices
	Fixes    handler.FixSink // nil when positions don't come from the device
	Viewers  handler.Viewers
	Photos   repository.PhotoRepository
	Sessions *middleware.Sessions
}

type discardFixes struct{}

func (discardFixes) Update(location.Fix) {}

// screenHandler serves a screen page from the static directory; 404 if it is missing.
func screenHandler(staticDir, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := filepath.Join(staticDir, page+".html")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers screens, static files, API and device endpoints,
// and wraps the router with the authentication middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, svc Services) (http.Handler, *Navigator) {
	router := mux.NewRouter()
	sessions := svc.Sessions
	if sessions == nil {
		sessions = middleware.NewSessions()
	}
	fixes := svc.Fixes
	if fixes == nil {
		fixes = discardFixes{}
	}

	// Static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	// Screens
	router.HandleFunc("/", screenHandler(cfg.StaticDir, "home")).Methods(http.MethodGet).Name(string(Home))
	router.HandleFunc("/gallery", screenHandler(cfg.StaticDir, "gallery")).Methods(http.MethodGet).Name(string(Gallery))
	router.HandleFunc("/login", screenHandler(cfg.StaticDir, "login")).Methods(http.MethodGet)

	navigator := NewNavigator(router)
	router.HandleFunc("/navigate/{screen}", navigator.Handler()).Methods(http.MethodGet)

	// Device endpoints
	router.HandleFunc("/camera", handler.CameraWebsocketHandler(svc.Devices, fixes, svc.Registry, logger))

	// API endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/view", handler.ViewWebsocketHandler(svc.Viewers, logger))
	api.HandleFunc("/capture", handler.CaptureHandler(svc.Pipeline, svc.Gate, logger)).Methods(http.MethodPost)
	api.HandleFunc("/state", handler.StateHandler(svc.Pipeline, svc.Registry, svc.Devices, logger)).Methods(http.MethodGet)
	api.HandleFunc("/camera/switch", handler.SwitchCameraHandler(svc.Pipeline, logger)).Methods(http.MethodPost)
	api.HandleFunc("/permissions", handler.GetPermissionsHandler(svc.Registry, logger)).Methods(http.MethodGet)
	api.HandleFunc("/permissions", handler.UpdatePermissionHandler(svc.Registry, logger)).Methods(http.MethodPost)
	api.HandleFunc("/photos", handler.GetPhotosHandler(cfg, logger, svc.Photos)).Methods(http.MethodGet)
	api.HandleFunc("/photos/cities", handler.GetCitiesHandler(logger, svc.Photos)).Methods(http.MethodGet)
	api.HandleFunc("/photos/view", handler.ViewPhotoHandler(cfg)).Methods(http.MethodGet)
	api.HandleFunc("/photos/{id:[0-9]+}", handler.GetPhotoHandler(logger, svc.Photos)).Methods(http.MethodGet)

	// Log endpoints
	router.HandleFunc("/logs/{level}", handler.ShowLogsHandler(cfg)).Methods(http.MethodGet)
	router.HandleFunc("/logs/{level}/clear", handler.ClearLogsHandler(logger)).Methods(http.MethodPost, http.MethodDelete)

	// Auth endpoints
	router.HandleFunc("/auth/login", handler.LoginHandler(cfg, sessions, logger)).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", handler.LogoutHandler(sessions))

	router.Use(middleware.Recover(logger))
	router.Use(middleware.AuthMiddleware(cfg.PasswordHash != "", handler.AuthCookie, sessions))

	return router, navigator
}
