package route

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geocam/internal/config"
	"geocam/internal/handler"
	"geocam/internal/logger"
	"geocam/internal/model"
	"geocam/internal/repository/sqlite"
	"geocam/internal/service/capture"
	"geocam/internal/service/permission"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

type stubDevices struct{}

func (stubDevices) Feed(model.Facing, []byte)   {}
func (stubDevices) Connect(model.Facing)        {}
func (stubDevices) Disconnect(model.Facing)     {}
func (stubDevices) Connected(model.Facing) bool { return false }
func (stubDevices) Register(*websocket.Conn)    {}
func (stubDevices) Unregister(*websocket.Conn)  {}

type stubCamera struct{}

func (stubCamera) TakePicture(ctx context.Context) (model.Shot, error) {
	return model.Shot{URI: "file:///tmp/shot.jpg"}, nil
}

type stubLocator struct{}

func (stubLocator) ResolveCurrentLocality(ctx context.Context) (model.Place, error) {
	return model.Place{Locality: "Lisbon", Latitude: 38.72, Longitude: -9.14}, nil
}

func setupRouter(t *testing.T, passwordHash string) (http.Handler, *Navigator) {
	t.Helper()
	return setupRouterWith(t, passwordHash, nil)
}

func setupRouterWith(t *testing.T, passwordHash string, adjust func(*Services)) (http.Handler, *Navigator) {
	t.Helper()

	staticDir := t.TempDir()
	for _, page := range []string{"home", "gallery", "login"} {
		if err := os.WriteFile(filepath.Join(staticDir, page+".html"), []byte("<h1>"+page+"</h1>"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := &config.Config{
		StaticDir:      staticDir,
		LogDirectory:   t.TempDir(),
		ImageDirectory: t.TempDir(),
		PasswordHash:   passwordHash,
	}
	l := logger.NewLogger(cfg)
	t.Cleanup(func() { l.Close() })

	db, err := sqlite.New(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	photos := sqlite.NewPhotoRepository(db)

	registry, err := permission.NewRegistry("granted", "granted")
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	svc := Services{
		Pipeline: capture.NewPipeline(stubCamera{}, stubLocator{}, photos, nil, l, capture.Options{}),
		Gate:     permission.NewGate(registry, l),
		Registry: registry,
		Devices:  stubDevices{},
		Viewers:  stubDevices{},
		Photos:   photos,
	}
	if adjust != nil {
		adjust(&svc)
	}
	return SetupRoutes(cfg, l, svc)
}

func TestNavigator(t *testing.T) {
	_, navigator := setupRouter(t, "")

	tests := []struct {
		screen  Screen
		want    string
		wantErr bool
	}{
		{Home, "/", false},
		{Gallery, "/gallery", false},
		{Screen("Settings"), "", true},
	}

	for _, tt := range tests {
		got, err := navigator.URL(tt.screen)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("URL(%s) = %q, %v", tt.screen, got, err)
		}
	}
}

func TestNavigateRedirects(t *testing.T) {
	router, _ := setupRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigate/Gallery", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/gallery" {
		t.Errorf("Expected redirect to /gallery, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigate/Nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestScreensServed(t *testing.T) {
	router, _ := setupRouter(t, "")

	for path, want := range map[string]string{"/": "<h1>home</h1>", "/gallery": "<h1>gallery</h1>"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), want) {
			t.Errorf("%s: unexpected response %d %q", path, rec.Code, rec.Body)
		}
	}
}

func TestCaptureThenList(t *testing.T) {
	router, _ := setupRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/capture", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"city":"Lisbon"`) {
		t.Errorf("Expected the captured photo in the gallery, got %d %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/capture", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /api/capture, got %d", rec.Code)
	}
}

func TestAuthRequiredWhenPasswordSet(t *testing.T) {
	router, _ := setupRouter(t, "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected login page to be public, got %d", rec.Code)
	}
}

func TestLoginSessionFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	router, _ := setupRouter(t, string(hash))

	// A hand-made cookie is not a session.
	req := httptest.NewRequest(http.MethodPost, "/api/permissions", strings.NewReader(`{"permission":"camera","status":"denied"}`))
	req.AddCookie(&http.Cookie{Name: handler.AuthCookie, Value: "true"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for a forged cookie, got %d", rec.Code)
	}

	form := url.Values{"password": {"secret"}}
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	cookies := rec.Result().Cookies()
	if rec.Code != http.StatusSeeOther || len(cookies) == 0 {
		t.Fatalf("Expected login redirect with a cookie, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with the issued session, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", rec.Code)
	}
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	router, _ := setupRouterWith(t, "", func(svc *Services) {
		svc.Photos = nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos/cities", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Errorf("Expected recovered 500, got %d %q", rec.Code, rec.Body)
	}
}
