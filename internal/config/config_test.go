package config

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "RESET_ON_START", "GEOCODER", "EXPORT_BACKEND", "CAPTURE_CANCELLABLE", "PASSWORD", "PASSWORD_HASH"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.ResetOnStart {
		t.Error("Startup reset must be off by default")
	}
	if cfg.CaptureCancellable {
		t.Error("Captures must not be cancellable by default")
	}
	if cfg.Geocoder != "nominatim" || cfg.ExportBackend != "directory" {
		t.Errorf("Unexpected backends %q, %q", cfg.Geocoder, cfg.ExportBackend)
	}
	if cfg.PasswordHash != "" {
		t.Error("Expected no password hash")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RESET_ON_START", "true")
	t.Setenv("FIX_TIMEOUT", "3s")
	t.Setenv("STATIC_LATITUDE", "48.85")
	t.Setenv("RECENT_PICTURES", "not-a-number")

	cfg := Load()
	if cfg.Port != 9090 || !cfg.ResetOnStart {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.FixTimeout != 3*time.Second {
		t.Errorf("Expected 3s fix timeout, got %s", cfg.FixTimeout)
	}
	if cfg.StaticLatitude != 48.85 {
		t.Errorf("Expected 48.85, got %v", cfg.StaticLatitude)
	}
	if cfg.RecentPictures != 20 {
		t.Errorf("Expected default for invalid value, got %d", cfg.RecentPictures)
	}
}

func TestCheckPassword(t *testing.T) {
	t.Setenv("PASSWORD_HASH", "")
	t.Setenv("PASSWORD", "secret")

	cfg := Load()
	if !cfg.CheckPassword("secret") {
		t.Error("Expected password to match")
	}
	if cfg.CheckPassword("wrong") {
		t.Error("Expected wrong password to fail")
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("other"), bcrypt.MinCost)
	t.Setenv("PASSWORD_HASH", string(hash))
	if !Load().CheckPassword("other") {
		t.Error("Expected PASSWORD_HASH to win over PASSWORD")
	}

	if (&Config{}).CheckPassword("") {
		t.Error("Empty hash must reject every password")
	}
}
