package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port         int
	CamerasPort  int
	PasswordHash string // bcrypt; PASSWORD_HASH wins over a plain PASSWORD

	DatabasePath   string
	ImageDirectory string
	LogDirectory   string
	StaticDir      string
	ResetOnStart   bool

	CameraPermission   string // granted | denied | prompt-granted | prompt-denied
	LocationPermission string
	FrameTimeout       time.Duration
	JPEGQuality        int

	LocationSource  string // device | static
	StaticLatitude  float64
	StaticLongitude float64
	FixTimeout      time.Duration
	MaxFixAge       time.Duration

	Geocoder        string // nominatim | gazetteer | none
	NominatimURL    string
	NominatimAgent  string
	GeocoderTimeout time.Duration
	GazetteerPath   string

	ExportBackend   string // directory | minio | none
	MediaLibraryDir string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	CaptureCancellable bool
	RecentPictures     int // how many captures the Home screen keeps in memory
}

func Load() *Config {
	return &Config{
		Port:         getEnvAsInt("PORT", 8080),
		CamerasPort:  getEnvAsInt("CAMERAS_PORT", 8081),
		PasswordHash: passwordHash(),

		DatabasePath:   getEnv("DB_PATH", filepath.Join(".", "data", "gallery.db")),
		ImageDirectory: getEnv("IMAGE_DIR", filepath.Join(".", "images")),
		LogDirectory:   getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDir:      getEnv("STATIC_DIR", "static"),
		ResetOnStart:   getEnvAsBool("RESET_ON_START", false),

		CameraPermission:   getEnv("CAMERA_PERMISSION", "prompt-granted"),
		LocationPermission: getEnv("LOCATION_PERMISSION", "prompt-granted"),
		FrameTimeout:       getEnvAsDuration("FRAME_TIMEOUT", 5*time.Second),
		JPEGQuality:        getEnvAsInt("JPEG_QUALITY", 90),

		LocationSource:  getEnv("LOCATION_SOURCE", "device"),
		StaticLatitude:  getEnvAsFloat("STATIC_LATITUDE", 0),
		StaticLongitude: getEnvAsFloat("STATIC_LONGITUDE", 0),
		FixTimeout:      getEnvAsDuration("FIX_TIMEOUT", 10*time.Second),
		MaxFixAge:       getEnvAsDuration("MAX_FIX_AGE", time.Minute),

		Geocoder:        getEnv("GEOCODER", "nominatim"),
		NominatimURL:    getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimAgent:  getEnv("NOMINATIM_USER_AGENT", "geocam/1.0"),
		GeocoderTimeout: getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
		GazetteerPath:   getEnv("GAZETTEER_PATH", filepath.Join(".", "data", "places.yaml")),

		ExportBackend:   getEnv("EXPORT_BACKEND", "directory"),
		MediaLibraryDir: getEnv("MEDIA_LIBRARY_DIR", filepath.Join(".", "media")),
		MinioEndpoint:   getEnv("MINIO_HOST", "localhost:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:     getEnv("MINIO_BUCKET", "gallery"),
		MinioUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),

		CaptureCancellable: getEnvAsBool("CAPTURE_CANCELLABLE", false),
		RecentPictures:     getEnvAsInt("RECENT_PICTURES", 20),
	}
}

// passwordHash returns PASSWORD_HASH, or hashes PASSWORD. Empty disables login.
func passwordHash() string {
	if hash := os.Getenv("PASSWORD_HASH"); hash != "" {
		return hash
	}
	plain := os.Getenv("PASSWORD")
	if plain == "" {
		return ""
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hash)
}

// CheckPassword reports whether password matches the configured hash.
func (c *Config) CheckPassword(password string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
