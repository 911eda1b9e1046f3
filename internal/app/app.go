package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geocam/internal/config"
	"geocam/internal/handler"
	"geocam/internal/logger"
	"geocam/internal/repository/sqlite"
	"geocam/internal/route"
	"geocam/internal/service/camera"
	"geocam/internal/service/capture"
	"geocam/internal/service/gallery"
	"geocam/internal/service/imaging"
	"geocam/internal/service/location"
	"geocam/internal/service/permission"
	"geocam/internal/service/websocket"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	photos   *sqlite.PhotoRepository
	registry *permission.Registry
	gate     *permission.Gate
	camera   *camera.FrameCamera
	fixes    *location.DeviceProvider
	hub      *websocket.HubService
	pipeline *capture.Pipeline
}

// NewApp wires the capture station from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	photos := sqlite.NewPhotoRepository(db)

	if cfg.ResetOnStart {
		log.Warning("RESET_ON_START is set, dropping stored photos")
		if err := photos.ResetSchema(ctx); err != nil {
			db.Close()
			log.Close()
			return nil, err
		}
	}

	registry, err := permission.NewRegistry(cfg.CameraPermission, cfg.LocationPermission)
	if err != nil {
		db.Close()
		log.Close()
		return nil, err
	}
	gate := permission.NewGate(registry, log)

	a := &App{
		config:   cfg,
		logger:   log,
		db:       db,
		photos:   photos,
		registry: registry,
		gate:     gate,
		camera:   camera.NewFrameCamera(cfg.ImageDirectory, imaging.NewProcessor(cfg.JPEGQuality), cfg.FrameTimeout, log),
		hub:      websocket.NewHubService(log),
	}

	var provider location.PositionProvider
	switch cfg.LocationSource {
	case "static":
		provider = location.StaticProvider{Latitude: cfg.StaticLatitude, Longitude: cfg.StaticLongitude}
	case "device", "":
		a.fixes = location.NewDeviceProvider(cfg.MaxFixAge)
		provider = a.fixes
	default:
		a.Close()
		return nil, fmt.Errorf("unknown location source %q", cfg.LocationSource)
	}

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	resolver := location.NewResolver(gate, provider, geocoder, cfg.FixTimeout, log)
	a.pipeline = capture.NewPipeline(a.camera, resolver, photos, exporter, log, capture.Options{
		Cancellable:    cfg.CaptureCancellable,
		RecentPictures: cfg.RecentPictures,
		OnTransition:   a.publishTransition,
	})

	return a, nil
}

func newGeocoder(cfg *config.Config) (location.Geocoder, error) {
	switch cfg.Geocoder {
	case "nominatim", "":
		return location.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimAgent, cfg.GeocoderTimeout), nil
	case "gazetteer":
		return location.LoadGazetteer(cfg.GazetteerPath)
	case "none":
		return location.NoopGeocoder{}, nil
	}
	return nil, fmt.Errorf("unknown geocoder %q", cfg.Geocoder)
}

func newExporter(ctx context.Context, cfg *config.Config) (capture.Exporter, error) {
	switch cfg.ExportBackend {
	case "directory", "":
		return gallery.NewDirectoryExporter(cfg.MediaLibraryDir), nil
	case "minio":
		exporter, err := gallery.NewMinioExporter(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return exporter, nil
	case "none":
		return gallery.NoopExporter{}, nil
	}
	return nil, fmt.Errorf("unknown export backend %q", cfg.ExportBackend)
}

// publishTransition pushes every pipeline step to the viewers, and the
// refreshed screen state once a capture finishes.
func (a *App) publishTransition(t capture.Transition) {
	a.hub.Publish("transition", t)
	if t.To == capture.Done || t.To == capture.Errored {
		a.hub.Publish("state", a.pipeline.Snapshot())
	}
}

// Run serves HTTP and the UDP camera feed until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run()
	defer a.hub.Stop()

	go handler.UDPCameraHandler(ctx, a.camera, a.logger, a.config.CamerasPort)

	var fixes handler.FixSink
	if a.fixes != nil {
		fixes = a.fixes
	}
	router, _ := route.SetupRoutes(a.config, a.logger, route.Services{
		Pipeline: a.pipeline,
		Gate:     a.gate,
		Registry: a.registry,
		Devices:  a.camera,
		Fixes:    fixes,
		Viewers:  a.hub,
		Photos:   a.photos,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("📷 Geocam Capture Station\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🗄️  Database: %s\n", a.config.DatabasePath)
	fmt.Printf("📁 Images: %s\n", a.config.ImageDirectory)
	fmt.Printf("🖼️  Export: %s\n", a.config.ExportBackend)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Close releases the database and log files.
func (a *App) Close() error {
	err := a.db.Close()
	if cerr := a.logger.Close(); err == nil {
		err = cerr
	}
	return err
}
