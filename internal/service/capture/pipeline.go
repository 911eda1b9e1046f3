package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"geocam/internal/logger"
	"geocam/internal/model"
	"geocam/internal/service/location"
)

// Camera produces a raw photo reference.
type Camera interface {
	TakePicture(ctx context.Context) (model.Shot, error)
}

// FacingSwitcher is implemented by cameras with a front and a back sensor.
type FacingSwitcher interface {
	Facing() model.Facing
	SwitchFacing() model.Facing
}

// LocationResolver resolves the current place of the device.
type LocationResolver interface {
	ResolveCurrentLocality(ctx context.Context) (model.Place, error)
}

// PhotoStore persists capture records.
type PhotoStore interface {
	Insert(ctx context.Context, in model.PhotoInput) (*model.Photo, error)
}

// Exporter copies an image into the shared media library.
type Exporter interface {
	Export(ctx context.Context, imageRef string) (model.Asset, error)
}

type Options struct {
	// Cancellable makes captures honour context cancellation at every stage.
	// By default a started capture runs to completion.
	Cancellable bool
	// RecentPictures bounds the in-memory list of captured pictures.
	RecentPictures int
	// OnTransition is called after every state change, outside the pipeline lock.
	OnTransition func(Transition)
}

// ScreenState is the in-memory state the Home screen renders.
type ScreenState struct {
	State       State         `json:"state"`
	FailedStage State         `json:"failedStage,omitempty"`
	LastError   string        `json:"lastError,omitempty"`
	LastImage   string        `json:"lastImage,omitempty"`
	LastAsset   *model.Asset  `json:"lastAsset,omitempty"`
	Facing      model.Facing  `json:"facing"`
	Pictures    []model.Photo `json:"pictures"`
}

// Pipeline runs one capture at a time: take photo, resolve location,
// persist the record, export to the media library, update screen state.
type Pipeline struct {
	camera   Camera
	locator  LocationResolver
	store    PhotoStore
	exporter Exporter
	logger   *logger.Logger

	cancellable bool
	recent      int
	observer    func(Transition)

	mu          sync.Mutex
	state       State
	failedStage State
	lastErr     error
	lastImage   string
	lastAsset   *model.Asset
	pictures    []model.Photo
}

// NewPipeline wires the capture stages. exporter may be nil to skip the export step.
func NewPipeline(camera Camera, locator LocationResolver, store PhotoStore, exporter Exporter, logger *logger.Logger, opts Options) *Pipeline {
	recent := opts.RecentPictures
	if recent <= 0 {
		recent = 20
	}
	return &Pipeline{
		camera:      camera,
		locator:     locator,
		store:       store,
		exporter:    exporter,
		logger:      logger,
		cancellable: opts.Cancellable,
		recent:      recent,
		observer:    opts.OnTransition,
		state:       Idle,
	}
}

// OnCapture runs a full capture. It returns ErrBusy if another capture is in flight,
// a *PipelineError for camera or store failures, and the persisted record otherwise.
func (p *Pipeline) OnCapture(ctx context.Context) (*model.Photo, error) {
	if !p.begin() {
		return nil, ErrBusy
	}
	if !p.cancellable {
		ctx = context.WithoutCancel(ctx)
	}

	shot, err := p.camera.TakePicture(ctx)
	if err == nil && strings.TrimSpace(shot.URI) == "" {
		err = errors.New("camera returned an empty image reference")
	}
	if err != nil {
		return nil, p.fail(Capturing, fmt.Errorf("%w: %v", ErrCameraFault, err))
	}
	if err := ctx.Err(); err != nil {
		p.discardShot(shot.URI)
		return nil, p.fail(Capturing, err)
	}

	p.transition(LocationResolving)
	place := p.resolvePlace(ctx)
	if err := ctx.Err(); err != nil {
		p.discardShot(shot.URI)
		return nil, p.fail(LocationResolving, err)
	}

	p.transition(Persisting)
	photo, err := p.store.Insert(ctx, model.PhotoInput{
		ImageRef:  shot.URI,
		Locality:  place.Locality,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
	})
	if err != nil {
		return nil, p.fail(Persisting, err)
	}
	p.logger.Info("💾 Photo %d stored (%s, %.5f, %.5f)", photo.ID, photo.Locality, photo.Latitude, photo.Longitude)

	p.transition(Exporting)
	asset := p.export(ctx, photo.ImageRef)

	p.finish(*photo, asset)
	return photo, nil
}

// resolvePlace never fails: location is advisory and degrades to the sentinel place.
func (p *Pipeline) resolvePlace(ctx context.Context) model.Place {
	place, err := p.locator.ResolveCurrentLocality(ctx)
	switch {
	case err == nil:
	case errors.Is(err, location.ErrPermissionDenied):
		p.logger.Info("Location permission denied, storing photo without location")
		place = location.FallbackPlace()
	default:
		p.logger.Warning("Location unavailable, storing photo without location: %v", err)
		place = location.FallbackPlace()
	}
	if strings.TrimSpace(place.Locality) == "" {
		place.Locality = location.UnknownLocality
	}
	return place
}

// discardShot removes the image of a capture that was cancelled before it was stored.
func (p *Pipeline) discardShot(imageRef string) {
	path, err := model.LocalPath(imageRef)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warning("Could not remove cancelled shot %s: %v", path, err)
	}
}

// export is best effort; a failure leaves the stored record untouched.
func (p *Pipeline) export(ctx context.Context, imageRef string) *model.Asset {
	if p.exporter == nil {
		return nil
	}
	asset, err := p.exporter.Export(ctx, imageRef)
	if err != nil {
		p.logger.Warning("Saving %s to the gallery failed: %v", imageRef, err)
		return nil
	}
	p.logger.Info("🖼️  Image saved to gallery: %s", asset.URI)
	return &asset
}

// Snapshot returns a copy of the screen state.
func (p *Pipeline) Snapshot() ScreenState {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := ScreenState{
		State:     p.state,
		LastImage: p.lastImage,
		Pictures:  append([]model.Photo(nil), p.pictures...),
	}
	if p.lastAsset != nil {
		asset := *p.lastAsset
		s.LastAsset = &asset
	}
	if p.state == Errored {
		s.FailedStage = p.failedStage
		if p.lastErr != nil {
			s.LastError = p.lastErr.Error()
		}
	}
	if s.Pictures == nil {
		s.Pictures = []model.Photo{}
	}
	if fs, ok := p.camera.(FacingSwitcher); ok {
		s.Facing = fs.Facing()
	}
	return s
}

// SwitchFacing toggles between the back and front camera. Cameras with a
// single sensor keep facing back.
func (p *Pipeline) SwitchFacing() model.Facing {
	fs, ok := p.camera.(FacingSwitcher)
	if !ok {
		return model.FacingBack
	}
	facing := fs.SwitchFacing()
	p.logger.Info("📷 Camera switched to %s", facing)
	return facing
}

// begin claims the single capture slot.
func (p *Pipeline) begin() bool {
	p.mu.Lock()
	if !p.state.accepting() {
		p.mu.Unlock()
		return false
	}
	from := p.state
	p.state = Capturing
	p.lastErr = nil
	p.mu.Unlock()

	p.notify(Transition{From: from, To: Capturing})
	return true
}

func (p *Pipeline) transition(to State) {
	p.mu.Lock()
	from := p.state
	p.state = to
	p.mu.Unlock()

	p.notify(Transition{From: from, To: to})
}

func (p *Pipeline) fail(stage State, err error) error {
	pipelineErr := &PipelineError{Stage: stage, Err: err}

	p.mu.Lock()
	from := p.state
	p.state = Errored
	p.failedStage = stage
	p.lastErr = pipelineErr
	p.mu.Unlock()

	p.logger.Error("Capture failed: %v", pipelineErr)
	p.notify(Transition{From: from, To: Errored, Stage: stage, Error: err.Error()})
	return pipelineErr
}

func (p *Pipeline) finish(photo model.Photo, asset *model.Asset) {
	p.mu.Lock()
	from := p.state
	p.state = Done
	p.lastImage = photo.ImageRef
	p.lastAsset = asset
	p.pictures = append([]model.Photo{photo}, p.pictures...)
	if len(p.pictures) > p.recent {
		p.pictures = p.pictures[:p.recent]
	}
	p.mu.Unlock()

	p.notify(Transition{From: from, To: Done})
}

func (p *Pipeline) notify(t Transition) {
	if p.observer != nil {
		p.observer(t)
	}
}
