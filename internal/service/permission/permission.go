package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"geocam/internal/logger"
)

// ErrCameraDenied is reported when a capture is attempted without camera access.
var ErrCameraDenied = errors.New("camera permission denied")

type Kind int

const (
	Camera Kind = iota
	Location
)

func (k Kind) String() string {
	if k == Location {
		return "location"
	}
	return "camera"
}

// ParseKind accepts "camera" or "location".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "camera":
		return Camera, nil
	case "location":
		return Location, nil
	}
	return Camera, fmt.Errorf("unknown permission %q", s)
}

type Status int

const (
	Undetermined Status = iota
	Granted
	Denied
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "undetermined"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus accepts the names produced by String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "granted":
		return Granted, nil
	case "denied":
		return Denied, nil
	case "undetermined":
		return Undetermined, nil
	}
	return Undetermined, fmt.Errorf("unknown permission status %q", s)
}

// Platform is the host consent system.
type Platform interface {
	// Request prompts for consent if the kind is still undetermined.
	Request(ctx context.Context, kind Kind) (Status, error)
	Status(kind Kind) Status
}

// Registry records consent decisions for the process lifetime.
// Decisions come from the device feed or from the configured prompt answer.
type Registry struct {
	mu       sync.RWMutex
	statuses map[Kind]Status
	answers  map[Kind]Status
}

// NewRegistry builds a registry from policy strings:
// "granted" / "denied" are decided up front, "prompt-granted" / "prompt-denied"
// stay undetermined until the first request answers them.
func NewRegistry(cameraPolicy, locationPolicy string) (*Registry, error) {
	r := &Registry{
		statuses: make(map[Kind]Status),
		answers:  make(map[Kind]Status),
	}
	for kind, policy := range map[Kind]string{Camera: cameraPolicy, Location: locationPolicy} {
		switch policy {
		case "granted":
			r.statuses[kind] = Granted
		case "denied":
			r.statuses[kind] = Denied
		case "prompt-granted", "":
			r.answers[kind] = Granted
		case "prompt-denied":
			r.answers[kind] = Denied
		default:
			return nil, fmt.Errorf("unknown %s permission policy %q", kind, policy)
		}
	}
	return r, nil
}

func (r *Registry) Request(ctx context.Context, kind Kind) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Undetermined, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if status := r.statuses[kind]; status != Undetermined {
		return status, nil
	}
	answer, ok := r.answers[kind]
	if !ok {
		answer = Denied
	}
	r.statuses[kind] = answer
	return answer, nil
}

func (r *Registry) Status(kind Kind) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statuses[kind]
}

// Set records a decision made on the device, including a later revocation.
func (r *Registry) Set(kind Kind, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[kind] = status
}

// Snapshot returns the current decision for every kind.
func (r *Registry) Snapshot() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]Status{
		Camera.String():   r.statuses[Camera],
		Location.String(): r.statuses[Location],
	}
}

// Gate acquires camera and location authorization before a capture.
type Gate struct {
	platform Platform
	logger   *logger.Logger
}

func NewGate(platform Platform, logger *logger.Logger) *Gate {
	return &Gate{platform: platform, logger: logger}
}

func (g *Gate) RequestCameraAccess(ctx context.Context) bool {
	return g.request(ctx, Camera)
}

func (g *Gate) RequestLocationAccess(ctx context.Context) bool {
	return g.request(ctx, Location)
}

// request treats platform errors as denial.
func (g *Gate) request(ctx context.Context, kind Kind) bool {
	status, err := g.platform.Request(ctx, kind)
	if err != nil {
		g.logger.Warning("%s permission request failed: %v", kind, err)
		return false
	}
	if status != Granted {
		g.logger.Info("%s permission denied", kind)
		return false
	}
	return true
}
