package location

import (
	"context"
	"sync"
	"time"
)

// DeviceProvider serves position fixes streamed by the camera device.
type DeviceProvider struct {
	mu      sync.Mutex
	latest  *Fix
	updated chan struct{}
	maxAge  time.Duration
	now     func() time.Time
}

// NewDeviceProvider accepts fixes no older than maxAge. Zero accepts any age.
func NewDeviceProvider(maxAge time.Duration) *DeviceProvider {
	return &DeviceProvider{
		updated: make(chan struct{}),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Update records a new fix and wakes waiting callers.
func (p *DeviceProvider) Update(fix Fix) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fix.Timestamp.IsZero() {
		fix.Timestamp = p.now()
	}
	p.latest = &fix
	close(p.updated)
	p.updated = make(chan struct{})
}

// CurrentPosition returns a fresh fix, waiting for the device if needed.
func (p *DeviceProvider) CurrentPosition(ctx context.Context) (Fix, error) {
	for {
		p.mu.Lock()
		if p.latest != nil && (p.maxAge <= 0 || p.now().Sub(p.latest.Timestamp) <= p.maxAge) {
			fix := *p.latest
			p.mu.Unlock()
			return fix, nil
		}
		wait := p.updated
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return Fix{}, ctx.Err()
		}
	}
}

// StaticProvider always reports the same coordinates.
type StaticProvider struct {
	Latitude  float64
	Longitude float64
}

func (p StaticProvider) CurrentPosition(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	return Fix{Latitude: p.Latitude, Longitude: p.Longitude, Timestamp: time.Now()}, nil
}
