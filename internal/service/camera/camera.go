package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"geocam/internal/logger"
	"geocam/internal/model"

	"github.com/google/uuid"
)

var ErrNoFrame = errors.New("no frame from camera device")

// FrameProcessor turns a raw device frame into the stored image bytes.
type FrameProcessor interface {
	Normalize(frame []byte, mirror bool) ([]byte, error)
}

type frame struct {
	data       []byte
	receivedAt time.Time
}

// FrameCamera captures stills from frames streamed by the connected camera devices,
// one feed per facing.
type FrameCamera struct {
	mu        sync.Mutex
	frames    map[model.Facing]frame
	updated   chan struct{}
	facing    model.Facing
	connected map[model.Facing]int

	imagesDir    string
	processor    FrameProcessor
	frameTimeout time.Duration
	maxFrameAge  time.Duration
	logger       *logger.Logger
}

func NewFrameCamera(imagesDir string, processor FrameProcessor, frameTimeout time.Duration, logger *logger.Logger) *FrameCamera {
	return &FrameCamera{
		frames:       make(map[model.Facing]frame),
		updated:      make(chan struct{}),
		connected:    make(map[model.Facing]int),
		imagesDir:    imagesDir,
		processor:    processor,
		frameTimeout: frameTimeout,
		maxFrameAge:  2 * time.Second,
		logger:       logger,
	}
}

// Feed stores the latest frame of a device and wakes a waiting capture.
func (c *FrameCamera) Feed(facing model.Facing, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames[facing] = frame{data: buf, receivedAt: time.Now()}
	close(c.updated)
	c.updated = make(chan struct{})
}

// Connect and Disconnect track device feeds for the screen state.
func (c *FrameCamera) Connect(facing model.Facing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected[facing]++
}

func (c *FrameCamera) Disconnect(facing model.Facing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected[facing] > 0 {
		c.connected[facing]--
	}
}

// Connected reports whether a device streams the given facing.
func (c *FrameCamera) Connected(facing model.Facing) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected[facing] > 0
}

func (c *FrameCamera) Facing() model.Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// SwitchFacing toggles between the back and front feeds and returns the new facing.
func (c *FrameCamera) SwitchFacing() model.Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facing = c.facing.Toggle()
	return c.facing
}

// TakePicture saves the current frame of the active facing into the image directory.
func (c *FrameCamera) TakePicture(ctx context.Context) (model.Shot, error) {
	facing := c.Facing()

	waitCtx := ctx
	if c.frameTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.frameTimeout)
		defer cancel()
	}

	raw, err := c.awaitFrame(waitCtx, facing)
	if err != nil {
		return model.Shot{}, err
	}

	data, err := c.processor.Normalize(raw, facing == model.FacingFront)
	if err != nil {
		return model.Shot{}, fmt.Errorf("failed to process %s frame: %w", facing, err)
	}

	if err := os.MkdirAll(c.imagesDir, 0755); err != nil {
		return model.Shot{}, fmt.Errorf("failed to create image directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.jpg", time.Now().Format("2006-01-02_15-04-05"), facing, uuid.NewString())
	fullpath := filepath.Join(c.imagesDir, filename)
	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return model.Shot{}, fmt.Errorf("failed to save picture %s: %w", filename, err)
	}

	c.logger.Info("📸 Saved %s picture %s (%d bytes)", facing, filename, len(data))
	return model.Shot{URI: model.FileURI(fullpath)}, nil
}

// awaitFrame returns a recent frame for facing, waiting for the device if needed.
func (c *FrameCamera) awaitFrame(ctx context.Context, facing model.Facing) ([]byte, error) {
	for {
		c.mu.Lock()
		f, ok := c.frames[facing]
		if ok && time.Since(f.receivedAt) <= c.maxFrameAge {
			c.mu.Unlock()
			return f.data, nil
		}
		wait := c.updated
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (%s): %v", ErrNoFrame, facing, ctx.Err())
		}
	}
}
