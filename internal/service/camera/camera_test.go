package camera

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"geocam/internal/config"
	"geocam/internal/logger"
	"geocam/internal/model"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	t.Cleanup(func() { l.Close() })
	return l
}

type fakeProcessor struct {
	mirrored []bool
	err      error
}

func (p *fakeProcessor) Normalize(frame []byte, mirror bool) ([]byte, error) {
	p.mirrored = append(p.mirrored, mirror)
	if p.err != nil {
		return nil, p.err
	}
	return append([]byte("jpeg:"), frame...), nil
}

func TestFrameCamera_TakePicture(t *testing.T) {
	dir := t.TempDir()
	proc := &fakeProcessor{}
	cam := NewFrameCamera(dir, proc, time.Second, testLogger(t))

	cam.Feed(model.FacingBack, []byte("frame-1"))

	shot, err := cam.TakePicture(context.Background())
	if err != nil {
		t.Fatalf("TakePicture failed: %v", err)
	}
	if !strings.HasPrefix(shot.URI, "file://") {
		t.Errorf("Expected file URI, got %s", shot.URI)
	}

	path, err := model.LocalPath(shot.URI)
	if err != nil {
		t.Fatalf("LocalPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected saved picture: %v", err)
	}
	if !bytes.Equal(data, []byte("jpeg:frame-1")) {
		t.Errorf("Unexpected picture content %q", data)
	}
	if len(proc.mirrored) != 1 || proc.mirrored[0] {
		t.Errorf("Back camera must not be mirrored: %v", proc.mirrored)
	}
}

func TestFrameCamera_FrontFacingIsMirrored(t *testing.T) {
	proc := &fakeProcessor{}
	cam := NewFrameCamera(t.TempDir(), proc, time.Second, testLogger(t))

	if got := cam.SwitchFacing(); got != model.FacingFront {
		t.Fatalf("Expected front facing, got %s", got)
	}
	cam.Feed(model.FacingBack, []byte("back"))
	cam.Feed(model.FacingFront, []byte("front"))

	if _, err := cam.TakePicture(context.Background()); err != nil {
		t.Fatalf("TakePicture failed: %v", err)
	}
	if len(proc.mirrored) != 1 || !proc.mirrored[0] {
		t.Errorf("Front camera should be mirrored: %v", proc.mirrored)
	}
}

func TestFrameCamera_WaitsForFrame(t *testing.T) {
	cam := NewFrameCamera(t.TempDir(), &fakeProcessor{}, time.Second, testLogger(t))

	go func() {
		time.Sleep(10 * time.Millisecond)
		cam.Feed(model.FacingBack, []byte("late"))
	}()

	if _, err := cam.TakePicture(context.Background()); err != nil {
		t.Fatalf("TakePicture failed: %v", err)
	}
}

func TestFrameCamera_NoFrame(t *testing.T) {
	cam := NewFrameCamera(t.TempDir(), &fakeProcessor{}, 20*time.Millisecond, testLogger(t))
	cam.Feed(model.FacingFront, []byte("wrong feed"))

	_, err := cam.TakePicture(context.Background())
	if !errors.Is(err, ErrNoFrame) {
		t.Errorf("Expected ErrNoFrame, got %v", err)
	}
}

func TestFrameCamera_ProcessorError(t *testing.T) {
	cam := NewFrameCamera(t.TempDir(), &fakeProcessor{err: errors.New("corrupt")}, time.Second, testLogger(t))
	cam.Feed(model.FacingBack, []byte("x"))

	if _, err := cam.TakePicture(context.Background()); err == nil {
		t.Error("Expected processor error")
	}
}

func TestFrameCamera_Connected(t *testing.T) {
	cam := NewFrameCamera(t.TempDir(), &fakeProcessor{}, time.Second, testLogger(t))

	cam.Connect(model.FacingBack)
	if !cam.Connected(model.FacingBack) || cam.Connected(model.FacingFront) {
		t.Error("Unexpected connection state")
	}
	cam.Disconnect(model.FacingBack)
	cam.Disconnect(model.FacingBack)
	if cam.Connected(model.FacingBack) {
		t.Error("Expected back feed to be disconnected")
	}
}
