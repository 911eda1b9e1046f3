package permission

import (
	"context"
	"errors"
	"testing"

	"geocam/internal/config"
	"geocam/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	t.Cleanup(func() { l.Close() })
	return l
}

type failingPlatform struct{}

func (failingPlatform) Request(context.Context, Kind) (Status, error) {
	return Undetermined, errors.New("consent dialog crashed")
}

func (failingPlatform) Status(Kind) Status { return Undetermined }

func TestRegistry_Policies(t *testing.T) {
	tests := []struct {
		policy  string
		initial Status
		after   Status
	}{
		{"granted", Granted, Granted},
		{"denied", Denied, Denied},
		{"prompt-granted", Undetermined, Granted},
		{"prompt-denied", Undetermined, Denied},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			r, err := NewRegistry(tt.policy, tt.policy)
			if err != nil {
				t.Fatalf("NewRegistry failed: %v", err)
			}
			if got := r.Status(Location); got != tt.initial {
				t.Errorf("Expected initial %s, got %s", tt.initial, got)
			}
			got, err := r.Request(context.Background(), Location)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			if got != tt.after {
				t.Errorf("Expected %s after request, got %s", tt.after, got)
			}
			if r.Status(Location) != tt.after {
				t.Error("Expected decision to be recorded")
			}
		})
	}
}

func TestRegistry_UnknownPolicy(t *testing.T) {
	if _, err := NewRegistry("maybe", "granted"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestRegistry_Revocation(t *testing.T) {
	r, err := NewRegistry("granted", "granted")
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	gate := NewGate(r, testLogger(t))
	ctx := context.Background()

	if !gate.RequestLocationAccess(ctx) {
		t.Fatal("Expected location access")
	}

	r.Set(Location, Denied)
	if gate.RequestLocationAccess(ctx) {
		t.Error("Expected revoked location access to be denied")
	}
	if !gate.RequestCameraAccess(ctx) {
		t.Error("Camera access should be unaffected")
	}

	snap := r.Snapshot()
	if snap["location"] != Denied || snap["camera"] != Granted {
		t.Errorf("Unexpected snapshot: %v", snap)
	}
}

func TestGate_PlatformErrorIsDenial(t *testing.T) {
	gate := NewGate(failingPlatform{}, testLogger(t))

	if gate.RequestCameraAccess(context.Background()) {
		t.Error("Expected platform error to deny camera access")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("location"); err != nil || k != Location {
		t.Errorf("Expected Location, got %v, %v", k, err)
	}
	if _, err := ParseKind("microphone"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"granted", Granted, false},
		{"denied", Denied, false},
		{"undetermined", Undetermined, false},
		{"maybe", Undetermined, true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, %v", tt.in, got, err)
		}
	}
}
