package model

import "fmt"

// Facing selects which camera feed a capture uses.
type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

func (f Facing) String() string {
	switch f {
	case FacingFront:
		return "front"
	default:
		return "back"
	}
}

// Toggle returns the opposite facing.
func (f Facing) Toggle() Facing {
	if f == FacingFront {
		return FacingBack
	}
	return FacingFront
}

// ParseFacing accepts "back" or "front"; empty means back.
func ParseFacing(s string) (Facing, error) {
	switch s {
	case "", "back":
		return FacingBack, nil
	case "front":
		return FacingFront, nil
	}
	return FacingBack, fmt.Errorf("unknown camera facing %q", s)
}

func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
