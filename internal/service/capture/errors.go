package capture

import (
	"errors"
	"fmt"
)

var (
	ErrBusy        = errors.New("a capture is already in progress")
	ErrCameraFault = errors.New("camera fault")
)

// PipelineError reports the stage at which a capture failed.
type PipelineError struct {
	Stage State
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("capture failed while %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
