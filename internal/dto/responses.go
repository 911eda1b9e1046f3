package dto

import (
	"geocam/internal/service/capture"
	"geocam/internal/service/permission"
)

// ErrorResponse is the JSON body of a failed API call.
// Stage is set when a capture failed inside the pipeline.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// ScreenData is what the Home screen polls from /api/state.
type ScreenData struct {
	capture.ScreenState
	Permissions map[string]permission.Status `json:"permissions"`
	Devices     map[string]bool              `json:"devices"`
}

type FacingData struct {
	Facing string `json:"facing"`
}
