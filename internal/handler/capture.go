package handler

import (
	"context"
	"errors"
	"net/http"

	"geocam/internal/dto"
	"geocam/internal/logger"
	"geocam/internal/model"
	"geocam/internal/service/capture"
	"geocam/internal/service/permission"
)

// CameraAccess is the camera side of the permission gate.
type CameraAccess interface {
	RequestCameraAccess(ctx context.Context) bool
}

// DeviceStatus reports which camera feeds are connected.
type DeviceStatus interface {
	Connected(facing model.Facing) bool
}

// CaptureHandler handles POST /api/capture. Camera access is checked first;
// without it the pipeline is never started.
func CaptureHandler(pipeline *capture.Pipeline, gate CameraAccess, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !gate.RequestCameraAccess(r.Context()) {
			writeError(w, http.StatusForbidden, permission.ErrCameraDenied.Error())
			return
		}

		photo, err := pipeline.OnCapture(r.Context())
		if err != nil {
			var pipelineErr *capture.PipelineError
			switch {
			case errors.Is(err, capture.ErrBusy):
				writeError(w, http.StatusConflict, err.Error())
			case errors.As(err, &pipelineErr):
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
					Error: pipelineErr.Err.Error(),
					Stage: pipelineErr.Stage.String(),
				})
			default:
				logger.Error("Unexpected capture error: %v", err)
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		if err := writeJSON(w, http.StatusCreated, dto.NewPhotoInfo(*photo)); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// StateHandler handles GET /api/state.
func StateHandler(pipeline *capture.Pipeline, registry *permission.Registry, devices DeviceStatus, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := dto.ScreenData{
			ScreenState: pipeline.Snapshot(),
			Permissions: registry.Snapshot(),
			Devices: map[string]bool{
				model.FacingBack.String():  devices.Connected(model.FacingBack),
				model.FacingFront.String(): devices.Connected(model.FacingFront),
			},
		}
		if err := writeJSON(w, http.StatusOK, data); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// SwitchCameraHandler handles POST /api/camera/switch.
func SwitchCameraHandler(pipeline *capture.Pipeline, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facing := pipeline.SwitchFacing()
		if err := writeJSON(w, http.StatusOK, dto.FacingData{Facing: facing.String()}); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}
