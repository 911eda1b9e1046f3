package handler

import (
	"encoding/json"
	"net/http"

	"geocam/internal/logger"
	"geocam/internal/service/permission"
)

type permissionUpdate struct {
	Permission string `json:"permission"`
	Status     string `json:"status"`
}

// GetPermissionsHandler reports the current camera and location decisions.
func GetPermissionsHandler(registry *permission.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := writeJSON(w, http.StatusOK, registry.Snapshot()); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// UpdatePermissionHandler records a decision made on the Home screen, e.g. a revocation.
func UpdatePermissionHandler(registry *permission.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update permissionUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		kind, err := permission.ParseKind(update.Permission)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status, err := permission.ParseStatus(update.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		registry.Set(kind, status)
		logger.Info("%s permission set to %s", kind, status)

		if err := writeJSON(w, http.StatusOK, registry.Snapshot()); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}
