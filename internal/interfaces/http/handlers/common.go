// Package handlers implements the HTTP handlers behind the dashboard API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cfp-backend/pkg/api"
	appErrors "cfp-backend/pkg/errors"
)

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return appErrors.NewValidation("invalid request body")
	}
	return nil
}

// writeServiceError maps an application error to an HTTP response.
// Upstream and timeout errors never reach this point for well-formed
// requests; if one does it is a defect and reported as a 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case appErrors.ErrorTypeValidation:
			api.Error(w, http.StatusBadRequest, appErr.Message)
			return
		case appErrors.ErrorTypeNotFound:
			api.Error(w, http.StatusNotFound, appErr.Message)
			return
		}
	}

	logger.Error("request failed", zap.Error(err))
	api.Error(w, http.StatusInternalServerError, "Internal server error")
}
