// Package handlers contains the HTTP request handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/projection"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// PlotHandler handles the compensation projection endpoint.
type PlotHandler struct {
	projector *projection.Projector
	logger    *logger.Logger
}

// NewPlotHandler creates a new plot handler.
func NewPlotHandler(projector *projection.Projector, log *logger.Logger) *PlotHandler {
	return &PlotHandler{
		projector: projector,
		logger:    log,
	}
}

// Plot runs a projection for the posted plan document.
// POST /api/v1.0/plot/
func (h *PlotHandler) Plot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		respondError(w, http.StatusUnsupportedMediaType, "Content-Type not supported, use application/json")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	doc, err := plan.Parse(body)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected plan document")
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Undecodable documents are the caller's problem.
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}

	result, err := h.projector.Project(ctx, doc)
	if err != nil {
		h.logger.WithError(err).Error("Projection failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// statusFor maps the error taxonomy to HTTP status codes. Bad input is
// the caller's fault; provider trouble is upstream's.
func statusFor(err error) int {
	switch {
	case errors.Is(err, comperr.ErrInvalidRange),
		errors.Is(err, comperr.ErrInvalidParameter),
		errors.Is(err, comperr.ErrInflationDisabled):
		return http.StatusBadRequest
	case errors.Is(err, comperr.ErrInvalidTicker),
		errors.Is(err, comperr.ErrMissingDataPoint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, comperr.ErrDataSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
