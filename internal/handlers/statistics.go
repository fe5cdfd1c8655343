package handlers

import (
	"net/http"

	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// StatisticsHandler handles the wake event log and the statistics derived from it
type StatisticsHandler struct {
	wakeupService *services.WakeupService
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(wakeupService *services.WakeupService) *StatisticsHandler {
	return &StatisticsHandler{
		wakeupService: wakeupService,
	}
}

// GetStatistics handles GET /api/statistics
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	stats, err := h.wakeupService.Stats(ctx, scope)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Msg("Failed to compute statistics")
		respondError(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	respondJSON(w, stats, http.StatusOK)
}

// RecordEvent handles POST /api/statistics
func (h *StatisticsHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req services.RecordEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.wakeupService.Record(ctx, scope, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("event", req.Event).
			Msg("Failed to record wake event")
		respondServiceError(w, err, "Failed to record wake event")
		return
	}

	log.Debug().
		Str("scope", scope.String()).
		Str("event", rec.Event.String()).
		Msg("Wake event recorded")

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}
