package handlers

import (
	"net/http"

	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AlarmHandler handles alarm registry HTTP requests
type AlarmHandler struct {
	alarmService *services.AlarmService
}

// NewAlarmHandler creates a new alarm handler
func NewAlarmHandler(alarmService *services.AlarmService) *AlarmHandler {
	return &AlarmHandler{
		alarmService: alarmService,
	}
}

// AlarmIDRequest identifies an alarm in toggle and delete bodies
type AlarmIDRequest struct {
	ID string `json:"id"`
}

// ToggleResponse reports the enabled flag after a toggle
type ToggleResponse struct {
	Success bool `json:"success"`
	Enabled bool `json:"enabled"`
}

// ListAlarms handles GET /api/alarms
func (h *AlarmHandler) ListAlarms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	alarms, err := h.alarmService.List(ctx, scope)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Msg("Failed to list alarms")
		respondError(w, "Failed to list alarms", http.StatusInternalServerError)
		return
	}

	respondJSON(w, alarms, http.StatusOK)
}

// CreateAlarm handles POST /api/alarms
func (h *AlarmHandler) CreateAlarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req services.CreateAlarmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	alarm, err := h.alarmService.Create(ctx, scope, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("time", req.Time).
			Msg("Failed to create alarm")
		respondServiceError(w, err, "Failed to create alarm")
		return
	}

	log.Info().
		Str("scope", scope.String()).
		Str("alarm_id", alarm.ID).
		Str("time", alarm.Time).
		Msg("Alarm created")

	respondJSON(w, alarm, http.StatusOK)
}

// DeleteAlarm handles DELETE /api/alarms
func (h *AlarmHandler) DeleteAlarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req AlarmIDRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.alarmService.Delete(ctx, scope, req.ID); err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("alarm_id", req.ID).
			Msg("Failed to delete alarm")
		respondServiceError(w, err, "Failed to delete alarm")
		return
	}

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// ToggleAlarm handles POST /api/alarm/toggle
func (h *AlarmHandler) ToggleAlarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req AlarmIDRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	enabled, err := h.alarmService.Toggle(ctx, scope, req.ID)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("alarm_id", req.ID).
			Msg("Failed to toggle alarm")
		respondServiceError(w, err, "Failed to toggle alarm")
		return
	}

	respondJSON(w, ToggleResponse{Success: true, Enabled: enabled}, http.StatusOK)
}
