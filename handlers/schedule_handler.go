package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"myScheduleAPI/internal/schedule"
	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
}

func NewScheduleHandler(scheduleService *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

func (h *ScheduleHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.scheduleService.ListEntries(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load schedules")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *ScheduleHandler) GetUpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.scheduleService.UpcomingEntries(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load schedules")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var fields schedule.EntryFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.scheduleService.CreateEntry(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidEntry) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to save schedule")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]

	var fields schedule.EntryFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.scheduleService.UpdateEntry(ctx, userID, id, fields); err != nil {
		respondWithScheduleError(w, err, "Failed to save schedule")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "schedule updated"})
}

func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.scheduleService.DeleteEntry(ctx, userID, id); err != nil {
		respondWithScheduleError(w, err, "Failed to delete schedule")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "schedule deleted"})
}

func respondWithScheduleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, schedule.ErrInvalidEntry):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEntryNotFound):
		respondWithError(w, http.StatusNotFound, "Schedule not found")
	case errors.Is(err, services.ErrNotOwner):
		respondWithError(w, http.StatusForbidden, "Schedule belongs to another user")
	default:
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
