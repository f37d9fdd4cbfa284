package handlers

import (
	"context"
	"net/http"
	"time"

	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
)

type CalendarHandler struct {
	scheduleService *services.ScheduleService
}

func NewCalendarHandler(scheduleService *services.ScheduleService) *CalendarHandler {
	return &CalendarHandler{
		scheduleService: scheduleService,
	}
}

// GetMonth serves the 42-cell month grid with the caller's entries
// bucketed by date. The optional "month" query parameter selects the
// view month as YYYY-MM; it defaults to the current month.
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	ref := time.Now()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'month' must be YYYY-MM")
			return
		}
		ref = parsed
	}

	monthView, err := h.scheduleService.MonthView(ctx, userID, ref)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, monthView)
}
