package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meli-automation/internal/core/domain"
)

type scheduleRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Action    string `json:"action"`
}

type scheduleResponse struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaign_id"`
	DayOfWeek      int        `json:"day_of_week"`
	StartHour      int        `json:"start_hour"`
	EndHour        int        `json:"end_hour"`
	Action         string     `json:"action"`
	Status         string     `json:"status"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toScheduleResponse(e domain.ScheduleEntry) scheduleResponse {
	return scheduleResponse{
		ID:             e.ID,
		CampaignID:     e.CampaignID,
		DayOfWeek:      e.DayOfWeek,
		StartHour:      e.StartHour,
		EndHour:        e.EndHour,
		Action:         string(e.Action),
		Status:         string(e.Status),
		LastExecutedAt: e.LastExecutedAt,
		CreatedAt:      e.CreatedAt,
	}
}

// handleCreateSchedule attaches a day/hour activation window to a campaign.
func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	entry, err := h.campaigns.CreateSchedule(r.Context(), domain.ScheduleEntry{
		CampaignID: chi.URLParam(r, "campaignID"),
		DayOfWeek:  req.DayOfWeek,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		Action:     domain.ActionType(req.Action),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toScheduleResponse(*entry))
}

// handleListSchedules returns all schedule entries of a campaign.
func (h *Handler) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	entries, err := h.campaigns.ListSchedules(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]scheduleResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toScheduleResponse(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleDeleteSchedule removes a schedule entry by id.
func (h *Handler) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
