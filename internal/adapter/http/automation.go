package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

type ingestRequest struct {
	ACOS           float64 `json:"acos"`
	TACOS          float64 `json:"tacos"`
	Margin         float64 `json:"margin"`
	CPC            float64 `json:"cpc"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	SpendCents     int64   `json:"spend_cents"`
	RevenueCents   int64   `json:"revenue_cents"`
}

type actionResponse struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	ActionType   string    `json:"action_type"`
	Reason       string    `json:"reason"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	BudgetFactor float64   `json:"budget_factor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type entryErrorResponse struct {
	EntryID string `json:"entry_id"`
	Error   string `json:"error"`
}

type evaluationResponse struct {
	CampaignID string               `json:"campaign_id"`
	Evaluated  int                  `json:"evaluated"`
	Actions    []actionResponse     `json:"actions"`
	Errors     []entryErrorResponse `json:"errors,omitempty"`
}

type tickResponse struct {
	Now     time.Time            `json:"now"`
	Checked int                  `json:"checked"`
	Actions []actionResponse     `json:"actions"`
	Errors  []entryErrorResponse `json:"errors,omitempty"`
}

func toActionResponse(a domain.PendingAction) actionResponse {
	return actionResponse{
		ID:           a.ID,
		CampaignID:   a.CampaignID,
		ActionType:   string(a.Action),
		Reason:       a.Reason,
		Source:       string(a.Source),
		Status:       string(a.Status),
		BudgetFactor: a.BudgetFactor,
		CreatedAt:    a.CreatedAt,
	}
}

func toActionResponses(actions []domain.PendingAction) []actionResponse {
	out := make([]actionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, toActionResponse(a))
	}
	return out
}

func toEntryErrors(errs []port.EntryError) []entryErrorResponse {
	if len(errs) == 0 {
		return nil
	}
	out := make([]entryErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, entryErrorResponse{EntryID: e.EntryID, Error: e.Err.Error()})
	}
	return out
}

// handleIngestMetrics accepts a metrics snapshot for a campaign and runs
// rule evaluation. The response lists the actions produced and any
// isolated per-rule failures.
func (h *Handler) handleIngestMetrics(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := h.automation.EvaluateMetrics(r.Context(), chi.URLParam(r, "campaignID"), domain.MetricsSnapshot{
		ACOS:           req.ACOS,
		TACOS:          req.TACOS,
		Margin:         req.Margin,
		CPC:            req.CPC,
		CTR:            req.CTR,
		ConversionRate: req.ConversionRate,
		Impressions:    req.Impressions,
		Clicks:         req.Clicks,
		Conversions:    req.Conversions,
		SpendCents:     req.SpendCents,
		RevenueCents:   req.RevenueCents,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, evaluationResponse{
		CampaignID: res.CampaignID,
		Evaluated:  res.Evaluated,
		Actions:    toActionResponses(res.Actions),
		Errors:     toEntryErrors(res.Errors),
	})
}

// handleSchedulerTick runs one scheduler pass. The body may carry an
// RFC3339 "now" for on-demand evaluation; it defaults to the current
// time.
func (h *Handler) handleSchedulerTick(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	var req struct {
		Now string `json:"now"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			http.Error(w, "invalid 'now' timestamp", http.StatusBadRequest)
			return
		}
		now = parsed
	}
	res, err := h.automation.SchedulerTick(r.Context(), now)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tickResponse{
		Now:     res.Now,
		Checked: res.Checked,
		Actions: toActionResponses(res.Actions),
		Errors:  toEntryErrors(res.Errors),
	})
}

// handleListActions returns unresolved actions, optionally filtered by
// the campaign_id query parameter. A quiet campaign yields an empty list.
func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.automation.ListPendingActions(r.Context(), r.URL.Query().Get("campaign_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toActionResponses(actions))
}

// handleResolveAction approves or rejects a pending action and returns
// the campaign after resolution.
func (h *Handler) handleResolveAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.automation.ResolveAction(r.Context(), chi.URLParam(r, "actionID"), req.Approve)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}
