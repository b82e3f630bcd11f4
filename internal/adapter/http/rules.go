package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meli-automation/internal/core/domain"
)

type ruleRequest struct {
	MetricType     string  `json:"metric_type"`
	ThresholdValue float64 `json:"threshold_value"`
	ActionType     string  `json:"action_type"`
	BudgetFactor   float64 `json:"budget_factor,omitempty"`
}

type ruleResponse struct {
	ID             string    `json:"id"`
	CampaignID     string    `json:"campaign_id"`
	MetricType     string    `json:"metric_type"`
	ThresholdValue float64   `json:"threshold_value"`
	ActionType     string    `json:"action_type"`
	BudgetFactor   float64   `json:"budget_factor,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toRuleResponse(r domain.AutomationRule) ruleResponse {
	return ruleResponse{
		ID:             r.ID,
		CampaignID:     r.CampaignID,
		MetricType:     string(r.Metric),
		ThresholdValue: r.Threshold,
		ActionType:     string(r.Action),
		BudgetFactor:   r.BudgetFactor,
		CreatedAt:      r.CreatedAt,
	}
}

// handleCreateRule attaches an automation rule to a campaign.
func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	rule, err := h.campaigns.CreateRule(r.Context(), domain.AutomationRule{
		CampaignID:   chi.URLParam(r, "campaignID"),
		Metric:       domain.MetricType(req.MetricType),
		Threshold:    req.ThresholdValue,
		Action:       domain.ActionType(req.ActionType),
		BudgetFactor: req.BudgetFactor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toRuleResponse(*rule))
}

// handleListRules returns all rules of a campaign.
func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.campaigns.ListRules(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleDeleteRule removes a rule by id.
func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.DeleteRule(r.Context(), chi.URLParam(r, "ruleID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
