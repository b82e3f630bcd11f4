package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

type simulateRequest struct {
	BudgetCents    int64    `json:"budget_cents"`
	DurationDays   int      `json:"duration_days"`
	TargetAudience string   `json:"target_audience"`
	Category       string   `json:"category"`
	Keywords       []string `json:"keywords"`
}

type campaignResponse struct {
	ID             string           `json:"id"`
	Status         string           `json:"status"`
	BudgetCents    int64            `json:"budget_cents"`
	DurationDays   int              `json:"duration_days"`
	TargetAudience string           `json:"target_audience"`
	Category       string           `json:"category"`
	Keywords       []string         `json:"keywords"`
	Metrics        *metricsResponse `json:"metrics,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type metricsResponse struct {
	ACOS           float64   `json:"acos"`
	TACOS          float64   `json:"tacos"`
	Margin         float64   `json:"margin"`
	CPC            float64   `json:"cpc"`
	CTR            float64   `json:"ctr"`
	ConversionRate float64   `json:"conversion_rate"`
	Impressions    int64     `json:"impressions"`
	Clicks         int64     `json:"clicks"`
	Conversions    int64     `json:"conversions"`
	SpendCents     int64     `json:"spend_cents"`
	RevenueCents   int64     `json:"revenue_cents"`
	ObservedAt     time.Time `json:"observed_at"`
}

func toCampaignResponse(c *domain.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:             c.ID,
		Status:         string(c.Status),
		BudgetCents:    c.BudgetCents,
		DurationDays:   c.DurationDays,
		TargetAudience: c.TargetAudience,
		Category:       c.Category,
		Keywords:       c.Keywords,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Metrics != nil {
		m := toMetricsResponse(*c.Metrics)
		resp.Metrics = &m
	}
	return resp
}

func toMetricsResponse(s domain.MetricsSnapshot) metricsResponse {
	return metricsResponse{
		ACOS:           s.ACOS,
		TACOS:          s.TACOS,
		Margin:         s.Margin,
		CPC:            s.CPC,
		CTR:            s.CTR,
		ConversionRate: s.ConversionRate,
		Impressions:    s.Impressions,
		Clicks:         s.Clicks,
		Conversions:    s.Conversions,
		SpendCents:     s.SpendCents,
		RevenueCents:   s.RevenueCents,
		ObservedAt:     s.ObservedAt,
	}
}

// handleSimulate creates a draft campaign from simulation parameters.
// Parsing errors produce HTTP 400; on success the new campaign is
// returned with HTTP 201.
func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.campaigns.Simulate(r.Context(), port.SimulationRequest{
		BudgetCents:    req.BudgetCents,
		DurationDays:   req.DurationDays,
		TargetAudience: req.TargetAudience,
		Category:       req.Category,
		Keywords:       req.Keywords,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignResponse(c))
}

// handleGetCampaign returns one campaign by its path identifier.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.GetCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

// handleUpdateStatus moves a campaign to the requested lifecycle state.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.campaigns.UpdateStatus(r.Context(), chi.URLParam(r, "campaignID"), domain.CampaignStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}
