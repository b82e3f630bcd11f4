package httpadapter

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meli-automation/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the campaign and automation services to execute
// business logic and a logger for structured logging. Routes are
// registered on a chi.Router for convenient method handling.
type Handler struct {
	campaigns  port.CampaignUseCase
	automation port.AutomationUseCase
	logger     *slog.Logger
	router     chi.Router
}

// NewHandler creates a handler with all routes configured. The returned
// Handler registers handlers for each endpoint on a new chi.Router.
func NewHandler(campaigns port.CampaignUseCase, automation port.AutomationUseCase, logger *slog.Logger) *Handler {
	h := &Handler{campaigns: campaigns, automation: automation, logger: logger}
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(100, 25))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/campaigns/simulate", h.handleSimulate)
		r.Get("/campaigns/{campaignID}", h.handleGetCampaign)
		r.Patch("/campaigns/{campaignID}/status", h.handleUpdateStatus)

		r.Post("/campaigns/{campaignID}/rules", h.handleCreateRule)
		r.Get("/campaigns/{campaignID}/rules", h.handleListRules)
		r.Delete("/rules/{ruleID}", h.handleDeleteRule)

		r.Post("/campaigns/{campaignID}/schedules", h.handleCreateSchedule)
		r.Get("/campaigns/{campaignID}/schedules", h.handleListSchedules)
		r.Delete("/schedules/{scheduleID}", h.handleDeleteSchedule)

		r.Post("/campaigns/{campaignID}/metrics", h.handleIngestMetrics)
		r.Post("/scheduler/tick", h.handleSchedulerTick)

		r.Get("/actions", h.handleListActions)
		r.Post("/actions/{actionID}/resolve", h.handleResolveAction)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
