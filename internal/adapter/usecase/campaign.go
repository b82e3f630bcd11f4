package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// CampaignService implements port.CampaignUseCase: campaign simulation
// plus rule and schedule management with input validation.
type CampaignService struct {
	campaigns port.CampaignRepository
	rules     port.RuleRepository
	schedules port.ScheduleRepository
	logger    *slog.Logger
}

// NewCampaignService creates the campaign management service.
func NewCampaignService(
	campaigns port.CampaignRepository,
	rules port.RuleRepository,
	schedules port.ScheduleRepository,
	logger *slog.Logger,
) *CampaignService {
	return &CampaignService{campaigns: campaigns, rules: rules, schedules: schedules, logger: logger}
}

// Simulate creates a draft campaign with a generated identifier and a
// deterministic heuristic projection of its initial performance.
func (s *CampaignService) Simulate(ctx context.Context, req port.SimulationRequest) (*domain.Campaign, error) {
	if req.BudgetCents <= 0 {
		return nil, port.Invalid("budget_cents", "must be positive, got %d", req.BudgetCents)
	}
	if req.DurationDays <= 0 {
		return nil, port.Invalid("duration_days", "must be positive, got %d", req.DurationDays)
	}
	if req.Category == "" {
		return nil, port.Invalid("category", "must not be empty")
	}

	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:             newCampaignID(),
		Status:         domain.CampaignDraft,
		BudgetCents:    req.BudgetCents,
		DurationDays:   req.DurationDays,
		TargetAudience: req.TargetAudience,
		Category:       req.Category,
		Keywords:       append([]string(nil), req.Keywords...),
		Metrics:        projectMetrics(req, now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	s.logger.Info("campaign simulated",
		slog.String("campaign_id", c.ID),
		slog.String("category", c.Category),
		slog.Int64("budget_cents", c.BudgetCents))
	return c, nil
}

// GetCampaign returns a campaign by id.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.campaigns.Get(ctx, id)
}

// UpdateStatus moves a campaign to the requested lifecycle state.
func (s *CampaignService) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) (*domain.Campaign, error) {
	if !domain.ValidCampaignStatus(status) {
		return nil, port.Invalid("status", "unknown status %q", status)
	}
	if err := s.campaigns.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.campaigns.Get(ctx, id)
}

// CreateRule validates and stores an automation rule for a campaign.
func (s *CampaignService) CreateRule(ctx context.Context, r domain.AutomationRule) (*domain.AutomationRule, error) {
	if _, err := s.campaigns.Get(ctx, r.CampaignID); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", r.CampaignID, err)
	}
	if _, ok := domain.DirectionFor(r.Metric); !ok {
		return nil, port.Invalid("metric_type", "unknown metric %q", r.Metric)
	}
	if !domain.ValidActionType(r.Action) {
		return nil, port.Invalid("action_type", "unknown action %q", r.Action)
	}
	if domain.RatioMetric(r.Metric) {
		if r.Threshold < 0 || r.Threshold > 1 {
			return nil, port.Invalid("threshold_value", "ratio metric %s requires threshold in [0,1], got %v", r.Metric, r.Threshold)
		}
	} else if r.Threshold < 0 {
		return nil, port.Invalid("threshold_value", "must be non-negative, got %v", r.Threshold)
	}
	if r.Action == domain.ActionAdjustBudget && r.BudgetFactor <= 0 {
		return nil, port.Invalid("budget_factor", "must be positive for adjust_budget")
	}

	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if err := s.rules.Create(ctx, &r); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return &r, nil
}

// ListRules returns all rules of a campaign, oldest first.
func (s *CampaignService) ListRules(ctx context.Context, campaignID string) ([]domain.AutomationRule, error) {
	return s.rules.ListByCampaign(ctx, campaignID)
}

// DeleteRule removes a rule. Rules are otherwise immutable.
func (s *CampaignService) DeleteRule(ctx context.Context, id string) error {
	return s.rules.Delete(ctx, id)
}

// CreateSchedule validates and stores a day/hour window for a campaign.
func (s *CampaignService) CreateSchedule(ctx context.Context, e domain.ScheduleEntry) (*domain.ScheduleEntry, error) {
	if _, err := s.campaigns.Get(ctx, e.CampaignID); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", e.CampaignID, err)
	}
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return nil, port.Invalid("day_of_week", "must be in 0..6, got %d", e.DayOfWeek)
	}
	if e.StartHour < 0 || e.StartHour > 23 {
		return nil, port.Invalid("start_hour", "must be in 0..23, got %d", e.StartHour)
	}
	if e.EndHour < 0 || e.EndHour > 23 {
		return nil, port.Invalid("end_hour", "must be in 0..23, got %d", e.EndHour)
	}
	if e.EndHour <= e.StartHour {
		return nil, port.Invalid("end_hour", "must be greater than start_hour")
	}
	if e.Action != domain.ActionActivate && e.Action != domain.ActionPause {
		return nil, port.Invalid("action", "schedule action must be activate or pause, got %q", e.Action)
	}

	e.ID = uuid.NewString()
	e.Status = domain.SchedulePending
	e.LastOccurrence = ""
	e.LastExecutedAt = nil
	e.CreatedAt = time.Now().UTC()
	if err := s.schedules.Create(ctx, &e); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return &e, nil
}

// ListSchedules returns all schedule entries of a campaign.
func (s *CampaignService) ListSchedules(ctx context.Context, campaignID string) ([]domain.ScheduleEntry, error) {
	return s.schedules.ListByCampaign(ctx, campaignID)
}

// DeleteSchedule removes a schedule entry.
func (s *CampaignService) DeleteSchedule(ctx context.Context, id string) error {
	return s.schedules.Delete(ctx, id)
}

// newCampaignID generates a CAMP-XXXXXXXX identifier.
func newCampaignID() string {
	return "CAMP-" + strings.ToUpper(uuid.NewString()[:8])
}

// projectMetrics derives an initial performance projection from the
// simulation parameters. The heuristic is deterministic for a given
// request: category and keywords seed the baseline rates, budget and
// duration scale the volumes.
func projectMetrics(req port.SimulationRequest, now time.Time) *domain.MetricsSnapshot {
	seed := fnv.New32a()
	seed.Write([]byte(req.Category))
	for _, kw := range req.Keywords {
		seed.Write([]byte(kw))
	}
	// Baseline CTR between 1% and 5%, conversion rate between 1% and 3%.
	ctr := 0.01 + float64(seed.Sum32()%41)/1000.0
	convRate := 0.01 + float64(seed.Sum32()%21)/1000.0

	// Assume a 0.50 average CPC and spend the whole budget over the run.
	cpcCents := int64(50)
	clicks := req.BudgetCents / cpcCents
	impressions := int64(float64(clicks) / ctr)
	conversions := int64(float64(clicks) * convRate)
	// Assume 40.00 average order value for projected revenue.
	revenue := conversions * 4000

	acos := 0.0
	if revenue > 0 {
		acos = float64(req.BudgetCents) / float64(revenue)
	}
	return &domain.MetricsSnapshot{
		ACOS:           acos,
		TACOS:          acos * 0.8,
		Margin:         0.30,
		CPC:            float64(cpcCents) / 100.0,
		CTR:            ctr,
		ConversionRate: convRate,
		Impressions:    impressions,
		Clicks:         clicks,
		Conversions:    conversions,
		SpendCents:     req.BudgetCents,
		RevenueCents:   revenue,
		ObservedAt:     now,
	}
}
