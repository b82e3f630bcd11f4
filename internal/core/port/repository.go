package port

import (
	"context"
	"time"

	"meli-automation/internal/core/domain"
)

// CampaignRepository is the persistence port for campaigns. It is an
// outbound port in hexagonal architecture. Implementations must be
// concurrency-safe; lookups for unknown identifiers return ErrNotFound.
type CampaignRepository interface {
	// Create stores a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error
	// Get returns a campaign by id.
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	// UpdateStatus sets the campaign status and refreshes UpdatedAt.
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error
	// UpdateBudget sets the campaign budget and refreshes UpdatedAt.
	UpdateBudget(ctx context.Context, id string, budgetCents int64) error
	// SetMetrics replaces the campaign's latest metrics snapshot.
	SetMetrics(ctx context.Context, id string, snap domain.MetricsSnapshot) error
}

// RuleRepository is the persistence port for automation rules. Rules are
// immutable once created; there is no update operation.
type RuleRepository interface {
	Create(ctx context.Context, r *domain.AutomationRule) error
	Get(ctx context.Context, id string) (*domain.AutomationRule, error)
	Delete(ctx context.Context, id string) error
	// ListByCampaign returns all rules owned by the campaign, oldest first.
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.AutomationRule, error)
}

// ScheduleRepository is the persistence port for schedule entries.
type ScheduleRepository interface {
	Create(ctx context.Context, e *domain.ScheduleEntry) error
	Get(ctx context.Context, id string) (*domain.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.ScheduleEntry, error)
	// ListAll returns every schedule entry across campaigns; the
	// scheduler walks this on each tick.
	ListAll(ctx context.Context) ([]domain.ScheduleEntry, error)
	// MarkExecution records the outcome of an occurrence firing: the new
	// status, the consumed occurrence key and the execution time.
	MarkExecution(ctx context.Context, id string, status domain.ScheduleEntryStatus, occurrence string, at time.Time) error
}

// ActionRepository is the persistence port for pending actions.
type ActionRepository interface {
	Create(ctx context.Context, a *domain.PendingAction) error
	Get(ctx context.Context, id string) (*domain.PendingAction, error)
	// ListPending returns actions in pending state, newest first. An
	// empty campaignID lists across all campaigns.
	ListPending(ctx context.Context, campaignID string) ([]domain.PendingAction, error)
	// HasPendingForRule reports whether the rule has an unresolved action
	// outstanding. Used by the duplicate-suppression mode.
	HasPendingForRule(ctx context.Context, ruleID string) (bool, error)
	// UpdateStatus transitions the action's review state.
	UpdateStatus(ctx context.Context, id string, status domain.ActionStatus) error
}
