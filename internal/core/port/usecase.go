package port

import (
	"context"
	"time"

	"meli-automation/internal/core/domain"
)

// AutomationUseCase defines the engine operations exposed to callers
// such as the HTTP layer and the background scheduler loop. This
// interface is the primary port into the application domain.
type AutomationUseCase interface {
	// EvaluateMetrics stores the snapshot as the campaign's latest
	// metrics and evaluates every rule of the campaign against it. Each
	// rule is evaluated independently: a failure on one rule is collected
	// into the result and does not stop the others. Triggered rules each
	// produce one pending action; no deduplication is performed unless
	// duplicate suppression is enabled.
	EvaluateMetrics(ctx context.Context, campaignID string, snap domain.MetricsSnapshot) (*EvaluationResult, error)

	// SchedulerTick checks every schedule entry against now and fires
	// those whose window boundary has been crossed and whose current
	// occurrence has not executed yet. Re-invocation within the same
	// occurrence emits nothing.
	SchedulerTick(ctx context.Context, now time.Time) (*TickResult, error)

	// ListPendingActions returns unresolved actions, optionally filtered
	// by campaign. An unknown or quiet campaign yields an empty list,
	// not an error.
	ListPendingActions(ctx context.Context, campaignID string) ([]domain.PendingAction, error)

	// ResolveAction approves or rejects a pending action. Approval
	// applies the proposed mutation to the campaign and marks the action
	// applied; rejection marks it rejected without touching the
	// campaign. Resolving a non-pending action fails with
	// ErrInvalidState.
	ResolveAction(ctx context.Context, actionID string, approve bool) (*domain.Campaign, error)
}

// CampaignUseCase covers campaign simulation and the rule/schedule
// management operations surrounding the engine.
type CampaignUseCase interface {
	// Simulate creates a draft campaign with a generated identifier and
	// heuristic metric projections derived from the request.
	Simulate(ctx context.Context, req SimulationRequest) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) (*domain.Campaign, error)

	CreateRule(ctx context.Context, r domain.AutomationRule) (*domain.AutomationRule, error)
	ListRules(ctx context.Context, campaignID string) ([]domain.AutomationRule, error)
	DeleteRule(ctx context.Context, id string) error

	CreateSchedule(ctx context.Context, e domain.ScheduleEntry) (*domain.ScheduleEntry, error)
	ListSchedules(ctx context.Context, campaignID string) ([]domain.ScheduleEntry, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// SimulationRequest carries the parameters of a campaign simulation.
type SimulationRequest struct {
	BudgetCents    int64
	DurationDays   int
	TargetAudience string
	Category       string
	Keywords       []string
}

// EntryError records a failure evaluating one rule or schedule entry.
// Batch operations collect these instead of aborting.
type EntryError struct {
	EntryID string
	Err     error
}

// EvaluationResult is the outcome of one metrics evaluation: the actions
// produced by triggering rules, the rules that were checked but did not
// trigger, and per-rule failures.
type EvaluationResult struct {
	CampaignID string
	Actions    []domain.PendingAction
	Evaluated  int
	Errors     []EntryError
}

// TickResult is the outcome of one scheduler tick across all entries.
type TickResult struct {
	Now     time.Time
	Actions []domain.PendingAction
	Checked int
	Errors  []EntryError
}
