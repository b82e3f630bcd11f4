package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
	"meli-automation/internal/metrics"
)

// EngineConfig carries the policy knobs of the automation engine.
type EngineConfig struct {
	// AutoApply applies rule- and schedule-triggered actions immediately
	// instead of leaving them for operator resolution.
	AutoApply bool
	// SuppressDuplicates skips a triggering rule while it still has an
	// unresolved pending action outstanding. Off by default: re-ingesting
	// identical metrics re-triggers and re-creates actions.
	SuppressDuplicates bool
}

// Engine implements port.AutomationUseCase: rule evaluation on metrics
// ingest, time-window scheduling and the approval workflow. All campaign
// mutations for one campaign are serialized through a per-campaign lock.
type Engine struct {
	campaigns port.CampaignRepository
	rules     port.RuleRepository
	schedules port.ScheduleRepository
	actions   port.ActionRepository
	logger    *slog.Logger
	mx        *metrics.Metrics
	cfg       EngineConfig

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEngine creates the automation engine. The metrics collector may be
// nil, in which case no instrumentation is recorded.
func NewEngine(
	campaigns port.CampaignRepository,
	rules port.RuleRepository,
	schedules port.ScheduleRepository,
	actions port.ActionRepository,
	logger *slog.Logger,
	mx *metrics.Metrics,
	cfg EngineConfig,
) *Engine {
	return &Engine{
		campaigns: campaigns,
		rules:     rules,
		schedules: schedules,
		actions:   actions,
		logger:    logger,
		mx:        mx,
		cfg:       cfg,
		locks:     make(map[string]*sync.Mutex),
	}
}

// campaignLock returns the mutex serializing mutations of one campaign.
func (e *Engine) campaignLock(campaignID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[campaignID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[campaignID] = mu
	}
	return mu
}

// EvaluateMetrics replaces the campaign's snapshot and evaluates its
// rules. Rules are checked independently; a failure on one rule is
// collected into the result and never aborts the batch.
func (e *Engine) EvaluateMetrics(ctx context.Context, campaignID string, snap domain.MetricsSnapshot) (*port.EvaluationResult, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now().UTC()
	}

	mu := e.campaignLock(campaignID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := e.campaigns.Get(ctx, campaignID); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, err)
	}
	if err := e.campaigns.SetMetrics(ctx, campaignID, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	rules, err := e.rules.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	res := &port.EvaluationResult{CampaignID: campaignID}
	for _, rule := range rules {
		res.Evaluated++
		action, err := e.evaluateRule(ctx, rule, snap)
		if err != nil {
			res.Errors = append(res.Errors, port.EntryError{EntryID: rule.ID, Err: err})
			if e.mx != nil {
				e.mx.RecordEntryError(string(domain.SourceRule))
			}
			e.logger.Warn("rule evaluation failed",
				slog.String("campaign_id", campaignID),
				slog.String("rule_id", rule.ID),
				slog.Any("error", err))
			continue
		}
		if action == nil {
			continue
		}
		res.Actions = append(res.Actions, *action)
		if e.mx != nil {
			e.mx.RecordRuleTrigger(string(rule.Metric), string(rule.Action))
		}
		e.logger.Info("rule triggered",
			slog.String("campaign_id", campaignID),
			slog.String("rule_id", rule.ID),
			slog.String("reason", action.Reason))
	}

	if e.mx != nil {
		outcome := "quiet"
		if len(res.Actions) > 0 {
			outcome = "triggered"
		}
		e.mx.RecordEvaluation(outcome)
	}

	if e.cfg.AutoApply {
		e.autoApplyLocked(ctx, res.Actions)
	}
	return res, nil
}

// evaluateRule checks one rule against the snapshot and, on trigger,
// creates and returns the pending action. A nil action with nil error
// means the rule did not trigger (or was suppressed).
func (e *Engine) evaluateRule(ctx context.Context, rule domain.AutomationRule, snap domain.MetricsSnapshot) (*domain.PendingAction, error) {
	value, ok := snap.Value(rule.Metric)
	if !ok {
		return nil, fmt.Errorf("unknown metric type %q", rule.Metric)
	}
	dir, ok := domain.DirectionFor(rule.Metric)
	if !ok {
		return nil, fmt.Errorf("no comparison policy for metric %q", rule.Metric)
	}

	// Strict inequality: a value exactly at the threshold never triggers.
	var triggered bool
	switch dir {
	case domain.Exceeds:
		triggered = value > rule.Threshold
	case domain.FallsBelow:
		triggered = value < rule.Threshold
	}
	if !triggered {
		return nil, nil
	}

	if e.cfg.SuppressDuplicates {
		outstanding, err := e.actions.HasPendingForRule(ctx, rule.ID)
		if err != nil {
			return nil, fmt.Errorf("check outstanding action: %w", err)
		}
		if outstanding {
			return nil, nil
		}
	}

	action := &domain.PendingAction{
		ID:           uuid.NewString(),
		CampaignID:   rule.CampaignID,
		Action:       rule.Action,
		Reason:       triggerReason(rule.Metric, dir, value, rule.Threshold),
		Source:       domain.SourceRule,
		RuleID:       rule.ID,
		BudgetFactor: rule.BudgetFactor,
		Status:       domain.ActionPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.actions.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("store action: %w", err)
	}
	return action, nil
}

// triggerReason builds the human-readable trigger explanation, naming
// the metric, the observed value and the threshold.
func triggerReason(m domain.MetricType, dir domain.Direction, value, threshold float64) string {
	verb := "exceeds"
	if dir == domain.FallsBelow {
		verb = "falls below"
	}
	return fmt.Sprintf("%s %.2f %s threshold %.2f", strings.ToUpper(string(m)), value, verb, threshold)
}

// SchedulerTick walks every schedule entry and fires those whose window
// boundary has been crossed at now. The occurrence key bookkeeping makes
// re-invocation within the same occurrence a no-op, independent of tick
// frequency.
func (e *Engine) SchedulerTick(ctx context.Context, now time.Time) (*port.TickResult, error) {
	entries, err := e.schedules.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	res := &port.TickResult{Now: now}
	for _, entry := range entries {
		res.Checked++
		key, due := entry.Due(now)
		if !due || key == entry.LastOccurrence {
			continue
		}
		action, err := e.fireEntry(ctx, entry, key, now)
		if err != nil {
			res.Errors = append(res.Errors, port.EntryError{EntryID: entry.ID, Err: err})
			if e.mx != nil {
				e.mx.RecordEntryError(string(domain.SourceSchedule))
			}
			e.logger.Warn("schedule firing failed",
				slog.String("entry_id", entry.ID),
				slog.String("campaign_id", entry.CampaignID),
				slog.Any("error", err))
			continue
		}
		res.Actions = append(res.Actions, *action)
		if e.mx != nil {
			e.mx.RecordScheduleFiring(string(entry.Action))
		}
	}

	if e.cfg.AutoApply {
		for _, a := range res.Actions {
			mu := e.campaignLock(a.CampaignID)
			mu.Lock()
			e.autoApplyLocked(ctx, []domain.PendingAction{a})
			mu.Unlock()
		}
	}
	return res, nil
}

// fireEntry emits the pending action for one window crossing and records
// the consumed occurrence on the entry. A failed emission marks the
// entry failed for this occurrence; it becomes eligible again at the
// next one.
func (e *Engine) fireEntry(ctx context.Context, entry domain.ScheduleEntry, key string, now time.Time) (*domain.PendingAction, error) {
	mu := e.campaignLock(entry.CampaignID)
	mu.Lock()
	defer mu.Unlock()

	action := &domain.PendingAction{
		ID:              uuid.NewString(),
		CampaignID:      entry.CampaignID,
		Action:          entry.Action,
		Reason:          scheduleReason(entry),
		Source:          domain.SourceSchedule,
		ScheduleEntryID: entry.ID,
		Status:          domain.ActionPending,
		CreatedAt:       now.UTC(),
	}
	if err := e.actions.Create(ctx, action); err != nil {
		if markErr := e.schedules.MarkExecution(ctx, entry.ID, domain.ScheduleFailed, key, now); markErr != nil {
			e.logger.Error("mark schedule failure", slog.String("entry_id", entry.ID), slog.Any("error", markErr))
		}
		return nil, fmt.Errorf("store action: %w", err)
	}
	if err := e.schedules.MarkExecution(ctx, entry.ID, domain.ScheduleExecuted, key, now); err != nil {
		return nil, fmt.Errorf("mark execution: %w", err)
	}
	e.logger.Info("schedule fired",
		slog.String("entry_id", entry.ID),
		slog.String("campaign_id", entry.CampaignID),
		slog.String("occurrence", key),
		slog.String("action", string(entry.Action)))
	return action, nil
}

func scheduleReason(entry domain.ScheduleEntry) string {
	// DayOfWeek counts from Monday, time.Weekday from Sunday.
	day := time.Weekday((entry.DayOfWeek + 1) % 7).String()
	switch entry.Action {
	case domain.ActionActivate:
		return fmt.Sprintf("schedule window %s %02d:00-%02d:00 opened", day, entry.StartHour, entry.EndHour)
	default:
		return fmt.Sprintf("schedule window %s %02d:00-%02d:00 closed", day, entry.StartHour, entry.EndHour)
	}
}

// ListPendingActions returns unresolved actions, newest first. An empty
// campaignID lists across all campaigns; a campaign with nothing pending
// yields an empty slice.
func (e *Engine) ListPendingActions(ctx context.Context, campaignID string) ([]domain.PendingAction, error) {
	return e.actions.ListPending(ctx, campaignID)
}

// ResolveAction approves or rejects one pending action. Approval applies
// the proposed mutation to the campaign and marks the action applied.
func (e *Engine) ResolveAction(ctx context.Context, actionID string, approve bool) (*domain.Campaign, error) {
	action, err := e.actions.Get(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", actionID, err)
	}

	mu := e.campaignLock(action.CampaignID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock; a concurrent resolution may have won.
	action, err = e.actions.Get(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", actionID, err)
	}
	if action.Resolved() {
		return nil, fmt.Errorf("action %s already %s: %w", actionID, action.Status, port.ErrInvalidState)
	}

	if !approve {
		if err := e.actions.UpdateStatus(ctx, actionID, domain.ActionRejected); err != nil {
			return nil, fmt.Errorf("reject action: %w", err)
		}
		if e.mx != nil {
			e.mx.RecordResolution("rejected")
		}
		return e.campaigns.Get(ctx, action.CampaignID)
	}

	if err := e.actions.UpdateStatus(ctx, actionID, domain.ActionApproved); err != nil {
		return nil, fmt.Errorf("approve action: %w", err)
	}
	if err := e.applyLocked(ctx, action); err != nil {
		return nil, err
	}
	if err := e.actions.UpdateStatus(ctx, actionID, domain.ActionApplied); err != nil {
		return nil, fmt.Errorf("mark applied: %w", err)
	}
	if e.mx != nil {
		e.mx.RecordResolution("applied")
	}
	return e.campaigns.Get(ctx, action.CampaignID)
}

// applyLocked performs the campaign mutation an approved action
// proposes. The caller must hold the campaign lock.
func (e *Engine) applyLocked(ctx context.Context, action *domain.PendingAction) error {
	switch action.Action {
	case domain.ActionPause:
		return e.campaigns.UpdateStatus(ctx, action.CampaignID, domain.CampaignPaused)
	case domain.ActionActivate:
		return e.campaigns.UpdateStatus(ctx, action.CampaignID, domain.CampaignActive)
	case domain.ActionAdjustBudget:
		c, err := e.campaigns.Get(ctx, action.CampaignID)
		if err != nil {
			return fmt.Errorf("campaign %s: %w", action.CampaignID, err)
		}
		factor := action.BudgetFactor
		if factor <= 0 {
			return fmt.Errorf("action %s: %w", action.ID, port.Invalid("budget_factor", "must be positive for adjust_budget"))
		}
		adjusted := int64(float64(c.BudgetCents) * factor)
		return e.campaigns.UpdateBudget(ctx, action.CampaignID, adjusted)
	case domain.ActionNotify:
		// Notification delivery is the collaborator's concern; applying
		// the action only records the decision.
		return nil
	}
	return fmt.Errorf("unknown action type %q", action.Action)
}

// autoApplyLocked applies freshly created actions in place. The caller
// must hold the campaign lock for every action passed in.
func (e *Engine) autoApplyLocked(ctx context.Context, actions []domain.PendingAction) {
	for i := range actions {
		a := &actions[i]
		if err := e.actions.UpdateStatus(ctx, a.ID, domain.ActionApproved); err != nil {
			e.logger.Error("auto-approve failed", slog.String("action_id", a.ID), slog.Any("error", err))
			continue
		}
		if err := e.applyLocked(ctx, a); err != nil {
			e.logger.Error("auto-apply failed", slog.String("action_id", a.ID), slog.Any("error", err))
			continue
		}
		if err := e.actions.UpdateStatus(ctx, a.ID, domain.ActionApplied); err != nil {
			e.logger.Error("mark applied failed", slog.String("action_id", a.ID), slog.Any("error", err))
			continue
		}
		if e.mx != nil {
			e.mx.RecordResolution("auto_applied")
		}
	}
}

// validateSnapshot enforces the non-negativity of every snapshot field.
func validateSnapshot(s domain.MetricsSnapshot) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"acos", s.ACOS},
		{"tacos", s.TACOS},
		{"margin", s.Margin},
		{"cpc", s.CPC},
		{"ctr", s.CTR},
		{"conversion_rate", s.ConversionRate},
		{"impressions", float64(s.Impressions)},
		{"clicks", float64(s.Clicks)},
		{"conversions", float64(s.Conversions)},
		{"spend_cents", float64(s.SpendCents)},
		{"revenue_cents", float64(s.RevenueCents)},
	}
	for _, c := range checks {
		if c.value < 0 {
			return port.Invalid(c.name, "must be non-negative, got %v", c.value)
		}
	}
	return nil
}
