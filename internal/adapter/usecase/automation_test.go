package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meli-automation/internal/adapter/memory"
	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, cfg EngineConfig) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine := NewEngine(store.Campaigns(), store.Rules(), store.Schedules(), store.Actions(), testLogger(), nil, cfg)
	return engine, store
}

func seedCampaign(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := store.Campaigns().Create(context.Background(), &domain.Campaign{
		ID:          id,
		Status:      domain.CampaignActive,
		BudgetCents: 100000,
		Category:    "electronics",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
}

func seedRule(t *testing.T, store *memory.Store, r domain.AutomationRule) domain.AutomationRule {
	t.Helper()
	if r.ID == "" {
		r.ID = "rule-" + string(r.Metric)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, store.Rules().Create(context.Background(), &r))
	return r
}

func TestEvaluateCostMetricExceedsThreshold(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST",
		Metric:     domain.MetricACOS,
		Threshold:  0.20,
		Action:     domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Actions, 1)

	action := res.Actions[0]
	require.Equal(t, domain.ActionPause, action.Action)
	require.Equal(t, domain.SourceRule, action.Source)
	require.Equal(t, domain.ActionPending, action.Status)
	require.Contains(t, action.Reason, "ACOS")
	require.Contains(t, action.Reason, "0.35")
	require.Contains(t, action.Reason, "0.20")

	// the snapshot replaced the campaign's stored metrics
	c, err := store.Campaigns().Get(context.Background(), "CAMP_TEST")
	require.NoError(t, err)
	require.NotNil(t, c.Metrics)
	require.Equal(t, 0.35, c.Metrics.ACOS)
}

func TestEvaluateNoTriggerWithoutCrossing(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST",
		Metric:     domain.MetricACOS,
		Threshold:  0.20,
		Action:     domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.10})
	require.NoError(t, err)
	require.Empty(t, res.Actions)
	require.Equal(t, 1, res.Evaluated)
}

func TestEvaluateBoundaryIsStrict(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST",
		Metric:     domain.MetricACOS,
		Threshold:  0.20,
		Action:     domain.ActionPause,
	})

	// exactly at the threshold must not trigger
	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.20})
	require.NoError(t, err)
	require.Empty(t, res.Actions)
}

func TestEvaluatePerformanceMetricFallsBelow(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID:   "CAMP_TEST",
		Metric:       domain.MetricCTR,
		Threshold:    0.02,
		Action:       domain.ActionAdjustBudget,
		BudgetFactor: 0.8,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{CTR: 0.01})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	require.Equal(t, domain.ActionAdjustBudget, res.Actions[0].Action)
	require.Equal(t, 0.8, res.Actions[0].BudgetFactor)
	require.Contains(t, res.Actions[0].Reason, "falls below")
}

func TestEvaluateMultipleRulesTriggerIndependently(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		ID: "r1", CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})
	seedRule(t, store, domain.AutomationRule{
		ID: "r2", CampaignID: "CAMP_TEST", Metric: domain.MetricCPC, Threshold: 1.00, Action: domain.ActionNotify,
	})
	seedRule(t, store, domain.AutomationRule{
		ID: "r3", CampaignID: "CAMP_TEST", Metric: domain.MetricMargin, Threshold: 0.50, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{
		ACOS:   0.35, // exceeds 0.20
		CPC:    2.50, // exceeds 1.00
		Margin: 0.60, // above 0.50, no trigger
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Evaluated)
	require.Len(t, res.Actions, 2)
}

func TestEvaluateReIngestReTriggersByDefault(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	snap := domain.MetricsSnapshot{ACOS: 0.35}
	for i := 0; i < 2; i++ {
		res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", snap)
		require.NoError(t, err)
		require.Len(t, res.Actions, 1)
	}

	pending, err := engine.ListPendingActions(context.Background(), "CAMP_TEST")
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func TestEvaluateSuppressDuplicates(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{SuppressDuplicates: true})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		ID: "r1", CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	snap := domain.MetricsSnapshot{ACOS: 0.35}
	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", snap)
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)

	// the first action is still pending, so the rule is suppressed
	res, err = engine.EvaluateMetrics(context.Background(), "CAMP_TEST", snap)
	require.NoError(t, err)
	require.Empty(t, res.Actions)

	// once resolved, the rule triggers again
	pending, err := engine.ListPendingActions(context.Background(), "CAMP_TEST")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	_, err = engine.ResolveAction(context.Background(), pending[0].ID, false)
	require.NoError(t, err)

	res, err = engine.EvaluateMetrics(context.Background(), "CAMP_TEST", snap)
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
}

func TestEvaluateIsolatesRuleFailures(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	// a corrupt rule stored with an unknown metric type must not stop the
	// healthy rule from producing its action
	seedRule(t, store, domain.AutomationRule{
		ID: "bad", CampaignID: "CAMP_TEST", Metric: "roas", Threshold: 0.5, Action: domain.ActionPause,
	})
	seedRule(t, store, domain.AutomationRule{
		ID: "good", CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "bad", res.Errors[0].EntryID)
}

func TestEvaluateUnknownCampaign(t *testing.T) {
	engine, _ := newTestEngine(t, EngineConfig{})
	_, err := engine.EvaluateMetrics(context.Background(), "CAMP_NONE", domain.MetricsSnapshot{})
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestEvaluateRejectsNegativeSnapshot(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	_, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: -0.1})
	require.True(t, port.IsValidation(err))
}

func TestEvaluateAutoApply(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{AutoApply: true})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)

	c, err := store.Campaigns().Get(context.Background(), "CAMP_TEST")
	require.NoError(t, err)
	require.Equal(t, domain.CampaignPaused, c.Status)

	// nothing left pending
	pending, err := engine.ListPendingActions(context.Background(), "CAMP_TEST")
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestListPendingActionsQuietCampaign(t *testing.T) {
	engine, _ := newTestEngine(t, EngineConfig{})
	pending, err := engine.ListPendingActions(context.Background(), "CAMP_NONE")
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.Empty(t, pending)
}

func TestResolveActionApprovePause(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	actionID := res.Actions[0].ID

	c, err := engine.ResolveAction(context.Background(), actionID, true)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignPaused, c.Status)

	stored, err := store.Actions().Get(context.Background(), actionID)
	require.NoError(t, err)
	require.Equal(t, domain.ActionApplied, stored.Status)

	// resolving again must fail: the action already left pending state
	_, err = engine.ResolveAction(context.Background(), actionID, true)
	require.ErrorIs(t, err, port.ErrInvalidState)
}

func TestResolveActionReject(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	actionID := res.Actions[0].ID

	c, err := engine.ResolveAction(context.Background(), actionID, false)
	require.NoError(t, err)
	// rejection leaves the campaign untouched
	require.Equal(t, domain.CampaignActive, c.Status)

	stored, err := store.Actions().Get(context.Background(), actionID)
	require.NoError(t, err)
	require.Equal(t, domain.ActionRejected, stored.Status)
}

func TestResolveActionAdjustBudget(t *testing.T) {
	engine, store := newTestEngine(t, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		CampaignID: "CAMP_TEST", Metric: domain.MetricCTR, Threshold: 0.02,
		Action: domain.ActionAdjustBudget, BudgetFactor: 0.5,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{CTR: 0.01})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)

	c, err := engine.ResolveAction(context.Background(), res.Actions[0].ID, true)
	require.NoError(t, err)
	require.Equal(t, int64(50000), c.BudgetCents)
}

func TestResolveActionUnknownID(t *testing.T) {
	engine, _ := newTestEngine(t, EngineConfig{})
	_, err := engine.ResolveAction(context.Background(), "no-such-action", true)
	require.ErrorIs(t, err, port.ErrNotFound)
}

// failingActionRepo wraps a real repository and fails every Create.
type failingActionRepo struct {
	port.ActionRepository
}

func (f *failingActionRepo) Create(context.Context, *domain.PendingAction) error {
	return errors.New("storage unavailable")
}

func TestEvaluateCollectsStorageFailures(t *testing.T) {
	store := memory.NewStore()
	engine := NewEngine(store.Campaigns(), store.Rules(), store.Schedules(),
		&failingActionRepo{store.Actions()}, testLogger(), nil, EngineConfig{})
	seedCampaign(t, store, "CAMP_TEST")
	seedRule(t, store, domain.AutomationRule{
		ID: "r1", CampaignID: "CAMP_TEST", Metric: domain.MetricACOS, Threshold: 0.20, Action: domain.ActionPause,
	})

	res, err := engine.EvaluateMetrics(context.Background(), "CAMP_TEST", domain.MetricsSnapshot{ACOS: 0.35})
	require.NoError(t, err)
	require.Empty(t, res.Actions)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "r1", res.Errors[0].EntryID)
}
