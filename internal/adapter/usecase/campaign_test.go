package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"meli-automation/internal/adapter/memory"
	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

func newTestCampaignService(t *testing.T) (*CampaignService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewCampaignService(store.Campaigns(), store.Rules(), store.Schedules(), testLogger())
	return svc, store
}

func TestSimulateCreatesDraftCampaign(t *testing.T) {
	svc, store := newTestCampaignService(t)

	c, err := svc.Simulate(context.Background(), port.SimulationRequest{
		BudgetCents:  100000,
		DurationDays: 30,
		Category:     "electronics",
		Keywords:     []string{"notebook", "ssd"},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(c.ID, "CAMP-"))
	require.Equal(t, domain.CampaignDraft, c.Status)
	require.NotNil(t, c.Metrics)
	require.Positive(t, c.Metrics.Impressions)
	require.Positive(t, c.Metrics.Clicks)
	require.GreaterOrEqual(t, c.Metrics.CTR, 0.01)

	stored, err := store.Campaigns().Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, stored.ID)
}

func TestSimulateProjectionIsDeterministic(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	req := port.SimulationRequest{BudgetCents: 50000, DurationDays: 14, Category: "home", Keywords: []string{"sofa"}}

	a, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.Metrics.CTR, b.Metrics.CTR)
	require.Equal(t, a.Metrics.Impressions, b.Metrics.Impressions)
}

func TestSimulateValidation(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	cases := []port.SimulationRequest{
		{BudgetCents: 0, DurationDays: 30, Category: "x"},
		{BudgetCents: 1000, DurationDays: 0, Category: "x"},
		{BudgetCents: 1000, DurationDays: 30, Category: ""},
	}
	for _, req := range cases {
		_, err := svc.Simulate(context.Background(), req)
		require.True(t, port.IsValidation(err), "request %+v", req)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	c, err := svc.Simulate(context.Background(), port.SimulationRequest{BudgetCents: 1000, DurationDays: 7, Category: "toys"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), c.ID, "archived")
	require.True(t, port.IsValidation(err))

	updated, err := svc.UpdateStatus(context.Background(), c.ID, domain.CampaignActive)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignActive, updated.Status)
}

func TestCreateRuleValidation(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	c, err := svc.Simulate(context.Background(), port.SimulationRequest{BudgetCents: 1000, DurationDays: 7, Category: "toys"})
	require.NoError(t, err)

	cases := []struct {
		name string
		rule domain.AutomationRule
	}{
		{"unknown metric", domain.AutomationRule{CampaignID: c.ID, Metric: "roas", Threshold: 0.5, Action: domain.ActionPause}},
		{"unknown action", domain.AutomationRule{CampaignID: c.ID, Metric: domain.MetricACOS, Threshold: 0.5, Action: "archive"}},
		{"ratio above one", domain.AutomationRule{CampaignID: c.ID, Metric: domain.MetricACOS, Threshold: 1.5, Action: domain.ActionPause}},
		{"negative threshold", domain.AutomationRule{CampaignID: c.ID, Metric: domain.MetricCPC, Threshold: -1, Action: domain.ActionPause}},
		{"adjust without factor", domain.AutomationRule{CampaignID: c.ID, Metric: domain.MetricCTR, Threshold: 0.02, Action: domain.ActionAdjustBudget}},
	}
	for _, tc := range cases {
		_, err := svc.CreateRule(context.Background(), tc.rule)
		require.True(t, port.IsValidation(err), tc.name)
	}

	// cpc is not a ratio metric: thresholds above 1 are fine
	rule, err := svc.CreateRule(context.Background(), domain.AutomationRule{
		CampaignID: c.ID, Metric: domain.MetricCPC, Threshold: 2.50, Action: domain.ActionNotify,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rule.ID)
}

func TestCreateRuleUnknownCampaign(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	_, err := svc.CreateRule(context.Background(), domain.AutomationRule{
		CampaignID: "CAMP_NONE", Metric: domain.MetricACOS, Threshold: 0.2, Action: domain.ActionPause,
	})
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestRuleLifecycle(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	c, err := svc.Simulate(context.Background(), port.SimulationRequest{BudgetCents: 1000, DurationDays: 7, Category: "toys"})
	require.NoError(t, err)

	rule, err := svc.CreateRule(context.Background(), domain.AutomationRule{
		CampaignID: c.ID, Metric: domain.MetricACOS, Threshold: 0.2, Action: domain.ActionPause,
	})
	require.NoError(t, err)

	rules, err := svc.ListRules(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	require.NoError(t, svc.DeleteRule(context.Background(), rule.ID))
	require.ErrorIs(t, svc.DeleteRule(context.Background(), rule.ID), port.ErrNotFound)

	rules, err = svc.ListRules(context.Background(), c.ID)
	require.NoError(t, err)
	require.Empty(t, rules)
}

func TestCreateScheduleValidation(t *testing.T) {
	svc, _ := newTestCampaignService(t)
	c, err := svc.Simulate(context.Background(), port.SimulationRequest{BudgetCents: 1000, DurationDays: 7, Category: "toys"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		entry domain.ScheduleEntry
	}{
		{"day too high", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: 7, StartHour: 8, EndHour: 18, Action: domain.ActionActivate}},
		{"negative day", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: -1, StartHour: 8, EndHour: 18, Action: domain.ActionActivate}},
		{"end before start", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: 1, StartHour: 18, EndHour: 8, Action: domain.ActionActivate}},
		{"end equals start", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: 1, StartHour: 8, EndHour: 8, Action: domain.ActionActivate}},
		{"hour out of range", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: 1, StartHour: 8, EndHour: 24, Action: domain.ActionActivate}},
		{"bad action", domain.ScheduleEntry{CampaignID: c.ID, DayOfWeek: 1, StartHour: 8, EndHour: 18, Action: domain.ActionNotify}},
	}
	for _, tc := range cases {
		_, err := svc.CreateSchedule(context.Background(), tc.entry)
		require.True(t, port.IsValidation(err), tc.name)
	}

	entry, err := svc.CreateSchedule(context.Background(), domain.ScheduleEntry{
		CampaignID: c.ID, DayOfWeek: 1, StartHour: 8, EndHour: 18, Action: domain.ActionActivate,
	})
	require.NoError(t, err)
	require.Equal(t, domain.SchedulePending, entry.Status)
	require.Empty(t, entry.LastOccurrence)
}
