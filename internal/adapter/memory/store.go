// Package memory provides mutex-guarded in-memory implementations of
// the repository ports. It backs the engine in tests and in deployments
// that do not need durable storage; the PostgreSQL adapter is the
// production counterpart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// Store holds all four repositories behind one mutex. Values are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu        sync.RWMutex
	campaigns map[string]domain.Campaign
	rules     map[string]domain.AutomationRule
	schedules map[string]domain.ScheduleEntry
	actions   map[string]domain.PendingAction
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		campaigns: make(map[string]domain.Campaign),
		rules:     make(map[string]domain.AutomationRule),
		schedules: make(map[string]domain.ScheduleEntry),
		actions:   make(map[string]domain.PendingAction),
	}
}

// Campaigns returns the campaign repository view of the store.
func (s *Store) Campaigns() port.CampaignRepository { return (*campaignRepo)(s) }

// Rules returns the rule repository view of the store.
func (s *Store) Rules() port.RuleRepository { return (*ruleRepo)(s) }

// Schedules returns the schedule repository view of the store.
func (s *Store) Schedules() port.ScheduleRepository { return (*scheduleRepo)(s) }

// Actions returns the pending-action repository view of the store.
func (s *Store) Actions() port.ActionRepository { return (*actionRepo)(s) }

type campaignRepo Store

func (r *campaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = cloneCampaign(*c)
	return nil
}

func (r *campaignRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	out := cloneCampaign(c)
	return &out, nil
}

func (r *campaignRepo) UpdateStatus(_ context.Context, id string, status domain.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return port.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	r.campaigns[id] = c
	return nil
}

func (r *campaignRepo) UpdateBudget(_ context.Context, id string, budgetCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return port.ErrNotFound
	}
	c.BudgetCents = budgetCents
	c.UpdatedAt = time.Now().UTC()
	r.campaigns[id] = c
	return nil
}

func (r *campaignRepo) SetMetrics(_ context.Context, id string, snap domain.MetricsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return port.ErrNotFound
	}
	c.Metrics = &snap
	c.UpdatedAt = time.Now().UTC()
	r.campaigns[id] = c
	return nil
}

type ruleRepo Store

func (r *ruleRepo) Create(_ context.Context, rule *domain.AutomationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = *rule
	return nil
}

func (r *ruleRepo) Get(_ context.Context, id string) (*domain.AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &rule, nil
}

func (r *ruleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return port.ErrNotFound
	}
	delete(r.rules, id)
	return nil
}

func (r *ruleRepo) ListByCampaign(_ context.Context, campaignID string) ([]domain.AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AutomationRule, 0)
	for _, rule := range r.rules {
		if rule.CampaignID == campaignID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type scheduleRepo Store

func (r *scheduleRepo) Create(_ context.Context, e *domain.ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[e.ID] = cloneSchedule(*e)
	return nil
}

func (r *scheduleRepo) Get(_ context.Context, id string) (*domain.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.schedules[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	out := cloneSchedule(e)
	return &out, nil
}

func (r *scheduleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return port.ErrNotFound
	}
	delete(r.schedules, id)
	return nil
}

func (r *scheduleRepo) ListByCampaign(_ context.Context, campaignID string) ([]domain.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ScheduleEntry, 0)
	for _, e := range r.schedules {
		if e.CampaignID == campaignID {
			out = append(out, cloneSchedule(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *scheduleRepo) ListAll(_ context.Context) ([]domain.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ScheduleEntry, 0, len(r.schedules))
	for _, e := range r.schedules {
		out = append(out, cloneSchedule(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *scheduleRepo) MarkExecution(_ context.Context, id string, status domain.ScheduleEntryStatus, occurrence string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.schedules[id]
	if !ok {
		return port.ErrNotFound
	}
	e.Status = status
	e.LastOccurrence = occurrence
	e.LastExecutedAt = &at
	r.schedules[id] = e
	return nil
}

type actionRepo Store

func (r *actionRepo) Create(_ context.Context, a *domain.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.ID] = *a
	return nil
}

func (r *actionRepo) Get(_ context.Context, id string) (*domain.PendingAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &a, nil
}

func (r *actionRepo) ListPending(_ context.Context, campaignID string) ([]domain.PendingAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PendingAction, 0)
	for _, a := range r.actions {
		if a.Status != domain.ActionPending {
			continue
		}
		if campaignID != "" && a.CampaignID != campaignID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *actionRepo) HasPendingForRule(_ context.Context, ruleID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actions {
		if a.RuleID == ruleID && a.Status == domain.ActionPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *actionRepo) UpdateStatus(_ context.Context, id string, status domain.ActionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok {
		return port.ErrNotFound
	}
	a.Status = status
	r.actions[id] = a
	return nil
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	if c.Keywords != nil {
		c.Keywords = append([]string(nil), c.Keywords...)
	}
	if c.Metrics != nil {
		snap := *c.Metrics
		c.Metrics = &snap
	}
	return c
}

func cloneSchedule(e domain.ScheduleEntry) domain.ScheduleEntry {
	if e.LastExecutedAt != nil {
		at := *e.LastExecutedAt
		e.LastExecutedAt = &at
	}
	return e
}
