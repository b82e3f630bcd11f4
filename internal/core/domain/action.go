package domain

import "time"

// ActionSource identifies which subsystem proposed a pending action.
type ActionSource string

const (
	SourceRule     ActionSource = "rule"
	SourceSchedule ActionSource = "schedule"
)

// ActionStatus is the review state of a pending action. Applied and
// rejected are terminal.
type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionApproved ActionStatus = "approved"
	ActionRejected ActionStatus = "rejected"
	ActionApplied  ActionStatus = "applied"
)

// PendingAction is a campaign mutation proposed by rule evaluation or
// schedule firing, awaiting operator approval (or auto-applied when the
// engine is configured to do so). Reason is human-readable and names the
// metric, the observed value and the threshold for rule-sourced actions.
type PendingAction struct {
	ID         string
	CampaignID string
	Action     ActionType
	Reason     string
	Source     ActionSource
	// RuleID is set when Source is rule, ScheduleEntryID when Source is
	// schedule. The other is empty.
	RuleID          string
	ScheduleEntryID string
	// BudgetFactor is carried from the originating rule for adjust_budget
	// actions.
	BudgetFactor float64
	Status       ActionStatus
	CreatedAt    time.Time
}

// Resolved reports whether the action has left the pending state.
func (a PendingAction) Resolved() bool {
	return a.Status != ActionPending
}
