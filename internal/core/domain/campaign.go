package domain

import "time"

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignExpired   CampaignStatus = "expired"
)

// ValidCampaignStatus reports whether s is one of the known statuses.
func ValidCampaignStatus(s CampaignStatus) bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignActive, CampaignPaused, CampaignExpired:
		return true
	}
	return false
}

// Campaign represents an advertising campaign under automation.
// Budgets are stored in integer units (e.g. cents). The identifier is
// generator-assigned at simulation time. Metrics holds the latest
// ingested snapshot and is nil until the first ingest.
type Campaign struct {
	ID             string
	Status         CampaignStatus
	BudgetCents    int64
	DurationDays   int
	TargetAudience string
	Category       string
	Keywords       []string
	Metrics        *MetricsSnapshot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
