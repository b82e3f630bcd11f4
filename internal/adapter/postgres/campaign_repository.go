package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository using pgxpool.
// The latest metrics snapshot is stored as a jsonb column alongside the
// campaign row.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create stores a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	var metricsJSON []byte
	if c.Metrics != nil {
		var err error
		metricsJSON, err = json.Marshal(c.Metrics)
		if err != nil {
			return err
		}
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
    (id, status, budget_cents, duration_days, target_audience, category, keywords, metrics, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.Status, c.BudgetCents, c.DurationDays, c.TargetAudience, c.Category, c.Keywords, metricsJSON, c.CreatedAt, c.UpdatedAt)
	return err
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	var (
		c           domain.Campaign
		metricsJSON []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT id, status, budget_cents, duration_days, target_audience, category, keywords, metrics, created_at, updated_at
FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.Status, &c.BudgetCents, &c.DurationDays, &c.TargetAudience, &c.Category, &c.Keywords, &metricsJSON, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(metricsJSON) > 0 {
		var snap domain.MetricsSnapshot
		if err = json.Unmarshal(metricsJSON, &snap); err != nil {
			return nil, err
		}
		c.Metrics = &snap
	}
	return &c, nil
}

// UpdateStatus sets the campaign status.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// UpdateBudget sets the campaign budget.
func (r *CampaignRepository) UpdateBudget(ctx context.Context, id string, budgetCents int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET budget_cents = $1, updated_at = $2 WHERE id = $3`,
		budgetCents, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// SetMetrics replaces the campaign's latest snapshot.
func (r *CampaignRepository) SetMetrics(ctx context.Context, id string, snap domain.MetricsSnapshot) error {
	metricsJSON, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET metrics = $1, updated_at = $2 WHERE id = $3`,
		metricsJSON, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}
