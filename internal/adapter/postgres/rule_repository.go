package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// RuleRepository implements port.RuleRepository using pgxpool.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository returns a new repository instance.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// Create stores a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.AutomationRule) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO automation_rules
    (id, campaign_id, metric_type, threshold_value, action_type, budget_factor, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rule.ID, rule.CampaignID, rule.Metric, rule.Threshold, rule.Action, rule.BudgetFactor, rule.CreatedAt)
	return err
}

// Get returns a rule by id.
func (r *RuleRepository) Get(ctx context.Context, id string) (*domain.AutomationRule, error) {
	var rule domain.AutomationRule
	err := r.pool.QueryRow(ctx, `SELECT id, campaign_id, metric_type, threshold_value, action_type, budget_factor, created_at
FROM automation_rules WHERE id = $1`, id).
		Scan(&rule.ID, &rule.CampaignID, &rule.Metric, &rule.Threshold, &rule.Action, &rule.BudgetFactor, &rule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Delete removes a rule by id.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM automation_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// ListByCampaign returns all rules owned by the campaign, oldest first.
func (r *RuleRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.AutomationRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, metric_type, threshold_value, action_type, budget_factor, created_at
FROM automation_rules WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AutomationRule, error) {
		var rule domain.AutomationRule
		err := row.Scan(&rule.ID, &rule.CampaignID, &rule.Metric, &rule.Threshold, &rule.Action, &rule.BudgetFactor, &rule.CreatedAt)
		return rule, err
	})
}
