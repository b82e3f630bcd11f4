package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// ActionRepository implements port.ActionRepository using pgxpool.
type ActionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository returns a new repository instance.
func NewActionRepository(pool *pgxpool.Pool) *ActionRepository {
	return &ActionRepository{pool: pool}
}

const actionColumns = `id, campaign_id, action_type, reason, source, rule_id, schedule_entry_id, budget_factor, status, created_at`

// Create stores a new pending action.
func (r *ActionRepository) Create(ctx context.Context, a *domain.PendingAction) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO pending_actions
    (id, campaign_id, action_type, reason, source, rule_id, schedule_entry_id, budget_factor, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.CampaignID, a.Action, a.Reason, a.Source, a.RuleID, a.ScheduleEntryID, a.BudgetFactor, a.Status, a.CreatedAt)
	return err
}

// Get returns a pending action by id.
func (r *ActionRepository) Get(ctx context.Context, id string) (*domain.PendingAction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+actionColumns+` FROM pending_actions WHERE id = $1`, id)
	a, err := scanAction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPending returns actions in pending state, newest first. An empty
// campaignID lists across all campaigns.
func (r *ActionRepository) ListPending(ctx context.Context, campaignID string) ([]domain.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions WHERE status = 'pending'`
	args := []any{}
	if campaignID != "" {
		query += ` AND campaign_id = $1`
		args = append(args, campaignID)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PendingAction, error) {
		return scanAction(row)
	})
}

// HasPendingForRule reports whether the rule still has an unresolved
// action outstanding.
func (r *ActionRepository) HasPendingForRule(ctx context.Context, ruleID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pending_actions WHERE rule_id = $1 AND status = 'pending')`, ruleID).
		Scan(&exists)
	return exists, err
}

// UpdateStatus transitions the action's review state.
func (r *ActionRepository) UpdateStatus(ctx context.Context, id string, status domain.ActionStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE pending_actions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func scanAction(row pgx.Row) (domain.PendingAction, error) {
	var a domain.PendingAction
	err := row.Scan(&a.ID, &a.CampaignID, &a.Action, &a.Reason, &a.Source, &a.RuleID, &a.ScheduleEntryID, &a.BudgetFactor, &a.Status, &a.CreatedAt)
	return a, err
}
