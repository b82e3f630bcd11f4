package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meli-automation/internal/core/domain"
	"meli-automation/internal/core/port"
)

// ScheduleRepository implements port.ScheduleRepository using pgxpool.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository returns a new repository instance.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, campaign_id, day_of_week, start_hour, end_hour, action, status, last_occurrence, last_executed_at, created_at`

// Create stores a new schedule entry.
func (r *ScheduleRepository) Create(ctx context.Context, e *domain.ScheduleEntry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO schedule_entries
    (id, campaign_id, day_of_week, start_hour, end_hour, action, status, last_occurrence, last_executed_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.CampaignID, e.DayOfWeek, e.StartHour, e.EndHour, e.Action, e.Status, e.LastOccurrence, e.LastExecutedAt, e.CreatedAt)
	return err
}

// Get returns a schedule entry by id.
func (r *ScheduleRepository) Get(ctx context.Context, id string) (*domain.ScheduleEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedule_entries WHERE id = $1`, id)
	e, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a schedule entry by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// ListByCampaign returns all schedule entries of a campaign.
func (r *ScheduleRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scheduleColumns+` FROM schedule_entries WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduleEntry, error) {
		return scanSchedule(row)
	})
}

// ListAll returns every schedule entry across campaigns.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]domain.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scheduleColumns+` FROM schedule_entries ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduleEntry, error) {
		return scanSchedule(row)
	})
}

// MarkExecution records the outcome of an occurrence firing.
func (r *ScheduleRepository) MarkExecution(ctx context.Context, id string, status domain.ScheduleEntryStatus, occurrence string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE schedule_entries
SET status = $1, last_occurrence = $2, last_executed_at = $3 WHERE id = $4`,
		status, occurrence, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row) (domain.ScheduleEntry, error) {
	var e domain.ScheduleEntry
	err := row.Scan(&e.ID, &e.CampaignID, &e.DayOfWeek, &e.StartHour, &e.EndHour, &e.Action, &e.Status, &e.LastOccurrence, &e.LastExecutedAt, &e.CreatedAt)
	return e, err
}
