package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo campaigns with a few automation rules and schedule
// windows, useful for local development.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	categories := []string{"electronics", "home", "fashion", "sports", "toys"}
	for i := 1; i <= 5; i++ {
		campaignID := fmt.Sprintf("CAMP-SEED%04d", i)
		budget := int64(100000 * i) // 1000.00 units per step
		keywords := []string{"oferta", "envio gratis", categories[i-1]}
		_, err := db.Exec(ctx, `INSERT INTO campaigns
    (id, status, budget_cents, duration_days, target_audience, category, keywords, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now()) ON CONFLICT DO NOTHING`,
			campaignID, "active", budget, 30, "retail shoppers", categories[i-1], keywords)
		if err != nil {
			return err
		}

		// a cost guard and a performance guard per campaign
		_, err = db.Exec(ctx, `INSERT INTO automation_rules
    (id, campaign_id, metric_type, threshold_value, action_type, budget_factor, created_at)
VALUES ($1,$2,$3,$4,$5,$6,now()) ON CONFLICT DO NOTHING`,
			uuid.NewString(), campaignID, "acos", 0.15+r.Float64()*0.15, "pause", 0.0)
		if err != nil {
			return err
		}
		_, err = db.Exec(ctx, `INSERT INTO automation_rules
    (id, campaign_id, metric_type, threshold_value, action_type, budget_factor, created_at)
VALUES ($1,$2,$3,$4,$5,$6,now()) ON CONFLICT DO NOTHING`,
			uuid.NewString(), campaignID, "ctr", 0.01, "adjust_budget", 0.8)
		if err != nil {
			return err
		}

		// weekday business-hours activation window
		_, err = db.Exec(ctx, `INSERT INTO schedule_entries
    (id, campaign_id, day_of_week, start_hour, end_hour, action, status, last_occurrence, created_at)
VALUES ($1,$2,$3,$4,$5,$6,'pending','',now()) ON CONFLICT DO NOTHING`,
			uuid.NewString(), campaignID, 1+r.Intn(5), 8, 20, "activate")
		if err != nil {
			return err
		}
	}
	return nil
}
