package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository inserts assessments with pgx. It never updates or reads.
type PostgresRepository struct {
	db pgExecer
}

// NewPostgresRepository accepts a *pgxpool.Pool or anything with its Exec.
func NewPostgresRepository(db pgExecer) *PostgresRepository {
	if db == nil {
		panic("assessment: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("assessment: record required")
	}
	query := `
		INSERT INTO assessments (
			id, clinic_name, daily_calls, reception_config, missed_call_strategy,
			lead_follow_up_time, run_ads, avg_case_value, risk_score,
			potential_revenue, risk_level, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.ClinicName,
		rec.DailyCalls,
		string(rec.ReceptionConfig),
		string(rec.MissedCallStrategy),
		string(rec.LeadFollowUpTime),
		rec.RunAds,
		rec.AvgCaseValue,
		rec.RiskScore,
		rec.PotentialRevenue,
		string(rec.RiskLevel),
		rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("assessment: insert failed: %w", err)
	}
	return nil
}
