package assessment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SQLReader serves exports from the assessments table over database/sql with
// the lib/pq driver, separate from the pgx write pool.
type SQLReader struct {
	db *sql.DB
}

func NewSQLReader(db *sql.DB) *SQLReader {
	return &SQLReader{db: db}
}

// OpenSQLReader opens a lib/pq connection for dsn.
func OpenSQLReader(dsn string) (*SQLReader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("assessment: open reader: %w", err)
	}
	return NewSQLReader(db), nil
}

// Close releases the underlying pool.
func (r *SQLReader) Close() error {
	return r.db.Close()
}

func (r *SQLReader) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	levels := make([]string, 0, len(filter.RiskLevels))
	for _, level := range filter.RiskLevels {
		levels = append(levels, string(level))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, clinic_name, daily_calls, reception_config, missed_call_strategy,
		       lead_follow_up_time, run_ads, avg_case_value, risk_score,
		       potential_revenue, risk_level, created_at
		FROM assessments
		WHERE created_at >= $1
		  AND (cardinality($2::text[]) = 0 OR risk_level = ANY($2))
		ORDER BY created_at DESC
		LIMIT NULLIF($3, 0)`,
		filter.Since.UTC(), pq.Array(levels), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("assessment: list failed: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var reception, strategy, followUp, level string
		if err := rows.Scan(&rec.ID, &rec.ClinicName, &rec.DailyCalls, &reception, &strategy,
			&followUp, &rec.RunAds, &rec.AvgCaseValue, &rec.RiskScore,
			&rec.PotentialRevenue, &level, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("assessment: scan failed: %w", err)
		}
		rec.ReceptionConfig = ReceptionConfig(reception)
		rec.MissedCallStrategy = MissedCallStrategy(strategy)
		rec.LeadFollowUpTime = FollowUpTime(followUp)
		rec.RiskLevel = RiskLevel(level)
		out = append(out, rec)
	}
	return out, rows.Err()
}
