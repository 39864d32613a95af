package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores strategy calls in the relational database.
type PostgresRepository struct {
	db pgQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool (or any QueryRow-capable handle).
func NewPostgresRepository(db pgQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new pending row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO strategy_calls (id, name, email, calendar_system, patient_volume, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.CalendarSystem,
		req.PatientVolume,
		string(StatusPending),
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		CalendarSystem: req.CalendarSystem,
		PatientVolume:  req.PatientVolume,
		Status:         StatusPending,
		CreatedAt:      createdAt,
	}, nil
}

// GetByID fetches a strategy call.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `
		SELECT id, name, email, calendar_system, patient_volume, status, created_at
		FROM strategy_calls
		WHERE id = $1
	`
	var lead Lead
	var status string
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.CalendarSystem,
		&lead.PatientVolume,
		&status,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	lead.Status = Status(status)
	return &lead, nil
}
