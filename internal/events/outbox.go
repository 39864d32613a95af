package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// OutboxEntry represents a pending event. Completed lists the fan-out routes
// that already succeeded on an earlier attempt.
type OutboxEntry struct {
	ID        uuid.UUID
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
	Attempts  int
	Completed []string
}

// DeliveryHandler emits events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

// DeliveryFailure is what gets written back after a failed attempt.
type DeliveryFailure struct {
	Attempts      int
	Completed     []string
	LastError     string
	NextAttemptAt time.Time
	Dead          bool
}

type outboxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore persists events for reliable delivery.
type OutboxStore struct {
	db outboxDB
}

// NewOutboxStore accepts a *pgxpool.Pool or anything with the same Exec/Query methods.
func NewOutboxStore(db outboxDB) *OutboxStore {
	if db == nil {
		panic("events: pgx pool required")
	}
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	id := uuid.New()
	query := `
		INSERT INTO outbox (id, type, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.Exec(ctx, query, id, eventType, data); err != nil {
		return uuid.Nil, fmt.Errorf("events: insert outbox: %w", err)
	}
	return id, nil
}

// FetchPending returns undelivered, live entries whose next attempt is due.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, type, payload, created_at, attempts, completed_handlers
		FROM outbox
		WHERE delivered_at IS NULL
		  AND dead_at IS NULL
		  AND next_attempt_at <= now()
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.Type, &payload, &entry.CreatedAt, &entry.Attempts, &entry.Completed); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// MarkFailed records a failed attempt. A dead entry is never fetched again.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, f DeliveryFailure) error {
	query := `
		UPDATE outbox
		SET attempts = $2,
		    completed_handlers = $3,
		    last_error = $4,
		    next_attempt_at = $5,
		    dead_at = CASE WHEN $6::boolean THEN now() ELSE NULL END
		WHERE id = $1 AND delivered_at IS NULL
	`
	completed := f.Completed
	if completed == nil {
		completed = []string{}
	}
	if _, err := s.db.Exec(ctx, query, id, f.Attempts, completed, f.LastError, f.NextAttemptAt, f.Dead); err != nil {
		return fmt.Errorf("events: mark failed: %w", err)
	}
	return nil
}

// PendingSource is the part of OutboxStore the Deliverer needs.
type PendingSource interface {
	FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, f DeliveryFailure) error
}

// Deliverer polls the outbox and invokes the handler. Each entry gets a few
// quick retries per poll; after that it is parked until its next attempt time,
// which doubles per failed poll. Entries are dead-lettered after maxAttempts
// polls or on a permanent error.
type Deliverer struct {
	store       PendingSource
	handler     DeliveryHandler
	metrics     *metrics.LandingMetrics
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxElapsed  time.Duration
	maxRetries  uint64
	maxAttempts int
	retryBase   time.Duration
	retryMax    time.Duration
	now         func() time.Time
}

func NewDeliverer(store PendingSource, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:       store,
		handler:     handler,
		logger:      logger,
		batchSize:   25,
		interval:    2 * time.Second,
		maxElapsed:  5 * time.Second,
		maxRetries:  2,
		maxAttempts: 8,
		retryBase:   30 * time.Second,
		retryMax:    time.Hour,
		now:         time.Now,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// WithMaxElapsed bounds the in-poll retries of a single entry.
func (d *Deliverer) WithMaxElapsed(maxElapsed time.Duration) *Deliverer {
	if maxElapsed > 0 {
		d.maxElapsed = maxElapsed
	}
	return d
}

func (d *Deliverer) WithMaxAttempts(attempts int) *Deliverer {
	if attempts > 0 {
		d.maxAttempts = attempts
	}
	return d
}

// WithRetryDelay sets the parking delay after the first failed poll and its cap.
func (d *Deliverer) WithRetryDelay(base, ceiling time.Duration) *Deliverer {
	if base > 0 {
		d.retryBase = base
	}
	if ceiling >= d.retryBase {
		d.retryMax = ceiling
	}
	return d
}

func (d *Deliverer) WithMetrics(m *metrics.LandingMetrics) *Deliverer {
	d.metrics = m
	return d
}

// Start polls until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain delivers one batch of pending entries and returns how many were marked delivered.
func (d *Deliverer) Drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		completed, permanent, err := d.deliver(ctx, entry)
		if err != nil {
			d.fail(ctx, entry, completed, permanent, err)
			continue
		}
		d.metrics.ObserveOutboxDelivery(entry.Type, true)
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", entry.ID)
		} else if ok {
			delivered++
			d.logger.Debug("outbox delivered", "event_id", entry.ID, "type", entry.Type)
		}
	}
	return delivered
}

func (d *Deliverer) fail(ctx context.Context, entry OutboxEntry, completed []string, permanent bool, cause error) {
	attempts := entry.Attempts + 1
	dead := permanent || attempts >= d.maxAttempts
	failure := DeliveryFailure{
		Attempts:      attempts,
		Completed:     completed,
		LastError:     cause.Error(),
		NextAttemptAt: d.now().Add(d.retryDelay(attempts)),
		Dead:          dead,
	}
	if dead {
		d.metrics.ObserveOutboxDeadLetter(entry.Type)
		d.logger.Error("outbox entry dead-lettered", "error", cause, "event_id", entry.ID, "type", entry.Type,
			"attempts", attempts, "permanent", permanent)
	} else {
		d.metrics.ObserveOutboxDelivery(entry.Type, false)
		d.logger.Warn("outbox delivery failed", "error", cause, "event_id", entry.ID, "type", entry.Type,
			"attempts", attempts, "next_attempt_at", failure.NextAttemptAt)
	}
	if err := d.store.MarkFailed(ctx, entry.ID, failure); err != nil {
		d.logger.Error("failed to record outbox failure", "error", err, "event_id", entry.ID)
	}
}

// deliver runs the handler with a few quick retries. Routes that succeed are
// remembered across those retries so they are not invoked again.
func (d *Deliverer) deliver(ctx context.Context, entry OutboxEntry) ([]string, bool, error) {
	completed := slices.Clone(entry.Completed)
	permanent := false
	op := func() error {
		attempt := entry
		attempt.Completed = completed
		err := d.handler.Handle(ctx, attempt)
		var partial *DeliveryError
		if errors.As(err, &partial) {
			for _, name := range partial.Completed {
				if !slices.Contains(completed, name) {
					completed = append(completed, name)
				}
			}
		}
		permanent = err != nil && IsPermanent(err)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = d.maxElapsed
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, d.maxRetries), ctx))
	return completed, permanent, err
}

func (d *Deliverer) retryDelay(attempts int) time.Duration {
	delay := d.retryBase
	for i := 1; i < attempts && delay < d.retryMax; i++ {
		delay *= 2
	}
	return min(delay, d.retryMax)
}
