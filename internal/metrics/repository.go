package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for metric storage
type Repository interface {
	InsertBatch(ctx context.Context, userID string, items []Create) (int, error)
	ListForUser(ctx context.Context, userID string, filter ListFilter) ([]*Metric, error)
	FetchWindow(ctx context.Context, userID string, metricType Type, start, end time.Time) ([]Reading, error)
	Summarize(ctx context.Context, userID string, metricType Type, period AggregationPeriod) ([]SummaryRow, error)
}

// PostgresRepository stores metrics in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("metrics: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// InsertBatch writes pre-validated batch items in one round trip and
// returns the number of rows inserted.
func (r *PostgresRepository) InsertBatch(ctx context.Context, userID string, items []Create) (int, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO metrics (id, metric_type, value, unit, sensor_model, timestamp, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	now := time.Now().UTC()
	for _, item := range items {
		ts := now
		if item.Timestamp != nil {
			ts = item.Timestamp.UTC()
		}
		unit := item.Unit
		if unit == "" {
			unit = item.MetricType.Unit()
		}
		batch.Queue(query, uuid.NewString(), string(item.MetricType), item.Value, unit, item.SensorModel, ts, userID)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range items {
		if _, err := results.Exec(); err != nil {
			return inserted, fmt.Errorf("metrics: batch insert failed: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// ListForUser fetches raw readings with optional type and range filters.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, filter ListFilter) ([]*Metric, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, metric_type, value, unit, sensor_model, timestamp, user_id, created_at
		FROM metrics
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	args := []any{userID}
	if filter.MetricType != "" {
		args = append(args, string(filter.MetricType))
		query += fmt.Sprintf(" AND metric_type = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND timestamp < $%d", len(args))
	}
	query += " ORDER BY timestamp DESC"
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metrics: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Metric
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.ID, &m.MetricType, &m.Value, &m.Unit, &m.SensorModel, &m.Timestamp, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("metrics: scan failed: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// FetchWindow returns non-null readings of one type inside [start, end),
// oldest first. An unknown user yields ErrUserNotFound; an existing user
// with no readings yields an empty slice.
func (r *PostgresRepository) FetchWindow(ctx context.Context, userID string, metricType Type, start, end time.Time) ([]Reading, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT value, timestamp
		FROM metrics
		WHERE user_id = $1 AND metric_type = $2 AND value IS NOT NULL
			AND timestamp >= $3 AND timestamp < $4 AND deleted_at IS NULL
		ORDER BY timestamp
	`
	rows, err := r.pool.Query(ctx, query, userID, string(metricType), start, end)
	if err != nil {
		return nil, fmt.Errorf("metrics: window select failed: %w", err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		var rd Reading
		if err := rows.Scan(&rd.Value, &rd.Timestamp); err != nil {
			return nil, fmt.Errorf("metrics: scan failed: %w", err)
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}

// Summarize averages non-null readings of one type per calendar period.
func (r *PostgresRepository) Summarize(ctx context.Context, userID string, metricType Type, period AggregationPeriod) ([]SummaryRow, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT date_trunc($3, timestamp) AS period, avg(value) AS value
		FROM metrics
		WHERE user_id = $1 AND metric_type = $2 AND value IS NOT NULL AND deleted_at IS NULL
		GROUP BY period
		ORDER BY period
	`
	rows, err := r.pool.Query(ctx, query, userID, string(metricType), string(period))
	if err != nil {
		return nil, fmt.Errorf("metrics: summary select failed: %w", err)
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Period, &row.Value); err != nil {
			return nil, fmt.Errorf("metrics: scan failed: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) requireUser(ctx context.Context, userID string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)`
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return fmt.Errorf("metrics: user lookup failed: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}
