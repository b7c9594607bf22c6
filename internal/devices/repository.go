package devices

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for device storage
type Repository interface {
	Register(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*Device, error)
	ListByUser(ctx context.Context, userID string) ([]*Device, error)
	Deactivate(ctx context.Context, id, userID string) error
}

// PostgresRepository stores devices in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("devices: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const deviceColumns = `id, name, serial_number, api_key, model, firmware_version,
	is_active, user_id, registered_at, created_at, updated_at`

// Register inserts a new row. Duplicate serials map to ErrSerialTaken.
func (r *PostgresRepository) Register(ctx context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	query := `
		INSERT INTO devices (id, name, serial_number, api_key, model, firmware_version, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING is_active, registered_at, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		d.ID,
		d.Name,
		d.SerialNumber,
		d.APIKey,
		d.Model,
		d.FirmwareVersion,
		d.UserID,
	).Scan(&d.IsActive, &d.RegisteredAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSerialTaken
		}
		return fmt.Errorf("devices: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an active device by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE id = $1 AND deleted_at IS NULL`, deviceColumns)
	return r.scanDevice(r.pool.QueryRow(ctx, query, id))
}

// GetByAPIKey fetches the active device holding the key. Used by the ingest
// authentication middleware.
func (r *PostgresRepository) GetByAPIKey(ctx context.Context, apiKey string) (*Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE api_key = $1 AND is_active AND deleted_at IS NULL`, deviceColumns)
	return r.scanDevice(r.pool.QueryRow(ctx, query, apiKey))
}

// ListByUser fetches all active devices owned by the user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE user_id = $1 AND deleted_at IS NULL ORDER BY registered_at`, deviceColumns)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("devices: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Device
	for rows.Next() {
		d, err := r.scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Deactivate disables a device owned by the user.
func (r *PostgresRepository) Deactivate(ctx context.Context, id, userID string) error {
	query := `
		UPDATE devices SET is_active = false, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("devices: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *PostgresRepository) scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.SerialNumber,
		&d.APIKey,
		&d.Model,
		&d.FirmwareVersion,
		&d.IsActive,
		&d.UserID,
		&d.RegisteredAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("devices: select failed: %w", err)
	}
	return &d, nil
}
