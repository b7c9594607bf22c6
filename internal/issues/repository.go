package issues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for issue storage
type Repository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id string) (*Issue, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*Issue, error)
	Update(ctx context.Context, issue *Issue) error
	SoftDelete(ctx context.Context, id string) error
}

// PostgresRepository stores issues in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("issues: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const issueColumns = `id, issue_type, description, severity, detected_at, resolved, user_id, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, issue *Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.DetectedAt.IsZero() {
		issue.DetectedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO issues (id, issue_type, description, severity, detected_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING resolved, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		issue.ID,
		issue.IssueType,
		issue.Description,
		string(issue.Severity),
		issue.DetectedAt,
		issue.UserID,
	).Scan(&issue.Resolved, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("issues: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an active issue.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1 AND deleted_at IS NULL`, issueColumns)
	return scanIssue(r.pool.QueryRow(ctx, query, id))
}

// List fetches active issues, newest first. An empty userID lists all users
// (admin view).
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]*Issue, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE deleted_at IS NULL`, issueColumns)
	args := []any{}
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY detected_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("issues: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, issue)
	}
	return out, rows.Err()
}

// Update persists mutable fields of an issue.
func (r *PostgresRepository) Update(ctx context.Context, issue *Issue) error {
	query := `
		UPDATE issues
		SET description = $2, severity = $3, resolved = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		issue.ID,
		issue.Description,
		string(issue.Severity),
		issue.Resolved,
	).Scan(&issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrIssueNotFound
		}
		return fmt.Errorf("issues: update failed: %w", err)
	}
	return nil
}

// SoftDelete marks the issue deleted without removing the row.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE issues SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("issues: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIssueNotFound
	}
	return nil
}

func scanIssue(row pgx.Row) (*Issue, error) {
	var issue Issue
	err := row.Scan(
		&issue.ID,
		&issue.IssueType,
		&issue.Description,
		&issue.Severity,
		&issue.DetectedAt,
		&issue.Resolved,
		&issue.UserID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("issues: select failed: %w", err)
	}
	return &issue, nil
}
