// Package entries provides PostgreSQL-backed storage for profit and expense
// entries. Both kinds share one table and every query is scoped by owner.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `
	SELECT e.id, e.user_id, e.category_id, e.kind, e.description, e.amount_cents,
	       e.entry_date, e.created_at, e.updated_at, c.name
	FROM entries e
	JOIN categories c ON c.id = e.category_id
`

func (r *PostgresRepository) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (user_id, category_id, kind, description, amount_cents, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.CategoryID, string(e.Kind), e.Description, e.AmountCents, e.Date).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// FindByID returns the entry id owned by ownerID, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Entry, error) {
	query := selectColumns + `WHERE e.id = $1 AND e.user_id = $2`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// List returns the owner's entries of one kind, newest first.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, kind models.EntryKind) ([]*models.Entry, error) {
	query := selectColumns + `
		WHERE e.user_id = $1 AND e.kind = $2
		ORDER BY e.entry_date DESC, e.created_at DESC
	`
	return r.query(ctx, query, ownerID, string(kind))
}

// ListByCategory is List restricted to one category.
func (r *PostgresRepository) ListByCategory(ctx context.Context, ownerID string, kind models.EntryKind, categoryID string) ([]*models.Entry, error) {
	query := selectColumns + `
		WHERE e.user_id = $1 AND e.kind = $2 AND e.category_id = $3
		ORDER BY e.entry_date DESC, e.created_at DESC
	`
	return r.query(ctx, query, ownerID, string(kind), categoryID)
}

// Update overwrites the mutable fields of e and refreshes e.UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, e *models.Entry) error {
	query := `
		UPDATE entries
		SET category_id = $1, description = $2, amount_cents = $3, entry_date = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.CategoryID, e.Description, e.AmountCents, e.Date, e.ID, e.UserID).Scan(&e.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM entries WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByCategory removes every entry of the category and reports how many.
func (r *PostgresRepository) DeleteByCategory(ctx context.Context, ownerID, categoryID string) (int64, error) {
	query := `DELETE FROM entries WHERE category_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, categoryID, ownerID)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, ownerID, categoryID string) (int64, error) {
	query := `SELECT count(*) FROM entries WHERE category_id = $1 AND user_id = $2`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, categoryID, ownerID).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// Totals sums all profits and all expenses of the owner. SUM over bigint
// yields numeric, so the sums are cast back to bigint; a total beyond the
// int64 range of cents is reported as an internal error.
func (r *PostgresRepository) Totals(ctx context.Context, ownerID string) (profits, expenses int64, err error) {
	query := `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE kind = 'profit'), 0)::bigint,
			COALESCE(SUM(amount_cents) FILTER (WHERE kind = 'expense'), 0)::bigint
		FROM entries
		WHERE user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&profits, &expenses); err != nil {
		return 0, 0, sumError(err)
	}
	return profits, expenses, nil
}

// TotalsByCategory sums entries of one kind per category, largest first.
// Categories without entries of that kind are left out.
func (r *PostgresRepository) TotalsByCategory(ctx context.Context, ownerID string, kind models.EntryKind) ([]models.CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, c.type, SUM(e.amount_cents)::bigint
		FROM entries e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.kind = $2
		GROUP BY c.id, c.name, c.type
		ORDER BY SUM(e.amount_cents) DESC, c.name
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, string(kind))
	if err != nil {
		return nil, sumError(err)
	}
	defer rows.Close()

	result := []models.CategoryTotal{}
	for rows.Next() {
		var t models.CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.CategoryType, &t.TotalCents); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, sumError(err)
	}
	return result, nil
}

func sumError(err error) error {
	if dbx.IsNumericOutOfRange(err) {
		return fmt.Errorf("%w: total exceeds the supported range: %v", common.ErrorInternal, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := []*models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	e := &models.Entry{}
	err := s.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Kind, &e.Description, &e.AmountCents,
		&e.Date, &e.CreatedAt, &e.UpdatedAt, &e.CategoryName)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), dbx.IsInvalidText(err):
		return common.ErrorNotFound
	case dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: unknown category", common.ErrValidation)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
