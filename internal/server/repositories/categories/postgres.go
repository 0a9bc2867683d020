// Package categories provides PostgreSQL-backed storage for user categories.
// Every query is scoped by owner.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts c and fills ID and CreatedAt. A name already used by the
// same owner yields common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (user_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, string(c.Type)).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// FindByID returns the category id owned by ownerID, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Category, error) {
	return r.find(ctx, `
		SELECT id, user_id, name, type, created_at FROM categories
		WHERE id = $1 AND user_id = $2
	`, ownerID, id)
}

// FindByIDForUpdate is FindByID with a row lock held until the surrounding
// transaction ends. Retyping a category and writing entries into it both
// take this lock, so an entry never lands in a category of the other type.
func (r *PostgresRepository) FindByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Category, error) {
	return r.find(ctx, `
		SELECT id, user_id, name, type, created_at FROM categories
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, ownerID, id)
}

func (r *PostgresRepository) find(ctx context.Context, query, ownerID, id string) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListByUser returns the owner's categories ordered by name.
func (r *PostgresRepository) ListByUser(ctx context.Context, ownerID string) ([]*models.Category, error) {
	query := `
		SELECT id, user_id, name, type, created_at FROM categories
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Category{}
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update renames or retypes c. Only rows of c.UserID are touched.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories SET name = $1, type = $2
		WHERE id = $3 AND user_id = $4
	`
	res, err := r.db.ExecContext(ctx, query, c.Name, string(c.Type), c.ID, c.UserID)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

// Delete removes the category. Its entries must be gone already.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), dbx.IsInvalidText(err):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrAlreadyExists
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
