package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/repomanager"
)

const maxCategoryNameLen = 100

// CategoryService manages the categories of the calling user.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

func (s *CategoryService) List(ctx context.Context, user *models.User) ([]*models.Category, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.Categories(s.db).ListByUser(ctx, user.ID)
}

// Get returns the category if user owns it, common.ErrorNotFound otherwise.
func (s *CategoryService) Get(ctx context.Context, user *models.User, id string) (*models.Category, error) {
	return auth.LoadOwned(ctx, user, id, s.repomanager.Categories(s.db).FindByID)
}

func (s *CategoryService) Create(ctx context.Context, user *models.User, name string, typ models.CategoryType) (*models.Category, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	name, err := validateCategory(name, typ)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Categories(s.db).Create(ctx, &models.Category{UserID: user.ID, Name: name, Type: typ})
}

// Update renames or retypes a category. The type is frozen while the
// category still has entries, since entries must match their category type.
func (s *CategoryService) Update(ctx context.Context, user *models.User, id, name string, typ models.CategoryType) (*models.Category, error) {
	name, err := validateCategory(name, typ)
	if err != nil {
		return nil, err
	}

	var updated *models.Category
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Categories(tx)

		c, err := auth.LoadOwned(ctx, user, id, repo.FindByIDForUpdate)
		if err != nil {
			return err
		}

		if c.Type != typ {
			n, err := s.repomanager.Entries(tx).CountByCategory(ctx, user.ID, c.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: category type cannot change while it has entries", common.ErrValidation)
			}
		}

		c.Name = name
		c.Type = typ
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the category together with its entries in one transaction.
func (s *CategoryService) Delete(ctx context.Context, user *models.User, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Categories(tx)

		c, err := auth.LoadOwned(ctx, user, id, repo.FindByIDForUpdate)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Entries(tx).DeleteByCategory(ctx, user.ID, c.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, user.ID, c.ID)
	})
}

func validateCategory(name string, typ models.CategoryType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "", fmt.Errorf("%w: name must be at most %d characters", common.ErrValidation, maxCategoryNameLen)
	}
	if !typ.Valid() {
		return "", fmt.Errorf("%w: type must be PROFIT or EXPENSE", common.ErrValidation)
	}
	return name, nil
}
