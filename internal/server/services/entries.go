package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/repomanager"
)

const maxDescriptionLen = 200

// EntryInput carries the user-editable fields of an entry.
type EntryInput struct {
	Description string
	AmountCents int64
	Date        time.Time
	CategoryID  string
}

// EntryService manages profits and expenses of the calling user. Every
// method takes the kind so that /profits never touches an expense.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	inTx        func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		inTx: func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
			return dbx.WithTx(ctx, db, nil, fn)
		},
	}
}

// List returns the user's entries of kind, newest first.
func (s *EntryService) List(ctx context.Context, user *models.User, kind models.EntryKind) ([]*models.Entry, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.Entries(s.db).List(ctx, user.ID, kind)
}

// ListByCategory lists the entries of an owned category.
func (s *EntryService) ListByCategory(ctx context.Context, user *models.User, kind models.EntryKind, categoryID string) ([]*models.Entry, error) {
	c, err := auth.LoadOwned(ctx, user, categoryID, s.repomanager.Categories(s.db).FindByID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Entries(s.db).ListByCategory(ctx, user.ID, kind, c.ID)
}

// Get returns an owned entry of kind. Entries of another kind or another
// user are reported as common.ErrorNotFound.
func (s *EntryService) Get(ctx context.Context, user *models.User, kind models.EntryKind, id string) (*models.Entry, error) {
	return s.find(ctx, s.db, user, kind, id)
}

func (s *EntryService) find(ctx context.Context, db dbx.DBTX, user *models.User, kind models.EntryKind, id string) (*models.Entry, error) {
	repo := s.repomanager.Entries(db)
	return auth.LoadOwned(ctx, user, id, func(ctx context.Context, ownerID, id string) (*models.Entry, error) {
		e, err := repo.FindByID(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if e.Kind != kind {
			return nil, common.ErrorNotFound
		}
		return e, nil
	})
}

// Create stores a new entry. The category row stays locked until the
// insert commits.
func (s *EntryService) Create(ctx context.Context, user *models.User, kind models.EntryKind, in EntryInput) (*models.Entry, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	in, err := normalizeEntry(kind, in)
	if err != nil {
		return nil, err
	}

	var created *models.Entry
	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.lockCategory(ctx, tx, user, kind, in.CategoryID)
		if err != nil {
			return err
		}
		created, err = s.repomanager.Entries(tx).Create(ctx, &models.Entry{
			UserID:      user.ID,
			CategoryID:  c.ID,
			Kind:        kind,
			Description: in.Description,
			AmountCents: in.AmountCents,
			Date:        in.Date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *EntryService) Update(ctx context.Context, user *models.User, kind models.EntryKind, id string, in EntryInput) (*models.Entry, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	in, err := normalizeEntry(kind, in)
	if err != nil {
		return nil, err
	}

	var updated *models.Entry
	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.find(ctx, tx, user, kind, id)
		if err != nil {
			return err
		}
		c, err := s.lockCategory(ctx, tx, user, kind, in.CategoryID)
		if err != nil {
			return err
		}

		e.CategoryID = c.ID
		e.CategoryName = c.Name
		e.Description = in.Description
		e.AmountCents = in.AmountCents
		e.Date = in.Date

		if err := s.repomanager.Entries(tx).Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, user *models.User, kind models.EntryKind, id string) error {
	e, err := s.Get(ctx, user, kind, id)
	if err != nil {
		return err
	}
	return s.repomanager.Entries(s.db).Delete(ctx, user.ID, e.ID)
}

// lockCategory loads the target category with a row lock and checks that
// it belongs to user and matches kind.
func (s *EntryService) lockCategory(ctx context.Context, tx dbx.DBTX, user *models.User, kind models.EntryKind, id string) (*models.Category, error) {
	c, err := auth.LoadOwned(ctx, user, id, s.repomanager.Categories(tx).FindByIDForUpdate)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: category not found", common.ErrValidation)
		}
		return nil, err
	}
	if c.Type != kind.CategoryType() {
		return nil, fmt.Errorf("%w: category %q is not of type %s", common.ErrValidation, c.Name, kind.CategoryType())
	}
	return c, nil
}

// normalizeEntry trims in and checks the fields that need no lookup.
func normalizeEntry(kind models.EntryKind, in EntryInput) (EntryInput, error) {
	if !kind.Valid() {
		return in, fmt.Errorf("%w: unknown entry kind %q", common.ErrValidation, kind)
	}

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, fmt.Errorf("%w: description is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return in, fmt.Errorf("%w: description must be at most %d characters", common.ErrValidation, maxDescriptionLen)
	}
	if in.AmountCents <= 0 {
		return in, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	if in.Date.IsZero() {
		return in, fmt.Errorf("%w: date is required", common.ErrValidation)
	}
	if in.CategoryID == "" {
		return in, fmt.Errorf("%w: categoryId is required", common.ErrValidation)
	}
	return in, nil
}
