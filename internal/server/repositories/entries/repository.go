package entries

import (
	"context"

	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Entry) (*models.Entry, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Entry, error)
	List(ctx context.Context, ownerID string, kind models.EntryKind) ([]*models.Entry, error)
	ListByCategory(ctx context.Context, ownerID string, kind models.EntryKind, categoryID string) ([]*models.Entry, error)
	Update(ctx context.Context, e *models.Entry) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByCategory(ctx context.Context, ownerID, categoryID string) (int64, error)
	CountByCategory(ctx context.Context, ownerID, categoryID string) (int64, error)
	Totals(ctx context.Context, ownerID string) (profits, expenses int64, err error)
	TotalsByCategory(ctx context.Context, ownerID string, kind models.EntryKind) ([]models.CategoryTotal, error)
}
