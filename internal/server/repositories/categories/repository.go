package categories

import (
	"context"

	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Category, error)
	FindByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Category, error)
	ListByUser(ctx context.Context, ownerID string) ([]*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, ownerID, id string) error
}
