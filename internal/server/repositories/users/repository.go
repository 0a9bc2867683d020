package users

import (
	"context"

	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// Repository is the credential directory.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}
