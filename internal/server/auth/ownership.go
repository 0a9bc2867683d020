package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// Owned is implemented by every resource that belongs to a single user.
type Owned interface {
	OwnerID() string
}

// AssertOwnership fails with common.ErrOwnershipViolation unless user owns res.
func AssertOwnership(res Owned, user *models.User) error {
	if user == nil || user.ID == "" || res == nil || res.OwnerID() != user.ID {
		return common.ErrOwnershipViolation
	}
	return nil
}

// LoadOwned fetches a resource through find and checks that user owns it.
// Resources of other users are reported as common.ErrorNotFound so their
// existence does not leak.
func LoadOwned[T Owned](ctx context.Context, user *models.User, id string, find func(ctx context.Context, ownerID, id string) (T, error)) (T, error) {
	var zero T

	if user == nil {
		return zero, common.ErrorUnauthorized
	}

	res, err := find(ctx, user.ID, id)
	if err != nil {
		return zero, err
	}

	if err := AssertOwnership(res, user); err != nil {
		if errors.Is(err, common.ErrOwnershipViolation) {
			return zero, common.ErrorNotFound
		}
		return zero, err
	}

	return res, nil
}
