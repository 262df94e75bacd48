package wishlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

// Service manages the wishlist for a session or user identity.
type Service interface {
	// Toggle flips the like: present becomes absent and vice versa.
	// Returns true when the product ends up liked.
	Toggle(ctx context.Context, owner identity.Identity, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, owner identity.Identity, productID uuid.UUID) error
	Remove(ctx context.Context, owner identity.Identity, productID uuid.UUID) error
	List(ctx context.Context, owner identity.Identity) ([]models.WishlistItem, error)
}

type service struct {
	repo     *Repository
	products products.Service
}

// NewService builds the wishlist service.
func NewService(repo *Repository, catalog products.Service) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product service is required")
	}
	return &service{repo: repo, products: catalog}, nil
}

// Toggle adds the like with a conflict-ignoring insert; when the insert hits
// the existing row instead, the like is removed. Concurrent toggles therefore
// settle on one of the two valid end states, never a duplicate row.
func (s *service) Toggle(ctx context.Context, owner identity.Identity, productID uuid.UUID) (bool, error) {
	if err := s.validate(ctx, owner, productID); err != nil {
		return false, err
	}

	inserted, err := s.repo.AddItem(ctx, owner.OwnerKey(), productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist item")
	}
	if inserted {
		return true, nil
	}

	if err := s.repo.RemoveItem(ctx, owner.OwnerKey(), productID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return false, nil
}

// Add likes the product; already-liked is a no-op, not an error.
func (s *service) Add(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	if err := s.validate(ctx, owner, productID); err != nil {
		return err
	}
	if _, err := s.repo.AddItem(ctx, owner.OwnerKey(), productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

// Remove unlikes the product; absent is a no-op, not an error.
func (s *service) Remove(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	if owner.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "wishlist owner is required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.RemoveItem(ctx, owner.OwnerKey(), productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

// List returns the owner's liked products, newest like first.
func (s *service) List(ctx context.Context, owner identity.Identity) ([]models.WishlistItem, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist owner is required")
	}
	items, err := s.repo.ListByOwner(ctx, owner.OwnerKey())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist items")
	}
	return items, nil
}

func (s *service) validate(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	if owner.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "wishlist owner is required")
	}
	// Surfaces NotFound before any write.
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return nil
}
