package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/variations"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

// Service exposes read-only catalog lookups. Product management itself is
// an external concern; the storefront only reads listings and validates
// variation selections against each product's vocabulary.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ValidateSelection(ctx context.Context, productID uuid.UUID, sel variations.Selection) (variations.Selection, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	list, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

// ValidateSelection normalizes the selection and checks every entry against
// the product's active variation vocabulary.
func (s *service) ValidateSelection(ctx context.Context, productID uuid.UUID, sel variations.Selection) (variations.Selection, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	normalized, err := variations.Normalize(sel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation selection")
	}

	vocabulary := make(map[variations.Entry]struct{}, len(product.Variations))
	for _, v := range product.Variations {
		entry := variations.Entry{Category: v.Category, Value: v.Value}
		if canonical, err := variations.Normalize(variations.Selection{entry}); err == nil {
			vocabulary[canonical[0]] = struct{}{}
		}
	}

	for _, entry := range normalized {
		if _, ok := vocabulary[entry]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation not offered for product").
				WithDetails(map[string]string{"category": entry.Category, "value": entry.Value})
		}
	}
	return normalized, nil
}
