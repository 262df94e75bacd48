package cart

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/internal/variations"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

// Line is a cart row paired with its priced total.
type Line struct {
	Item      models.CartItem `json:"item"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Totals summarizes a cart. Tax is a flat percentage shown for information
// only; GrandTotal adds it to the subtotal but nothing here is charged.
// Shipping is computed at checkout, not here.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Quantity   int             `json:"quantity"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Contents is the full cart view returned to controllers.
type Contents struct {
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
}

// Service manages cart lines for a session or user identity.
type Service interface {
	AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID, sel variations.Selection) (*models.CartItem, error)
	IncrementItem(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*models.CartItem, error)
	DecrementOrRemove(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*models.CartItem, error)
	RemoveItem(ctx context.Context, owner identity.Identity, lineID uuid.UUID) error
	ListItems(ctx context.Context, owner identity.Identity) (*Contents, error)
}

type service struct {
	repo     *Repository
	products products.Service
	taxRate  decimal.Decimal
}

// NewService builds the cart service. The add race is settled by the unique
// index on (owner_key, product_id, variation_hash) rather than a transaction,
// so the service only needs repository access.
func NewService(repo *Repository, catalog products.Service, taxRate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product service is required")
	}
	return &service{repo: repo, products: catalog, taxRate: taxRate}, nil
}

// AddItem validates the selection against the product's vocabulary, then
// find-or-creates the (owner, product, selection) line. A concurrent insert
// of the same line loses the unique-index race and retries as an increment,
// so two simultaneous adds end as one line with quantity 2.
func (s *service) AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID, sel variations.Selection) (*models.CartItem, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	normalized, err := s.products.ValidateSelection(ctx, productID, sel)
	if err != nil {
		return nil, err
	}
	hash, err := variations.Hash(normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation selection")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < 1 {
		return nil, stockExceeded(product.Stock)
	}

	line, err := s.addOrIncrement(ctx, owner, product, normalized, hash)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *service) addOrIncrement(ctx context.Context, owner identity.Identity, product *models.Product, sel variations.Selection, hash string) (*models.CartItem, error) {
	existing, err := s.repo.FindActiveLine(ctx, owner.OwnerKey(), product.ID, hash)
	switch {
	case err == nil:
		return s.incrementLine(ctx, existing, product.Stock)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up cart line")
	}

	line := &models.CartItem{
		OwnerKey:      owner.OwnerKey(),
		ProductID:     product.ID,
		Quantity:      1,
		Variations:    sel,
		VariationHash: hash,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, line); err != nil {
		if db.IsUniqueViolation(err, "cart_items_owner_product_variation_key") {
			// Lost the insert race; the winner's row absorbs this add.
			existing, lookupErr := s.repo.FindActiveLine(ctx, owner.OwnerKey(), product.ID, hash)
			if lookupErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "reload cart line after conflict")
			}
			return s.incrementLine(ctx, existing, product.Stock)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
	}
	return s.repo.FindByID(ctx, line.ID)
}

// IncrementItem bumps the line quantity by one, capped at product stock.
func (s *service) IncrementItem(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*models.CartItem, error) {
	line, err := s.ownedLine(ctx, owner, lineID)
	if err != nil {
		return nil, err
	}
	if line.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart line has no product")
	}
	return s.incrementLine(ctx, line, line.Product.Stock)
}

func (s *service) incrementLine(ctx context.Context, line *models.CartItem, stock int) (*models.CartItem, error) {
	bumped, err := s.repo.IncrementCapped(ctx, line.ID, stock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
	}
	if !bumped {
		return nil, stockExceeded(stock)
	}
	return s.repo.FindByID(ctx, line.ID)
}

// DecrementOrRemove drops the quantity by one; at quantity 1 the line is
// removed and nil is returned.
func (s *service) DecrementOrRemove(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*models.CartItem, error) {
	line, err := s.ownedLine(ctx, owner, lineID)
	if err != nil {
		return nil, err
	}

	if line.Quantity <= 1 {
		if err := s.repo.Delete(ctx, line.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
		}
		return nil, nil
	}

	if err := s.repo.AddQuantity(ctx, line.ID, -1); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement cart line")
	}
	return s.repo.FindByID(ctx, line.ID)
}

// RemoveItem deletes the line outright.
func (s *service) RemoveItem(ctx context.Context, owner identity.Identity, lineID uuid.UUID) error {
	line, err := s.ownedLine(ctx, owner, lineID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, line.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

// ListItems returns the owner's lines (oldest first) with computed totals.
func (s *service) ListItems(ctx context.Context, owner identity.Identity) (*Contents, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	items, err := s.repo.ListActiveByOwner(ctx, owner.OwnerKey())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}

	contents := &Contents{Lines: make([]Line, 0, len(items))}
	subtotal := decimal.Zero
	quantity := 0
	for _, item := range items {
		lineTotal := decimal.Zero
		if item.Product != nil {
			lineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		subtotal = subtotal.Add(lineTotal)
		quantity += item.Quantity
		contents.Lines = append(contents.Lines, Line{Item: item, LineTotal: lineTotal})
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	contents.Totals = Totals{
		Subtotal:   subtotal,
		Quantity:   quantity,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
	return contents, nil
}

// ownedLine loads the line and enforces that it belongs to the caller.
func (s *service) ownedLine(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*models.CartItem, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required")
	}

	line, err := s.repo.FindByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if line.OwnerKey != owner.OwnerKey() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart line belongs to another cart")
	}
	if !line.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return line, nil
}

func stockExceeded(stock int) error {
	return pkgerrors.New(pkgerrors.CodeStockExceeded, "quantity would exceed available stock").
		WithDetails(map[string]string{"stock": strconv.Itoa(stock)})
}
