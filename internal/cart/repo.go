package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/pkg/db/models"
)

// Repository encapsulates cart line persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveLine looks up the single active line matching the uniqueness
// key (owner, product, variation hash).
func (r *Repository) FindActiveLine(ctx context.Context, ownerKey string, productID uuid.UUID, variationHash string) (*models.CartItem, error) {
	var line models.CartItem
	err := r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ? AND variation_hash = ? AND is_active = ?",
			ownerKey, productID, variationHash, true).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByID loads a line with its product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&line, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ListActiveByOwner returns the owner's active lines with products, oldest first.
func (r *Repository) ListActiveByOwner(ctx context.Context, ownerKey string) ([]models.CartItem, error) {
	var lines []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("owner_key = ? AND is_active = ?", ownerKey, true).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Create inserts a new line. Callers rely on the unique index on
// (owner_key, product_id, variation_hash) to surface concurrent duplicates.
func (r *Repository) Create(ctx context.Context, line *models.CartItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// IncrementCapped bumps quantity by one only while it stays within stock.
// Returns false when the line is already at the cap.
func (r *Repository) IncrementCapped(ctx context.Context, id uuid.UUID, stock int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND quantity < ?", id, stock).
		Update("quantity", gorm.Expr("quantity + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddQuantity adds delta to the line's quantity (merge path).
func (r *Repository) AddQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// SetQuantity overwrites the line's quantity.
func (r *Repository) SetQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", qty).Error
}

// ReassignOwner flips the owning identity of a line (merge path).
func (r *Repository) ReassignOwner(ctx context.Context, id uuid.UUID, ownerKey string) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("owner_key", ownerKey).Error
}

// Delete hard-deletes the line.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

// DeleteActiveByOwner removes every active line for the owner (checkout).
func (r *Repository) DeleteActiveByOwner(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ? AND is_active = ?", ownerKey, true).
		Delete(&models.CartItem{}).Error
}
