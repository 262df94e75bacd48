package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smkpro/smkpro-backend/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
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

// AddItem inserts a wishlist entry and ignores duplicates. Returns true when
// a row was actually inserted, false when the like already existed.
func (r *Repository) AddItem(ctx context.Context, ownerKey string, productID uuid.UUID) (bool, error) {
	if ownerKey == "" || productID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}

	item := &models.WishlistItem{
		OwnerKey:  ownerKey,
		ProductID: productID,
		IsActive:  true,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_key"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveItem deletes the owner-product like if it exists.
func (r *Repository) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListByOwner returns the owner's likes with products, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerKey string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("owner_key = ? AND is_active = ?", ownerKey, true).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Exists reports whether the owner has liked the product.
func (r *Repository) Exists(ctx context.Context, ownerKey string, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReassignOwner flips the owning identity of a like (merge path).
func (r *Repository) ReassignOwner(ctx context.Context, id uuid.UUID, ownerKey string) error {
	return r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Update("owner_key", ownerKey).Error
}

// Delete hard-deletes a like by id (merge path).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WishlistItem{}, "id = ?", id).Error
}
