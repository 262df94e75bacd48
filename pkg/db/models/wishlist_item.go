package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem links an identity to a liked product. The wishlist does not
// distinguish variations, so the uniqueness key is (owner, product).
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKey  string    `gorm:"column:owner_key;not null;index:wishlist_items_owner_idx;uniqueIndex:wishlist_items_owner_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:wishlist_items_owner_product_key"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
