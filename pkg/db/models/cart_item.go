package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/variations"
)

// CartItem is one active cart line. OwnerKey serializes the owning
// identity (session or user, never both); VariationHash is the canonical
// digest of Variations and backs the uniqueness key that makes the
// find-or-create on add atomic.
type CartItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKey      string               `gorm:"column:owner_key;not null;index:cart_items_owner_idx;uniqueIndex:cart_items_owner_product_variation_key"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_owner_product_variation_key"`
	Quantity      int                  `gorm:"column:quantity;not null;default:1"`
	Variations    variations.Selection `gorm:"column:variations;type:jsonb;serializer:json"`
	VariationHash string               `gorm:"column:variation_hash;not null;uniqueIndex:cart_items_owner_product_variation_key"`
	IsActive      bool                 `gorm:"column:is_active;not null;default:true"`
	Product       *Product             `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
