package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing. The storefront treats the catalog as
// read-only; stock is the only column the order flow mutates.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null;uniqueIndex:products_name_key"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Weight      decimal.Decimal `gorm:"column:weight;type:numeric(10,2);not null"`
	IsAvailable bool            `gorm:"column:is_available;not null;default:true"`
	Variations  []Variation     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Variation is one allowed (category, value) choice for a product,
// e.g. (Color, Red). The per-product rows form the controlled vocabulary
// cart selections are validated against.
type Variation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:variations_product_id_idx"`
	Category  string    `gorm:"column:category;not null"`
	Value     string    `gorm:"column:value;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (v *Variation) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
