package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/variations"
)

// OrderItem is the immutable audit snapshot of one purchased line,
// captured at payment confirmation. Prices are the product's live prices
// at that instant and are never recomputed afterwards.
type OrderItem struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    int64                `gorm:"column:order_id;not null;index:order_items_order_id_idx"`
	PaymentID  *uuid.UUID           `gorm:"column:payment_id;type:uuid"`
	UserID     *uuid.UUID           `gorm:"column:user_id;type:uuid"`
	ProductID  uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Variations variations.Selection `gorm:"column:variations;type:jsonb;serializer:json"`
	Quantity   int                  `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal      `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LinePrice  decimal.Decimal      `gorm:"column:line_price;type:numeric(10,2);not null"`
	Ordered    bool                 `gorm:"column:ordered;not null;default:false"`
	Product    *Product             `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
