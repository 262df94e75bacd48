package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/pkg/enums"
)

// Payment records one confirmation delivered by an external payment
// collaborator (PayPal callback, UPI reference, COD marker).
type Payment struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ExternalID string              `gorm:"column:external_id;not null;index:payments_external_id_idx"`
	Method     enums.PaymentMethod `gorm:"column:method;not null"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Status     enums.PaymentStatus `gorm:"column:status;not null"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
