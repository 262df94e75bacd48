package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smkpro/smkpro-backend/pkg/enums"
)

// Order snapshots the checkout form and totals. The primary key is a
// bigserial rather than a uuid because the order number embeds the
// generated row id (YYYYMMDD + id), which keeps numbers unique under
// concurrent placements. UserID is nullable only to tolerate account
// deletion after purchase.
type Order struct {
	ID             int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         *uuid.UUID        `gorm:"column:user_id;type:uuid;index:orders_user_id_idx"`
	PaymentID      *uuid.UUID        `gorm:"column:payment_id;type:uuid"`
	OrderNumber    string            `gorm:"column:order_number;uniqueIndex:orders_order_number_key"`
	FirstName      string            `gorm:"column:first_name;not null"`
	LastName       string            `gorm:"column:last_name;not null"`
	Phone          string            `gorm:"column:phone;not null"`
	Email          string            `gorm:"column:email;not null"`
	AddressLine1   string            `gorm:"column:address_line_1;not null"`
	AddressLine2   string            `gorm:"column:address_line_2"`
	Country        string            `gorm:"column:country;not null"`
	State          string            `gorm:"column:state;not null"`
	City           string            `gorm:"column:city;not null"`
	OrderNote      string            `gorm:"column:order_note"`
	OrderTotal     decimal.Decimal   `gorm:"column:order_total;type:numeric(10,2);not null"`
	ShippingCharge decimal.Decimal   `gorm:"column:shipping_charge;type:numeric(10,2);not null"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'Pending'"`
	IP             string            `gorm:"column:ip"`
	IsOrdered      bool              `gorm:"column:is_ordered;not null;default:false"`
	Payment        *Payment          `gorm:"foreignKey:PaymentID"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the snapshotted recipient name.
func (o Order) FullName() string {
	return o.FirstName + " " + o.LastName
}

// Subtotal derives the pre-shipping amount from the persisted totals.
func (o Order) Subtotal() decimal.Decimal {
	return o.OrderTotal.Sub(o.ShippingCharge)
}
