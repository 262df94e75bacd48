package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/pkg/db/models"
	"github.com/smkpro/smkpro-backend/pkg/enums"
)

// Repository encapsulates order, order item and payment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
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

// Create inserts the order draft.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// SetOrderNumber stamps the derived number on the draft.
func (r *Repository) SetOrderNumber(ctx context.Context, id int64, number string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("order_number", number).Error
}

// FindByNumber loads any order carrying the number, finalized or not.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Payment").
		First(&order, "order_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindDraft loads the user's unfinalized order by number.
func (r *Repository) FindDraft(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ? AND user_id = ? AND is_ordered = ?", number, userID, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrderedByUser returns the user's finalized orders, newest first.
func (r *Repository) ListOrderedByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("user_id = ? AND is_ordered = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Finalize attaches the payment to the draft and flips it to ordered.
func (r *Repository) Finalize(ctx context.Context, id int64, paymentID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_id": paymentID,
			"status":     status,
			"is_ordered": true,
		}).Error
}

// CreatePayment inserts the payment record.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CreateItem inserts one order item snapshot.
func (r *Repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ListItems returns the order's snapshots with products.
func (r *Repository) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
