package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/cart"
	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/notifications"
	"github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	"github.com/smkpro/smkpro-backend/pkg/enums"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	"github.com/smkpro/smkpro-backend/pkg/metrics"
)

// AddressForm is the checkout form snapshotted onto the order.
type AddressForm struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	AddressLine1 string
	AddressLine2 string
	Country      string
	State        string
	City         string
	OrderNote    string
	IP           string
}

// OrderView pairs an order with its item snapshots.
type OrderView struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// Service runs the checkout flow: draft placement, payment confirmation
// and order history reads.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, form AddressForm) (*models.Order, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, orderNumber, transactionID string, method enums.PaymentMethod, status enums.PaymentStatus) (*OrderView, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderView, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type service struct {
	client    *db.Client
	repo      *Repository
	cartRepo  *cart.Repository
	prodRepo  *products.Repository
	notifier  notifications.Service
	logger    *logger.Logger
	collector *metrics.StorefrontMetrics
	pricing   config.PricingConfig
	now       func() time.Time
}

// NewService builds the checkout service. notifier may be nil when mail is
// not configured; collector may be nil in tests.
func NewService(client *db.Client, repo *Repository, cartRepo *cart.Repository, prodRepo *products.Repository, notifier notifications.Service, logg *logger.Logger, collector *metrics.StorefrontMetrics, pricing config.PricingConfig) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if prodRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		client:    client,
		repo:      repo,
		cartRepo:  cartRepo,
		prodRepo:  prodRepo,
		notifier:  notifier,
		logger:    logg,
		collector: collector,
		pricing:   pricing,
		now:       time.Now,
	}, nil
}

// PlaceOrder turns the user's cart into a Pending draft. The order number
// embeds the generated row id (YYYYMMDD then id), so it is derived and
// stamped in a second step inside the same transaction.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, form AddressForm) (*models.Order, error) {
	owner, err := identity.User(userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user identity")
	}

	lines, err := s.cartRepo.ListActiveByOwner(ctx, owner.OwnerKey())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items to order")
	}

	subtotal := decimal.Zero
	weight := decimal.Zero
	for _, line := range lines {
		if line.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart line has no product")
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(line.Product.Price.Mul(qty))
		weight = weight.Add(line.Product.Weight.Mul(qty))
	}
	shipping := weight.Mul(s.pricing.ShippingRate(form.State)).Round(2)

	order := &models.Order{
		UserID:         &userID,
		FirstName:      form.FirstName,
		LastName:       form.LastName,
		Phone:          form.Phone,
		Email:          form.Email,
		AddressLine1:   form.AddressLine1,
		AddressLine2:   form.AddressLine2,
		Country:        form.Country,
		State:          form.State,
		City:           form.City,
		OrderNote:      form.OrderNote,
		OrderTotal:     subtotal.Add(shipping),
		ShippingCharge: shipping,
		Status:         enums.OrderStatusPending,
		IP:             form.IP,
		IsOrdered:      false,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order draft: %w", err)
		}
		order.OrderNumber = s.now().Format("20060102") + strconv.FormatInt(order.ID, 10)
		return repo.SetOrderNumber(ctx, order.ID, order.OrderNumber)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.collector.IncOrdersPlaced()
	s.logger.Info(s.logger.WithField(ctx, "order_number", order.OrderNumber), "order draft placed")
	return order, nil
}

// ConfirmPayment finalizes the draft in one transaction: payment record,
// order flip, item snapshots at live prices, guarded stock decrements and
// cart teardown. Any failure rolls the whole confirmation back. Emails go
// out only after commit and never affect the result.
func (s *service) ConfirmPayment(ctx context.Context, userID uuid.UUID, orderNumber, transactionID string, method enums.PaymentMethod, status enums.PaymentStatus) (*OrderView, error) {
	owner, err := identity.User(userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user identity")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}

	var view OrderView
	var payment *models.Payment
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)
		prodRepo := s.prodRepo.WithTx(tx)

		order, err := s.loadDraft(ctx, repo, userID, orderNumber)
		if err != nil {
			return err
		}

		payment = &models.Payment{
			UserID:     userID,
			ExternalID: transactionID,
			Method:     method,
			Amount:     order.OrderTotal,
			Status:     status,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		orderStatus := method.InitialOrderStatus()
		if err := repo.Finalize(ctx, order.ID, payment.ID, orderStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
		}
		order.PaymentID = &payment.ID
		order.Status = orderStatus
		order.IsOrdered = true

		lines, err := cartRepo.ListActiveByOwner(ctx, owner.OwnerKey())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items to order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.Product == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "cart line has no product")
			}
			unit := line.Product.Price
			item := models.OrderItem{
				OrderID:    order.ID,
				PaymentID:  &payment.ID,
				UserID:     &userID,
				ProductID:  line.ProductID,
				Variations: line.Variations,
				Quantity:   line.Quantity,
				UnitPrice:  unit,
				LinePrice:  unit.Mul(decimal.NewFromInt(int64(line.Quantity))),
				Ordered:    true,
			}
			if err := repo.CreateItem(ctx, &item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot order item")
			}

			decremented, err := prodRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !decremented {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "product sold out during checkout").
					WithDetails(map[string]string{"product_id": line.ProductID.String()})
			}
			item.Product = line.Product
			items = append(items, item)
		}

		if err := cartRepo.DeleteActiveByOwner(ctx, owner.OwnerKey()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		view = OrderView{Order: *order, Items: items}
		return nil
	})
	if err != nil {
		s.collector.IncCheckoutFailed(failureReason(err))
		return nil, err
	}

	s.collector.IncOrdersFinalized(method.String())
	ctx = s.logger.WithField(ctx, "order_number", orderNumber)
	s.logger.Info(ctx, "order finalized")

	if s.notifier != nil {
		s.notifier.OrderConfirmed(ctx, &view.Order, view.Items, payment)
	}
	return &view, nil
}

// loadDraft resolves the number to the user's unfinalized draft.
// A number that exists only as a finalized order means the confirmation
// already ran; anything else is not found.
func (s *service) loadDraft(ctx context.Context, repo *Repository, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	order, err := repo.FindDraft(ctx, userID, orderNumber)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order draft")
	}

	existing, lookupErr := repo.FindByNumber(ctx, orderNumber)
	if lookupErr == nil && existing.IsOrdered && existing.UserID != nil && *existing.UserID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyFinalized, "order is already finalized")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
}

// GetOrder returns the user's finalized order with its snapshots.
func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	if !order.IsOrdered {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	return &OrderView{Order: *order, Items: items}, nil
}

// ListOrders returns the user's finalized order history, newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	list, err := s.repo.ListOrderedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func failureReason(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock):
		return "insufficient_stock"
	case pkgerrors.HasCode(err, pkgerrors.CodeAlreadyFinalized):
		return "already_finalized"
	case pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart):
		return "empty_cart"
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
