package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/smkpro/smkpro-backend/pkg/db/models"
	"github.com/smkpro/smkpro-backend/pkg/enums"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

// Service composes and delivers the storefront's transactional emails.
// Delivery failures are logged and swallowed; an email must never unwind
// a committed order.
type Service interface {
	OrderConfirmed(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment)
}

type service struct {
	sender     Sender
	logger     *logger.Logger
	ownerEmail string
}

// NewService builds the notification service. ownerEmail may be empty, in
// which case shop-owner mails are skipped.
func NewService(sender Sender, logg *logger.Logger, ownerEmail string) (Service, error) {
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mail sender is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{sender: sender, logger: logg, ownerEmail: ownerEmail}, nil
}

// OrderConfirmed sends the customer confirmation and the owner
// notification. A pending UPI payment additionally asks the owner to
// verify the transfer before shipping.
func (s *service) OrderConfirmed(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) {
	if order == nil || payment == nil {
		return
	}

	s.deliver(ctx, Message{
		To:      []string{order.Email},
		Subject: fmt.Sprintf("Thank you for your order %s", order.OrderNumber),
		Body:    customerBody(order, items, payment),
	})

	if s.ownerEmail == "" {
		return
	}
	s.deliver(ctx, Message{
		To:      []string{s.ownerEmail},
		Subject: fmt.Sprintf("New order %s (%s)", order.OrderNumber, payment.Method),
		Body:    ownerBody(order, items, payment),
	})
	if payment.Method == enums.PaymentMethodUPI && payment.Status == enums.PaymentStatusPending {
		s.deliver(ctx, Message{
			To:      []string{s.ownerEmail},
			Subject: fmt.Sprintf("Verify UPI payment for order %s", order.OrderNumber),
			Body: fmt.Sprintf(
				"Order %s reports UPI reference %s for %s. Confirm the transfer before processing.\r\n",
				order.OrderNumber, payment.ExternalID, payment.Amount.StringFixed(2)),
		})
	}
}

func (s *service) deliver(ctx context.Context, msg Message) {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "email delivery failed", err)
	}
}

func customerBody(order *models.Order, items []models.OrderItem, payment *models.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", order.FullName())
	fmt.Fprintf(&b, "We received your order %s.\r\n\r\n", order.OrderNumber)
	writeLines(&b, items)
	fmt.Fprintf(&b, "\r\nShipping: %s\r\n", order.ShippingCharge.StringFixed(2))
	fmt.Fprintf(&b, "Total: %s\r\n", order.OrderTotal.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s (%s)\r\n", payment.Method, payment.Status)
	if payment.Method == enums.PaymentMethodUPI && payment.Status == enums.PaymentStatusPending {
		b.WriteString("We will confirm your UPI transfer shortly.\r\n")
	}
	return b.String()
}

func ownerBody(order *models.Order, items []models.OrderItem, payment *models.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s placed by %s <%s>.\r\n\r\n", order.OrderNumber, order.FullName(), order.Email)
	writeLines(&b, items)
	fmt.Fprintf(&b, "\r\nShip to: %s, %s, %s, %s\r\n", order.AddressLine1, order.City, order.State, order.Country)
	fmt.Fprintf(&b, "Total: %s via %s (%s)\r\n", order.OrderTotal.StringFixed(2), payment.Method, payment.Status)
	return b.String()
}

func writeLines(b *strings.Builder, items []models.OrderItem) {
	for _, item := range items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(b, "  %dx %s @ %s = %s\r\n", item.Quantity, name, item.UnitPrice.StringFixed(2), item.LinePrice.StringFixed(2))
	}
}
