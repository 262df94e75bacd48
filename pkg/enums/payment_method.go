package enums

import "fmt"

// PaymentMethod identifies how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "PayPal"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodCOD    PaymentMethod = "COD"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodPayPal,
	PaymentMethodUPI,
	PaymentMethodCOD,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// AutoConfirms reports whether the gateway settles the payment itself.
// UPI and COD stay pending until the shop owner verifies them out-of-band.
func (m PaymentMethod) AutoConfirms() bool {
	return m == PaymentMethodPayPal
}

// InitialOrderStatus returns the order status assigned at confirmation time.
func (m PaymentMethod) InitialOrderStatus() OrderStatus {
	if m.AutoConfirms() {
		return OrderStatusPaid
	}
	return OrderStatusPending
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
