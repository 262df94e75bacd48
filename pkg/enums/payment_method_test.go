package enums

import "testing"

func TestPaymentMethodInitialOrderStatus(t *testing.T) {
	if got := PaymentMethodPayPal.InitialOrderStatus(); got != OrderStatusPaid {
		t.Fatalf("PayPal: expected Paid, got %s", got)
	}
	if got := PaymentMethodUPI.InitialOrderStatus(); got != OrderStatusPending {
		t.Fatalf("UPI: expected Pending, got %s", got)
	}
	if got := PaymentMethodCOD.InitialOrderStatus(); got != OrderStatusPending {
		t.Fatalf("COD: expected Pending, got %s", got)
	}
}

func TestPaymentMethodAutoConfirms(t *testing.T) {
	if !PaymentMethodPayPal.AutoConfirms() {
		t.Fatal("PayPal must auto-confirm")
	}
	if PaymentMethodUPI.AutoConfirms() || PaymentMethodCOD.AutoConfirms() {
		t.Fatal("UPI and COD must wait for manual verification")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("UPI")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if method != PaymentMethodUPI {
		t.Fatalf("expected UPI, got %s", method)
	}
	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
