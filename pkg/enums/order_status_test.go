package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusCompleted, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusPaid, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() {
		t.Fatal("Pending must not be terminal")
	}
	if !OrderStatusCompleted.IsTerminal() {
		t.Fatal("Completed must be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("Cancelled must be terminal")
	}
	if OrderStatus("bogus").IsTerminal() {
		t.Fatal("unknown status must not report terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Paid")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != OrderStatusPaid {
		t.Fatalf("expected Paid, got %s", status)
	}
	if _, err := ParseOrderStatus("paid"); err == nil {
		t.Fatal("expected case-sensitive parse to reject lowercase")
	}
}
