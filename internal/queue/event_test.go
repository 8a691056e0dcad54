package queue

import "testing"

func TestNewOrderCreatedEvent(t *testing.T) {
	e1 := NewOrderCreatedEvent(100, 7, 3)
	e2 := NewOrderCreatedEvent(100, 7, 3)

	if err := e1.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if e1.Kind != KindOrderCreated {
		t.Errorf("Kind = %q", e1.Kind)
	}
	if e1.EventID == e2.EventID {
		t.Error("event ids must be unique per event")
	}
	if e1.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestOrderCreatedEventValidate(t *testing.T) {
	valid := NewOrderCreatedEvent(100, 7, 3)

	cases := []struct {
		name   string
		mutate func(*OrderCreatedEvent)
	}{
		{"missing event id", func(e *OrderCreatedEvent) { e.EventID = "" }},
		{"missing kind", func(e *OrderCreatedEvent) { e.Kind = "" }},
		{"zero order id", func(e *OrderCreatedEvent) { e.OrderID = 0 }},
		{"zero user id", func(e *OrderCreatedEvent) { e.UserID = 0 }},
		{"zero voucher id", func(e *OrderCreatedEvent) { e.VoucherID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Error("want validation error")
			}
		})
	}
}
