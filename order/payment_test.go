package order

import (
	"testing"

	"kitabi/models"
)

func TestApplyPaymentPartial(t *testing.T) {
	applied, remaining, status := applyPayment(1000, 400)
	if applied != 400 || remaining != 600 {
		t.Fatalf("applied=%v remaining=%v", applied, remaining)
	}
	if status != models.PaymentPartial {
		t.Fatalf("status = %q", status)
	}
}

func TestApplyPaymentExact(t *testing.T) {
	applied, remaining, status := applyPayment(600, 600)
	if applied != 600 || remaining != 0 {
		t.Fatalf("applied=%v remaining=%v", applied, remaining)
	}
	if status != models.PaymentPaid {
		t.Fatalf("status = %q", status)
	}
}

func TestApplyPaymentOverpaymentClamped(t *testing.T) {
	applied, remaining, status := applyPayment(300, 500)
	if applied != 300 {
		t.Fatalf("overpayment not clamped: applied=%v", applied)
	}
	if remaining != 0 || status != models.PaymentPaid {
		t.Fatalf("remaining=%v status=%q", remaining, status)
	}
}

func TestApplyPaymentZeroDueStaysPaid(t *testing.T) {
	applied, remaining, status := applyPayment(0, 200)
	if applied != 0 || remaining != 0 {
		t.Fatalf("applied=%v remaining=%v", applied, remaining)
	}
	if status != models.PaymentPaid {
		t.Fatalf("status = %q", status)
	}
}

func TestApplyPaymentNegativeReceived(t *testing.T) {
	applied, remaining, status := applyPayment(500, -100)
	if applied != 0 || remaining != 500 {
		t.Fatalf("applied=%v remaining=%v", applied, remaining)
	}
	if status != models.PaymentPartial {
		t.Fatalf("status = %q", status)
	}
}

// paid + due must always equal the original payment amount after a series
// of installments, whatever the amounts received.
func TestApplyPaymentConservation(t *testing.T) {
	const total = 2500.0
	paid, due := 0.0, total
	for _, received := range []float64{700, 0, 1200, 9999} {
		applied, remaining, _ := applyPayment(due, received)
		paid += applied
		due = remaining
		if paid+due != total {
			t.Fatalf("conservation broken: paid=%v due=%v", paid, due)
		}
	}
	if due != 0 || paid != total {
		t.Fatalf("final paid=%v due=%v", paid, due)
	}
}

func TestCancelledOrderRefusesPayment(t *testing.T) {
	if acceptsPayment(models.OrderCancelled) {
		t.Fatal("cancelled order accepted a payment")
	}
	for _, s := range []string{models.OrderPending, models.OrderPartial, models.OrderCompleted} {
		if !acceptsPayment(s) {
			t.Errorf("status %q refused a payment", s)
		}
	}
}

func TestOrderStatusFor(t *testing.T) {
	if got := orderStatusFor(models.PaymentPaid); got != models.OrderCompleted {
		t.Errorf("Paid -> %q", got)
	}
	if got := orderStatusFor(models.PaymentPartial); got != models.OrderPartial {
		t.Errorf("Partial -> %q", got)
	}
}
