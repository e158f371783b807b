package domain_test

import (
	"testing"

	"rebook/internal/domain"
)

func TestSuggestedPrice(t *testing.T) {
	cases := []struct {
		mrp       float64
		condition string
		want      float64
	}{
		{500, "good", 250},
		{500, "new", 350},
		{500, "like-new", 300},
		{500, "fair", 200},
		{500, "poor", 150},
		{333, "good", 167}, // rounded, not truncated
		{500, "mint", 0},   // unknown condition
		{0, "good", 0},
		{-10, "good", 0},
	}
	for _, c := range cases {
		if got := domain.SuggestedPrice(c.mrp, c.condition); got != c.want {
			t.Errorf("SuggestedPrice(%v,%q) = %v, want %v", c.mrp, c.condition, got, c.want)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{domain.OrderRequested, domain.OrderApproved},
		{domain.OrderApproved, domain.OrderPickedUp},
		{domain.OrderPickedUp, domain.OrderDelivered},
		{domain.OrderRequested, domain.OrderCancelled},
		{domain.OrderApproved, domain.OrderCancelled},
		{domain.OrderPickedUp, domain.OrderCancelled},
	}
	for _, tr := range allowed {
		if !domain.CanAdvanceOrder(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be legal", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to string }{
		{domain.OrderRequested, domain.OrderPickedUp}, // skipping a step
		{domain.OrderRequested, domain.OrderDelivered},
		{domain.OrderDelivered, domain.OrderRequested}, // reverse
		{domain.OrderDelivered, domain.OrderCancelled}, // terminal
		{domain.OrderCancelled, domain.OrderApproved},
		{domain.OrderApproved, domain.OrderRequested},
		{domain.OrderRequested, "shipped"}, // unknown status
	}
	for _, tr := range denied {
		if domain.CanAdvanceOrder(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be rejected", tr.from, tr.to)
		}
	}
}

func TestTerminalOrderStatus(t *testing.T) {
	for _, s := range []string{domain.OrderRequested, domain.OrderApproved, domain.OrderPickedUp} {
		if domain.TerminalOrderStatus(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []string{domain.OrderDelivered, domain.OrderCancelled} {
		if !domain.TerminalOrderStatus(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
}
