package relay_test

import (
	"testing"

	"rebook/internal/domain"
	"rebook/internal/relay"
)

func loc(order, user string) domain.OrderLocation {
	return domain.OrderLocation{ID: order + "/" + user, OrderID: order, UserID: user, Latitude: 12.9, Longitude: 77.6}
}

func TestHubDeliversToOrderSubscribers(t *testing.T) {
	h := relay.NewHub()
	ch, cancel := h.Subscribe("ord-1")
	defer cancel()

	h.Publish("ord-1", relay.Event{Type: relay.EventUpdate, Location: loc("ord-1", "u-a")})

	ev := <-ch
	if ev.Type != relay.EventUpdate || ev.Location.OrderID != "ord-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestHubIsolatesOrders(t *testing.T) {
	h := relay.NewHub()
	ch1, cancel1 := h.Subscribe("ord-1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("ord-2")
	defer cancel2()

	h.Publish("ord-2", relay.Event{Type: relay.EventUpdate, Location: loc("ord-2", "u-b")})

	select {
	case ev := <-ch1:
		t.Fatalf("order 1 subscriber saw foreign event: %+v", ev)
	default:
	}
	if ev := <-ch2; ev.Location.OrderID != "ord-2" {
		t.Fatalf("wrong event on order 2: %+v", ev)
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := relay.NewHub()
	ch, cancel := h.Subscribe("ord-1")
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	if n := h.Subscribers("ord-1"); n != 0 {
		t.Fatalf("want 0 subscribers, got %d", n)
	}
	// Publishing after cancel must not panic or block.
	h.Publish("ord-1", relay.Event{Type: relay.EventDelete, Location: loc("ord-1", "u-a")})
}

func TestHubDropsWhenSubscriberSaturated(t *testing.T) {
	h := relay.NewHub()
	_, cancel := h.Subscribe("ord-1")
	defer cancel()

	// Nobody drains; publishing far past the buffer must not block.
	for i := 0; i < 100; i++ {
		h.Publish("ord-1", relay.Event{Type: relay.EventUpdate, Location: loc("ord-1", "u-a")})
	}
}
