package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"rebook/internal/domain"
	"rebook/internal/relay"
	"rebook/internal/services"
)

// placeTestOrder gets a book through review and purchase so both parties can
// share positions on it.
func placeTestOrder(t *testing.T, db *sqlx.DB) (domain.Order, *services.OrderService, *services.LocationService, *relay.Hub) {
	t.Helper()
	listings, orders, locs, hub := newOrderStack(db)

	b, err := listings.Submit(seller, goodListing())
	if err != nil {
		t.Fatal(err)
	}
	if err := listings.Review(b.ID, domain.BookApproved, 220); err != nil {
		t.Fatal(err)
	}
	o, err := orders.Place(buyer, b.ID, "7 Park Street", "+91 9800000001")
	if err != nil {
		t.Fatal(err)
	}
	return o, orders, locs, hub
}

func TestReportUpsertsSingleRowPerParticipant(t *testing.T) {
	db := memdb(t)
	o, _, locs, _ := placeTestOrder(t, db)

	first, err := locs.Report(o.ID, buyer, 12.90, 77.60)
	if err != nil {
		t.Fatal(err)
	}
	if first.UserRole != domain.RoleBuyer {
		t.Fatalf("want buyer role, got %s", first.UserRole)
	}

	second, err := locs.Report(o.ID, buyer, 12.95, 77.65)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("row id must be stable across upserts: %s vs %s", first.ID, second.ID)
	}
	if second.Latitude != 12.95 || second.Longitude != 77.65 {
		t.Fatalf("latest report must win: %+v", second)
	}

	rows, err := locs.Snapshot(o.ID, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("want exactly one row per participant, got %d", len(rows))
	}
}

func TestBothPartiesShareDistinctRows(t *testing.T) {
	db := memdb(t)
	o, _, locs, _ := placeTestOrder(t, db)

	if _, err := locs.Report(o.ID, buyer, 12.90, 77.60); err != nil {
		t.Fatal(err)
	}
	if _, err := locs.Report(o.ID, seller, 13.00, 77.70); err != nil {
		t.Fatal(err)
	}

	rows, err := locs.Snapshot(o.ID, seller)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want two markers, got %d", len(rows))
	}
	roles := map[string]bool{}
	for _, r := range rows {
		roles[r.UserRole] = true
	}
	if !roles[domain.RoleBuyer] || !roles[domain.RoleSeller] {
		t.Fatalf("want one buyer and one seller row, got %+v", rows)
	}
}

func TestReportRejectsOutsidersAndClosedOrders(t *testing.T) {
	db := memdb(t)
	o, orders, locs, _ := placeTestOrder(t, db)

	outsider := &domain.User{ID: "u-x", Name: "X", Role: domain.RoleBuyer}
	if _, err := locs.Report(o.ID, outsider, 12.9, 77.6); !errors.Is(err, services.ErrNotParticipant) {
		t.Fatalf("want ErrNotParticipant, got %v", err)
	}
	if _, err := locs.Report(o.ID, buyer, 123, 77.6); !errors.Is(err, services.ErrBadCoordinates) {
		t.Fatalf("want ErrBadCoordinates, got %v", err)
	}
	if _, err := locs.Snapshot(o.ID, outsider); !errors.Is(err, services.ErrNotParticipant) {
		t.Fatalf("want ErrNotParticipant on snapshot, got %v", err)
	}
	// admins may watch any order
	if _, err := locs.Snapshot(o.ID, admin); err != nil {
		t.Fatal(err)
	}

	if _, err := orders.Advance(o.ID, domain.OrderCancelled, buyer); err != nil {
		t.Fatal(err)
	}
	if _, err := locs.Report(o.ID, buyer, 12.9, 77.6); !errors.Is(err, services.ErrOrderClosed) {
		t.Fatalf("want ErrOrderClosed, got %v", err)
	}
}

func TestStaleReportIsFencedOut(t *testing.T) {
	db := memdb(t)
	o, _, locs, _ := placeTestOrder(t, db)

	if _, err := locs.Report(o.ID, buyer, 12.90, 77.60); err != nil {
		t.Fatal(err)
	}
	// Pin the stored row into the future, as if a newer report already landed.
	future := time.Now().UTC().Add(time.Hour).Format("2006-01-02T15:04:05.000Z07:00")
	if _, err := db.Exec(`UPDATE order_locations SET updated_at=? WHERE order_id=?`, future, o.ID); err != nil {
		t.Fatal(err)
	}

	got, err := locs.Report(o.ID, buyer, 0.0, 0.0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Latitude != 12.90 || got.Longitude != 77.60 {
		t.Fatalf("stale report must not clobber newer position: %+v", got)
	}
}

func TestReportPublishesToOrderSubscribersOnly(t *testing.T) {
	db := memdb(t)
	o, _, locs, hub := placeTestOrder(t, db)

	ch, cancel := locs.Subscribe(o.ID)
	defer cancel()
	foreign, cancelForeign := hub.Subscribe("some-other-order")
	defer cancelForeign()

	if _, err := locs.Report(o.ID, buyer, 12.9, 77.6); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-ch:
		if ev.Type != relay.EventUpdate || ev.Location.UserID != buyer.ID {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber saw no update event")
	}
	select {
	case ev := <-foreign:
		t.Fatalf("foreign order subscriber saw event: %+v", ev)
	default:
	}
}

func TestTerminalOrderPurgesLocations(t *testing.T) {
	db := memdb(t)
	o, orders, locs, _ := placeTestOrder(t, db)

	if _, err := locs.Report(o.ID, buyer, 12.9, 77.6); err != nil {
		t.Fatal(err)
	}
	if _, err := locs.Report(o.ID, seller, 13.0, 77.7); err != nil {
		t.Fatal(err)
	}

	ch, cancel := locs.Subscribe(o.ID)
	defer cancel()

	for _, next := range []string{domain.OrderApproved, domain.OrderPickedUp, domain.OrderDelivered} {
		if _, err := orders.Advance(o.ID, next, admin); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := locs.Snapshot(o.ID, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("delivered order must have no position rows, got %d", len(rows))
	}

	deletes := 0
	for deletes < 2 {
		select {
		case ev := <-ch:
			if ev.Type == relay.EventDelete {
				deletes++
			}
		case <-time.After(time.Second):
			t.Fatalf("want 2 delete events, got %d", deletes)
		}
	}
}
