package services

import (
	"errors"
	"time"

	"rebook/internal/domain"
	"rebook/internal/relay"
	"rebook/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrNotParticipant = errors.New("user is not a participant of this order")
	ErrOrderClosed    = errors.New("order is no longer active")
	ErrBadCoordinates = errors.New("coordinates out of range")
)

// locTimeFormat is fixed-width so lexicographic order on stored timestamps
// matches time order; the upsert fence compares them as strings.
const locTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// LocationService relays live positions between the two parties of an order:
// reports upsert the single row per participant and are fanned out to
// whoever is watching the order's map.
type LocationService struct {
	Orders    *repos.OrderRepo
	Locations *repos.LocationRepo
	Hub       *relay.Hub
}

func NewLocationService(orders *repos.OrderRepo, locs *repos.LocationRepo, hub *relay.Hub) *LocationService {
	return &LocationService{Orders: orders, Locations: locs, Hub: hub}
}

// participantRole resolves which side of the order the user is on.
func participantRole(o domain.Order, userID string) (string, bool) {
	switch userID {
	case o.BuyerID:
		return domain.RoleBuyer, true
	case o.SellerID:
		return domain.RoleSeller, true
	}
	return "", false
}

// Report records a position fix for one participant. Stale fixes (older than
// the stored row) are dropped; accepted ones are published to subscribers.
func (s *LocationService) Report(orderID string, user *domain.User, lat, lng float64) (domain.OrderLocation, error) {
	if !domain.ValidCoordinates(lat, lng) {
		return domain.OrderLocation{}, ErrBadCoordinates
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderLocation{}, err
	}
	if domain.TerminalOrderStatus(o.Status) {
		return domain.OrderLocation{}, ErrOrderClosed
	}
	role, ok := participantRole(o, user.ID)
	if !ok {
		return domain.OrderLocation{}, ErrNotParticipant
	}

	loc := domain.OrderLocation{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		UserID:    user.ID,
		UserRole:  role,
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Now().UTC().Format(locTimeFormat),
	}
	applied, err := s.Locations.Upsert(&loc)
	if err != nil {
		return domain.OrderLocation{}, err
	}
	// Read back the stored row: an upsert keeps the original row id, and a
	// fenced-out stale report must return the newer stored position.
	stored, err := s.Locations.Get(orderID, user.ID)
	if err != nil {
		return domain.OrderLocation{}, err
	}
	if applied {
		s.Hub.Publish(orderID, relay.Event{Type: relay.EventUpdate, Location: stored})
	}
	return stored, nil
}

// Snapshot returns the order's current positions for a fresh subscriber.
// The caller must be a participant or an admin.
func (s *LocationService) Snapshot(orderID string, user *domain.User) ([]domain.OrderLocation, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		if _, ok := participantRole(o, user.ID); !ok {
			return nil, ErrNotParticipant
		}
	}
	return s.Locations.ByOrder(orderID)
}

// Subscribe attaches a listener to the order's event stream.
func (s *LocationService) Subscribe(orderID string) (<-chan relay.Event, func()) {
	return s.Hub.Subscribe(orderID)
}

// PurgeOrder removes the order's rows and notifies subscribers, so maps
// clear their markers when the order terminates.
func (s *LocationService) PurgeOrder(orderID string) error {
	rows, err := s.Locations.PurgeOrder(orderID)
	if err != nil {
		return err
	}
	for _, loc := range rows {
		s.Hub.Publish(orderID, relay.Event{Type: relay.EventDelete, Location: loc})
	}
	return nil
}
