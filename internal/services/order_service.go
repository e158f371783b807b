package services

import (
	"errors"

	"rebook/internal/domain"
	"rebook/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrNotBuyer        = errors.New("only buyers can place orders")
	ErrBookUnavailable = errors.New("book is no longer available")
	ErrBadOrderInput   = errors.New("missing delivery address or phone")
	ErrBadTransition   = errors.New("illegal order status transition")
	ErrNotAllowed      = errors.New("actor may not change this order")
)

type OrderService struct {
	Books     *repos.BookRepo
	Orders    *repos.OrderRepo
	Locations *LocationService
}

func NewOrderService(books *repos.BookRepo, orders *repos.OrderRepo, locs *LocationService) *OrderService {
	return &OrderService{Books: books, Orders: orders, Locations: locs}
}

// Place creates a cash-on-delivery order against an approved book. The book
// flips to sold and the order is inserted in one transaction keyed on the
// book still being approved, so two concurrent buyers cannot both win.
func (s *OrderService) Place(buyer *domain.User, bookID, deliveryAddress, phone string) (domain.Order, error) {
	if buyer == nil || buyer.Role != domain.RoleBuyer {
		return domain.Order{}, ErrNotBuyer
	}
	if deliveryAddress == "" || phone == "" {
		return domain.Order{}, ErrBadOrderInput
	}

	b, err := s.Books.Get(bookID)
	if err != nil {
		return domain.Order{}, err
	}
	if b.Status != domain.BookApproved {
		return domain.Order{}, ErrBookUnavailable
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		BookID:          b.ID,
		BookTitle:       b.Title,
		BookImage:       b.ImageURL,
		BookPrice:       b.Price,
		BuyerID:         buyer.ID,
		BuyerName:       buyer.Name,
		SellerID:        b.SellerID,
		SellerName:      b.SellerName,
		DeliveryAddress: deliveryAddress,
		Phone:           phone,
		DeliveryCharge:  domain.DeliveryCharge,
		Status:          domain.OrderRequested,
		PaymentMode:     domain.PaymentModeCOD,
	}
	ok, err := s.Orders.CreateForBook(&o)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		// lost the race: someone else bought it between read and write
		return domain.Order{}, ErrBookUnavailable
	}
	return o, nil
}

// Advance moves an order along requested -> approved -> picked-up ->
// delivered, or to cancelled from any non-terminal status. Admins may apply
// any legal transition; the seller only the forward path on their own
// orders; the buyer only cancellation of their own orders.
func (s *OrderService) Advance(orderID, next string, actor *domain.User) (domain.Order, error) {
	if actor == nil || !domain.ValidOrderStatus(next) {
		return domain.Order{}, ErrBadTransition
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		if o.SellerID != actor.ID || next == domain.OrderCancelled {
			return domain.Order{}, ErrNotAllowed
		}
	case domain.RoleBuyer:
		if o.BuyerID != actor.ID || next != domain.OrderCancelled {
			return domain.Order{}, ErrNotAllowed
		}
	default:
		return domain.Order{}, ErrNotAllowed
	}

	if !domain.CanAdvanceOrder(o.Status, next) {
		return domain.Order{}, ErrBadTransition
	}
	ok, err := s.Orders.AdvanceStatus(orderID, o.Status, next)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		// status moved under us; re-read would show the newer state
		return domain.Order{}, ErrBadTransition
	}
	o.Status = next

	// A terminal order has no live positions to share.
	if domain.TerminalOrderStatus(next) && s.Locations != nil {
		if err := s.Locations.PurgeOrder(orderID); err != nil {
			return o, err
		}
	}
	return o, nil
}

func (s *OrderService) Get(id string) (domain.Order, error) {
	return s.Orders.Get(id)
}

func (s *OrderService) ByBuyer(buyerID string) ([]domain.Order, error) {
	return s.Orders.ByBuyer(buyerID)
}

func (s *OrderService) BySeller(sellerID string) ([]domain.Order, error) {
	return s.Orders.BySeller(sellerID)
}

func (s *OrderService) SellerEarnings(sellerID string) (float64, error) {
	return s.Orders.SellerEarnings(sellerID)
}

func (s *OrderService) Stats() (repos.AdminStats, error) {
	return s.Orders.Stats()
}
