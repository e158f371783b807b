package services

import (
	"errors"

	"rebook/internal/domain"
	"rebook/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrNotSeller   = errors.New("only sellers can list books")
	ErrBadListing  = errors.New("missing or invalid listing fields")
	ErrNotPending  = errors.New("book is not awaiting review")
	ErrBadDecision = errors.New("decision must be approved or rejected")
	ErrBadPrice    = errors.New("final price must be positive")
)

type ListingService struct {
	Books *repos.BookRepo
}

func NewListingService(books *repos.BookRepo) *ListingService {
	return &ListingService{Books: books}
}

type ListingInput struct {
	Title         string
	Author        string
	Category      string
	MRP           float64
	Condition     string
	ImageURL      string
	PickupAddress string
	Landmark      string
	Phone         string
	Latitude      *float64
	Longitude     *float64
}

// Submit creates a pending listing for a seller. The asking price is derived
// from the printed MRP and the book's condition; the admin sets the final
// price at approval time.
func (s *ListingService) Submit(seller *domain.User, in ListingInput) (domain.Book, error) {
	if seller == nil || seller.Role != domain.RoleSeller {
		return domain.Book{}, ErrNotSeller
	}
	if in.Title == "" || in.Author == "" || in.PickupAddress == "" || in.Phone == "" {
		return domain.Book{}, ErrBadListing
	}
	if !domain.ValidCategory(in.Category) || !domain.ValidCondition(in.Condition) {
		return domain.Book{}, ErrBadListing
	}
	price := domain.SuggestedPrice(in.MRP, in.Condition)
	if price <= 0 {
		return domain.Book{}, ErrBadListing
	}

	b := domain.Book{
		ID:            uuid.NewString(),
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		Title:         in.Title,
		Author:        in.Author,
		Category:      in.Category,
		MRP:           in.MRP,
		Price:         price,
		Condition:     in.Condition,
		ImageURL:      in.ImageURL,
		PickupAddress: in.PickupAddress,
		Landmark:      in.Landmark,
		Phone:         in.Phone,
		Status:        domain.BookPending,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
	}
	if err := s.Books.Insert(&b); err != nil {
		return domain.Book{}, err
	}
	return b, nil
}

// Review settles a pending listing. Approval requires a positive final price,
// which replaces the suggested one; rejection takes no price. Both paths are
// conditional on the book still being pending.
func (s *ListingService) Review(bookID, decision string, finalPrice float64) error {
	switch decision {
	case domain.BookApproved:
		if finalPrice <= 0 {
			return ErrBadPrice
		}
		ok, err := s.Books.ApproveWithPrice(bookID, finalPrice)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotPending
		}
		return nil
	case domain.BookRejected:
		ok, err := s.Books.AdvanceStatus(bookID, domain.BookPending, domain.BookRejected)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotPending
		}
		return nil
	default:
		return ErrBadDecision
	}
}

func (s *ListingService) Approved(category string) ([]domain.Book, error) {
	return s.Books.ApprovedByCategory(category)
}

func (s *ListingService) Pending() ([]domain.Book, error) {
	return s.Books.ByStatus(domain.BookPending)
}

func (s *ListingService) BySeller(sellerID string) ([]domain.Book, error) {
	return s.Books.BySeller(sellerID)
}

func (s *ListingService) Get(id string) (domain.Book, error) {
	return s.Books.Get(id)
}
