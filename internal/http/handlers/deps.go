package handlers

import (
	"rebook/internal/relay"
	"rebook/internal/repos"
	"rebook/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	BookHandler     *BookHandler
	OrderHandler    *OrderHandler
	SellerHandler   *SellerHandler
	AdminHandler    *AdminHandler
	LocationHandler *LocationHandler
}

func NewDeps(db *sqlx.DB, hub *relay.Hub) *Deps {
	bookRepo := repos.NewBookRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	locRepo := repos.NewLocationRepo(db)

	listingSvc := services.NewListingService(bookRepo)
	locationSvc := services.NewLocationService(orderRepo, locRepo, hub)
	orderSvc := services.NewOrderService(bookRepo, orderRepo, locationSvc)

	return &Deps{
		BookHandler:     &BookHandler{Listings: listingSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc, Listings: listingSvc},
		SellerHandler:   &SellerHandler{Listings: listingSvc, Orders: orderSvc},
		AdminHandler:    &AdminHandler{Listings: listingSvc, Orders: orderSvc},
		LocationHandler: &LocationHandler{Locations: locationSvc},
	}
}
