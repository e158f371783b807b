package handlers

import (
	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SellerHandler struct {
	Listings *services.ListingService
	Orders   *services.OrderService
}

// Dashboard shows the seller's listings, incoming orders and earnings.
func (h *SellerHandler) Dashboard(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	books, err := h.Listings.BySeller(u.ID)
	if err != nil {
		applog.Error(c, "seller.books.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your listings"})
	}
	orders, err := h.Orders.BySeller(u.ID)
	if err != nil {
		applog.Error(c, "seller.orders.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}
	earnings, err := h.Orders.SellerEarnings(u.ID)
	if err != nil {
		applog.Error(c, "seller.earnings.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your earnings"})
	}

	return render(c, "seller_dashboard", fiber.Map{
		"Books":    books,
		"Orders":   orders,
		"Earnings": earnings,
	})
}

// AdvanceOrder lets the seller move their order forward (approve, mark
// picked-up, mark delivered). Cancellation is the buyer's and admin's call.
func (h *SellerHandler) AdvanceOrder(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	oid, ok := validate.ID(c.Params("id"))
	status := c.FormValue("status")
	if !ok || status == "" {
		return c.Status(400).SendString("missing id or status")
	}
	if _, err := h.Orders.Advance(oid, status, u); err != nil {
		applog.Security(c, "seller.orders.advance.fail", map[string]any{"order_id": oid, "status": status, "error": err.Error()})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "seller.orders.advance", map[string]any{"order_id": oid, "status": status})
	return c.Redirect("/seller")
}
