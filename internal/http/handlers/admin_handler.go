package handlers

import (
	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Listings *services.ListingService
	Orders   *services.OrderService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Orders.Stats()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load stats"})
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":    stats,
		"Earnings": stats.DeliveryRevenue + stats.Commission,
	})
}

// GET /admin/books — the pending review queue.
func (h *AdminHandler) BooksPage(c *fiber.Ctx) error {
	pending, err := h.Listings.Pending()
	if err != nil {
		applog.Error(c, "admin.books.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load books"})
	}
	return render(c, "admin_books", fiber.Map{"Pending": pending})
}

// POST /admin/books/:id/review — approve (with a final price) or reject.
func (h *AdminHandler) ReviewBook(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	decision := c.FormValue("decision")
	if !ok || decision == "" {
		return c.Status(400).SendString("missing id or decision")
	}

	var finalPrice float64
	if decision == domain.BookApproved {
		p, okPrice := validate.Price(c.FormValue("final_price"))
		if !okPrice {
			applog.Security(c, "validation.fail", map[string]any{"field": "final_price"})
			return c.Status(400).SendString("final price must be positive")
		}
		finalPrice = p
	}

	if err := h.Listings.Review(id, decision, finalPrice); err != nil {
		applog.Error(c, "admin.books.review.fail", err, map[string]any{"book_id": id, "decision": decision})
		return c.Status(400).SendString("could not review listing")
	}
	applog.Audit(c, "admin.books.review", map[string]any{"book_id": id, "decision": decision, "final_price": finalPrice})
	return c.Redirect("/admin/books")
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	id, ok := validate.ID(c.Params("id"))
	status := c.FormValue("status")
	if !ok || status == "" {
		return c.Status(400).SendString("missing id or status")
	}
	if _, err := h.Orders.Advance(id, status, u); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id, "status": status})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}
