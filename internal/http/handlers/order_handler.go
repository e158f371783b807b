package handlers

import (
	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders   *services.OrderService
	Listings *services.ListingService
}

// canSeeOrder limits an order to its two parties and the admin.
func canSeeOrder(o domain.Order, u *domain.User) bool {
	if u == nil {
		return false
	}
	return u.ID == o.BuyerID || u.ID == o.SellerID || u.Role == domain.RoleAdmin
}

// PlaceForm shows the checkout page for one approved book (buyer only).
func (h *OrderHandler) PlaceForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Book not found")
	}
	b, err := h.Listings.Get(id)
	if err != nil || b.Status != domain.BookApproved {
		return notFound(c, "This book is no longer available")
	}
	return render(c, "checkout", fiber.Map{
		"Book":           b,
		"DeliveryCharge": domain.DeliveryCharge,
		"Total":          b.Price + domain.DeliveryCharge,
	})
}

// Place creates the order and flips the book to sold.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	bookID, okID := validate.ID(c.FormValue("book_id"))
	addr, okAddr := validate.Text(c.FormValue("delivery_address"), 200)
	phone, okPhone := validate.Phone(c.FormValue("phone"))
	if !okID || !okAddr || !okPhone {
		applog.Security(c, "validation.fail", map[string]any{"form": "order"})
		return c.Status(400).SendString("invalid order details")
	}

	o, err := h.Orders.Place(u, bookID, addr, phone)
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"book_id": bookID, "error": err.Error()})
		return c.Status(400).Render("notfound", fiber.Map{
			"Message": "Could not place the order. The book may no longer be available.",
		})
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total()})
	return c.Redirect("/order/" + o.ID)
}

// View shows one order with its live map (parties and admin only).
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	o, err := h.Orders.Get(oid)
	if err != nil {
		return notFound(c, "Order not found")
	}
	u, _ := c.Locals("user").(*domain.User)
	if !canSeeOrder(o, u) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return notFound(c, "Order not found")
	}
	return render(c, "order", fiber.Map{
		"Order":    o,
		"Total":    o.Total(),
		"Active":   !domain.TerminalOrderStatus(o.Status),
		"IsBuyer":  u.ID == o.BuyerID,
		"IsSeller": u.ID == o.SellerID,
	})
}

// History lists the current buyer's orders, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	orders, err := h.Orders.ByBuyer(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

// Cancel lets the buyer cancel their own non-terminal order.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	if _, err := h.Orders.Advance(oid, domain.OrderCancelled, u); err != nil {
		applog.Security(c, "order.cancel.fail", map[string]any{"order_id": oid, "error": err.Error()})
		return c.Status(400).SendString("could not cancel order")
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": oid})
	return c.Redirect("/orders")
}
