package handlers

import (
	"strconv"

	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type BookHandler struct {
	Listings *services.ListingService
}

// Home shows the approved catalog, optionally narrowed to a category.
func (h *BookHandler) Home(c *fiber.Ctx) error {
	cat := c.Query("category")
	if cat != "" && !domain.ValidCategory(cat) {
		cat = ""
	}
	books, err := h.Listings.Approved(cat)
	if err != nil {
		applog.Error(c, "books.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load books"})
	}
	return render(c, "home", fiber.Map{
		"Books":      books,
		"Categories": domain.Categories,
		"Category":   cat,
	})
}

func (h *BookHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Book not found")
	}
	b, err := h.Listings.Get(id)
	if err != nil {
		return notFound(c, "Book not found")
	}
	// Unsold listings are public only once approved; the owner and the admin
	// may inspect any state.
	if b.Status != domain.BookApproved {
		u, _ := c.Locals("user").(*domain.User)
		if u == nil || (u.ID != b.SellerID && u.Role != domain.RoleAdmin) {
			applog.Security(c, "access.denied.book", map[string]any{"book_id": id})
			return notFound(c, "Book not found")
		}
	}
	return render(c, "book", fiber.Map{"Book": b})
}

// SellForm renders the listing submission form (seller only, route-guarded).
func (h *BookHandler) SellForm(c *fiber.Ctx) error {
	return render(c, "sell", fiber.Map{
		"Categories": domain.Categories,
		"Err":        "",
	})
}

// Sell accepts a listing submission and leaves it pending review.
func (h *BookHandler) Sell(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	title, okTitle := validate.Text(c.FormValue("title"), 120)
	author, okAuthor := validate.Text(c.FormValue("author"), 80)
	addr, okAddr := validate.Text(c.FormValue("pickup_address"), 200)
	phone, okPhone := validate.Phone(c.FormValue("phone"))
	mrp, okMRP := validate.Price(c.FormValue("mrp"))
	if !okTitle || !okAuthor || !okAddr || !okPhone || !okMRP {
		applog.Security(c, "validation.fail", map[string]any{"form": "sell"})
		return c.Status(400).Render("sell", fiber.Map{
			"Categories": domain.Categories,
			"Err":        "Please fill in all required fields",
		})
	}

	in := services.ListingInput{
		Title:         title,
		Author:        author,
		Category:      c.FormValue("category"),
		MRP:           mrp,
		Condition:     c.FormValue("condition"),
		ImageURL:      c.FormValue("image_url"),
		PickupAddress: addr,
		Landmark:      c.FormValue("landmark"),
		Phone:         phone,
	}
	if lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64); err == nil {
		if lng, err := strconv.ParseFloat(c.FormValue("longitude"), 64); err == nil && domain.ValidCoordinates(lat, lng) {
			in.Latitude, in.Longitude = &lat, &lng
		}
	}

	b, err := h.Listings.Submit(u, in)
	if err != nil {
		applog.Security(c, "book.submit.fail", map[string]any{"error": err.Error()})
		return c.Status(400).Render("sell", fiber.Map{
			"Categories": domain.Categories,
			"Err":        "Could not submit the listing. Please review the form.",
		})
	}
	applog.Audit(c, "book.submit", map[string]any{"book_id": b.ID, "price": b.Price})
	return c.Redirect("/seller")
}
