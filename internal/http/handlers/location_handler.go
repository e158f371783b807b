package handlers

import (
	"database/sql"
	"errors"

	"rebook/internal/domain"
	applog "rebook/internal/log"
	"rebook/internal/services"
	"rebook/internal/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// LocationHandler is the HTTP face of the live-location relay: a JSON report
// endpoint for position fixes and a websocket stream per order driving the
// two-marker map. Geolocation sampling stays in the browser; a fix that fails
// to land here is surfaced to the client for a manual retry, never retried
// blindly.
type LocationHandler struct {
	Locations *services.LocationService
}

type positionReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Report upserts the caller's live position for an order.
// POST /api/v1/orders/:id/location
func (h *LocationHandler) Report(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	var in positionReport
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid position payload"})
	}

	loc, err := h.Locations.Report(oid, u, in.Latitude, in.Longitude)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	case errors.Is(err, services.ErrNotParticipant):
		applog.Security(c, "location.report.denied", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a participant of this order"})
	case errors.Is(err, services.ErrOrderClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "order is no longer active"})
	case errors.Is(err, services.ErrBadCoordinates):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coordinates out of range"})
	case err != nil:
		applog.Error(c, "location.report.fail", err, map[string]any{"order_id": oid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not store position, please retry"})
	}
	return c.JSON(loc)
}

// Snapshot returns the order's current positions.
// GET /api/v1/orders/:id/locations
func (h *LocationHandler) Snapshot(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	locs, err := h.Locations.Snapshot(oid, u)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	case errors.Is(err, services.ErrNotParticipant):
		applog.Security(c, "location.snapshot.denied", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a participant of this order"})
	case err != nil:
		applog.Error(c, "location.snapshot.fail", err, map[string]any{"order_id": oid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load positions"})
	}
	if locs == nil {
		locs = []domain.OrderLocation{}
	}
	return c.JSON(locs)
}

// UpgradeGuard rejects plain HTTP requests on the websocket route.
func UpgradeGuard(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type streamMessage struct {
	Type      string                 `json:"type"`
	Locations []domain.OrderLocation `json:"locations,omitempty"`
	Location  *domain.OrderLocation  `json:"location,omitempty"`
}

// Stream sends the current snapshot, then relays every update/delete for the
// order until the peer hangs up. The subscription is taken before the
// snapshot read so no event can fall between them; a duplicated update is
// harmless since rows are keyed by id.
// GET /ws/orders/:id/locations
func (h *LocationHandler) Stream(conn *websocket.Conn) {
	defer conn.Close()

	u, _ := conn.Locals("user").(*domain.User)
	oid, ok := validate.ID(conn.Params("id"))
	if u == nil || !ok {
		_ = conn.WriteJSON(fiber.Map{"error": "order not found"})
		return
	}

	events, cancel := h.Locations.Subscribe(oid)
	defer cancel()

	snap, err := h.Locations.Snapshot(oid, u)
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "could not open location stream"})
		return
	}
	if err := conn.WriteJSON(streamMessage{Type: "snapshot", Locations: snap}); err != nil {
		return
	}

	// Drain the peer so we notice the disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			loc := ev.Location
			if err := conn.WriteJSON(streamMessage{Type: ev.Type, Location: &loc}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
