package repos

import (
	"rebook/internal/domain"

	"github.com/jmoiron/sqlx"
)

type LocationRepo struct{ db *sqlx.DB }

func NewLocationRepo(db *sqlx.DB) *LocationRepo { return &LocationRepo{db: db} }

// Upsert writes the single live position for (order, user). The update arm is
// fenced on updated_at so a report that was delayed in flight cannot clobber
// a newer position. Returns whether the write was applied.
func (r *LocationRepo) Upsert(loc *domain.OrderLocation) (bool, error) {
	res, err := r.db.Exec(`
	  INSERT INTO order_locations(id, order_id, user_id, user_role, latitude, longitude, updated_at)
	  VALUES (?,?,?,?,?,?,?)
	  ON CONFLICT(order_id, user_id) DO UPDATE SET
	    latitude   = excluded.latitude,
	    longitude  = excluded.longitude,
	    user_role  = excluded.user_role,
	    updated_at = excluded.updated_at
	  WHERE excluded.updated_at >= order_locations.updated_at
	`, loc.ID, loc.OrderID, loc.UserID, loc.UserRole, loc.Latitude, loc.Longitude, loc.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Get returns the stored row for (order, user), keeping the id stable across
// upserts for subscribers that key markers by row id.
func (r *LocationRepo) Get(orderID, userID string) (domain.OrderLocation, error) {
	var loc domain.OrderLocation
	err := r.db.Get(&loc, `
	  SELECT id, order_id, user_id, user_role, latitude, longitude, updated_at
	  FROM order_locations WHERE order_id = ? AND user_id = ?`, orderID, userID)
	return loc, err
}

// ByOrder returns all current positions for an order (at most two rows).
func (r *LocationRepo) ByOrder(orderID string) ([]domain.OrderLocation, error) {
	var out []domain.OrderLocation
	err := r.db.Select(&out, `
	  SELECT id, order_id, user_id, user_role, latitude, longitude, updated_at
	  FROM order_locations
	  WHERE order_id = ?
	  ORDER BY user_role`, orderID)
	return out, err
}

// PurgeOrder drops the order's position rows once it reaches a terminal
// status; returns the deleted rows so the relay can emit delete events.
func (r *LocationRepo) PurgeOrder(orderID string) ([]domain.OrderLocation, error) {
	rows, err := r.ByOrder(orderID)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(`DELETE FROM order_locations WHERE order_id = ?`, orderID); err != nil {
		return nil, err
	}
	return rows, nil
}
