package domain

// OrderLocation is the single live position row per (order, participant).
// Reports upsert it in place; rows are purged when the order terminates.
type OrderLocation struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	UserID    string  `db:"user_id" json:"user_id"`
	UserRole  string  `db:"user_role" json:"user_role"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
