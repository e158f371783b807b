package repos

import (
	"rebook/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, book_id, book_title, book_image, book_price, buyer_id, buyer_name,
  seller_id, seller_name, delivery_address, phone, delivery_charge, status,
  payment_mode, created_at`

// CreateForBook atomically marks the book sold and inserts the order. The
// book update is conditional on status='approved', so of two concurrent
// buyers at most one order is created; the loser gets ok=false.
func (r *OrderRepo) CreateForBook(o *domain.Order) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE books SET status = ? WHERE id = ? AND status = ?`,
		domain.BookSold, o.BookID, domain.BookApproved)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, book_id, book_title, book_image, book_price, buyer_id, buyer_name,
	     seller_id, seller_name, delivery_address, phone, delivery_charge, status,
	     payment_mode, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.BookID, o.BookTitle, o.BookImage, o.BookPrice, o.BuyerID, o.BuyerName,
		o.SellerID, o.SellerName, o.DeliveryAddress, o.Phone, o.DeliveryCharge,
		o.Status, o.PaymentMode); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT`+orderCols+` FROM orders WHERE id = ?`, id)
	return o, err
}

func (r *OrderRepo) ByBuyer(buyerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT`+orderCols+` FROM orders
	  WHERE buyer_id = ?
	  ORDER BY datetime(created_at) DESC`, buyerID)
	return out, err
}

func (r *OrderRepo) BySeller(sellerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT`+orderCols+` FROM orders
	  WHERE seller_id = ?
	  ORDER BY datetime(created_at) DESC`, sellerID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT`+orderCols+` FROM orders
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, limit)
	return out, err
}

// AdvanceStatus applies a validated transition with a conditional write so a
// stale caller cannot overwrite a status that already moved on.
func (r *OrderRepo) AdvanceStatus(id, from, to string) (bool, error) {
	res, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SellerEarnings sums the book price of the seller's delivered orders.
// The delivery charge never reaches the seller.
func (r *OrderRepo) SellerEarnings(sellerID string) (float64, error) {
	var total float64
	err := r.db.Get(&total, `
	  SELECT COALESCE(SUM(book_price), 0) FROM orders
	  WHERE seller_id = ? AND status = ?`, sellerID, domain.OrderDelivered)
	return total, err
}

type AdminStats struct {
	TotalOrders     int     `db:"total_orders"`
	DeliveredOrders int     `db:"delivered_orders"`
	DeliveryRevenue float64 `db:"delivery_revenue"`
	Commission      float64 `db:"commission"`
}

// Stats aggregates platform revenue: the full delivery charge plus a
// commission cut of the book price, counted on delivered orders only.
func (r *OrderRepo) Stats() (AdminStats, error) {
	var s AdminStats
	err := r.db.Get(&s, `
	  SELECT
	    (SELECT COUNT(*) FROM orders) AS total_orders,
	    COUNT(*) AS delivered_orders,
	    COALESCE(SUM(delivery_charge), 0) AS delivery_revenue,
	    COALESCE(SUM(book_price * ?), 0) AS commission
	  FROM orders WHERE status = ?`, domain.CommissionRate, domain.OrderDelivered)
	return s, err
}
