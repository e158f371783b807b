package repos

import (
	"rebook/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookCols = `
  id, seller_id, seller_name, title, author, category, mrp, price, condition,
  image_url, pickup_address, landmark, phone, status, latitude, longitude, created_at`

func (r *BookRepo) Insert(b *domain.Book) error {
	_, err := r.db.Exec(`
	  INSERT INTO books
	    (id, seller_id, seller_name, title, author, category, mrp, price, condition,
	     image_url, pickup_address, landmark, phone, status, latitude, longitude, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, b.ID, b.SellerID, b.SellerName, b.Title, b.Author, b.Category, b.MRP, b.Price,
		b.Condition, b.ImageURL, b.PickupAddress, b.Landmark, b.Phone, b.Status,
		b.Latitude, b.Longitude)
	return err
}

func (r *BookRepo) Get(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `SELECT`+bookCols+` FROM books WHERE id = ?`, id)
	return b, err
}

// ByStatus lists books in one lifecycle state, newest first.
func (r *BookRepo) ByStatus(status string) ([]domain.Book, error) {
	var out []domain.Book
	err := r.db.Select(&out, `
	  SELECT`+bookCols+` FROM books
	  WHERE status = ?
	  ORDER BY datetime(created_at) DESC`, status)
	return out, err
}

func (r *BookRepo) BySeller(sellerID string) ([]domain.Book, error) {
	var out []domain.Book
	err := r.db.Select(&out, `
	  SELECT`+bookCols+` FROM books
	  WHERE seller_id = ?
	  ORDER BY datetime(created_at) DESC`, sellerID)
	return out, err
}

// ApprovedByCategory lists buyable books, optionally narrowed to a category.
func (r *BookRepo) ApprovedByCategory(category string) ([]domain.Book, error) {
	if category == "" {
		return r.ByStatus(domain.BookApproved)
	}
	var out []domain.Book
	err := r.db.Select(&out, `
	  SELECT`+bookCols+` FROM books
	  WHERE status = ? AND category = ?
	  ORDER BY datetime(created_at) DESC`, domain.BookApproved, category)
	return out, err
}

// AdvanceStatus moves a book from one status to the next with a conditional
// write. It returns false when the book was not in the expected status, which
// keeps the pending->approved|rejected, approved->sold DAG monotonic even
// under concurrent callers.
func (r *BookRepo) AdvanceStatus(id, from, to string) (bool, error) {
	res, err := r.db.Exec(`UPDATE books SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ApproveWithPrice applies the admin's final price and flips pending->approved
// in one conditional write.
func (r *BookRepo) ApproveWithPrice(id string, finalPrice float64) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE books SET status = ?, price = ?
	  WHERE id = ? AND status = ?`, domain.BookApproved, finalPrice, id, domain.BookPending)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
