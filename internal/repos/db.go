package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure baseline accounts exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	// Demo listings if the catalog is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('buyer','seller','admin')),
  phone TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Books
CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  seller_name TEXT NOT NULL,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  category TEXT NOT NULL,
  mrp NUMERIC NOT NULL CHECK (mrp > 0),
  price NUMERIC NOT NULL CHECK (price > 0),
  condition TEXT NOT NULL CHECK (condition IN ('new','like-new','good','fair','poor')),
  image_url TEXT NOT NULL DEFAULT '',
  pickup_address TEXT NOT NULL,
  landmark TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected','sold')),
  latitude REAL,
  longitude REAL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_books_seller     ON books(seller_id);
CREATE INDEX IF NOT EXISTS idx_books_status     ON books(status);
CREATE INDEX IF NOT EXISTS idx_books_created_at ON books(created_at);

-- Orders (book fields are a snapshot taken at order time)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL REFERENCES books(id),
  book_title TEXT NOT NULL,
  book_image TEXT NOT NULL DEFAULT '',
  book_price NUMERIC NOT NULL,
  buyer_id TEXT NOT NULL REFERENCES users(id),
  buyer_name TEXT NOT NULL,
  seller_id TEXT NOT NULL REFERENCES users(id),
  seller_name TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  phone TEXT NOT NULL,
  delivery_charge NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'requested'
    CHECK (status IN ('requested','approved','picked-up','delivered','cancelled')),
  payment_mode TEXT NOT NULL DEFAULT 'cod',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_buyer      ON orders(buyer_id);
CREATE INDEX IF NOT EXISTS idx_orders_seller     ON orders(seller_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

-- Live positions: at most one row per (order, participant)
CREATE TABLE IF NOT EXISTS order_locations(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  user_role TEXT NOT NULL CHECK (user_role IN ('buyer','seller')),
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE(order_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_order_locations_order ON order_locations(order_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures a buyer, a seller and the admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Phone, Hash string
	}
	mk := func(id, email, name, role, phone, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Phone: phone, Hash: string(h)}
	}

	users := []u{
		mk("u-asha", "asha@rebook.test", "Asha", "buyer", "+91 9800000001", "Passw0rd!"),
		mk("u-ravi", "ravi@rebook.test", "Ravi", "seller", "+91 9800000002", "Passw0rd!"),
		mk("u-admin", "admin@rebook.test", "Admin", "admin", "+91 9800000000", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,phone)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.Phone); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedIfEmpty inserts a couple of demo listings on a fresh database.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM books`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo listings")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO books
	  (id,seller_id,seller_name,title,author,category,mrp,price,condition,image_url,pickup_address,landmark,phone,status) VALUES
	  ('bk-gatsby','u-ravi','Ravi','The Great Gatsby','F. Scott Fitzgerald','Fiction',399,200,'good',
	   'books/bk-gatsby/cover.jpg','12 MG Road, Bengaluru','Near Trinity metro','+91 9800000002','approved'),
	  ('bk-sicp','u-ravi','Ravi','Structure and Interpretation of Computer Programs','Abelson & Sussman','Technology',950,665,'like-new',
	   'books/bk-sicp/cover.jpg','12 MG Road, Bengaluru','Near Trinity metro','+91 9800000002','approved'),
	  ('bk-clock','u-ravi','Ravi','A Clockwork Orange','Anthony Burgess','Fiction',350,105,'poor',
	   'books/bk-clock/cover.jpg','12 MG Road, Bengaluru','','+91 9800000002','pending')`)

	return tx.Commit()
}
