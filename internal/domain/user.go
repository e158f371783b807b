package domain

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
}

// SignupRole reports whether a role is self-assignable at registration.
// Admin accounts are seeded, never created through the signup form.
func SignupRole(r string) bool {
	return r == RoleBuyer || r == RoleSeller
}
