package domain

const (
	OrderRequested = "requested"
	OrderApproved  = "approved"
	OrderPickedUp  = "picked-up"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Money rules for cash-on-delivery fulfillment. The order total is the book
// price snapshot plus the flat delivery charge; it never tracks later price
// edits. On delivery the seller is credited the book price, the platform
// keeps the delivery charge plus a commission cut of the book price.
const (
	DeliveryCharge = 50.0
	CommissionRate = 0.10
	PaymentModeCOD = "cod"
)

type Order struct {
	ID              string  `db:"id"`
	BookID          string  `db:"book_id"`
	BookTitle       string  `db:"book_title"`
	BookImage       string  `db:"book_image"`
	BookPrice       float64 `db:"book_price"`
	BuyerID         string  `db:"buyer_id"`
	BuyerName       string  `db:"buyer_name"`
	SellerID        string  `db:"seller_id"`
	SellerName      string  `db:"seller_name"`
	DeliveryAddress string  `db:"delivery_address"`
	Phone           string  `db:"phone"`
	DeliveryCharge  float64 `db:"delivery_charge"`
	Status          string  `db:"status"`
	PaymentMode     string  `db:"payment_mode"`
	CreatedAt       string  `db:"created_at"`
}

func (o Order) Total() float64 { return o.BookPrice + o.DeliveryCharge }

// orderNext is the authoritative order state machine: the monotonic path
// requested -> approved -> picked-up -> delivered, with cancelled reachable
// from every non-terminal status.
var orderNext = map[string][]string{
	OrderRequested: {OrderApproved, OrderCancelled},
	OrderApproved:  {OrderPickedUp, OrderCancelled},
	OrderPickedUp:  {OrderDelivered, OrderCancelled},
	OrderDelivered: {},
	OrderCancelled: {},
}

func ValidOrderStatus(s string) bool {
	_, ok := orderNext[s]
	return ok
}

// CanAdvanceOrder reports whether from -> to is a legal order transition.
func CanAdvanceOrder(from, to string) bool {
	for _, n := range orderNext[from] {
		if n == to {
			return true
		}
	}
	return false
}

// TerminalOrderStatus reports whether a status ends the order's lifecycle.
func TerminalOrderStatus(s string) bool {
	return s == OrderDelivered || s == OrderCancelled
}
