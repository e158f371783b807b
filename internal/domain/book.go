package domain

import "math"

// Book statuses form a small DAG: pending -> approved|rejected, approved -> sold.
const (
	BookPending  = "pending"
	BookApproved = "approved"
	BookRejected = "rejected"
	BookSold     = "sold"
)

const (
	CondNew     = "new"
	CondLikeNew = "like-new"
	CondGood    = "good"
	CondFair    = "fair"
	CondPoor    = "poor"
)

type Book struct {
	ID            string   `db:"id"`
	SellerID      string   `db:"seller_id"`
	SellerName    string   `db:"seller_name"`
	Title         string   `db:"title"`
	Author        string   `db:"author"`
	Category      string   `db:"category"`
	MRP           float64  `db:"mrp"`
	Price         float64  `db:"price"`
	Condition     string   `db:"condition"`
	ImageURL      string   `db:"image_url"`
	PickupAddress string   `db:"pickup_address"`
	Landmark      string   `db:"landmark"`
	Phone         string   `db:"phone"`
	Status        string   `db:"status"`
	Latitude      *float64 `db:"latitude"`
	Longitude     *float64 `db:"longitude"`
	CreatedAt     string   `db:"created_at"`
}

var Categories = []string{
	"Fiction",
	"Non-Fiction",
	"Science",
	"Technology",
	"History",
	"Biography",
	"Children",
	"Academic",
	"Self-Help",
	"Other",
}

// conditionRate discounts the printed MRP by wear.
var conditionRate = map[string]float64{
	CondNew:     0.70,
	CondLikeNew: 0.60,
	CondGood:    0.50,
	CondFair:    0.40,
	CondPoor:    0.30,
}

func ValidCondition(c string) bool {
	_, ok := conditionRate[c]
	return ok
}

func ValidCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// SuggestedPrice derives the listing price from MRP and condition.
// Returns 0 for an unknown condition or non-positive MRP.
func SuggestedPrice(mrp float64, condition string) float64 {
	rate, ok := conditionRate[condition]
	if !ok || mrp <= 0 {
		return 0
	}
	return math.Round(mrp * rate)
}
