// Package order keeps the per-identity order history and coupon book.
package order

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// transitions maps each status to its allowed successors. Completed and
// canceled are terminal.
var transitions = map[Status][]Status{
	StatusPlaced:    {StatusPreparing, StatusCanceled},
	StatusPreparing: {StatusReady, StatusCanceled},
	StatusReady:     {StatusCompleted},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CouponStatus marks whether a coupon has been redeemed.
type CouponStatus string

const (
	CouponUnused CouponStatus = "unused"
	CouponUsed   CouponStatus = "used"
)

// Order is one purchase record. OrderedAt is a display string with minute
// precision ("2025-03-01 12:34").
type Order struct {
	ID         int64  `json:"id"`
	MenuName   string `json:"menuName"`
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"totalPrice"`
	OrderedAt  string `json:"orderedAt"`
	StoreName  string `json:"storeName,omitempty"`
	Status     Status `json:"status"`
}

// Coupon is issued alongside every order and shares its ID.
type Coupon struct {
	ID        int64        `json:"id"`
	MenuName  string       `json:"menuName"`
	CreatedAt string       `json:"createdAt"`
	Quantity  int          `json:"quantity"`
	Status    CouponStatus `json:"status"`
	StoreName string       `json:"storeName,omitempty"`
}
