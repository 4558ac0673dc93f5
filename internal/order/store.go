package order

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-eats/appkit/internal/kvstore"
	"github.com/campus-eats/appkit/internal/session"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

const (
	ordersNamespace  = "ws_orders"
	couponsNamespace = "ws_coupons"
)

// Store holds the order history and coupon book for the current identity.
// RecordPurchase is atomic: the order and its coupon are created together
// under one lock with the same ID, and an ID is never reissued even when two
// purchases land in the same millisecond.
type Store struct {
	orders  *session.Store[Order]
	coupons *session.Store[Coupon]
	notify  func(ctx context.Context, title, message string)
	now     func() time.Time

	mu     sync.Mutex
	lastID int64
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the wall clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNotifier routes a purchase notification through fn after each
// successful RecordPurchase.
func WithNotifier(fn func(ctx context.Context, title, message string)) Option {
	return func(s *Store) { s.notify = fn }
}

// NewStore creates an order store scoped by keyFunc.
func NewStore(kv kvstore.Store, keyFunc func() string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		orders:  session.NewStore[Order](ordersNamespace, kv, keyFunc, logger),
		coupons: session.NewStore[Coupon](couponsNamespace, kv, keyFunc, logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPurchase creates an order and its matching coupon. Both carry the
// same timestamp-derived ID, the coupon starts unused, and both collections
// are persisted before the purchase notification goes out.
func (s *Store) RecordPurchase(ctx context.Context, menuName string, quantity int, totalPrice int64, storeName string) (Order, Coupon) {
	s.mu.Lock()

	ts := s.now()
	id := ts.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	stamp := ts.Format("2006-01-02 15:04")

	ord := Order{
		ID:         id,
		MenuName:   menuName,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		OrderedAt:  stamp,
		StoreName:  storeName,
		Status:     StatusPlaced,
	}
	coupon := Coupon{
		ID:        id,
		MenuName:  menuName,
		CreatedAt: stamp,
		Quantity:  quantity,
		Status:    CouponUnused,
		StoreName: storeName,
	}

	s.orders.Prepend(ctx, ord)
	s.coupons.Prepend(ctx, coupon)
	s.mu.Unlock()

	if s.notify != nil {
		s.notify(ctx, "주문 완료", fmt.Sprintf("%s %d개 주문이 접수되었습니다.", menuName, quantity))
	}
	return ord, coupon
}

// Orders returns the order history, newest first.
func (s *Store) Orders(ctx context.Context) []Order {
	return s.orders.Records(ctx)
}

// Coupons returns the coupon book, newest first.
func (s *Store) Coupons(ctx context.Context) []Coupon {
	return s.coupons.Records(ctx)
}

// UseCoupon redeems the coupon with the given ID.
func (s *Store) UseCoupon(ctx context.Context, id int64) error {
	var err error
	s.coupons.Mutate(ctx, func(recs *[]Coupon) {
		for i := range *recs {
			if (*recs)[i].ID != id {
				continue
			}
			if (*recs)[i].Status == CouponUsed {
				err = apperrors.Conflict("이미 사용된 쿠폰입니다.")
				return
			}
			(*recs)[i].Status = CouponUsed
			return
		}
		err = apperrors.NotFound("coupon", fmt.Sprintf("%d", id))
	})
	return err
}

// AdvanceOrder moves an order to the next status, honoring the transition
// table.
func (s *Store) AdvanceOrder(ctx context.Context, id int64, next Status) error {
	var err error
	s.orders.Mutate(ctx, func(recs *[]Order) {
		for i := range *recs {
			if (*recs)[i].ID != id {
				continue
			}
			if !(*recs)[i].Status.CanTransitionTo(next) {
				err = apperrors.Conflict(fmt.Sprintf("주문 상태를 %s에서 %s(으)로 변경할 수 없습니다.", (*recs)[i].Status, next))
				return
			}
			(*recs)[i].Status = next
			return
		}
		err = apperrors.NotFound("order", fmt.Sprintf("%d", id))
	})
	return err
}
