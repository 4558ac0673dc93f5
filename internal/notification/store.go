// Package notification keeps the per-identity notification feed.
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/campus-eats/appkit/internal/kvstore"
	"github.com/campus-eats/appkit/internal/session"
)

const namespace = "ws_notifications"

// Item is one feed entry. Time is a display string ("2025-03-01 12:34:56").
type Item struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Store is the session-scoped notification feed, newest first.
type Store struct {
	session *session.Store[Item]
	now     func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the wall clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a notification store scoped by keyFunc.
func NewStore(kv kvstore.Store, keyFunc func() string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		session: session.NewStore[Item](namespace, kv, keyFunc, logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnPersistError registers a callback for failed best-effort writes.
func (s *Store) OnPersistError(fn func(key string, err error)) {
	s.session.OnPersistError = fn
}

// Add prepends a new notification stamped with the current time and returns
// it.
func (s *Store) Add(ctx context.Context, title, message string) Item {
	now := s.now()
	item := Item{
		ID:      now.UnixMilli(),
		Title:   title,
		Message: message,
		Time:    now.Format("2006-01-02 15:04:05"),
	}
	s.session.Prepend(ctx, item)
	return item
}

// Items returns the current identity's notifications, newest first.
func (s *Store) Items(ctx context.Context) []Item {
	return s.session.Records(ctx)
}

// ClearAll empties the feed for the current identity.
func (s *Store) ClearAll(ctx context.Context) {
	s.session.Clear(ctx)
}

// Reload re-syncs with the current identity, picking up a sign-in or
// sign-out that happened since the last call.
func (s *Store) Reload(ctx context.Context) {
	_ = s.session.Records(ctx)
}
