// Package session implements identity-scoped persistence: an ordered
// in-memory record list mirrored to durable key-value storage under a key
// derived from the current identity.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/campus-eats/appkit/internal/kvstore"
)

// Store keeps an ordered list of T scoped to the current identity.
// storageKey is namespace + ":" + key, where key comes from the injected
// resolver (the signed-in email, or "guest"). Every exported method re-checks
// the identity first and reloads when it changed, so records never leak
// across a sign-in or sign-out.
//
// Persistence is best-effort: a failed write is reported through the
// OnPersistError callback (or logged) and never surfaces to the caller.
type Store[T any] struct {
	namespace string
	kv        kvstore.Store
	keyFunc   func() string
	logger    *slog.Logger

	// OnPersistError, when set, observes failed writes.
	OnPersistError func(key string, err error)

	mu      sync.Mutex
	lastKey string
	records []T
	loaded  bool
}

// NewStore creates a session-scoped store.
func NewStore[T any](namespace string, kv kvstore.Store, keyFunc func() string, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		namespace: namespace,
		kv:        kv,
		keyFunc:   keyFunc,
		logger:    logger,
	}
}

// Records returns a copy of the current identity's records, newest first
// when the owning store prepends.
func (s *Store[T]) Records(ctx context.Context) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentIdentity(ctx)
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Prepend inserts a record at the front and persists.
func (s *Store[T]) Prepend(ctx context.Context, rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentIdentity(ctx)
	s.records = append([]T{rec}, s.records...)
	s.persist(ctx)
}

// Replace swaps the whole record list and persists.
func (s *Store[T]) Replace(ctx context.Context, recs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentIdentity(ctx)
	s.records = make([]T, len(recs))
	copy(s.records, recs)
	s.persist(ctx)
}

// Mutate applies fn to the record list under the lock and persists.
func (s *Store[T]) Mutate(ctx context.Context, fn func(recs *[]T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentIdentity(ctx)
	fn(&s.records)
	s.persist(ctx)
}

// Clear empties the current identity's records and persists the empty list.
func (s *Store[T]) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentIdentity(ctx)
	s.records = nil
	s.persist(ctx)
}

func (s *Store[T]) storageKey() string {
	return s.namespace + ":" + s.keyFunc()
}

// ensureCurrentIdentity reloads from storage when the identity key changed
// since the last call. Callers hold s.mu.
func (s *Store[T]) ensureCurrentIdentity(ctx context.Context) {
	key := s.storageKey()
	if s.loaded && key == s.lastKey {
		return
	}
	s.lastKey = key
	s.loaded = true
	s.records = s.load(ctx, key)
}

// load reads and parses the stored list. Absence and parse failures both
// yield an empty list; parse failures are logged.
func (s *Store[T]) load(ctx context.Context, key string) []T {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "session load failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var recs []T
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		s.logger.WarnContext(ctx, "session data corrupted, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return recs
}

// persist writes the current list best-effort. Callers hold s.mu.
func (s *Store[T]) persist(ctx context.Context) {
	key := s.lastKey

	data, err := json.Marshal(s.records)
	if err == nil {
		err = s.kv.Set(ctx, key, string(data))
	}
	if err == nil {
		return
	}

	if s.OnPersistError != nil {
		s.OnPersistError(key, err)
		return
	}
	s.logger.WarnContext(ctx, "session persist failed",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
