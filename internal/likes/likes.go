// Package likes counts menu likes and serves the popularity ranking.
// Counts are shared across identities and kept in memory only.
package likes

import (
	"sort"
	"sync"
)

// Kind distinguishes the two menu sources.
type Kind string

const (
	KindCafeteria Kind = "cafeteria"
	KindCafe      Kind = "cafe"
)

// Item is one liked menu with its running count. ID is kind + ":" + slug.
type Item struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	MenuSlug   string `json:"menuSlug"`
	MenuName   string `json:"menuName"`
	SourceName string `json:"sourceName"`
	Likes      int    `json:"likes"`
}

// Store is the in-memory like counter.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewStore creates an empty like store.
func NewStore() *Store {
	return &Store{items: make(map[string]*Item)}
}

// Like increments the count for a menu, inserting it on first like, and
// returns the updated item.
func (s *Store) Like(kind Kind, menuSlug, menuName, sourceName string) Item {
	key := string(kind) + ":" + menuSlug

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[key]; ok {
		existing.Likes++
		return *existing
	}

	item := &Item{
		ID:         key,
		Kind:       kind,
		MenuSlug:   menuSlug,
		MenuName:   menuName,
		SourceName: sourceName,
		Likes:      1,
	}
	s.items[key] = item
	return *item
}

// Ranking returns all liked menus sorted by like count, highest first.
// Ties order by ID for a stable result.
func (s *Store) Ranking() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].ID < out[j].ID
	})
	return out
}
