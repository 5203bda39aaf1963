// Package history keeps the per-profile recency cache of served greetings so
// novelty selection can avoid repeating itself. The cache is a fixed-capacity
// LRU over profile keys with a bounded entry list per profile; nothing is
// persisted.
package history

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultMaxProfiles bounds the number of tracked (name, age) profiles.
	DefaultMaxProfiles = 1000

	// DefaultMaxEntries bounds the remembered greetings per profile.
	DefaultMaxEntries = 20
)

// noAgeSentinel stands in for a missing age in the profile key.
const noAgeSentinel = "x"

// Key derives the profile key from the child's name and age. The name is
// lowercased and trimmed; a non-positive age uses a sentinel.
func Key(name string, age int) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "anon"
	}
	if age <= 0 {
		return name + "|" + noAgeSentinel
	}
	return fmt.Sprintf("%s|%d", name, age)
}

// profile is one LRU slot: a bounded most-recent-first list of past outputs.
type profile struct {
	key     string
	entries []string
}

// Store is a mutex-guarded LRU cache of per-profile greeting history. Safe
// for concurrent use.
type Store struct {
	mu          sync.Mutex
	maxProfiles int
	maxEntries  int
	order       *list.List // front = most recently used
	byKey       map[string]*list.Element
}

// New creates a Store. Non-positive limits select the defaults.
func New(maxProfiles, maxEntries int) *Store {
	if maxProfiles <= 0 {
		maxProfiles = DefaultMaxProfiles
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		maxProfiles: maxProfiles,
		maxEntries:  maxEntries,
		order:       list.New(),
		byKey:       make(map[string]*list.Element),
	}
}

// Recent returns a copy of the profile's history, most-recent-first, and
// marks the profile as recently used. A missing profile returns nil.
func (s *Store) Recent(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byKey[key]
	if !ok {
		return nil
	}
	s.order.MoveToFront(el)
	p := el.Value.(*profile)
	out := make([]string, len(p.entries))
	copy(out, p.entries)
	return out
}

// Add records a served greeting for the profile, prepending it and trimming
// the per-profile list to its bound. Adding to a new profile may evict the
// least recently used one.
func (s *Store) Add(key, text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byKey[key]
	if !ok {
		el = s.order.PushFront(&profile{key: key})
		s.byKey[key] = el
		if s.order.Len() > s.maxProfiles {
			oldest := s.order.Back()
			s.order.Remove(oldest)
			delete(s.byKey, oldest.Value.(*profile).key)
		}
	} else {
		s.order.MoveToFront(el)
	}

	p := el.Value.(*profile)
	p.entries = append([]string{text}, p.entries...)
	if len(p.entries) > s.maxEntries {
		p.entries = p.entries[:s.maxEntries]
	}
}

// Len reports the number of tracked profiles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
