package history_test

import (
	"fmt"
	"testing"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/textgen/history"
)

func TestKey(t *testing.T) {
	t.Parallel()

	if got := history.Key("Zosia", 7); got != "zosia|7" {
		t.Errorf("Key: got %q", got)
	}
	if got := history.Key("  Marek ", 0); got != "marek|x" {
		t.Errorf("Key without age: got %q", got)
	}
	if got := history.Key("", -1); got != "anon|x" {
		t.Errorf("Key without name: got %q", got)
	}
}

func TestStore_MostRecentFirst(t *testing.T) {
	t.Parallel()

	s := history.New(10, 20)
	key := history.Key("zosia", 7)
	s.Add(key, "pierwsze")
	s.Add(key, "drugie")
	s.Add(key, "trzecie")

	got := s.Recent(key)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0] != "trzecie" || got[2] != "pierwsze" {
		t.Errorf("expected most-recent-first order, got %v", got)
	}
}

func TestStore_EntryBound(t *testing.T) {
	t.Parallel()

	s := history.New(10, 5)
	key := history.Key("zosia", 7)
	for i := 0; i < 12; i++ {
		s.Add(key, fmt.Sprintf("zdanie %d", i))
	}

	got := s.Recent(key)
	if len(got) != 5 {
		t.Fatalf("expected bounded list of 5, got %d", len(got))
	}
	if got[0] != "zdanie 11" {
		t.Errorf("expected newest entry first, got %q", got[0])
	}
}

func TestStore_ProfileEviction(t *testing.T) {
	t.Parallel()

	s := history.New(2, 20)
	s.Add("a|x", "jeden")
	s.Add("b|x", "dwa")
	s.Add("c|x", "trzy") // evicts a|x

	if got := s.Recent("a|x"); got != nil {
		t.Errorf("expected oldest profile evicted, got %v", got)
	}
	if got := s.Recent("c|x"); len(got) != 1 {
		t.Errorf("expected newest profile kept, got %v", got)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 profiles, got %d", s.Len())
	}
}

func TestStore_RecentRefreshesLRU(t *testing.T) {
	t.Parallel()

	s := history.New(2, 20)
	s.Add("a|x", "jeden")
	s.Add("b|x", "dwa")

	// Touch a|x so b|x becomes the eviction victim.
	if got := s.Recent("a|x"); len(got) != 1 {
		t.Fatalf("expected a|x present, got %v", got)
	}
	s.Add("c|x", "trzy")

	if got := s.Recent("b|x"); got != nil {
		t.Errorf("expected b|x evicted, got %v", got)
	}
	if got := s.Recent("a|x"); len(got) != 1 {
		t.Errorf("expected a|x retained, got %v", got)
	}
}

func TestStore_UnknownProfile(t *testing.T) {
	t.Parallel()

	s := history.New(10, 20)
	if got := s.Recent("nobody|x"); got != nil {
		t.Errorf("expected nil for unknown profile, got %v", got)
	}
}

func TestStore_IgnoresEmptyText(t *testing.T) {
	t.Parallel()

	s := history.New(10, 20)
	s.Add("a|x", "")
	if s.Len() != 0 {
		t.Errorf("empty text must not create a profile, got %d", s.Len())
	}
}
