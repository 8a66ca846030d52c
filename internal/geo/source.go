// internal/geo/source.go
//
// Source combines the Nominatim client with a per-letter candidate cache.
// The cache is write-once per (kind, letter), capped to the top candidates
// by importance, and purely a performance optimization: clearing it never
// affects correctness, only latency and request volume.

package geo

import (
	"context"
	"sort"
	"sync"

	"github.com/atlasgame/go-server/internal/places"
)

// topPerLetter caps each cached letter bucket for quality and variety.
const topPerLetter = 40

// Source answers classification and letter-candidate queries, caching the
// latter. Safe to share across game sessions.
type Source struct {
	client *Client

	mu      sync.RWMutex
	entries map[cacheKey][]Candidate
}

type cacheKey struct {
	kind   places.Category
	letter rune
}

// NewSource wraps a client with an empty cache.
func NewSource(c *Client) *Source {
	return &Source{client: c, entries: make(map[cacheKey][]Candidate)}
}

// Classify asks the oracle what kind of place a name denotes. Empty results
// and lookup failures both surface as an explicit error or Unknown; callers
// never see a panic or a partial record.
func (s *Source) Classify(ctx context.Context, name string) (places.Category, error) {
	r, err := s.client.Lookup(ctx, name)
	if err != nil {
		return places.Unknown, err
	}
	return r.Kind(), nil
}

// Candidates returns ranked place names of the given kind starting with the
// letter, fetching and caching the bucket on first use.
func (s *Source) Candidates(ctx context.Context, letter rune, kind places.Category) ([]string, error) {
	key := cacheKey{kind: kind, letter: letter}

	s.mu.RLock()
	cached, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return names(cached), nil
	}

	fetched, err := s.client.CandidatesByLetter(ctx, letter, kind)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(fetched, func(i, j int) bool { return fetched[i].Importance > fetched[j].Importance })
	if len(fetched) > topPerLetter {
		fetched = fetched[:topPerLetter]
	}

	s.mu.Lock()
	// First writer wins; a concurrent fill for the same bucket is kept.
	if prior, ok := s.entries[key]; ok {
		fetched = prior
	} else {
		s.entries[key] = fetched
	}
	s.mu.Unlock()

	return names(fetched), nil
}

// Locate resolves coordinates for a display name.
func (s *Source) Locate(ctx context.Context, q string) (*Coords, error) {
	return s.client.Locate(ctx, q)
}

func names(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Name)
	}
	return out
}
