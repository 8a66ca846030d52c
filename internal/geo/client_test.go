package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/atlasgame/go-server/internal/places"
)

func TestLookupKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Result{{
			DisplayName: "Paris, Île-de-France, France",
			Class:       "place",
			Type:        "city",
			Address:     map[string]string{"city": "Paris", "country": "France"},
		}})
	}))
	defer srv.Close()

	c := NewClientFor(srv.URL)
	r, err := c.Lookup(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if r == nil {
		t.Fatal("expected a result")
	}
	if got := r.Kind(); got != places.City {
		t.Fatalf("Kind() = %v, want City", got)
	}
}

func TestLookupStateKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Result{{
			DisplayName: "Bavaria, Germany",
			Class:       "boundary",
			Type:        "administrative",
			Address:     map[string]string{"state": "Bavaria", "country": "Germany"},
		}})
	}))
	defer srv.Close()

	r, err := NewClientFor(srv.URL).Lookup(context.Background(), "Bavaria")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := r.Kind(); got != places.State {
		t.Fatalf("Kind() = %v, want State", got)
	}
}

func TestLookupEmptyAndErrors(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer empty.Close()

	r, err := NewClientFor(empty.URL).Lookup(context.Background(), "nowhere")
	if err != nil || r != nil {
		t.Fatalf("empty lookup = (%v, %v), want (nil, nil)", r, err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer failing.Close()

	if _, err := NewClientFor(failing.URL).Lookup(context.Background(), "x"); err == nil {
		t.Fatal("expected error on non-200 status")
	}

	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer malformed.Close()

	if _, err := NewClientFor(malformed.URL).Lookup(context.Background(), "x"); err == nil {
		t.Fatal("expected error on malformed payload")
	}
}

func TestCandidatesByLetterFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Result{
			{DisplayName: "Boston, USA", Class: "place", Type: "city", Importance: 0.7},
			{DisplayName: "Berlin, Germany", Class: "place", Type: "city", Importance: 0.9},
			// Wrong starting letter: dropped.
			{DisplayName: "Madrid, Spain", Class: "place", Type: "city", Importance: 0.8},
			// Not a city: dropped for kind City.
			{DisplayName: "Bavaria, Germany", Class: "boundary", Type: "administrative",
				Address: map[string]string{"state": "Bavaria"}, Importance: 0.6},
			// Non-ASCII name: dropped.
			{DisplayName: "Besançon, France", Class: "place", Type: "city", Importance: 0.5},
		})
	}))
	defer srv.Close()

	got, err := NewClientFor(srv.URL).CandidatesByLetter(context.Background(), 'b', places.City)
	if err != nil {
		t.Fatalf("CandidatesByLetter: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %v", len(got), got)
	}
	for _, cand := range got {
		if cand.Name != "Boston" && cand.Name != "Berlin" {
			t.Fatalf("unexpected candidate %q", cand.Name)
		}
	}
}

func TestSourceRanksAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode([]Result{
			{DisplayName: "Boston, USA", Class: "place", Type: "city", Importance: 0.7},
			{DisplayName: "Berlin, Germany", Class: "place", Type: "city", Importance: 0.9},
			{DisplayName: "Bristol, UK", Class: "place", Type: "town", Importance: 0.4},
		})
	}))
	defer srv.Close()

	src := NewSource(NewClientFor(srv.URL))

	names, err := src.Candidates(context.Background(), 'b', places.City)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(names) != 3 || names[0] != "Berlin" {
		t.Fatalf("ranking wrong: %v", names)
	}

	// Second call is served from the cache.
	if _, err := src.Candidates(context.Background(), 'b', places.City); err != nil {
		t.Fatalf("cached Candidates: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("oracle hit %d times, want 1", n)
	}

	// A different kind is a separate bucket.
	if _, err := src.Candidates(context.Background(), 'b', places.State); err != nil {
		t.Fatalf("state Candidates: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("oracle hit %d times, want 2", n)
	}
}

func TestLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Result{{
			DisplayName: "Tokyo, Japan",
			Lat:         "35.6768601",
			Lon:         "139.7638947",
		}})
	}))
	defer srv.Close()

	got, err := NewClientFor(srv.URL).Locate(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got == nil || got.Display != "Tokyo" || got.Lat < 35 || got.Lat > 36 {
		t.Fatalf("unexpected coords: %+v", got)
	}
}
