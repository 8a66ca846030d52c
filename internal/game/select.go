// internal/game/select.go
//
// Tiered place selection for the engine's answering move.
// The policy never concedes while any permitted category still has a
// candidate: unused places are preferred, repeats are allowed before giving
// up, and AllGeography broadens across categories until something matches.
// Callers hold the session mutex.

package game

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/atlasgame/go-server/internal/countries"
	"github.com/atlasgame/go-server/internal/places"
)

// pickCountry selects a country starting with letter.
// Tiers: unused from the per-letter bucket; unused from a full-catalog scan;
// any repeat from the full-catalog scan; empty when no country matches.
func (s *Session) pickCountry(letter rune) string {
	bucket := countries.ByLetter(letter)
	if p := s.choosePlace(s.unusedPlaces(bucket)); p != "" {
		return p
	}

	// Full scan covers entries the bucket index may have missed.
	var scan []places.Place
	for _, p := range countries.All() {
		if strings.HasPrefix(p.Key, string(letter)) {
			scan = append(scan, p)
		}
	}
	if p := s.choosePlace(s.unusedPlaces(scan)); p != "" {
		return p
	}
	return s.choosePlace(scan)
}

// pickContinent selects a continent starting with letter, preferring unused
// ones and allowing a repeat before returning empty.
func (s *Session) pickContinent(letter rune) string {
	var opts []string
	for _, c := range places.Continents {
		if strings.HasPrefix(places.Canon(c), string(letter)) {
			opts = append(opts, c)
		}
	}
	if len(opts) == 0 {
		return ""
	}
	var unused []string
	for _, c := range opts {
		if _, ok := s.used[places.Canon(c)]; !ok {
			unused = append(unused, c)
		}
	}
	if len(unused) > 0 {
		return unused[s.rng.Intn(len(unused))]
	}
	return opts[s.rng.Intn(len(opts))]
}

// pickFromOracle selects a cached city or state candidate for the letter.
// Oracle errors degrade to no candidate.
func (s *Session) pickFromOracle(ctx context.Context, letter rune, kind places.Category) string {
	cands, err := s.oracle.Candidates(ctx, letter, kind)
	if err != nil {
		log.Debug().Err(err).Str("kind", kind.String()).Str("letter", string(letter)).Msg("oracle candidates failed")
		return ""
	}
	if len(cands) == 0 {
		return ""
	}
	var unused []string
	for _, n := range cands {
		if _, ok := s.used[places.Canon(n)]; !ok {
			unused = append(unused, n)
		}
	}
	if len(unused) > 0 {
		return unused[s.rng.Intn(len(unused))]
	}
	return cands[s.rng.Intn(len(cands))]
}

// findNext routes selection by difficulty and the player's category.
// Returns the chosen name and its category, or empty when every permitted
// category is out of candidates.
func (s *Session) findNext(ctx context.Context, letter rune, cat places.Category, diff Difficulty) (string, places.Category) {
	if diff == CountriesOnly {
		return s.pickCountry(letter), places.Country
	}

	switch cat {
	case places.Country:
		return s.pickCountry(letter), places.Country
	case places.Continent:
		return s.pickContinent(letter), places.Continent
	}

	if diff == CitiesAndStates {
		if c := s.pickFromOracle(ctx, letter, places.City); c != "" {
			return c, places.City
		}
		return s.pickFromOracle(ctx, letter, places.State), places.State
	}

	// AllGeography: same kind first, then broaden until something matches.
	order := []places.Category{places.City, places.State}
	if cat == places.State {
		order = []places.Category{places.State, places.City}
	}
	for _, k := range order {
		if c := s.pickFromOracle(ctx, letter, k); c != "" {
			return c, k
		}
	}
	if c := s.pickCountry(letter); c != "" {
		return c, places.Country
	}
	if c := s.pickContinent(letter); c != "" {
		return c, places.Continent
	}
	return "", places.Unknown
}

// unusedPlaces filters a place list down to entries not yet named.
func (s *Session) unusedPlaces(list []places.Place) []places.Place {
	var out []places.Place
	for _, p := range list {
		if _, ok := s.used[p.Key]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// choosePlace picks uniformly among the list's display names; empty when
// the list is empty.
func (s *Session) choosePlace(list []places.Place) string {
	if len(list) == 0 {
		return ""
	}
	return list[s.rng.Intn(len(list))].Display
}
