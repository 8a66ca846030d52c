// internal/game/engine.go
//
// Turn engine for a single Atlas session.
// Responsibilities:
//   - Validate the player's move: required starting letter, difficulty gate,
//     repeat detection. Rejections never mutate state.
//   - Classify the submitted place (catalog, continents, then the oracle).
//   - Answer with the engine's own move via the tiered selector.
//   - Track used places and the required letter across turns.
//
// Notes:
//   - A turn runs under the session mutex from validation through selection,
//     so turns for one session never interleave.
//   - Oracle failures degrade to Unknown/empty; a turn always completes
//     with a user-facing message.

package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/atlasgame/go-server/internal/countries"
	"github.com/atlasgame/go-server/internal/places"
)

// resetKeywords reset the session when submitted as a move.
var resetKeywords = map[string]struct{}{
	"quit":    {},
	"restart": {},
	"reset":   {},
}

const resetMessage = "Game reset. Let's start fresh."

// PlayTurn plays one full turn: validates the player's move, records it,
// picks the engine's answer, and advances the required letter.
func (s *Session) PlayTurn(ctx context.Context, raw string, diff Difficulty) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(raw)
	if name == "" {
		return Turn{Message: "Please enter a place."}
	}

	key := places.Canon(name)
	if _, ok := resetKeywords[key]; ok {
		s.resetLocked()
		return Turn{Message: resetMessage, WasReset: true}
	}

	// Starting-letter rule, enforced from the second move on.
	if s.required != 0 && firstRune(key) != s.required {
		return Turn{Message: fmt.Sprintf("Invalid move! Your place must start with %s.", upper(s.required))}
	}

	cat := s.classify(ctx, name)

	// Difficulty gates. Rejections leave state untouched.
	switch diff {
	case CountriesOnly:
		if cat != places.Country {
			return Turn{Message: "Countries-only mode: please enter a country (e.g. India, France, Japan)."}
		}
	case CitiesAndStates:
		if cat != places.City && cat != places.State {
			return Turn{Message: "Cities and states mode: please enter a city or a state."}
		}
	}

	if _, used := s.used[key]; used {
		return Turn{Message: fmt.Sprintf("%s has already been used. Try another place.", name)}
	}

	// Accept the player's move.
	s.used[key] = struct{}{}
	s.turns++

	letter, ok := places.LastAlpha(name)
	if !ok {
		return Turn{
			Message:  "I couldn't find a valid ending letter in that name. Try another place.",
			Accepted: true,
		}
	}

	bot, botCat := s.findNext(ctx, letter, cat, diff)

	// The selector may legitimately return an already-used place (repeat
	// tier, or a shared oracle cache raced by another session). Retry once
	// and keep the retry only when it is unused.
	if bot != "" {
		if _, used := s.used[places.Canon(bot)]; used {
			if again, againCat := s.findNext(ctx, letter, cat, diff); again != "" {
				if _, used := s.used[places.Canon(again)]; !used {
					bot, botCat = again, againCat
				}
			}
		}
	}

	if bot == "" {
		// Game over in the player's favor; state keeps the accepted move.
		return Turn{
			Message:  fmt.Sprintf("I can't find anything starting with %s. You win!", upper(letter)),
			Accepted: true,
			Conceded: true,
		}
	}

	s.used[places.Canon(bot)] = struct{}{}
	if next, ok := places.LastAlpha(bot); ok {
		s.required = next
	} else {
		s.required = 0
	}

	t := Turn{
		Message:  fmt.Sprintf("My turn (%s): %s.", botCat, bot),
		Place:    bot,
		Category: botCat,
		Accepted: true,
	}
	if s.required != 0 {
		t.RequiredLetter = string(s.required)
		t.Message += fmt.Sprintf(" Your next place must start with %s.", upper(s.required))
	}
	return t
}

// classify determines the category of a submitted name: catalog country,
// fixed continent, else one oracle lookup. Oracle failures map to Unknown.
func (s *Session) classify(ctx context.Context, name string) places.Category {
	key := places.Canon(name)
	if key == "" {
		return places.Unknown
	}
	if countries.Contains(key) {
		return places.Country
	}
	for _, c := range places.Continents {
		if places.Canon(c) == key {
			return places.Continent
		}
	}
	kind, err := s.oracle.Classify(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("place", name).Msg("oracle classify failed")
		return places.Unknown
	}
	return kind
}

// Reset clears the session and returns a confirmation message.
func (s *Session) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return resetMessage
}

func (s *Session) resetLocked() {
	s.used = make(map[string]struct{})
	s.required = 0
	s.turns = 0
}

// Snapshot is a read-only diagnostic view of session state.
type Snapshot struct {
	UsedPlaces     []string `json:"usedPlaces"`
	RequiredLetter string   `json:"requiredLetter,omitempty"`
	Turns          int      `json:"turns"`
}

// State returns a sorted snapshot of used canonical keys and the current
// required letter.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.used))
	for k := range s.used {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := Snapshot{UsedPlaces: keys, Turns: s.turns}
	if s.required != 0 {
		snap.RequiredLetter = string(s.required)
	}
	return snap
}

// Turns reports accepted player moves since the last reset.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func upper(r rune) string {
	return strings.ToUpper(string(r))
}
