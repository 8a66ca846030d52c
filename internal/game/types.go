// internal/game/types.go
//
// Core type definitions for the Atlas turn engine.
// Defines:
//   - Difficulty: closed enum for the game modes.
//   - Oracle: the external place source the engine consults for cities/states.
//   - Session: state for a single word-chain game.
//   - Turn: structured result of one played turn.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/atlasgame/go-server/internal/places"
)

// Difficulty selects which place categories a player may submit.
type Difficulty int

const (
	// CountriesOnly accepts countries and answers with countries.
	CountriesOnly Difficulty = iota
	// CitiesAndStates accepts cities and states only.
	CitiesAndStates
	// AllGeography accepts any recognized place.
	AllGeography
)

// String returns the wire name of the difficulty.
func (d Difficulty) String() string {
	switch d {
	case CountriesOnly:
		return "countries"
	case CitiesAndStates:
		return "cities-states"
	default:
		return "all"
	}
}

// ParseDifficulty maps a wire name to a Difficulty.
// Unrecognized values are a construction-time error, never a silent default.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "countries":
		return CountriesOnly, nil
	case "cities-states":
		return CitiesAndStates, nil
	case "all":
		return AllGeography, nil
	}
	return 0, fmt.Errorf("game: unknown difficulty %q", s)
}

// Oracle is the external place source consulted for cities and states.
// Implementations return explicit errors; the engine maps every error to
// Unknown/empty rather than failing the turn.
type Oracle interface {
	// Classify reports what kind of place a free-text name denotes.
	Classify(ctx context.Context, name string) (places.Category, error)
	// Candidates returns ranked place names of a kind starting with letter.
	Candidates(ctx context.Context, letter rune, kind places.Category) ([]string, error)
}

// Session holds the state of a single Atlas game. All mutation goes through
// PlayTurn/Reset; one turn completes fully before the next is accepted.
type Session struct {
	ID         string
	Difficulty Difficulty

	mu       sync.Mutex
	used     map[string]struct{} // canonical keys named by either side
	required rune                // 0 before the first move
	turns    int                 // accepted player moves since last reset

	oracle Oracle
	rng    *mrand.Rand
}

// NewSession constructs a fresh session playing against the given oracle.
func NewSession(oracle Oracle, d Difficulty) *Session {
	return &Session{
		ID:         randomID(),
		Difficulty: d,
		used:       make(map[string]struct{}),
		oracle:     oracle,
		rng:        mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// Seed replaces the session's random source. Tests use this for
// deterministic selection.
func (s *Session) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = mrand.New(mrand.NewSource(seed))
}

// SetRequiredLetter seeds the required starting letter before any move has
// been played. The daily challenge uses this to fix the opening letter.
func (s *Session) SetRequiredLetter(l rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.required = l
}

// Turn is the structured result of one PlayTurn call.
type Turn struct {
	Message        string          `json:"message"`
	Place          string          `json:"place,omitempty"`          // the engine's move, empty when none
	Category       places.Category `json:"-"`                        // category of the engine's move
	RequiredLetter string          `json:"requiredLetter,omitempty"` // letter the player must use next
	Accepted       bool            `json:"accepted"`                 // player's move was recorded
	Conceded       bool            `json:"conceded"`                 // engine found no candidate
	WasReset       bool            `json:"reset"`                    // input was a reset keyword
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
