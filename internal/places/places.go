// internal/places/places.go
//
// Place-name canonicalization and shared geography types.
// Responsibilities:
//   - Canon: fold free-text place names into comparable canonical keys
//     (diacritics stripped, lowercased, whitespace collapsed, aliases resolved).
//   - LastAlpha: find the trailing alphabetic character of a name (the letter
//     the opponent's next place must start with).
//   - Category: closed enum for the kinds of places the game understands.
//   - Continents: the fixed seven-continent list.
//
// Canonical keys are the only representation used for equality and
// repeat-detection; display names are kept verbatim for messages.

package places

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category classifies a place name.
type Category int

const (
	Unknown Category = iota
	Country
	Continent
	City
	State
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case Country:
		return "country"
	case Continent:
		return "continent"
	case City:
		return "city"
	case State:
		return "state"
	default:
		return "unknown"
	}
}

// Place pairs a display name with its canonical key. Two places are the
// same place iff their keys match.
type Place struct {
	Display string
	Key     string
}

// New builds a Place from a raw display name.
func New(display string) Place {
	return Place{Display: display, Key: Canon(display)}
}

// Continents is the fixed list of continent display names.
var Continents = []string{
	"Africa", "Antarctica", "Asia", "Europe",
	"North America", "Oceania", "South America",
}

// aliases maps canonical forms of common alternative names to the canonical
// key of the catalog entry they refer to. Values are already canonical so
// Canon stays idempotent.
var aliases = map[string]string{
	"usa":                      "united states",
	"u.s.a":                    "united states",
	"united states of america": "united states",
	"uk":                       "united kingdom",
	"u.k":                      "united kingdom",
	"great britain":            "united kingdom",
	"burma":                    "myanmar",
	"swaziland":                "eswatini",
	"ivory coast":              "cote d'ivoire",
	"east timor":               "timor-leste",
	"macedonia":                "north macedonia",
	"czech republic":           "czechia",
	"turkey":                   "turkiye",
	"cape verde":               "cabo verde",
	"congo-brazzaville":        "congo",
	"drc":                      "democratic republic of the congo",
	"dr congo":                 "democratic republic of the congo",
	"holland":                  "netherlands",
	"vatican":                  "vatican city",
	"uae":                      "united arab emirates",
}

// stripMarks removes combining marks after NFD decomposition, turning
// "Côte d'Ivoire" into "Cote d'Ivoire".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold strips diacritics and lowercases. Total: transform errors cannot
// occur for the chain above, and the input is returned unchanged on failure.
func fold(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Canon normalizes a raw place name to its canonical key: diacritics
// stripped, trimmed, lowercased, internal whitespace collapsed to single
// spaces, then resolved through the alias table on an exact match.
// Pure and total; empty input yields the empty string.
func Canon(raw string) string {
	s := strings.TrimSpace(fold(raw))
	s = strings.Join(strings.Fields(s), " ")
	if target, ok := aliases[s]; ok {
		return target
	}
	return s
}

// LastAlpha returns the last alphabetic character of a name after folding,
// scanning from the end. Reports false when the name contains no letters.
func LastAlpha(raw string) (rune, bool) {
	rs := []rune(fold(raw))
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsLetter(rs[i]) {
			return rs[i], true
		}
	}
	return 0, false
}

// FirstLetter returns the first character of a canonical key when it is an
// ASCII letter a–z, which is what the per-letter indexes are keyed by.
func FirstLetter(key string) (byte, bool) {
	if key == "" {
		return 0, false
	}
	if c := key[0]; c >= 'a' && c <= 'z' {
		return c, true
	}
	return 0, false
}
