// internal/countries/countries.go
//
// Country catalog for the Atlas game.
//
// Responsibilities:
//   - Load the country list from an environment-provided file or fall back
//     to the embedded default (assets/countries.txt).
//   - Deduplicate by canonical key (first display form wins).
//   - Maintain a 26-bucket per-starting-letter index over canonical keys.
//   - Supply lookups used by the classifier and selector: All, ByLetter,
//     Contains, Letters, Stats.
//
// Initialization behavior (Init):
//   1. If COUNTRIES_FILE is set, load country names from that file;
//      a missing or unreadable file is a fatal load error.
//   2. Otherwise use the embedded default list.
//
// File format: one display name per line; blank lines and '#' comments are
// skipped. The catalog is immutable after Init and safe for concurrent reads.

package countries

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/atlasgame/go-server/assets"
	"github.com/atlasgame/go-server/internal/places"
)

var (
	initOnce   sync.Once
	catalog    []places.Place                // deduped, file order
	byKey      map[string]places.Place       // canonical key -> place
	byLetter   [26][]places.Place            // first canonical letter -> places
	initialErr error
)

// Init loads the catalog exactly once. Returns an error if the configured
// file is missing or the resulting catalog is empty.
func Init() error {
	initOnce.Do(func() {
		var names []string

		if path := os.Getenv("COUNTRIES_FILE"); path != "" {
			var err error
			names, err = readCountryFile(path)
			if err != nil {
				initialErr = fmt.Errorf("countries: load %s: %w", path, err)
				return
			}
		} else {
			var err error
			names, err = assets.CountryList()
			if err != nil {
				initialErr = fmt.Errorf("countries: embedded list: %w", err)
				return
			}
		}

		byKey = make(map[string]places.Place, len(names))
		for _, n := range names {
			p := places.New(n)
			if p.Key == "" {
				continue
			}
			if _, seen := byKey[p.Key]; seen {
				continue
			}
			byKey[p.Key] = p
			catalog = append(catalog, p)
			if c, ok := places.FirstLetter(p.Key); ok {
				byLetter[c-'a'] = append(byLetter[c-'a'], p)
			}
		}

		if len(catalog) == 0 {
			initialErr = errors.New("countries: catalog is empty")
		}
	})
	return initialErr
}

// readCountryFile loads one display name per line, skipping blank lines and
// '#' comments.
func readCountryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// All returns the deduplicated catalog in load order.
// The returned slice must not be mutated.
func All() []places.Place { return catalog }

// ByLetter returns the places whose canonical key starts with the given
// letter. Letters outside a–z yield nil.
func ByLetter(letter rune) []places.Place {
	if letter < 'a' || letter > 'z' {
		return nil
	}
	return byLetter[letter-'a']
}

// Contains reports whether a canonical key names a catalog country.
func Contains(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Letters returns the letters a–z that have at least one country, in order.
func Letters() []rune {
	var out []rune
	for i := range byLetter {
		if len(byLetter[i]) > 0 {
			out = append(out, rune('a'+i))
		}
	}
	return out
}

// Stats returns the catalog size and the number of non-empty letter buckets.
func Stats() (countryCount int, letterCount int) {
	return len(catalog), len(Letters())
}
