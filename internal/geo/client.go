// internal/geo/client.go
//
// Nominatim adapter: the external place oracle for the Atlas game.
// Responsibilities:
//   - Lookup: best-match classification hints for a free-text place name.
//   - CandidatesByLetter: ranked city/state candidates starting with a letter.
//   - Locate: coordinates for a display name (used by the map pin endpoint).
//
// All calls are synchronous with a bounded timeout and a short cooldown
// before each request to respect the service's rate limits. Failures are
// returned as explicit errors; callers map them to Unknown/empty results.

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/atlasgame/go-server/internal/places"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org/search"
	userAgent      = "atlas-go-server/1.0 (word-chain game)"

	lookupTimeout = 10 * time.Second
	letterTimeout = 12 * time.Second
	letterLimit   = 150

	// Cooldown inserted before each request.
	defaultCooldown = 700 * time.Millisecond
)

// Result is the best-match record for a single lookup.
type Result struct {
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	Importance  float64           `json:"importance"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
}

// Candidate is one ranked entry from a letter-prefix query.
type Candidate struct {
	Name       string
	Importance float64
}

// Coords is a resolved coordinate pair for a display name.
type Coords struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Display string  `json:"display"`
}

// Client talks to a Nominatim-compatible endpoint.
type Client struct {
	baseURL  string
	http     *http.Client
	cooldown time.Duration
}

// NewClient builds a Client against NOMINATIM_URL (or the public endpoint).
func NewClient() *Client {
	base := os.Getenv("NOMINATIM_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:  base,
		http:     &http.Client{Timeout: letterTimeout},
		cooldown: defaultCooldown,
	}
}

// NewClientFor builds a Client against an explicit endpoint with no
// cooldown. Used by tests.
func NewClientFor(base string) *Client {
	return &Client{baseURL: base, http: &http.Client{Timeout: letterTimeout}, cooldown: 0}
}

// get performs one search request and decodes the JSON result array.
func (c *Client) get(ctx context.Context, params url.Values, timeout time.Duration) ([]Result, error) {
	if c.cooldown > 0 {
		select {
		case <-time.After(c.cooldown):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: status %d", res.StatusCode)
	}

	var out []Result
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("geo: decode: %w", err)
	}
	return out, nil
}

// Lookup returns the best-match record for a free-text query, or nil when
// the service has no result.
func (c *Client) Lookup(ctx context.Context, q string) (*Result, error) {
	params := url.Values{
		"q":              {q},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}
	items, err := c.get(ctx, params, lookupTimeout)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Kind derives the game category from a record's address components and
// feature type: a municipality hint means City, a state/region/province
// hint means State, anything else Unknown.
func (r *Result) Kind() places.Category {
	if r == nil {
		return places.Unknown
	}
	if _, ok := r.Address["city"]; ok || r.Type == "city" || r.Type == "town" {
		return places.City
	}
	for _, k := range []string{"state", "region", "province"} {
		if _, ok := r.Address[k]; ok {
			return places.State
		}
	}
	return places.Unknown
}

// name returns the leading segment of a display name ("Paris, France" → "Paris").
func (r *Result) name() string {
	for i := 0; i < len(r.DisplayName); i++ {
		if r.DisplayName[i] == ',' {
			return r.DisplayName[:i]
		}
	}
	return r.DisplayName
}

// CandidatesByLetter queries the service for places starting with the given
// letter and filters them down to the requested kind. Results keep their
// importance score for ranking; ASCII-only names, canonical prefix enforced.
func (c *Client) CandidatesByLetter(ctx context.Context, letter rune, kind places.Category) ([]Candidate, error) {
	params := url.Values{
		"q":              {string(letter)},
		"format":         {"json"},
		"addressdetails": {"1"},
		"extratags":      {"1"},
		"limit":          {strconv.Itoa(letterLimit)},
	}
	items, err := c.get(ctx, params, letterTimeout)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for i := range items {
		it := &items[i]
		name := it.name()
		if name == "" || !isASCII(name) {
			continue
		}
		key := places.Canon(name)
		if first, ok := places.FirstLetter(key); !ok || rune(first) != letter {
			continue
		}
		switch kind {
		case places.City:
			if it.Class == "place" && (it.Type == "city" || it.Type == "town") {
				out = append(out, Candidate{Name: name, Importance: it.Importance})
			}
		case places.State:
			if it.Class != "place" && it.Class != "boundary" {
				continue
			}
			for _, k := range []string{"state", "region", "province"} {
				if _, ok := it.Address[k]; ok {
					out = append(out, Candidate{Name: name, Importance: it.Importance})
					break
				}
			}
		}
	}
	return out, nil
}

// Locate resolves a display name to coordinates, or nil when not found.
func (c *Client) Locate(ctx context.Context, q string) (*Coords, error) {
	r, err := c.Lookup(ctx, q)
	if err != nil || r == nil {
		return nil, err
	}
	lat, latErr := strconv.ParseFloat(r.Lat, 64)
	lon, lonErr := strconv.ParseFloat(r.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, fmt.Errorf("geo: malformed coordinates for %q", q)
	}
	return &Coords{Lat: lat, Lon: lon, Display: r.name()}, nil
}

// isASCII reports whether s contains only ASCII bytes.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
