package countries

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/atlasgame/go-server/internal/places"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type CountriesSuite struct{}

var _ = Suite(&CountriesSuite{})

func (s *CountriesSuite) SetUpSuite(c *C) {
	c.Assert(Init(), IsNil)
}

func (s *CountriesSuite) TestInitIdempotent(c *C) {
	before, _ := Stats()
	c.Assert(Init(), IsNil)
	after, _ := Stats()
	c.Assert(after, Equals, before)
	c.Assert(before > 150, Equals, true)
}

func (s *CountriesSuite) TestContains(c *C) {
	c.Assert(Contains(places.Canon("India")), Equals, true)
	c.Assert(Contains(places.Canon("USA")), Equals, true)
	c.Assert(Contains(places.Canon("Côte d'Ivoire")), Equals, true)
	c.Assert(Contains(places.Canon("Atlantis")), Equals, false)
	c.Assert(Contains(""), Equals, false)
}

func (s *CountriesSuite) TestByLetter(c *C) {
	for _, p := range ByLetter('a') {
		b, ok := places.FirstLetter(p.Key)
		c.Assert(ok, Equals, true)
		c.Assert(b, Equals, byte('a'))
	}
	c.Assert(len(ByLetter('a')) > 0, Equals, true)
	c.Assert(ByLetter('1'), IsNil)
}

func (s *CountriesSuite) TestLetters(c *C) {
	letters := Letters()
	has := make(map[rune]bool, len(letters))
	for _, l := range letters {
		has[l] = true
	}
	c.Assert(has['a'], Equals, true)
	c.Assert(has['m'], Equals, true)
	// No country starts with these letters.
	c.Assert(has['x'], Equals, false)
	c.Assert(has['w'], Equals, false)
}

func (s *CountriesSuite) TestDedupeKeepsFirstDisplay(c *C) {
	seen := make(map[string]bool)
	for _, p := range All() {
		c.Assert(seen[p.Key], Equals, false, Commentf("duplicate key %q", p.Key))
		seen[p.Key] = true
	}
}
