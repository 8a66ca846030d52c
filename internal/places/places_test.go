package places

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type PlacesSuite struct{}

var _ = Suite(&PlacesSuite{})

func (s *PlacesSuite) TestCanonBasics(c *C) {
	c.Assert(Canon(""), Equals, "")
	c.Assert(Canon("   "), Equals, "")
	c.Assert(Canon("India"), Equals, "india")
	c.Assert(Canon("  New   Zealand  "), Equals, "new zealand")
}

func (s *PlacesSuite) TestCanonDiacritics(c *C) {
	c.Assert(Canon("Côte d'Ivoire"), Equals, "cote d'ivoire")
	c.Assert(Canon("Türkiye"), Equals, "turkiye")
	c.Assert(Canon("São Tomé and Príncipe"), Equals, "sao tome and principe")
}

func (s *PlacesSuite) TestCanonAliases(c *C) {
	c.Assert(Canon("USA"), Equals, "united states")
	c.Assert(Canon("u.s.a"), Equals, "united states")
	c.Assert(Canon("United States of America"), Equals, "united states")
	c.Assert(Canon("UK"), Equals, "united kingdom")
	c.Assert(Canon("Burma"), Equals, "myanmar")
	c.Assert(Canon("Ivory Coast"), Equals, "cote d'ivoire")
	c.Assert(Canon("Turkey"), Equals, "turkiye")
	c.Assert(Canon("DR Congo"), Equals, "democratic republic of the congo")
}

func (s *PlacesSuite) TestCanonIdempotent(c *C) {
	for _, in := range []string{
		"India", "USA", "Côte d'Ivoire", "  New   Zealand ", "Türkiye",
		"burma", "united states", "Oceania", "St. Petersburg",
	} {
		once := Canon(in)
		c.Assert(Canon(once), Equals, once, Commentf("input %q", in))
	}
}

func (s *PlacesSuite) TestLastAlpha(c *C) {
	r, ok := LastAlpha("India")
	c.Assert(ok, Equals, true)
	c.Assert(r, Equals, 'a')

	r, ok = LastAlpha("Timor-Leste")
	c.Assert(ok, Equals, true)
	c.Assert(r, Equals, 'e')

	// Trailing punctuation and digits are skipped.
	r, ok = LastAlpha("Boston, MA.")
	c.Assert(ok, Equals, true)
	c.Assert(r, Equals, 'a')

	_, ok = LastAlpha("12345 --")
	c.Assert(ok, Equals, false)
	_, ok = LastAlpha("")
	c.Assert(ok, Equals, false)
}

func (s *PlacesSuite) TestFirstLetter(c *C) {
	b, ok := FirstLetter("india")
	c.Assert(ok, Equals, true)
	c.Assert(b, Equals, byte('i'))

	_, ok = FirstLetter("")
	c.Assert(ok, Equals, false)
	_, ok = FirstLetter("42nd street")
	c.Assert(ok, Equals, false)
}

func (s *PlacesSuite) TestNewPlace(c *C) {
	p := New("Côte d'Ivoire")
	c.Assert(p.Display, Equals, "Côte d'Ivoire")
	c.Assert(p.Key, Equals, "cote d'ivoire")
}

func (s *PlacesSuite) TestCategoryString(c *C) {
	c.Assert(Country.String(), Equals, "country")
	c.Assert(Continent.String(), Equals, "continent")
	c.Assert(City.String(), Equals, "city")
	c.Assert(State.String(), Equals, "state")
	c.Assert(Unknown.String(), Equals, "unknown")
}
