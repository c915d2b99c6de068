// Package countries turns the country codes used in entry files into the
// names shown in chapter titles.
package countries

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Codes that are not ISO regions, or whose historical name differs from the
// current one.
var special = map[string]string{
	"ENG": "England",
	"SCT": "Scotland",
	"WLS": "Wales",
	"WIN": "Winner",
	"DDR": "East Germany",
	"DEU": "West Germany",
	"SUN": "Soviet Union",
	"YUG": "Yugoslavia",
	"CSK": "Czechoslovakia",
	"SCG": "Serbia and Montenegro",
	"XKK": "Kosovo",
	"COD": "Zaire",
}

type Names struct {
	overrides map[string]string
	regions   display.Namer
}

// New returns a namer seeded with the built-in table; extra overrides win.
func New(extra map[string]string) *Names {
	n := &Names{
		overrides: make(map[string]string, len(special)+len(extra)),
		regions:   display.English.Regions(),
	}
	for k, v := range special {
		n.overrides[k] = v
	}
	for k, v := range extra {
		n.overrides[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return n
}

// Name resolves a two- or three-letter code. Unknown codes come back
// upper-cased as given.
func (n *Names) Name(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return ""
	}
	if v, ok := n.overrides[c]; ok {
		return v
	}
	r, err := language.ParseRegion(c)
	if err != nil {
		return c
	}
	if name := n.regions.Name(r); name != "" && !strings.EqualFold(name, "Unknown Region") {
		return name
	}
	return c
}

// ShowTitle derives a human readable title from a show identifier such as
// "2024_grand_final" when the input has no explicit title.
func ShowTitle(showID string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range showID {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevSpace = false
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(b.String())
	if title == "" {
		return showID
	}
	return cases.Title(language.Und).String(title)
}
