package render

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/firemesscode/drevorod/pkg/family"
)

// Card is the text shown on a person card.
type Card struct {
	Name  string
	Years string
	Age   string
}

// CardFor builds the card text for p. now is used for the age of living
// people.
func CardFor(p *family.Person, now time.Time) Card {
	if p == nil {
		return Card{}
	}
	c := Card{Name: p.FullName(), Years: p.Lifespan()}
	if age, ok := p.Age(now); ok {
		if p.Deceased() {
			c.Age = fmt.Sprintf("lived %d years", age)
		} else {
			c.Age = fmt.Sprintf("age %d", age)
		}
	}
	return c
}

// Lines returns the non-empty card lines, top to bottom.
func (c Card) Lines() []string {
	var out []string
	for _, s := range []string{c.Name, c.Years, c.Age} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

const (
	fontCharWidth = 0.55
	fontSize      = 14.0
	cardPadding   = 12.0
)

// truncate shortens s to fit width at the card font size.
func truncate(s string, width float64) string {
	maxChars := max(3, int((width-2*cardPadding)/(fontSize*fontCharWidth)))
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	r := []rune(s)
	return string(r[:maxChars-2]) + ".."
}
