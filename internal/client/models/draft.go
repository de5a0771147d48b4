package models

import (
	"math/rand/v2"
	"strings"
	"time"
)

// MaxRating is the top of the rating scale; zero or negative means unset.
const MaxRating = 10

var (
	coffeePrefixes = []string{"Morning", "Velvet", "Sunrise", "Roaster's", "Caramel", "Midnight", "Cloud", "Cocoa"}
	coffeeSuffixes = []string{"Blend", "Brew", "Espresso", "Cup", "Roast", "Drip", "V60", "Shot"}
)

// Draft is the form state submitted by a create or edit operation.
// Editing replaces the whole record with the draft; only photos follow a
// keep-all rule when the draft carries none.
type Draft struct {
	CoffeeName string
	BrewDate   string

	Roastery   string
	Origin     string
	Process    string
	BrewMethod string
	GrindSize  string
	WaterTemp  *float64
	Dose       *float64
	Yield      *float64
	BrewTime   string

	Aroma      []string
	Flavor     []string
	Aftertaste []string
	Defects    []string

	Acidity    *int
	Sweetness  *int
	Bitterness *int
	Body       *int
	Balance    *int
	Overall    *int

	Notes string

	Photos []PhotoFile
}

// Apply copies the draft fields onto e, leaving ID, CreatedAt, Photos and
// Synced untouched. Blank coffee names and brew dates get defaults. On a
// validation error e is not modified.
func (d Draft) Apply(e *Entry, now time.Time) error {
	ratings := []struct {
		name string
		in   *int
		out  **int
	}{
		{"acidity", d.Acidity, &e.Acidity},
		{"sweetness", d.Sweetness, &e.Sweetness},
		{"bitterness", d.Bitterness, &e.Bitterness},
		{"body", d.Body, &e.Body},
		{"balance", d.Balance, &e.Balance},
		{"overall", d.Overall, &e.Overall},
	}
	values := make([]*int, len(ratings))
	for i, r := range ratings {
		v, err := RatingValue(r.in)
		if err != nil {
			return &ValidationError{Field: r.name, Err: err}
		}
		values[i] = v
	}
	for i, r := range ratings {
		*r.out = values[i]
	}

	e.CoffeeName = strings.TrimSpace(d.CoffeeName)
	if e.CoffeeName == "" {
		e.CoffeeName = RandomCoffeeName()
	}
	e.BrewDate = strings.TrimSpace(d.BrewDate)
	if e.BrewDate == "" {
		e.BrewDate = LocalDateTime(now)
	}

	e.Roastery = text(d.Roastery)
	e.Origin = text(d.Origin)
	e.Process = option(d.Process)
	e.BrewMethod = option(d.BrewMethod)
	e.GrindSize = option(d.GrindSize)
	e.WaterTemp = d.WaterTemp
	e.Dose = d.Dose
	e.Yield = d.Yield
	e.BrewTime = text(d.BrewTime)

	e.Aroma = cleanList(d.Aroma)
	e.Flavor = cleanList(d.Flavor)
	e.Aftertaste = cleanList(d.Aftertaste)
	e.Defects = cleanList(d.Defects)

	e.Notes = text(d.Notes)
	return nil
}

// RatingValue normalizes a rating: nil, zero and negative values are unset.
func RatingValue(v *int) (*int, error) {
	if v == nil || *v <= 0 {
		return nil, nil
	}
	if *v > MaxRating {
		return nil, ErrRatingRange
	}
	n := *v
	return &n, nil
}

// ParseList splits comma-separated input into trimmed, non-empty items.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RandomCoffeeName returns a placeholder name such as "Velvet Roast".
func RandomCoffeeName() string {
	return coffeePrefixes[rand.IntN(len(coffeePrefixes))] + " " + coffeeSuffixes[rand.IntN(len(coffeeSuffixes))]
}

// LocalDateTime formats t the way brew dates are entered: YYYY-MM-DDTHH:MM.
func LocalDateTime(t time.Time) string {
	return t.Format("2006-01-02T15:04")
}

func text(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}

func option(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
