package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int { return &i }

func TestDraftApply_FillsFieldsAndDefaults(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 0, 0, time.Local)
	d := Draft{
		Roastery:  "  Tim Wendelboe ",
		Process:   "",
		Aroma:     []string{" jasmine ", "", "citrus"},
		Acidity:   intp(0),
		Overall:   intp(8),
		WaterTemp: f64p(94),
	}

	var e Entry
	require.NoError(t, d.Apply(&e, now))

	assert.NotEmpty(t, e.CoffeeName)
	assert.Equal(t, "2024-03-09T07:05", e.BrewDate)
	assert.Equal(t, "Tim Wendelboe", *e.Roastery)
	assert.Nil(t, e.Process)
	assert.Equal(t, []string{"jasmine", "citrus"}, e.Aroma)
	assert.Equal(t, []string{}, e.Defects)
	assert.Nil(t, e.Acidity)
	assert.Equal(t, 8, *e.Overall)
	assert.Equal(t, 94.0, *e.WaterTemp)
}

func TestDraftApply_RatingOutOfRangeLeavesEntryUntouched(t *testing.T) {
	e := Entry{CoffeeName: "Before", Acidity: intp(3)}
	err := Draft{CoffeeName: "After", Acidity: intp(4), Body: intp(11)}.Apply(&e, time.Now())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "body", verr.Field)
	require.ErrorIs(t, err, ErrRatingRange)
	assert.Equal(t, "Before", e.CoffeeName)
	assert.Equal(t, 3, *e.Acidity)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "a"}, ParseList(" a, b c ,, a ,"))
	assert.Equal(t, []string{}, ParseList(""))
}

func TestRandomCoffeeName(t *testing.T) {
	parts := strings.SplitN(RandomCoffeeName(), " ", 2)
	require.Len(t, parts, 2)
	assert.Contains(t, coffeePrefixes, parts[0])
	assert.Contains(t, coffeeSuffixes, parts[1])
}
