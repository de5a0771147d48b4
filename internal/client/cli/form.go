package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/coffeelog/internal/client/models"
)

// entryForm binds the entry form to command flags.
type entryForm struct {
	name, date                         string
	roastery, origin, process          string
	method, grind, brewTime            string
	waterTemp, dose, yield             float64
	aroma, flavor, aftertaste, defects string
	ratings                            [6]int
	notes                              string
	photos                             []string
}

var ratingNames = [6]string{"acidity", "sweetness", "bitterness", "body", "balance", "overall"}

func (f *entryForm) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "coffee name (random when empty)")
	fl.StringVar(&f.date, "date", "", "brew date, YYYY-MM-DDTHH:MM (now when empty)")
	fl.StringVar(&f.roastery, "roastery", "", "roastery")
	fl.StringVar(&f.origin, "origin", "", "origin")
	fl.StringVar(&f.process, "process", "", "process (washed, natural, ...)")
	fl.StringVar(&f.method, "method", "", "brew method (v60, espresso, ...)")
	fl.StringVar(&f.grind, "grind", "", "grind size")
	fl.Float64Var(&f.waterTemp, "water-temp", 0, "water temperature")
	fl.Float64Var(&f.dose, "dose", 0, "dose in grams")
	fl.Float64Var(&f.yield, "yield", 0, "yield in grams")
	fl.StringVar(&f.brewTime, "brew-time", "", "brew time, e.g. 2:45")
	fl.StringVar(&f.aroma, "aroma", "", "comma-separated aroma notes")
	fl.StringVar(&f.flavor, "flavor", "", "comma-separated flavor notes")
	fl.StringVar(&f.aftertaste, "aftertaste", "", "comma-separated aftertaste notes")
	fl.StringVar(&f.defects, "defects", "", "comma-separated defects")
	for i, name := range ratingNames {
		fl.IntVar(&f.ratings[i], name, 0, fmt.Sprintf("%s rating 1-%d (0 unsets)", name, models.MaxRating))
	}
	fl.StringVar(&f.notes, "notes", "", `free-text notes ("-" reads them from stdin)`)
	fl.StringArrayVar(&f.photos, "photo", nil, fmt.Sprintf("photo file, repeatable (max %d; replaces existing photos)", models.MaxPhotos))
}

// draft overlays the flags the user set onto base.
func (f *entryForm) draft(cmd *cobra.Command, a *App, base models.Draft) (models.Draft, error) {
	fl := cmd.Flags()
	d := base

	set := func(name string, dst *string, v string) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	set("name", &d.CoffeeName, f.name)
	set("date", &d.BrewDate, f.date)
	set("roastery", &d.Roastery, f.roastery)
	set("origin", &d.Origin, f.origin)
	set("process", &d.Process, f.process)
	set("method", &d.BrewMethod, f.method)
	set("grind", &d.GrindSize, f.grind)
	set("brew-time", &d.BrewTime, f.brewTime)
	set("notes", &d.Notes, f.notes)

	setNum := func(name string, dst **float64, v float64) {
		if fl.Changed(name) {
			n := v
			*dst = &n
		}
	}
	setNum("water-temp", &d.WaterTemp, f.waterTemp)
	setNum("dose", &d.Dose, f.dose)
	setNum("yield", &d.Yield, f.yield)

	setList := func(name string, dst *[]string, v string) {
		if fl.Changed(name) {
			*dst = models.ParseList(v)
		}
	}
	setList("aroma", &d.Aroma, f.aroma)
	setList("flavor", &d.Flavor, f.flavor)
	setList("aftertaste", &d.Aftertaste, f.aftertaste)
	setList("defects", &d.Defects, f.defects)

	ratings := [6]**int{&d.Acidity, &d.Sweetness, &d.Bitterness, &d.Body, &d.Balance, &d.Overall}
	for i, name := range ratingNames {
		if fl.Changed(name) {
			n := f.ratings[i]
			*ratings[i] = &n
		}
	}

	if fl.Changed("notes") && f.notes == "-" {
		notes, err := GetMultiline(a.in, "Notes:", a.out)
		if err != nil {
			return d, err
		}
		d.Notes = notes
	}

	d.Photos = nil
	for _, path := range f.photos {
		data, err := os.ReadFile(path)
		if err != nil {
			return d, fmt.Errorf("read photo: %w", err)
		}
		d.Photos = append(d.Photos, models.PhotoFile{Name: filepath.Base(path), Data: data})
	}
	return d, nil
}

// draftFromEntry pre-fills the edit form with the stored entry.
func draftFromEntry(e *models.Entry) models.Draft {
	return models.Draft{
		CoffeeName: e.CoffeeName,
		BrewDate:   e.BrewDate,
		Roastery:   deref(e.Roastery),
		Origin:     deref(e.Origin),
		Process:    deref(e.Process),
		BrewMethod: deref(e.BrewMethod),
		GrindSize:  deref(e.GrindSize),
		WaterTemp:  e.WaterTemp,
		Dose:       e.Dose,
		Yield:      e.Yield,
		BrewTime:   deref(e.BrewTime),
		Aroma:      append([]string(nil), e.Aroma...),
		Flavor:     append([]string(nil), e.Flavor...),
		Aftertaste: append([]string(nil), e.Aftertaste...),
		Defects:    append([]string(nil), e.Defects...),
		Acidity:    e.Acidity,
		Sweetness:  e.Sweetness,
		Bitterness: e.Bitterness,
		Body:       e.Body,
		Balance:    e.Balance,
		Overall:    e.Overall,
		Notes:      deref(e.Notes),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
