// Package models defines the brew-log entry persisted locally and exchanged
// with the remote entry API, plus the input types used to build it.
package models

import (
	"encoding/json"
	"fmt"
)

// Entry is one recorded coffee brew.
//
// Nullable scalars are pointers. Photos never travel to the remote API and
// Synced is a client-local annotation: true means the last known server state
// matches the local copy.
type Entry struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	BrewDate   string `json:"brew_date"`
	CoffeeName string `json:"coffee_name"`

	Roastery   *string  `json:"roastery"`
	Origin     *string  `json:"origin"`
	Process    *string  `json:"process"`
	BrewMethod *string  `json:"brew_method"`
	GrindSize  *string  `json:"grind_size"`
	WaterTemp  *float64 `json:"water_temp"`
	Dose       *float64 `json:"dose"`
	Yield      *float64 `json:"yield"`
	BrewTime   *string  `json:"brew_time"`

	Aroma      []string `json:"aroma"`
	Flavor     []string `json:"flavor"`
	Aftertaste []string `json:"aftertaste"`
	Defects    []string `json:"defects"`

	Acidity    *int `json:"acidity"`
	Sweetness  *int `json:"sweetness"`
	Bitterness *int `json:"bitterness"`
	Body       *int `json:"body"`
	Balance    *int `json:"balance"`
	Overall    *int `json:"overall"`

	Notes *string `json:"notes"`

	Photos []string `json:"photos,omitempty"`
	Synced bool     `json:"synced"`
}

type entryAlias Entry

// MarshalJSON always emits list fields as arrays, never null.
func (e Entry) MarshalJSON() ([]byte, error) {
	a := entryAlias(e)
	a.Aroma = nonNil(a.Aroma)
	a.Flavor = nonNil(a.Flavor)
	a.Aftertaste = nonNil(a.Aftertaste)
	a.Defects = nonNil(a.Defects)
	return json.Marshal(a)
}

// UnmarshalJSON accepts the legacy "yield_amount" wire name: when "yield" is
// absent or null it takes the legacy value.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var aux struct {
		entryAlias
		YieldAmount *float64 `json:"yield_amount"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Entry(aux.entryAlias)
	if e.Yield == nil && aux.YieldAmount != nil {
		y := *aux.YieldAmount
		e.Yield = &y
	}
	return nil
}

// WirePayload is the representation pushed to the remote API: the entry
// without the local-only "synced" flag and without photos.
func (e Entry) WirePayload() (json.RawMessage, error) {
	doc, err := toDocument(e)
	if err != nil {
		return nil, err
	}
	delete(doc, "synced")
	delete(doc, "photos")
	return json.Marshal(doc)
}

// MergeRemote overlays a remote entry on the local copy (which may be nil).
// Every field the remote carries wins, fields it does not carry at all are
// kept from the local copy, and the result is marked synced. A non-empty
// local created_at is never replaced by an empty or null one.
func MergeRemote(local *Entry, remote json.RawMessage) (*Entry, error) {
	doc := map[string]json.RawMessage{}
	if local != nil {
		d, err := toDocument(*local)
		if err != nil {
			return nil, err
		}
		doc = d
	}

	var r map[string]json.RawMessage
	if err := json.Unmarshal(remote, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRemote, err)
	}
	normalizeYield(r)

	for k, v := range r {
		doc[k] = v
	}
	doc["synced"] = json.RawMessage("true")

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var merged Entry
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRemote, err)
	}
	if merged.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedRemote)
	}
	if merged.CreatedAt == "" && local != nil {
		merged.CreatedAt = local.CreatedAt
	}
	return &merged, nil
}

// RemoteID extracts the "id" of a raw remote entry.
func RemoteID(remote json.RawMessage) (string, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(remote, &head); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedRemote, err)
	}
	if head.ID == "" {
		return "", fmt.Errorf("%w: missing id", ErrMalformedRemote)
	}
	return head.ID, nil
}

func normalizeYield(doc map[string]json.RawMessage) {
	legacy, ok := doc["yield_amount"]
	if !ok || isNull(legacy) {
		return
	}
	if current, ok := doc["yield"]; !ok || isNull(current) {
		doc["yield"] = legacy
	}
}

func toDocument(e Entry) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
