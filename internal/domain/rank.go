package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultTopN is the number of streets ranked when no size is given.
const DefaultTopN = 5

// Category selects which road users' injuries a ranking counts.
type Category int

const (
	Pedestrians Category = iota + 1
	Cyclists
	Motorists
)

// Categories lists every category in display order.
var Categories = []Category{Pedestrians, Cyclists, Motorists}

// ParseCategory accepts a category name in any case, e.g. "Cyclists".
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pedestrians":
		return Pedestrians, nil
	case "cyclists":
		return Cyclists, nil
	case "motorists":
		return Motorists, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

func (c Category) String() string {
	switch c {
	case Pedestrians:
		return "pedestrians"
	case Cyclists:
		return "cyclists"
	case Motorists:
		return "motorists"
	default:
		return "unknown"
	}
}

// Label is the capitalized name shown in the selector.
func (c Category) Label() string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Column is the injury column the category ranks by.
func (c Category) Column() string {
	return "injured_" + c.String()
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Category) count(r Record) Count {
	switch c {
	case Pedestrians:
		return r.InjuredPedestrians
	case Cyclists:
		return r.InjuredCyclists
	case Motorists:
		return r.InjuredMotorists
	default:
		return Count{}
	}
}

// StreetCount is one row of a street ranking.
type StreetCount struct {
	Street string `json:"on_street_name"`
	Count  int    `json:"count"`
}

// TopStreets ranks individual collisions with at least one injured road user
// of the given category by that count, highest first, and returns the first
// n. Records with a null street or count are skipped. Equal counts keep
// source order. n <= 0 means DefaultTopN.
func TopStreets(records []Record, c Category, n int) []StreetCount {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := make([]StreetCount, 0)
	for _, r := range records {
		count := c.count(r)
		if !count.AtLeast(1) || r.OnStreetName == "" {
			continue
		}
		ranked = append(ranked, StreetCount{Street: r.OnStreetName, Count: count.N})
	}

	slices.SortStableFunc(ranked, func(a, b StreetCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
