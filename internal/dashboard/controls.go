package dashboard

import "github.com/couchcryptid/collision-dashboard/internal/domain"

// MaxInjuredPersons is the upper end of the injured-persons slider.
const MaxInjuredPersons = 19

// Controls is the state of the dashboard widgets. Every request carries the
// full set and all views are recomputed from it.
type Controls struct {
	InjuredPersons int             `json:"injured"`
	Hour           int             `json:"hour"`
	Category       domain.Category `json:"type"`
	ShowRaw        bool            `json:"raw"`
}

// DefaultControls is the widget state of a fresh page.
func DefaultControls() Controls {
	return Controls{Category: domain.Pedestrians}
}

// Normalize clamps the sliders into their ranges and fills in a missing category.
func (c Controls) Normalize() Controls {
	c.InjuredPersons = clamp(c.InjuredPersons, 0, MaxInjuredPersons)
	c.Hour = clamp(c.Hour, 0, domain.HoursPerDay-1)
	if c.Category == 0 {
		c.Category = domain.Pedestrians
	}
	return c
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
