package dashboard

import (
	"fmt"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// Title heads the dashboard page.
const Title = "Motor Vehicle Collisions in New York City"

// Page is every view of the dashboard for one set of controls.
type Page struct {
	Title    string           `json:"title"`
	Controls Controls         `json:"controls"`
	Injuries *InjuryView      `json:"injuries"`
	Hour     *HourView        `json:"hour"`
	Minutes  []MinuteBin      `json:"minutes"`
	Streets  *StreetsView     `json:"streets"`
	Raw      *RawTable        `json:"raw,omitempty"`
	Stats    domain.LoadStats `json:"stats"`
}

// InjuryView is the point map of collisions with at least MinInjured injured
// persons. Center is nil when no collision qualifies.
type InjuryView struct {
	MinInjured int            `json:"min_injured"`
	Count      int            `json:"count"`
	Center     *domain.Point  `json:"center"`
	Points     []domain.Point `json:"points"`
}

// HourView is the density map of collisions within one hour of the day.
// Center, Bounds and Layer are nil when the hour has no collisions.
type HourView struct {
	Hour        int           `json:"hour"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	Count       int           `json:"count"`
	Center      *domain.Point `json:"center"`
	CenterLabel string        `json:"center_label,omitempty"`
	Bounds      *domain.Rect  `json:"bounds,omitempty"`
	Layer       *DensityLayer `json:"layer,omitempty"`
	Points      []HourPoint   `json:"points"`
}

// Empty reports whether the hour had no collisions.
func (v *HourView) Empty() bool {
	return v.Center == nil
}

// HourPoint is one collision fed to the density layer.
type HourPoint struct {
	Timestamp string  `json:"date/time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DensityLayer configures the 3D hexagon layer and its initial camera.
type DensityLayer struct {
	Type           string `json:"type"`
	MapStyle       string `json:"map_style"`
	Zoom           int    `json:"zoom"`
	Pitch          int    `json:"pitch"`
	Radius         int    `json:"radius"`
	ElevationScale int    `json:"elevation_scale"`
	ElevationRange [2]int `json:"elevation_range"`
	Extruded       bool   `json:"extruded"`
	Pickable       bool   `json:"pickable"`
}

func defaultDensityLayer() *DensityLayer {
	return &DensityLayer{
		Type:           "HexagonLayer",
		MapStyle:       "mapbox://styles/mapbox/light-v9",
		Zoom:           11,
		Pitch:          50,
		Radius:         100,
		ElevationScale: 4,
		ElevationRange: [2]int{0, 1000},
		Extruded:       true,
		Pickable:       true,
	}
}

// MinuteBin is one bar of the minute breakdown.
type MinuteBin struct {
	Minute  int `json:"minute"`
	Crashes int `json:"crashes"`
}

// StreetsView is the ranking of streets for one category of road user.
type StreetsView struct {
	Category domain.Category      `json:"type"`
	Label    string               `json:"label"`
	Column   string               `json:"column"`
	Rows     []domain.StreetCount `json:"rows"`
}

// RawTable is the hour view in source column order, capped at a row limit.
type RawTable struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

// hourLabel renders the start of an hour, e.g. "7:00".
func hourLabel(hour int) string {
	return fmt.Sprintf("%d:00", hour%domain.HoursPerDay)
}

// BreakdownTitle captions the minute histogram of an hour.
func BreakdownTitle(hour int) string {
	return fmt.Sprintf("Breakdown by minute between %s and %s", hourLabel(hour), hourLabel(hour+1))
}
