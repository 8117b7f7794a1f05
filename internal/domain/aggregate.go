package domain

import (
	"errors"
	"sort"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinutesPerHour is the number of bins in a minute histogram.
const MinutesPerHour = 60

// ErrEmptyView is returned by aggregations that need at least one record.
var ErrEmptyView = errors.New("no data for this selection")

// Rect is a latitude/longitude bounding box in degrees.
type Rect struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MapCenter returns the arithmetic mean latitude and longitude of records.
// It returns ErrEmptyView instead of dividing by zero.
func MapCenter(records []Record) (Point, error) {
	if len(records) == 0 {
		return Point{}, ErrEmptyView
	}

	lats := make([]float64, len(records))
	lons := make([]float64, len(records))
	for i, r := range records {
		lats[i] = r.Latitude
		lons[i] = r.Longitude
	}
	return Point{Lat: stat.Mean(lats, nil), Lon: stat.Mean(lons, nil)}, nil
}

// Bounds returns the smallest rectangle containing every valid coordinate in
// records. Rectangles crossing the antimeridian have West > East.
func Bounds(records []Record) (Rect, error) {
	rect := s2.EmptyRect()
	for _, r := range records {
		rect = rect.AddPoint(s2.LatLngFromDegrees(r.Latitude, r.Longitude))
	}
	if rect.IsEmpty() {
		return Rect{}, ErrEmptyView
	}

	lo, hi := rect.Lo(), rect.Hi()
	return Rect{
		South: lo.Lat.Degrees(),
		West:  lo.Lng.Degrees(),
		North: hi.Lat.Degrees(),
		East:  hi.Lng.Degrees(),
	}, nil
}

// ValidPoint reports whether p is a finite coordinate on the globe.
func ValidPoint(p Point) bool {
	return s2.LatLngFromDegrees(p.Lat, p.Lon).IsValid()
}

// MinuteHistogram counts the records in [hour, hour+1) per minute of the
// hour. The result always has exactly 60 bins.
func MinuteHistogram(records []Record, hour int) [MinutesPerHour]int {
	var out [MinutesPerHour]int

	minutes := make([]float64, 0, len(records))
	for _, r := range records {
		h := r.Timestamp.Hour()
		if h >= hour && h < hour+1 {
			minutes = append(minutes, float64(r.Timestamp.Minute()))
		}
	}
	if len(minutes) == 0 {
		return out
	}

	// stat.Histogram requires sorted input; dividers are 0, 1, ..., 60.
	sort.Float64s(minutes)
	dividers := floats.Span(make([]float64, MinutesPerHour+1), 0, MinutesPerHour)
	counts := stat.Histogram(nil, dividers, minutes, nil)
	for i, c := range counts {
		out[i] = int(c)
	}
	return out
}
