// Package chart renders dashboard views as static images for clients that
// cannot run the interactive page.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
)

const (
	defaultWidth  = 1200
	defaultHeight = 400

	// Every fifth minute is labelled so the axis stays readable.
	labelEvery = 5
)

var barColor = drawing.ColorFromHex("636efa")

// Renderer draws the minute histogram as a PNG bar chart.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer producing images of the default size.
func NewRenderer() *Renderer {
	return &Renderer{width: defaultWidth, height: defaultHeight}
}

// RenderMinutes writes a PNG bar chart of crashes per minute to w.
func (r *Renderer) RenderMinutes(w io.Writer, title string, bins []dashboard.MinuteBin) error {
	if len(bins) == 0 {
		return errors.New("render minutes: no bins")
	}

	peak := 0
	bars := make([]gochart.Value, len(bins))
	for i, b := range bins {
		peak = max(peak, b.Crashes)
		label := ""
		if b.Minute%labelEvery == 0 {
			label = strconv.Itoa(b.Minute)
		}
		bars[i] = gochart.Value{
			Label: label,
			Value: float64(b.Crashes),
			Style: gochart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		}
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   12,
		BarSpacing: 4,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{FontSize: 8},
		YAxis: gochart.YAxis{
			Name: "crashes",
			// An all-zero hour still needs a non-empty range.
			Range:          &gochart.ContinuousRange{Min: 0, Max: float64(max(peak, 1))},
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.0f", v) },
		},
		Bars: bars,
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render minutes: %w", err)
	}
	return nil
}
