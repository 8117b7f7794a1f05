// Package dashboard turns widget state into the dashboard's views, recomputing
// each of them from the shared base table on every request.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

// DatasetLoader returns the base table for a row limit.
type DatasetLoader interface {
	Load(ctx context.Context, maxRows int) (*domain.Table, error)
}

// Options tunes the views a Service builds.
type Options struct {
	MaxRows     int
	RawRowLimit int
}

// Service builds dashboard views. It is safe for concurrent use.
type Service struct {
	data     DatasetLoader
	geocoder domain.Geocoder
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewService creates a Service. geocoder may be nil, in which case the hour
// view carries no centre label.
func NewService(data DatasetLoader, geocoder domain.Geocoder, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		data:     data,
		geocoder: geocoder,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Preload reads the base table so the first page view does not pay for it,
// and marks the service ready.
func (s *Service) Preload(ctx context.Context) (*domain.Table, error) {
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	s.ready.Store(true)
	s.metrics.DatasetReady.Set(1)
	return t, nil
}

// CheckReadiness returns nil once the base table has loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("dataset has not loaded yet")
	}
	return nil
}

// Build computes every view for the given controls, top to bottom.
func (s *Service) Build(ctx context.Context, c Controls) (*Page, error) {
	defer s.observe("page", time.Now())

	c = c.Normalize()
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	hourRecords := domain.FilterByHour(t.Records, c.Hour)
	page := &Page{
		Title:    Title,
		Controls: c,
		Injuries: injuryView(t, c.InjuredPersons),
		Hour:     s.hourView(ctx, hourRecords, c.Hour),
		Minutes:  minuteBins(hourRecords, c.Hour),
		Streets:  streetsView(t, c.Category, domain.DefaultTopN),
		Stats:    t.Stats,
	}
	if c.ShowRaw {
		page.Raw = rawTable(t, hourRecords, s.opts.RawRowLimit)
	}
	return page, nil
}

// InjuryMap returns the collisions with at least minInjured injured persons.
func (s *Service) InjuryMap(ctx context.Context, minInjured int) (*InjuryView, error) {
	defer s.observe("injuries", time.Now())

	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return injuryView(t, minInjured), nil
}

// Hour returns the density view of one hour of the day.
func (s *Service) Hour(ctx context.Context, hour int) (*HourView, error) {
	defer s.observe("hour", time.Now())

	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return s.hourView(ctx, domain.FilterByHour(t.Records, hour), hour), nil
}

// Minutes returns the per-minute collision counts of one hour, always 60 bins.
func (s *Service) Minutes(ctx context.Context, hour int) ([]MinuteBin, error) {
	defer s.observe("minutes", time.Now())

	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return minuteBins(t.Records, hour), nil
}

// Streets ranks the n most dangerous streets for a category of road user.
func (s *Service) Streets(ctx context.Context, c domain.Category, n int) (*StreetsView, error) {
	defer s.observe("streets", time.Now())

	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return streetsView(t, c, n), nil
}

func (s *Service) table(ctx context.Context) (*domain.Table, error) {
	t, err := s.data.Load(ctx, s.opts.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return t, nil
}

func (s *Service) observe(view string, start time.Time) {
	s.metrics.ViewBuilds.WithLabelValues(view).Inc()
	s.metrics.ViewBuildDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func injuryView(t *domain.Table, minInjured int) *InjuryView {
	injured := domain.FilterByInjuries(t.Records, minInjured)
	v := &InjuryView{
		MinInjured: minInjured,
		Count:      len(injured),
		Points:     domain.Points(injured),
	}
	if center, err := domain.MapCenter(injured); err == nil {
		v.Center = &center
	}
	return v
}

func (s *Service) hourView(ctx context.Context, records []domain.Record, hour int) *HourView {
	v := &HourView{
		Hour:   hour,
		From:   hourLabel(hour),
		To:     hourLabel(hour + 1),
		Count:  len(records),
		Points: make([]HourPoint, len(records)),
	}
	for i, r := range records {
		v.Points[i] = HourPoint{
			Timestamp: r.Timestamp.Format(domain.TimestampLayout),
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		}
	}

	center, err := domain.MapCenter(records)
	if errors.Is(err, domain.ErrEmptyView) {
		s.metrics.EmptyViews.WithLabelValues("hour").Inc()
		return v
	}
	v.Center = &center
	v.Layer = defaultDensityLayer()
	if bounds, err := domain.Bounds(records); err == nil {
		v.Bounds = &bounds
	}
	v.CenterLabel = s.centerLabel(ctx, center)
	return v
}

// centerLabel names the place at the map centre. Lookup failures only cost
// the label.
func (s *Service) centerLabel(ctx context.Context, p domain.Point) string {
	if s.geocoder == nil || !domain.ValidPoint(p) {
		return ""
	}
	result, err := s.geocoder.ReverseGeocode(ctx, p.Lat, p.Lon)
	if err != nil {
		s.logger.Warn("centre geocoding failed", "lat", p.Lat, "lon", p.Lon, "error", err)
		return ""
	}
	if result.PlaceName != "" {
		return result.PlaceName
	}
	return result.FormattedAddress
}

func minuteBins(records []domain.Record, hour int) []MinuteBin {
	hist := domain.MinuteHistogram(records, hour)
	bins := make([]MinuteBin, len(hist))
	for minute, n := range hist {
		bins[minute] = MinuteBin{Minute: minute, Crashes: n}
	}
	return bins
}

func streetsView(t *domain.Table, c domain.Category, n int) *StreetsView {
	return &StreetsView{
		Category: c,
		Label:    c.Label(),
		Column:   c.Column(),
		Rows:     domain.TopStreets(t.Records, c, n),
	}
}

func rawTable(t *domain.Table, records []domain.Record, limit int) *RawTable {
	format := t.RowFormatter()
	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([][]string, len(shown))
	for i, r := range shown {
		rows[i] = format(r)
	}
	return &RawTable{
		Columns:   t.Columns,
		Rows:      rows,
		Total:     len(records),
		Truncated: len(shown) < len(records),
	}
}
