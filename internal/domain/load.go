package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical column names after normalization.
const (
	colCrashDate          = "crash_date"
	colCrashTime          = "crash_time"
	colLatitude           = "latitude"
	colLongitude          = "longitude"
	colInjuredPersons     = "injured_persons"
	colInjuredPedestrians = "injured_pedestrians"
	colInjuredCyclists    = "injured_cyclists"
	colInjuredMotorists   = "injured_motorists"
	colOnStreetName       = "on_street_name"
)

// maxReportedLines caps LoadStats.MalformedLines.
const maxReportedLines = 10

var (
	// ErrInvalidRowLimit is returned when Load is asked for fewer than one row.
	ErrInvalidRowLimit = errors.New("row limit must be positive")

	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedTimestamp marks a crash date/time pair that matches no known layout.
	ErrMalformedTimestamp = errors.New("malformed crash date/time")
)

// columnAliases maps normalized open-data header names to canonical names.
var columnAliases = map[string]string{
	"number_of_persons_injured":     colInjuredPersons,
	"number_of_pedestrians_injured": colInjuredPedestrians,
	"number_of_cyclist_injured":     colInjuredCyclists,
	"number_of_cyclists_injured":    colInjuredCyclists,
	"number_of_motorist_injured":    colInjuredMotorists,
	"number_of_motorists_injured":   colInjuredMotorists,
}

// timestampLayouts are tried in order against "<date> <time>".
// Single-digit month/day/hour forms parse with the same layouts.
var timestampLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// LoadOptions tunes how Load treats data-quality problems.
type LoadOptions struct {
	// Strict fails the whole load on the first malformed timestamp instead of
	// dropping the row.
	Strict bool
}

// LoadStats summarizes what Load kept and dropped.
type LoadStats struct {
	RowsRead            int       `json:"rows_read"`
	RowsKept            int       `json:"rows_kept"`
	MissingCoordinates  int       `json:"missing_coordinates"`
	MalformedTimestamps int       `json:"malformed_timestamps"`
	MalformedLines      []int     `json:"malformed_lines,omitempty"`
	LoadedAt            time.Time `json:"loaded_at"`
}

// RowError locates a data-quality failure in the source file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// schema resolves column positions once from the header.
type schema struct {
	columns      []string
	extraColumns []string
	extra        []int

	date        int
	clockTime   int
	lat         int
	lon         int
	persons     int
	pedestrians int
	cyclists    int
	motorists   int
	street      int
}

// Load reads up to maxRows data rows from r, merges the crash date and time
// into one timestamp, drops rows without coordinates, and normalizes column
// names. Source row order is preserved. Rows dropped for any reason still
// count toward maxRows.
func Load(r io.Reader, maxRows int, opts LoadOptions) (*Table, error) {
	if maxRows <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowLimit, maxRows)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	s, err := newSchema(header)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Records:      make([]Record, 0, min(maxRows, 4096)),
		Columns:      s.columns,
		ExtraColumns: s.extraColumns,
	}
	stats := &table.Stats

	for stats.RowsRead < maxRows {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		stats.RowsRead++
		line, _ := cr.FieldPos(0)

		rec, err := s.parseRow(fields)
		switch {
		case errors.Is(err, errMissingCoordinates):
			stats.MissingCoordinates++
			continue
		case err != nil:
			if opts.Strict {
				return nil, &RowError{Line: line, Err: err}
			}
			stats.MalformedTimestamps++
			if len(stats.MalformedLines) < maxReportedLines {
				stats.MalformedLines = append(stats.MalformedLines, line)
			}
			continue
		}
		table.Records = append(table.Records, rec)
	}

	stats.RowsKept = len(table.Records)
	stats.LoadedAt = clock.Now()
	return table, nil
}

var errMissingCoordinates = errors.New("missing coordinates")

func (s *schema) parseRow(fields []string) (Record, error) {
	lat, okLat := parseCoordinate(field(fields, s.lat))
	lon, okLon := parseCoordinate(field(fields, s.lon))
	if !okLat || !okLon {
		return Record{}, errMissingCoordinates
	}

	ts, err := parseTimestamp(field(fields, s.date), field(fields, s.clockTime))
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Timestamp:          ts,
		Latitude:           lat,
		Longitude:          lon,
		InjuredPersons:     parseCount(field(fields, s.persons)),
		InjuredPedestrians: parseCount(field(fields, s.pedestrians)),
		InjuredCyclists:    parseCount(field(fields, s.cyclists)),
		InjuredMotorists:   parseCount(field(fields, s.motorists)),
		OnStreetName:       strings.TrimSpace(field(fields, s.street)),
	}
	if len(s.extra) > 0 {
		rec.Extra = make([]string, len(s.extra))
		for i, idx := range s.extra {
			rec.Extra[i] = field(fields, idx)
		}
	}
	return rec, nil
}

func newSchema(header []string) (*schema, error) {
	s := &schema{
		date: -1, clockTime: -1, lat: -1, lon: -1,
		persons: -1, pedestrians: -1, cyclists: -1, motorists: -1,
		street: -1,
	}
	s.columns = append(s.columns, TimestampColumn)

	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		name := NormalizeColumn(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case colCrashDate:
			s.date = i
			continue
		case colCrashTime:
			s.clockTime = i
			continue
		case colLatitude:
			s.lat = i
		case colLongitude:
			s.lon = i
		case colInjuredPersons:
			s.persons = i
		case colInjuredPedestrians:
			s.pedestrians = i
		case colInjuredCyclists:
			s.cyclists = i
		case colInjuredMotorists:
			s.motorists = i
		case colOnStreetName:
			s.street = i
		default:
			s.extra = append(s.extra, i)
			s.extraColumns = append(s.extraColumns, name)
		}
		s.columns = append(s.columns, name)
	}

	required := []struct {
		name string
		idx  int
	}{
		{colCrashDate, s.date},
		{colCrashTime, s.clockTime},
		{colLatitude, s.lat},
		{colLongitude, s.lon},
	}
	for _, col := range required {
		if col.idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col.name)
		}
	}
	return s, nil
}

// NormalizeColumn lowercases a header name, converts spaces and dashes to
// underscores, and applies the open-data aliases.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	name = strings.ReplaceAll(name, "-", "_")
	if alias, ok := columnAliases[name]; ok {
		return alias
	}
	return name
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// parseCoordinate returns false for empty, unparsable, or NaN values.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseTimestamp merges a crash date and time. An ISO date-time in the date
// column contributes only its date part.
func parseTimestamp(date, clockTime string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clockTime = strings.TrimSpace(clockTime)
	if i := strings.IndexByte(date, 'T'); i > 0 {
		date = date[:i]
	}
	if date == "" || clockTime == "" {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, date, clockTime)
	}

	value := date + " " + clockTime
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, value)
}

// parseCount accepts integers and integral floats ("2", "2.0"). Anything
// else, including negatives, is null.
func parseCount(s string) Count {
	s = strings.TrimSpace(s)
	if s == "" {
		return Count{}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return Count{}
		}
		return Known(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return Count{}
	}
	return Known(int(f))
}
