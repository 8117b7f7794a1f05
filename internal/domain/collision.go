package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimestampColumn is the canonical name of the merged crash date and time.
const TimestampColumn = "date/time"

// TimestampLayout formats timestamps in the raw data table.
const TimestampLayout = "2006-01-02 15:04:05"

// Count is a nullable non-negative injury count.
type Count struct {
	N     int
	Valid bool
}

// Known returns a valid Count holding n.
func Known(n int) Count {
	return Count{N: n, Valid: true}
}

// AtLeast reports whether the count is known and n or greater.
// A null count never satisfies a threshold.
func (c Count) AtLeast(n int) bool {
	return c.Valid && c.N >= n
}

func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.N)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.N)), nil
}

func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Count{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode count: %w", err)
	}
	*c = Known(n)
	return nil
}

// Record is one collision in the base table.
type Record struct {
	Timestamp          time.Time `json:"date/time"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	InjuredPersons     Count     `json:"injured_persons"`
	InjuredPedestrians Count     `json:"injured_pedestrians"`
	InjuredCyclists    Count     `json:"injured_cyclists"`
	InjuredMotorists   Count     `json:"injured_motorists"`
	OnStreetName       string    `json:"on_street_name,omitempty"`

	// Extra holds unmodelled source columns, aligned with Table.ExtraColumns.
	// Views share the backing array; it must never be written after load.
	Extra []string `json:"-"`
}

// HasCoordinates reports whether the record can be placed on a map.
func (r Record) HasCoordinates() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// Point returns the record's position.
func (r Record) Point() Point {
	return Point{Lat: r.Latitude, Lon: r.Longitude}
}

// ID returns a deterministic identifier derived from the record's key fields,
// so republishing the same file yields the same message keys.
func (r Record) ID() string {
	input := fmt.Sprintf("%s|%.6f|%.6f|%s|%s",
		r.Timestamp.Format(TimestampLayout), r.Latitude, r.Longitude, r.OnStreetName, r.InjuredPersons)
	hash := sha256.Sum256([]byte(input))
	return "collision-" + hex.EncodeToString(hash[:8])
}

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Table is the normalized base table produced by Load.
type Table struct {
	Records []Record
	// Columns lists every column in display order, the merged timestamp first.
	Columns []string
	// ExtraColumns names the values in Record.Extra.
	ExtraColumns []string
	Stats        LoadStats
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// RowFormatter returns a function that renders a record as strings in
// Columns order, for the raw data table.
func (t *Table) RowFormatter() func(Record) []string {
	extraIdx := make(map[string]int, len(t.ExtraColumns))
	for i, name := range t.ExtraColumns {
		extraIdx[name] = i
	}

	return func(r Record) []string {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			switch col {
			case TimestampColumn:
				row[i] = r.Timestamp.Format(TimestampLayout)
			case colLatitude:
				row[i] = strconv.FormatFloat(r.Latitude, 'f', -1, 64)
			case colLongitude:
				row[i] = strconv.FormatFloat(r.Longitude, 'f', -1, 64)
			case colInjuredPersons:
				row[i] = r.InjuredPersons.String()
			case colInjuredPedestrians:
				row[i] = r.InjuredPedestrians.String()
			case colInjuredCyclists:
				row[i] = r.InjuredCyclists.String()
			case colInjuredMotorists:
				row[i] = r.InjuredMotorists.String()
			case colOnStreetName:
				row[i] = r.OnStreetName
			default:
				if j, ok := extraIdx[col]; ok && j < len(r.Extra) {
					row[i] = r.Extra[j]
				}
			}
		}
		return row
	}
}
