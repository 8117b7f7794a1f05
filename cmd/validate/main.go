// Command validate checks a collisions CSV against the dashboard's data
// invariants: the loader accounts for every source row, every kept record
// can be placed on a map, and the hour, minute, injury, and street views
// agree with each other.
//
// Usage:
//
//	go run ./cmd/validate -data data.csv -max-rows 100000
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the collisions CSV")
	maxRows := flag.Int("max-rows", 100000, "number of data rows to read")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *maxRows); code != 0 {
		os.Exit(code)
	}
}

func run(path string, maxRows int) int {
	fmt.Println("=== Collision Data Integrity Validation ===")
	fmt.Println()

	sourceRows, err := countSourceRows(path, maxRows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read source CSV: %v\n", err)
		return 1
	}

	table, err := loadTable(path, maxRows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowAccounting(table, sourceRows),
		validateCoordinates(table),
		validateHourPartition(table),
		validateInjuryThresholds(table),
		validateStreetRankings(table),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d source rows, %d kept, %d without coordinates, %d malformed timestamps\n",
		sourceRows, table.Stats.RowsKept, table.Stats.MissingCoordinates, table.Stats.MalformedTimestamps)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// countSourceRows counts data rows independently of the domain loader, up
// to maxRows.
func countSourceRows(path string, maxRows int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	n := 0
	for n < maxRows {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", n+2, err)
		}
		n++
	}
	return n, nil
}

func loadTable(path string, maxRows int) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.Load(f, maxRows, domain.LoadOptions{})
}

// ── Phase 1: every source row is kept or counted as dropped ──

func validateRowAccounting(t *domain.Table, sourceRows int) *phase {
	p := &phase{name: "Row accounting"}
	s := t.Stats

	if s.RowsRead != sourceRows {
		p.errorf("loader read %d rows, source has %d", s.RowsRead, sourceRows)
	}
	if s.RowsKept != t.Len() {
		p.errorf("stats report %d kept rows, table has %d", s.RowsKept, t.Len())
	}
	if dropped := s.MissingCoordinates + s.MalformedTimestamps; s.RowsKept+dropped != s.RowsRead {
		p.errorf("kept %d + dropped %d != read %d", s.RowsKept, dropped, s.RowsRead)
	}
	for i, name := range t.Columns {
		if name != domain.NormalizeColumn(name) {
			p.errorf("column %d %q is not normalized", i, name)
		}
	}
	return p
}

// ── Phase 2: every kept record has a usable coordinate ──

func validateCoordinates(t *domain.Table) *phase {
	p := &phase{name: "Coordinates"}
	for i, r := range t.Records {
		if !r.HasCoordinates() {
			p.errorf("record %d has no coordinates", i)
			continue
		}
		if !domain.ValidPoint(r.Point()) {
			p.errorf("record %d has invalid coordinate (%f, %f)", i, r.Latitude, r.Longitude)
		}
	}
	if _, err := domain.MapCenter(t.Records); err != nil && t.Len() > 0 {
		p.errorf("map centre of non-empty table: %v", err)
	}
	return p
}

// ── Phase 3: hours partition the table and minutes partition each hour ──

func validateHourPartition(t *domain.Table) *phase {
	p := &phase{name: "Hour and minute partition"}

	total := 0
	for hour := range domain.HoursPerDay {
		records := domain.FilterByHour(t.Records, hour)
		total += len(records)

		bins := domain.MinuteHistogram(t.Records, hour)
		sum := 0
		for _, n := range bins {
			sum += n
		}
		if sum != len(records) {
			p.errorf("hour %d: histogram sums to %d, hour view has %d records", hour, sum, len(records))
		}

		_, err := domain.MapCenter(records)
		if len(records) == 0 && !errors.Is(err, domain.ErrEmptyView) {
			p.errorf("hour %d: empty hour did not report ErrEmptyView", hour)
		}
	}
	if total != t.Len() {
		p.errorf("hours cover %d records, table has %d", total, t.Len())
	}
	return p
}

// ── Phase 4: raising the injury threshold never adds collisions ──

func validateInjuryThresholds(t *domain.Table) *phase {
	p := &phase{name: "Injury thresholds"}

	prev := -1
	for threshold := 0; threshold <= dashboard.MaxInjuredPersons; threshold++ {
		n := len(domain.FilterByInjuries(t.Records, threshold))
		if prev >= 0 && n > prev {
			p.errorf("threshold %d matches %d collisions, threshold %d matched %d", threshold, n, threshold-1, prev)
		}
		prev = n
	}
	return p
}

// ── Phase 5: street rankings are ordered, bounded, and named ──

func validateStreetRankings(t *domain.Table) *phase {
	p := &phase{name: "Street rankings"}

	for _, c := range domain.Categories {
		rows := domain.TopStreets(t.Records, c, domain.DefaultTopN)
		if len(rows) > domain.DefaultTopN {
			p.errorf("%s: ranking has %d rows", c, len(rows))
		}
		counts := make([]int, len(rows))
		for i, r := range rows {
			counts[i] = r.Count
			if r.Street == "" {
				p.errorf("%s: row %d has no street name", c, i)
			}
			if r.Count < 1 {
				p.errorf("%s: row %d (%s) has count %d", c, i, r.Street, r.Count)
			}
		}
		if !slices.IsSortedFunc(counts, func(a, b int) int { return b - a }) {
			p.errorf("%s: counts not in descending order: %v", c, counts)
		}
	}
	return p
}
