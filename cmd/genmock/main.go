// Command genmock writes a synthetic NYC motor vehicle collisions CSV in the
// open-data export format. The same seed always yields the same file, and
// the output is read back through the domain loader so it is known to load.
//
// Usage:
//
//	go run ./cmd/genmock -out data.csv -rows 20000 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

var baseDate = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

var header = []string{
	"CRASH DATE", "CRASH TIME", "BOROUGH", "ZIP CODE", "LATITUDE", "LONGITUDE",
	"ON STREET NAME",
	"NUMBER OF PERSONS INJURED", "NUMBER OF PEDESTRIANS INJURED",
	"NUMBER OF CYCLIST INJURED", "NUMBER OF MOTORIST INJURED",
	"CONTRIBUTING FACTOR VEHICLE 1",
}

type borough struct {
	name    string
	zip     string
	lat     float64
	lon     float64
	streets []string
}

var boroughs = []borough{
	{"MANHATTAN", "10019", 40.7831, -73.9712, []string{"BROADWAY", "2 AVENUE", "FDR DRIVE", "AMSTERDAM AVENUE", "WEST 42 STREET"}},
	{"BROOKLYN", "11217", 40.6782, -73.9442, []string{"ATLANTIC AVENUE", "FLATBUSH AVENUE", "EASTERN PARKWAY", "OCEAN PARKWAY", "BELT PARKWAY"}},
	{"QUEENS", "11373", 40.7282, -73.7949, []string{"QUEENS BOULEVARD", "NORTHERN BOULEVARD", "LONG ISLAND EXPRESSWAY", "JAMAICA AVENUE"}},
	{"BRONX", "10451", 40.8448, -73.8648, []string{"GRAND CONCOURSE", "MAJOR DEEGAN EXPRESSWAY", "BRUCKNER BOULEVARD", "FORDHAM ROAD"}},
	{"STATEN ISLAND", "10301", 40.5795, -74.1502, []string{"HYLAN BOULEVARD", "RICHMOND AVENUE", "VICTORY BOULEVARD"}},
}

// boroughWeights roughly follows each borough's share of reported crashes.
var boroughWeights = []float64{0.22, 0.31, 0.27, 0.15, 0.05}

// hourWeights shapes a weekday crash curve: quiet overnight, peaks at the
// morning and evening rush.
var hourWeights = []float64{
	2.2, 1.4, 1.1, 1.0, 1.2, 1.6, 2.6, 3.6, 5.0, 4.6, 4.4, 4.7,
	5.0, 5.3, 6.2, 6.6, 6.9, 6.8, 5.9, 4.8, 4.1, 3.7, 3.2, 2.7,
}

var factors = []string{
	"Driver Inattention/Distraction", "Failure to Yield Right-of-Way",
	"Following Too Closely", "Unsafe Speed", "Unspecified",
}

type options struct {
	out            string
	rows           int
	seed           uint64
	missingCoords  float64
	missingStreets float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.out, "out", "data.csv", "output path for the generated CSV")
	flag.IntVar(&opts.rows, "rows", 10000, "number of collisions to generate")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.Float64Var(&opts.missingCoords, "missing-coords", 0.08, "fraction of rows without coordinates")
	flag.Float64Var(&opts.missingStreets, "missing-streets", 0.2, "fraction of rows without an on-street name")
	flag.Parse()

	if opts.rows < 1 {
		flag.Usage()
		return fmt.Errorf("-rows must be positive, got %d", opts.rows)
	}

	if err := writeCSV(opts); err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}
	log.Printf("wrote %d rows to %s", opts.rows, opts.out)

	return printStats(opts.out, opts.rows)
}

func writeCSV(opts options) error {
	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	gen := newGenerator(opts)
	for range opts.rows {
		if err := w.Write(gen.row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

type generator struct {
	opts     options
	rng      *rand.Rand
	borough  distuv.Categorical
	hour     distuv.Categorical
	injuries distuv.Poisson
	scatter  distuv.Normal
}

func newGenerator(opts options) *generator {
	src := rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)
	return &generator{
		opts:     opts,
		rng:      rand.New(src),
		borough:  distuv.NewCategorical(boroughWeights, src),
		hour:     distuv.NewCategorical(hourWeights, src),
		injuries: distuv.Poisson{Lambda: 0.4, Src: src},
		scatter:  distuv.Normal{Mu: 0, Sigma: 0.025, Src: src},
	}
}

func (g *generator) row() []string {
	b := boroughs[int(g.borough.Rand())]
	ts := baseDate.
		AddDate(0, 0, g.rng.IntN(365)).
		Add(time.Duration(g.hour.Rand())*time.Hour + time.Duration(g.rng.IntN(60))*time.Minute)

	lat, lon := "", ""
	if g.rng.Float64() >= g.opts.missingCoords {
		lat = strconv.FormatFloat(b.lat+g.scatter.Rand(), 'f', 6, 64)
		lon = strconv.FormatFloat(b.lon+g.scatter.Rand(), 'f', 6, 64)
	}

	street := ""
	if g.rng.Float64() >= g.opts.missingStreets {
		street = b.streets[g.rng.IntN(len(b.streets))]
	}

	persons := int(g.injuries.Rand())
	var byType [3]int
	for range persons {
		byType[g.rng.IntN(len(byType))]++
	}

	return []string{
		ts.Format("01/02/2006"),
		fmt.Sprintf("%d:%02d", ts.Hour(), ts.Minute()),
		b.name,
		b.zip,
		lat,
		lon,
		street,
		strconv.Itoa(persons),
		strconv.Itoa(byType[0]),
		strconv.Itoa(byType[1]),
		strconv.Itoa(byType[2]),
		factors[g.rng.IntN(len(factors))],
	}
}

// printStats reads the generated file back through the loader and prints
// what the dashboard would show.
func printStats(path string, rows int) error {
	// Fixed clock so repeated runs print identical output.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := domain.Load(f, rows, domain.LoadOptions{Strict: true})
	if err != nil {
		return fmt.Errorf("generated file does not load: %w", err)
	}

	fmt.Printf("\n=== Generated dataset ===\n")
	fmt.Printf("  rows read:            %d\n", table.Stats.RowsRead)
	fmt.Printf("  rows kept:            %d\n", table.Stats.RowsKept)
	fmt.Printf("  missing coordinates:  %d\n", table.Stats.MissingCoordinates)

	center, err := domain.MapCenter(table.Records)
	if err == nil {
		fmt.Printf("  map centre:           %.4f, %.4f\n", center.Lat, center.Lon)
	}

	fmt.Printf("\n  %-6s %s\n", "hour", "collisions")
	for hour := range domain.HoursPerDay {
		fmt.Printf("  %-6d %d\n", hour, len(domain.FilterByHour(table.Records, hour)))
	}

	for _, c := range domain.Categories {
		fmt.Printf("\n  top streets for %s:\n", c)
		for _, s := range domain.TopStreets(table.Records, c, domain.DefaultTopN) {
			fmt.Printf("    %-28s %d\n", s.Street, s.Count)
		}
	}
	return nil
}
