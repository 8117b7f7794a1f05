package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streetRecord(street string, pedestrians, cyclists, motorists Count) Record {
	r := record(8, 0, 40.7, -73.9, 0)
	r.OnStreetName = street
	r.InjuredPedestrians = pedestrians
	r.InjuredCyclists = cyclists
	r.InjuredMotorists = motorists
	return r
}

func TestTopStreets(t *testing.T) {
	records := []Record{
		streetRecord("BROADWAY", Known(1), Known(0), Known(0)),
		streetRecord("ATLANTIC AVENUE", Known(3), Known(0), Known(2)),
		streetRecord("", Known(9), Known(0), Known(0)),
		streetRecord("FLATBUSH AVENUE", Count{}, Known(1), Known(0)),
		streetRecord("QUEENS BOULEVARD", Known(2), Known(2), Known(0)),
		streetRecord("GRAND CONCOURSE", Known(1), Known(0), Known(5)),
		streetRecord("3 AVENUE", Known(2), Known(0), Known(0)),
		streetRecord("BELT PARKWAY", Known(0), Known(0), Known(1)),
	}

	t.Run("pedestrians", func(t *testing.T) {
		got := TopStreets(records, Pedestrians, 5)
		assert.Equal(t, []StreetCount{
			{"ATLANTIC AVENUE", 3},
			{"QUEENS BOULEVARD", 2},
			{"3 AVENUE", 2},
			{"BROADWAY", 1},
			{"GRAND CONCOURSE", 1},
		}, got)
	})

	t.Run("cyclists", func(t *testing.T) {
		got := TopStreets(records, Cyclists, 5)
		assert.Equal(t, []StreetCount{
			{"QUEENS BOULEVARD", 2},
			{"FLATBUSH AVENUE", 1},
		}, got)
	})

	t.Run("motorists", func(t *testing.T) {
		got := TopStreets(records, Motorists, 2)
		assert.Equal(t, []StreetCount{
			{"GRAND CONCOURSE", 5},
			{"ATLANTIC AVENUE", 2},
		}, got)
	})

	t.Run("default size", func(t *testing.T) {
		assert.Len(t, TopStreets(records, Pedestrians, 0), DefaultTopN)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, TopStreets(nil, Motorists, 5))
	})
}

func TestTopStreets_Properties(t *testing.T) {
	var records []Record
	for i := 0; i < 60; i++ {
		records = append(records, streetRecord("STREET", Known(i%4), Known(i%3), Known(i%5)))
	}

	for _, c := range Categories {
		for n := 1; n <= 10; n++ {
			got := TopStreets(records, c, n)
			require.LessOrEqual(t, len(got), n)
			for i, sc := range got {
				assert.GreaterOrEqual(t, sc.Count, 1)
				if i > 0 {
					assert.GreaterOrEqual(t, got[i-1].Count, sc.Count)
				}
			}
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		wantErr  bool
	}{
		{"Pedestrians", Pedestrians, false},
		{"cyclists", Cyclists, false},
		{" MOTORISTS ", Motorists, false},
		{"trucks", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCategoryNames(t *testing.T) {
	assert.Equal(t, "cyclists", Cyclists.String())
	assert.Equal(t, "Cyclists", Cyclists.Label())
	assert.Equal(t, "injured_motorists", Motorists.Column())
	assert.Equal(t, "unknown", Category(0).String())

	text, err := Pedestrians.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "pedestrians", string(text))

	var c Category
	require.NoError(t, c.UnmarshalText([]byte("Motorists")))
	assert.Equal(t, Motorists, c)
}
