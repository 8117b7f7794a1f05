package domain

// HoursPerDay bounds the hour-of-day controls.
const HoursPerDay = 24

// FilterByInjuries returns the records with at least minCount injured
// persons. Records with a null count never match. The input is not modified.
func FilterByInjuries(records []Record, minCount int) []Record {
	out := make([]Record, 0, len(records)/4)
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		if r.InjuredPersons.AtLeast(minCount) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByHour returns the records whose timestamp falls in the given
// hour of day. Hours outside 0-23 match nothing.
func FilterByHour(records []Record, hour int) []Record {
	out := make([]Record, 0, len(records)/HoursPerDay+1)
	if hour < 0 || hour >= HoursPerDay {
		return out
	}
	for _, r := range records {
		if r.Timestamp.Hour() == hour {
			out = append(out, r)
		}
	}
	return out
}

// Points projects records to their coordinates, the input of the point map.
func Points(records []Record) []Point {
	out := make([]Point, len(records))
	for i, r := range records {
		out[i] = r.Point()
	}
	return out
}
