// Package domain models motor-vehicle-collision records and the views the
// dashboard derives from them.
//
// # Data Source
//
// Records come from the NYC Open Data "Motor Vehicle Collisions - Crashes"
// export, available at https://data.cityofnewyork.us/. One CSV row is one
// police-reported crash. The service reads a bounded prefix of the file
// (MAX_ROWS, 100000 by default) once and keeps it in memory as the base table.
//
// # Column Conventions
//
// Header names are matched case-insensitively and normalized to lowercase
// snake_case: "ON STREET NAME" -> "on_street_name". The long open-data injury
// names are aliased to short canonical names:
//
//	NUMBER OF PERSONS INJURED      -> injured_persons
//	NUMBER OF PEDESTRIANS INJURED  -> injured_pedestrians
//	NUMBER OF CYCLIST INJURED      -> injured_cyclists
//	NUMBER OF MOTORIST INJURED     -> injured_motorists
//
// Columns the dashboard does not use (borough, zip code, vehicle types,
// contributing factors, ...) are kept verbatim in [Record.Extra] so the raw
// data table can show them.
//
// Time format:
//
//	CRASH_DATE is "MM/DD/YYYY" or an ISO date-time whose time part is always
//	midnight ("2021-09-11T00:00:00.000"); only the date is used.
//	CRASH_TIME is "H:MM" in 24-hour notation, e.g. "2:39" or "23:05".
//	The two are merged into one timestamp stored under the "date/time" column.
//	Timestamps are local New York wall-clock time and are never converted.
//
// Missing values:
//
//	Rows without LATITUDE or LONGITUDE cannot be placed on a map and are
//	dropped at load time. Empty injury counts and street names are null
//	([Count.Valid] false, empty string) and only excluded by the views that
//	read them.
//
// # Views
//
// Every view is a pure function over a slice of records: [FilterByInjuries],
// [FilterByHour], [MapCenter], [Bounds], [MinuteHistogram] and [TopStreets].
// None of them modify their input, so the base table can be shared across
// concurrent requests without locking.
package domain
