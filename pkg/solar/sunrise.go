package solar

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunriseSunset returns sunrise and sunset on the calendar day of date (as
// read in date's location) for the given latitude and longitude. Both times
// are in date's location. ok is false when the sun does not rise or does not
// set that day (polar day or polar night).
func SunriseSunset(date time.Time, lat, lon float64) (rise, set time.Time, ok bool) {
	loc := date.Location()
	y, m, d := date.Date()
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	day := want
	rise, set, ok = sunriseSunsetUTC(day, lat, lon)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	// The library works in UTC days. Near the date line that day can differ
	// from the local one; step it until the sun's midpoint is on the local date.
	for i := 0; i < 2; i++ {
		my, mm, md := rise.Add(set.Sub(rise) / 2).In(loc).Date()
		local := time.Date(my, mm, md, 0, 0, 0, 0, time.UTC)
		switch {
		case local.After(want):
			day = day.AddDate(0, 0, -1)
		case local.Before(want):
			day = day.AddDate(0, 0, 1)
		default:
			return rise.In(loc), set.In(loc), true
		}
		if rise, set, ok = sunriseSunsetUTC(day, lat, lon); !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	return rise.In(loc), set.In(loc), true
}

func sunriseSunsetUTC(day time.Time, lat, lon float64) (rise, set time.Time, ok bool) {
	rise, set = sunrise.SunriseSunset(lat, lon, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return rise, set, true
}

// ApparentSolarNoon returns the midpoint between sunrise and sunset. When the
// sun does not both rise and set on that day, it falls back to SolarNoon.
func ApparentSolarNoon(date time.Time, lat, lon float64) time.Time {
	rise, set, ok := SunriseSunset(date, lat, lon)
	if !ok {
		return SolarNoon(date, lon)
	}
	return rise.Add(set.Sub(rise) / 2)
}

// FormatSunTime formats t as a 12-hour clock time in loc, or "" for the zero time
func FormatSunTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("3:04 PM")
}
