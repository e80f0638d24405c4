package solar

import (
	"math"
	"time"
)

func minutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}

// SolarNoon returns the instant the sun crosses the meridian at longitude lon
// (degrees, east positive) on the calendar day of date, as read in date's
// location. The result is in date's location.
func SolarNoon(date time.Time, lon float64) time.Time {
	loc := date.Location()
	y, m, d := date.Date()

	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	noon := transit(midnight, lon)

	// Near the date line UTC and local calendar days can differ; step the
	// UTC day until the transit falls on the requested local date.
	for i := 0; i < 2; i++ {
		ly, lm, ld := noon.In(loc).Date()
		local := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
		want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		switch {
		case local.After(want):
			midnight = midnight.AddDate(0, 0, -1)
		case local.Before(want):
			midnight = midnight.AddDate(0, 0, 1)
		default:
			return noon.In(loc)
		}
		noon = transit(midnight, lon)
	}
	return noon.In(loc)
}

// transit computes the meridian crossing for the UTC day starting at midnight
func transit(midnight time.Time, lon float64) time.Time {
	mean := 720 - 4*lon
	noon := midnight.Add(minutes(mean))
	for i := 0; i < 2; i++ {
		noon = midnight.Add(minutes(mean - EquationOfTime(noon)))
	}
	return noon
}
