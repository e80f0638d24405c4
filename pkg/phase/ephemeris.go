package phase

import "time"

// Ephemeris supplies the astronomical inputs for a single location
type Ephemeris interface {
	// Elevation returns the sun's elevation above the horizon in degrees at t
	Elevation(t time.Time) float64
	// SolarNoon returns the instant of solar transit on date's calendar day
	SolarNoon(date time.Time) time.Time
	// Depression returns the site's night threshold in degrees below the horizon
	Depression() float64
}

// Reading is the outcome of classifying one instant at one location
type Reading struct {
	Time      time.Time `json:"time"`
	Elevation float64   `json:"elevation"`
	Rising    bool      `json:"rising"`
	Label     Label     `json:"phase"`
}

// At classifies instant t using the elevation and solar noon reported by e
func At(e Ephemeris, t time.Time, cfg Config) Reading {
	elevation := e.Elevation(t)
	rising := IsRising(t, e.SolarNoon(t))

	return Reading{
		Time:      t,
		Elevation: elevation,
		Rising:    rising,
		Label:     Classify(elevation, rising, e.Depression(), cfg),
	}
}
