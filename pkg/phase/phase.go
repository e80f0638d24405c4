// Package phase classifies the current point in the solar day (dawn, day,
// twilight, night and so on) from the sun's elevation and whether it is
// rising or setting.
//
// Classification is a pure function of its inputs. Nothing in this package
// keeps state, blocks, or reads the clock, so it is safe to call from any
// number of goroutines.
package phase

import "time"

// DefaultTransitionElevation is the elevation, in degrees, above which the
// sky counts as full daylight. It is not an official figure; it mirrors the
// astronomical depression angle that separates dawn and twilight from night.
const DefaultTransitionElevation = 18.0

// Config controls how the transition band between sunrise/sunset and full
// daylight is reported.
type Config struct {
	// UseTransition enables the Morning and Evening labels. When false,
	// elevations in that band are reported as Day.
	UseTransition bool `json:"transition_phase" yaml:"transition_phase"`
	// TransitionElevation is the full-daylight threshold in degrees.
	TransitionElevation float64 `json:"transition_elevation" yaml:"transition_elevation"`
}

// DefaultConfig returns a Config with transitions enabled at 18 degrees
func DefaultConfig() Config {
	return Config{
		UseTransition:       true,
		TransitionElevation: DefaultTransitionElevation,
	}
}

// Observation holds everything needed for one classification
type Observation struct {
	Elevation  float64
	Rising     bool
	Depression float64
	Config     Config
}

// Classify returns the phase for this observation
func (o Observation) Classify() Label {
	return Classify(o.Elevation, o.Rising, o.Depression, o.Config)
}

// IsRising reports whether the sun is still climbing at the observed instant,
// i.e. whether observed is strictly before solar noon. Noon itself counts as
// setting.
func IsRising(observed, solarNoon time.Time) bool {
	return observed.Before(solarNoon)
}

// Classify maps a solar elevation (degrees), the sun's direction of travel,
// and the site's depression angle onto exactly one Label. Bands are closed
// at the bottom and open at the top. It never returns Unknown.
func Classify(elevation float64, rising bool, depression float64, cfg Config) Label {
	// Night and day do not depend on the direction of travel.
	if elevation < -depression {
		return Night
	}
	if elevation >= cfg.TransitionElevation {
		return Day
	}

	switch {
	case elevation < 0:
		return pick(rising, Dawn, Twilight)
	case elevation < 1:
		return pick(rising, Sunrise, Sunset)
	case elevation < cfg.TransitionElevation && cfg.UseTransition:
		return pick(rising, Morning, Evening)
	}

	// Fail-safe. Only reached with transitions disabled.
	return Day
}

func pick(rising bool, up, down Label) Label {
	if rising {
		return up
	}
	return down
}
