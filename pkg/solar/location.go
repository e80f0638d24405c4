package solar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDepression = errors.New("invalid solar depression")
	ErrInvalidNoonMethod = errors.New("invalid solar noon method")
	ErrInvalidLocation   = errors.New("invalid location")
)

// Named depression angles, in degrees below the horizon
const (
	DepressionCivil        = 6.0
	DepressionNautical     = 12.0
	DepressionAstronomical = 18.0
)

var namedDepressions = map[string]float64{
	"civil":        DepressionCivil,
	"nautical":     DepressionNautical,
	"astronomical": DepressionAstronomical,
}

// ParseDepression accepts "civil", "nautical", "astronomical" or a number of
// degrees in [0, 90]. An empty string means civil.
func ParseDepression(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DepressionCivil, nil
	}
	if d, ok := namedDepressions[s]; ok {
		return d, nil
	}

	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDepression, s)
	}
	if math.IsNaN(d) || d < 0 || d > 90 {
		return 0, fmt.Errorf("%w: %v is outside [0, 90]", ErrInvalidDepression, d)
	}
	return d, nil
}

// NoonMethod selects how solar noon is computed
type NoonMethod int

const (
	// NoonTransit uses the equation of time (meridian transit)
	NoonTransit NoonMethod = iota
	// NoonSunrise uses the midpoint of sunrise and sunset
	NoonSunrise
)

func (n NoonMethod) String() string {
	switch n {
	case NoonTransit:
		return "transit"
	case NoonSunrise:
		return "sunrise"
	default:
		return "unknown"
	}
}

// ParseNoonMethod parses "transit" or "sunrise"; empty means transit
func ParseNoonMethod(s string) (NoonMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transit":
		return NoonTransit, nil
	case "sunrise":
		return NoonSunrise, nil
	default:
		return NoonTransit, fmt.Errorf("%w: %q", ErrInvalidNoonMethod, s)
	}
}

// Location is an observing site. It satisfies phase.Ephemeris.
type Location struct {
	Name          string
	Latitude      float64
	Longitude     float64
	TimeZone      *time.Location
	DepressionDeg float64
	Noon          NoonMethod
}

// NewLocation validates the coordinates and returns a Location. A nil zone
// means UTC.
func NewLocation(name string, lat, lon float64, tz *time.Location, depression float64, noon NoonMethod) (*Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude %v for %q", ErrInvalidLocation, lat, name)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: longitude %v for %q", ErrInvalidLocation, lon, name)
	}
	if math.IsNaN(depression) || depression < 0 || depression > 90 {
		return nil, fmt.Errorf("%w: %v for %q", ErrInvalidDepression, depression, name)
	}
	if tz == nil {
		tz = time.UTC
	}

	return &Location{
		Name:          name,
		Latitude:      lat,
		Longitude:     lon,
		TimeZone:      tz,
		DepressionDeg: depression,
		Noon:          noon,
	}, nil
}

func (l *Location) Position(t time.Time) Position {
	return CalculatePosition(t, l.Latitude, l.Longitude)
}

func (l *Location) Elevation(t time.Time) float64 {
	return l.Position(t).ElevationDeg
}

// SolarNoon returns solar noon for the local calendar day containing date
func (l *Location) SolarNoon(date time.Time) time.Time {
	local := date.In(l.TimeZone)
	if l.Noon == NoonSunrise {
		return ApparentSolarNoon(local, l.Latitude, l.Longitude)
	}
	return SolarNoon(local, l.Longitude)
}

// SunriseSunset returns the local sunrise and sunset for date's local day
func (l *Location) SunriseSunset(date time.Time) (rise, set time.Time, ok bool) {
	return SunriseSunset(date.In(l.TimeZone), l.Latitude, l.Longitude)
}

func (l *Location) Depression() float64 {
	return l.DepressionDeg
}
