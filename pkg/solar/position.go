// Package solar computes the sun's position and daily transit for a point on
// the Earth's surface. It uses the NOAA low-precision solar equations, which
// are good to about a minute of time and a few hundredths of a degree
// between 1900 and 2100.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Position is the sun's apparent position for an observer
type Position struct {
	ElevationDeg   float64 // above the horizon, corrected for refraction
	AzimuthDeg     float64 // clockwise from true north
	DeclinationDeg float64
	HourAngleDeg   float64 // negative before transit
	EqOfTimeMin    float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// sunCoords holds the intermediate terms shared by the position and
// equation of time calculations
type sunCoords struct {
	l0, m, e, eps, declination float64
}

func coordsAt(t time.Time) sunCoords {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289

	Ω := 125.04 - 1934.136*T
	λ := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(Ω))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	eps := eps0 + 0.00256*math.Cos(degToRad(Ω))
	δ := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(λ)))

	return sunCoords{l0: L0, m: M, e: e, eps: eps, declination: radToDeg(δ)}
}

func (c sunCoords) eqOfTime() float64 {
	y := math.Tan(degToRad(c.eps)/2) * math.Tan(degToRad(c.eps)/2)
	return radToDeg(y*math.Sin(degToRad(2*c.l0))-
		2*c.e*math.Sin(degToRad(c.m))+
		4*c.e*y*math.Sin(degToRad(c.m))*math.Cos(degToRad(2*c.l0))-
		0.5*y*y*math.Sin(degToRad(4*c.l0))-
		1.25*c.e*c.e*math.Sin(degToRad(2*c.m))) * 4
}

// EquationOfTime returns apparent minus mean solar time at t, in minutes
func EquationOfTime(t time.Time) float64 {
	return coordsAt(t).eqOfTime()
}

// CalculatePosition returns the sun's position at t for an observer at the
// given latitude and longitude (degrees, east positive).
func CalculatePosition(t time.Time, lat, lon float64) Position {
	c := coordsAt(t)
	eqTime := c.eqOfTime()

	u := t.UTC()
	utcMin := float64(u.Hour()*60+u.Minute()) +
		(float64(u.Second())+float64(u.Nanosecond())/1e9)/60.0
	tst := utcMin + 4*lon + eqTime
	ha := tst/4 - 180
	if ha < -180 {
		ha += 360
	} else if ha > 180 {
		ha -= 360
	}

	latRad := degToRad(lat)
	δRad := degToRad(c.declination)
	haRad := degToRad(ha)

	cosZen := math.Sin(latRad)*math.Sin(δRad) + math.Cos(latRad)*math.Cos(δRad)*math.Cos(haRad)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	geometric := 90 - radToDeg(math.Acos(cosZen))

	az := radToDeg(math.Atan2(math.Sin(haRad),
		math.Cos(haRad)*math.Sin(latRad)-math.Tan(δRad)*math.Cos(latRad)))

	return Position{
		ElevationDeg:   geometric + refraction(geometric),
		AzimuthDeg:     fixAngle(az + 180),
		DeclinationDeg: c.declination,
		HourAngleDeg:   ha,
		EqOfTimeMin:    eqTime,
	}
}

// Elevation is shorthand for CalculatePosition(t, lat, lon).ElevationDeg
func Elevation(t time.Time, lat, lon float64) float64 {
	return CalculatePosition(t, lat, lon).ElevationDeg
}

// refraction returns the atmospheric refraction correction in degrees for a
// geometric elevation, using the piecewise NOAA approximation.
func refraction(elevation float64) float64 {
	if elevation > 85 {
		return 0
	}

	te := math.Tan(degToRad(elevation))
	var arcsec float64
	switch {
	case elevation > 5:
		arcsec = 58.1/te - 0.07/math.Pow(te, 3) + 0.000086/math.Pow(te, 5)
	case elevation > -0.575:
		arcsec = 1735 + elevation*(-518.2+elevation*(103.4+elevation*(-12.79+elevation*0.711)))
	default:
		arcsec = -20.774 / te
	}
	return arcsec / 3600
}
