package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/chrissnell/astralphase/pkg/solar"
)

func main() {
	var (
		lat, lon            float64
		tzName, timeStr     string
		depressionStr       string
		noonStr             string
		transition          bool
		transitionElevation float64
	)
	flag.Float64Var(&lat, "lat", 0, "Latitude in degrees, north positive")
	flag.Float64Var(&lon, "lon", 0, "Longitude in degrees, east positive")
	flag.StringVar(&tzName, "tz", "UTC", "IANA time zone used to pick the local calendar day (e.g., America/Los_Angeles)")
	flag.StringVar(&timeStr, "time", "", "Time to classify (RFC3339 format, e.g., 2024-01-15T12:00:00Z); defaults to now")
	flag.StringVar(&depressionStr, "depression", "civil", "Night threshold: civil, nautical, astronomical, or degrees below the horizon")
	flag.StringVar(&noonStr, "noon", "transit", "Solar noon method: transit or sunrise")
	flag.BoolVar(&transition, "transition", true, "Report morning/evening between sunrise and the transition elevation")
	flag.Float64Var(&transitionElevation, "transition-elevation", phase.DefaultTransitionElevation, "Elevation in degrees where morning/evening become day")
	flag.Parse()

	for name, v := range map[string]float64{"lat": lat, "lon": lon, "transition-elevation": transitionElevation} {
		if err := checkFinite(name, v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	tz, err := time.LoadLocation(tzName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading time zone: %v\n", err)
		os.Exit(1)
	}

	t := time.Now().In(tz)
	if timeStr != "" {
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	depression, err := solar.ParseDepression(depressionStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing depression: %v\n", err)
		os.Exit(1)
	}
	noon, err := solar.ParseNoonMethod(noonStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing noon method: %v\n", err)
		os.Exit(1)
	}

	loc, err := solar.NewLocation("cli", lat, lon, tz, depression, noon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := phase.Config{UseTransition: transition, TransitionElevation: transitionElevation}
	r := phase.At(loc, t, cfg)
	pos := loc.Position(t)

	fmt.Printf("Astral Phase for %s at %.4f, %.4f\n", t.In(tz).Format(time.RFC3339), lat, lon)
	fmt.Printf("  Phase:       %s (%s)\n", r.Label, r.Label.Icon())
	fmt.Printf("  Elevation:   %.2f°\n", r.Elevation)
	fmt.Printf("  Azimuth:     %.2f°\n", pos.AzimuthDeg)
	if r.Rising {
		fmt.Printf("  Direction:   Rising\n")
	} else {
		fmt.Printf("  Direction:   Setting\n")
	}
	fmt.Printf("  Solar noon:  %s\n", solar.FormatSunTime(loc.SolarNoon(t), tz))
	if rise, set, ok := loc.SunriseSunset(t); ok {
		fmt.Printf("  Sunrise:     %s\n", solar.FormatSunTime(rise, tz))
		fmt.Printf("  Sunset:      %s\n", solar.FormatSunTime(set, tz))
	} else {
		fmt.Printf("  Sunrise:     none (polar day or night)\n")
	}
	fmt.Printf("  Night below: %.1f°\n", -depression)
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("-%s must be a finite number, got %v", name, v)
	}
	return nil
}
