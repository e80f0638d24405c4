package solar

import (
	"errors"
	"testing"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
)

var _ phase.Ephemeris = (*Location)(nil)

func TestParseDepression(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"", DepressionCivil, false},
		{"civil", 6, false},
		{"Nautical", 12, false},
		{" astronomical ", 18, false},
		{"0.833", 0.833, false},
		{"10", 10, false},
		{"-3", 0, true},
		{"91", 0, true},
		{"NaN", 0, true},
		{"dusk", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDepression(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDepression) {
					t.Errorf("ParseDepression(%q) error = %v, expected ErrInvalidDepression", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDepression(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDepression(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseNoonMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected NoonMethod
		wantErr  bool
	}{
		{"", NoonTransit, false},
		{"transit", NoonTransit, false},
		{"SUNRISE", NoonSunrise, false},
		{"zenith", NoonTransit, true},
	}

	for _, tt := range tests {
		got, err := ParseNoonMethod(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNoonMethod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseNoonMethod(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewLocationValidation(t *testing.T) {
	tests := []struct {
		name       string
		lat, lon   float64
		depression float64
		wantErr    error
	}{
		{"ok", 47.6, -122.3, 6, nil},
		{"latitude too high", 91, 0, 6, ErrInvalidLocation},
		{"longitude too low", 0, -181, 6, ErrInvalidLocation},
		{"negative depression", 0, 0, -1, ErrInvalidDepression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewLocation(tt.name, tt.lat, tt.lon, nil, tt.depression, NoonTransit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewLocation error = %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLocation: %v", err)
			}
			if loc.TimeZone != time.UTC {
				t.Errorf("TimeZone = %v, expected UTC for nil zone", loc.TimeZone)
			}
		})
	}
}

func TestLocationPhaseOverDay(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*3600)
	seattle, err := NewLocation("seattle", 47.6, -122.3, pdt, DepressionCivil, NoonTransit)
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}

	tests := []struct {
		name     string
		local    time.Time
		expected phase.Label
	}{
		{"small hours", time.Date(2024, 6, 21, 2, 0, 0, 0, pdt), phase.Night},
		{"before sunrise", time.Date(2024, 6, 21, 4, 50, 0, 0, pdt), phase.Dawn},
		{"just after sunrise", time.Date(2024, 6, 21, 5, 18, 0, 0, pdt), phase.Sunrise},
		{"early morning", time.Date(2024, 6, 21, 6, 30, 0, 0, pdt), phase.Morning},
		{"midday", time.Date(2024, 6, 21, 13, 0, 0, 0, pdt), phase.Day},
		{"early evening", time.Date(2024, 6, 21, 20, 0, 0, 0, pdt), phase.Evening},
		{"just before sunset", time.Date(2024, 6, 21, 21, 5, 0, 0, pdt), phase.Sunset},
		{"after sunset", time.Date(2024, 6, 21, 21, 40, 0, 0, pdt), phase.Twilight},
		{"late night", time.Date(2024, 6, 21, 23, 30, 0, 0, pdt), phase.Night},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := phase.At(seattle, tt.local, phase.DefaultConfig())
			if r.Label != tt.expected {
				t.Errorf("phase at %v = %v (elevation %.2f, rising %v), expected %v",
					tt.local, r.Label, r.Elevation, r.Rising, tt.expected)
			}
		})
	}
}

func TestLocationNoonMethods(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	date := time.Date(2024, 1, 1, 9, 0, 0, 0, pst)

	transit, _ := NewLocation("cupertino", 37.3229978, -122.0321823, pst, DepressionCivil, NoonTransit)
	midpoint, _ := NewLocation("cupertino", 37.3229978, -122.0321823, pst, DepressionCivil, NoonSunrise)

	a, b := transit.SolarNoon(date), midpoint.SolarNoon(date)
	if !within(a, b, 2*time.Minute) {
		t.Errorf("transit noon %v and sunrise noon %v differ by more than 2m", a, b)
	}
	if a.Location() != pst {
		t.Errorf("SolarNoon location = %v, expected %v", a.Location(), pst)
	}
}

func TestLocationNoonMethodsAcrossDateLine(t *testing.T) {
	lint := time.FixedZone("LINT", 14*3600)
	evening := time.Date(2024, 6, 21, 19, 0, 0, 0, lint)

	for _, method := range []NoonMethod{NoonTransit, NoonSunrise} {
		t.Run(method.String(), func(t *testing.T) {
			loc, err := NewLocation("kiritimati", 1.87, -157.4, lint, DepressionCivil, method)
			if err != nil {
				t.Fatalf("NewLocation: %v", err)
			}

			r := phase.At(loc, evening, phase.DefaultConfig())
			if r.Rising {
				t.Errorf("Rising = true at 19:00, expected the sun to be setting (noon %v)", loc.SolarNoon(evening))
			}
			if r.Label != phase.Twilight {
				t.Errorf("label at 19:00 = %v (elevation %.2f), expected twilight", r.Label, r.Elevation)
			}
		})
	}
}
