package phase

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel is returned when parsing a string that names no phase
var ErrUnknownLabel = errors.New("unknown phase label")

// Label is one of the discrete phases of the solar day
type Label uint8

const (
	Unknown Label = iota
	Dawn
	Sunrise
	Morning
	Day
	Evening
	Sunset
	Twilight
	Night

	numLabels
)

// Both tables are positional, in the same order as the constants above.
var labelNames = [...]string{
	"unknown",
	"dawn",
	"sunrise",
	"morning",
	"day",
	"evening",
	"sunset",
	"twilight",
	"night",
}

var labelIcons = [...]string{
	"mdi:help",
	"mdi:weather-sunset-up",
	"mdi:weather-sunset-up",
	"mdi:weather-sunset",
	"mdi:weather-sunny",
	"mdi:weather-sunset",
	"mdi:weather-sunset-up",
	"mdi:weather-sunset-up",
	"mdi:weather-night",
}

// Compile-time length checks: a label without a name or an icon is a build error.
var (
	_ = [1]struct{}{}[len(labelNames)-int(numLabels)]
	_ = [1]struct{}{}[len(labelIcons)-int(numLabels)]
)

// Labels returns every label, Unknown first
func Labels() []Label {
	out := make([]Label, 0, numLabels)
	for l := Unknown; l < numLabels; l++ {
		out = append(out, l)
	}
	return out
}

// Valid reports whether l is one of the defined labels
func (l Label) Valid() bool {
	return l < numLabels
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", uint8(l))
	}
	return labelNames[l]
}

// Icon returns the Material Design icon shown for this phase
func (l Label) Icon() string {
	if !l.Valid() {
		return labelIcons[Unknown]
	}
	return labelIcons[l]
}

// ParseLabel converts a wire name such as "twilight" back into a Label
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, uint8(l))
	}
	return []byte(labelNames[l]), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
