// Package params defines the per-invocation job record and validates every
// user-supplied value before the pipeline touches it.
package params

import (
	"fmt"
	"strings"
)

// Bounds for the numeric parameters.
const (
	MinWidth  = 32
	MaxWidth  = 7680
	MinFPS    = 1
	MaxFPS    = 60
	MinColors = 2
	MaxColors = 256
)

// Defaults applied when an optional argument is omitted.
const (
	DefaultWidth  = 640
	DefaultFPS    = 10
	DefaultColors = 256
)

// Quality selects between the one-pass and the two-pass palette encode.
type Quality string

const (
	QualityLow  Quality = "low"
	QualityHigh Quality = "high"
)

func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(s) {
	case "low":
		return QualityLow, nil
	case "high":
		return QualityHigh, nil
	}
	return "", fmt.Errorf("quality must be %q or %q, got %q", QualityLow, QualityHigh, s)
}

// ParseYesNo parses the yes/no toggles accepted on the command line.
func ParseYesNo(name, s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%s must be \"yes\" or \"no\", got %q", name, s)
}

// Params is the flat job record for one conversion. It is created fresh per
// invocation from positional arguments or wizard answers and never persisted.
type Params struct {
	Source   string
	Start    string // timecode, see ParseTimecode
	Duration string // timecode
	Output   string
	Quality  Quality
	Width    int
	FPS      int
	Colors   int

	RemoveBars bool
	Square     bool
}

// Defaults returns a record with the optional values pre-filled.
func Defaults() Params {
	return Params{
		Quality: QualityLow,
		Width:   DefaultWidth,
		FPS:     DefaultFPS,
		Colors:  DefaultColors,
	}
}

// Validate re-checks the lexical and range constraints of every field. The
// pipeline calls this defensively; it does not trust its callers to have
// validated already.
func (p Params) Validate() error {
	if p.Source == "" {
		return fmt.Errorf("source path is empty")
	}
	if _, err := ParseTimecode(p.Start); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	dur, err := ParseTimecode(p.Duration)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if dur <= 0 {
		return fmt.Errorf("duration must be greater than zero")
	}
	if err := CheckGifPath(p.Output); err != nil {
		return err
	}
	if _, err := ParseQuality(string(p.Quality)); err != nil {
		return err
	}
	if err := checkRange("width", p.Width, MinWidth, MaxWidth); err != nil {
		return err
	}
	if err := checkRange("fps", p.FPS, MinFPS, MaxFPS); err != nil {
		return err
	}
	if err := checkRange("colors", p.Colors, MinColors, MaxColors); err != nil {
		return err
	}
	return nil
}

func checkRange(name string, v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, v)
	}
	return nil
}
