package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"makegif/internal/execx"
)

// ErrUndetected means bar detection was inconclusive. Callers treat it as a
// warning and proceed without cropping.
var ErrUndetected = errors.New("black-bar detection inconclusive")

// Sample window limits for cropdetect.
const (
	maxSampleOffset = 300.0
	maxSampleLen    = 10.0
	minSampleLen    = 1.0
)

// DurationProber is the slice of Prober the detector needs.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// BarDetector samples a short window of the source and picks the most
// frequently reported cropdetect candidate.
type BarDetector struct {
	Bin   string
	Run   execx.Runner
	Probe DurationProber
	Log   zerolog.Logger
}

func NewBarDetector(log zerolog.Logger, probe DurationProber) *BarDetector {
	return &BarDetector{Bin: "ffmpeg", Run: execx.Runner{Log: log}, Probe: probe, Log: log}
}

// SampleWindow picks where and how long to sample a video of the given total
// duration: start at 10% of the runtime (capped at 300s) and sample up to 10
// seconds, at least 1. A degenerate tail window falls back to sampling from
// time zero.
func SampleWindow(total float64) (start, length float64) {
	start = math.Min(total*0.10, maxSampleOffset)
	length = math.Min(total-start, maxSampleLen)
	if length < minSampleLen {
		start = 0
		length = math.Max(math.Min(total, maxSampleLen), minSampleLen)
	}
	return start, length
}

// Detect returns the dominant crop rectangle of the source, or ErrUndetected
// when the duration cannot be determined or no candidate shows up.
func (d *BarDetector) Detect(ctx context.Context, path string) (CropRect, error) {
	total, err := d.Probe.Duration(ctx, path)
	if err != nil {
		return CropRect{}, fmt.Errorf("%w: %v", ErrUndetected, err)
	}

	start, length := SampleWindow(total)
	d.Log.Debug().
		Float64("start", start).
		Float64("length", length).
		Str("source", path).
		Msg("sampling for black bars")

	res, err := d.Run.Run(ctx, d.Bin,
		"-hide_banner",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(length),
		"-i", path,
		"-vf", "cropdetect=24:16:0",
		"-an",
		"-f", "null", "-",
	)
	if err != nil {
		return CropRect{}, fmt.Errorf("%w: %v", ErrUndetected, err)
	}

	rect, ok := dominantCrop(res.Stderr)
	if !ok {
		return CropRect{}, ErrUndetected
	}
	return rect, nil
}

var cropRe = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// dominantCrop picks the most frequently reported crop candidate from
// cropdetect's diagnostic output. Ties resolve to the first candidate in
// ascending sort order.
func dominantCrop(out string) (CropRect, bool) {
	counts := make(map[string]int)
	for _, m := range cropRe.FindAllStringSubmatch(out, -1) {
		key := m[1] + ":" + m[2] + ":" + m[3] + ":" + m[4]
		counts[key]++
	}
	if len(counts) == 0 {
		return CropRect{}, false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}

	m := cropRe.FindStringSubmatch("crop=" + best)
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	return CropRect{Width: w, Height: h, X: x, Y: y}, true
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
