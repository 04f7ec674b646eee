// Package pipeline orchestrates the conversion: validate, detect bars, build
// the filter chain, encode (one or two passes), optimize, and report.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"makegif/internal/ffmpeg"
	"makegif/internal/params"
	"makegif/internal/tempfile"
	"makegif/internal/ui"
)

// Encoder is the slice of the ffmpeg wrapper the pipeline consumes.
type Encoder interface {
	GeneratePalette(ctx context.Context, src, start, duration, filters, palettePath string, colors int) error
	ApplyPalette(ctx context.Context, src, start, duration, filters, palettePath, outPath string) error
	EncodeDirect(ctx context.Context, src, start, duration, filters, outPath string) error
}

// BarDetector finds the dominant letterbox crop of a source.
type BarDetector interface {
	Detect(ctx context.Context, path string) (ffmpeg.CropRect, error)
}

// Optimizer shrinks the raw GIF into the final output.
type Optimizer interface {
	Optimize(ctx context.Context, in, out string, colors int) error
}

// Pipeline holds the collaborating tool wrappers. External tool failures are
// terminal; nothing here retries.
type Pipeline struct {
	Enc  Encoder
	Bars BarDetector
	Opt  Optimizer
	Temp *tempfile.Guard
	Log  zerolog.Logger
}

// Report summarizes a finished conversion.
type Report struct {
	Output     string
	RawBytes   int64
	FinalBytes int64
}

// CreateGIF runs the full conversion for one validated job record.
func (pl *Pipeline) CreateGIF(ctx context.Context, p params.Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	var crop *ffmpeg.CropRect
	if p.RemoveBars {
		rect, err := pl.Bars.Detect(ctx, p.Source)
		if err != nil {
			ui.Warnf("%v; proceeding without cropping", err)
			pl.Log.Warn().Err(err).Msg("bar detection failed")
		} else {
			pl.Log.Debug().Stringer("crop", rect).Msg("bars detected")
			crop = &rect
		}
	}

	filters := ffmpeg.FilterChain(p, crop)
	raw := pl.Temp.Alloc(".gif")
	palette := pl.Temp.Alloc(".png")

	if p.Quality == params.QualityHigh {
		if err := pl.Enc.GeneratePalette(ctx, p.Source, p.Start, p.Duration, filters, palette, p.Colors); err != nil {
			return Report{}, err
		}
		if err := pl.Enc.ApplyPalette(ctx, p.Source, p.Start, p.Duration, filters, palette, raw); err != nil {
			return Report{}, err
		}
	} else {
		if err := pl.Enc.EncodeDirect(ctx, p.Source, p.Start, p.Duration, filters, raw); err != nil {
			return Report{}, err
		}
	}

	rawInfo, err := os.Stat(raw)
	if err != nil {
		return Report{}, fmt.Errorf("encoder reported success but produced no output at %q", raw)
	}

	if err := pl.Opt.Optimize(ctx, raw, p.Output, p.Colors); err != nil {
		return Report{}, err
	}

	outInfo, err := os.Stat(p.Output)
	if err != nil {
		return Report{}, fmt.Errorf("optimizer reported success but produced no output at %q", p.Output)
	}
	os.Remove(raw)

	return Report{
		Output:     p.Output,
		RawBytes:   rawInfo.Size(),
		FinalBytes: outInfo.Size(),
	}, nil
}
