package ffmpeg

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"makegif/internal/execx"
)

// Encoder runs the ffmpeg passes of the pipeline. High quality is two calls:
// GeneratePalette then ApplyPalette; low quality is a single EncodeDirect.
type Encoder struct {
	Bin string
	Run execx.Runner
}

func NewEncoder(log zerolog.Logger) *Encoder {
	return &Encoder{Bin: "ffmpeg", Run: execx.Runner{Log: log}}
}

// GeneratePalette analyzes the filtered segment and writes an optimal color
// table to palettePath. Full-frame color statistics, per stats_mode=full.
func (e *Encoder) GeneratePalette(ctx context.Context, src, start, duration, filters, palettePath string, colors int) error {
	vf := fmt.Sprintf("%s,palettegen=max_colors=%d:stats_mode=full", filters, colors)
	_, err := e.Run.Run(ctx, e.Bin,
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", start,
		"-t", duration,
		"-i", src,
		"-vf", vf,
		palettePath,
	)
	if err != nil {
		return fmt.Errorf("palette generation: %w", err)
	}
	return nil
}

// ApplyPalette re-encodes the segment mapping every frame through the
// generated palette with Floyd-Steinberg error diffusion.
func (e *Encoder) ApplyPalette(ctx context.Context, src, start, duration, filters, palettePath, outPath string) error {
	lavfi := fmt.Sprintf("%s[x];[x][1:v]paletteuse=dither=floyd_steinberg", filters)
	_, err := e.Run.Run(ctx, e.Bin,
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", start,
		"-t", duration,
		"-i", src,
		"-i", palettePath,
		"-lavfi", lavfi,
		outPath,
	)
	if err != nil {
		return fmt.Errorf("palette application: %w", err)
	}
	return nil
}

// EncodeDirect produces the GIF in one pass with ffmpeg's stock quantizer.
func (e *Encoder) EncodeDirect(ctx context.Context, src, start, duration, filters, outPath string) error {
	_, err := e.Run.Run(ctx, e.Bin,
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", start,
		"-t", duration,
		"-i", src,
		"-vf", filters,
		outPath,
	)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	return nil
}
