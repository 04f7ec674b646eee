package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"makegif/internal/execx"
)

// Prober answers questions about a media file via ffprobe.
type Prober struct {
	Bin string
	Run execx.Runner
}

func NewProber(log zerolog.Logger) *Prober {
	return &Prober{Bin: "ffprobe", Run: execx.Runner{Log: log}}
}

// Duration returns the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	res, err := p.Run.Run(ctx, p.Bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("probing duration of %q: %w", path, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(res.Stdout), 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("could not determine duration of %q", path)
	}
	return d, nil
}

// HasVideoStream reports whether the first video stream is decodable.
func (p *Prober) HasVideoStream(ctx context.Context, path string) (bool, error) {
	res, err := p.Run.Run(ctx, p.Bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return false, fmt.Errorf("probing %q: %w", path, err)
	}
	return strings.Contains(res.Stdout, "video"), nil
}
