// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind typed calls.
// Argument lists are constructed structurally and all parsing of tool output
// stays inside this package.
package ffmpeg

import (
	"fmt"
	"strings"

	"makegif/internal/params"
)

// CropRect is the rectangle reported by cropdetect: the kept area and its
// offset inside the source frame.
type CropRect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Filter renders the rectangle as a crop filter argument.
func (c CropRect) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

func (c CropRect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", c.Width, c.Height, c.X, c.Y)
}

// FilterChain assembles the encoder filter graph for one conversion. The
// frame-rate filter always comes first, an optional bar-removal crop next,
// and the scale step last: square mode scales so the smaller dimension
// reaches the target width and then center-crops; otherwise the width is
// constrained and the height follows the aspect ratio.
func FilterChain(p params.Params, crop *CropRect) string {
	parts := []string{fmt.Sprintf("fps=%d", p.FPS)}
	if crop != nil {
		parts = append(parts, crop.Filter())
	}
	if p.Square {
		parts = append(parts,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase:flags=lanczos", p.Width, p.Width),
			fmt.Sprintf("crop=%d:%d", p.Width, p.Width),
		)
	} else {
		parts = append(parts, fmt.Sprintf("scale=%d:-1:flags=lanczos", p.Width))
	}
	return strings.Join(parts, ",")
}
