// Package square crops an existing GIF to a square aspect ratio in-process,
// without touching the external tools.
package square

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// Alignment picks which part of the longer axis survives the crop.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
)

func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(strings.ToLower(s)) {
	case AlignLeft, AlignRight, AlignCenter, AlignTop, AlignBottom:
		return Alignment(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("alignment must be one of left, right, center, top, bottom; got %q", s)
}

// Offsets computes the crop square for a w×h canvas: the side is the smaller
// dimension, and the alignment offsets the square along the longer axis.
// Center halves the remainder; left/top pin to zero; right/bottom take the
// full remainder.
func Offsets(w, h int, a Alignment) (side, x, y int) {
	side = w
	if h < w {
		side = h
	}
	switch a {
	case AlignLeft, AlignTop:
		// zero offsets
	case AlignRight, AlignBottom:
		x = w - side
		y = h - side
	default:
		x = (w - side) / 2
		y = (h - side) / 2
	}
	if w <= side {
		x = 0
	}
	if h <= side {
		y = 0
	}
	return side, x, y
}

// CropGIF reads inPath, crops every frame to the computed square, and writes
// the result to outPath.
func CropGIF(inPath, outPath string, a Alignment) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %q: %w", inPath, err)
	}
	defer in.Close()

	g, err := gif.DecodeAll(in)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", inPath, err)
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		bounds := g.Image[0].Bounds()
		w, h = bounds.Dx(), bounds.Dy()
	}
	side, x, y := Offsets(w, h, a)
	window := image.Rect(x, y, x+side, y+side)

	for i, frame := range g.Image {
		bound := frame.Bounds()
		if bound.Min.X != 0 || bound.Min.Y != 0 || bound.Max.X != w || bound.Max.Y != h {
			// Partial frames must be drawn onto the full canvas before the
			// crop window can be applied uniformly.
			frame = expandToCanvas(image.Rect(0, 0, w, h), frame)
		}
		cropped := imaging.Crop(frame, window)
		g.Image[i] = nrgbaToPaletted(cropped, frame.Palette)
	}
	g.Config.Width, g.Config.Height = side, side

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", outPath, err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	if err := gif.EncodeAll(writer, g); err != nil {
		return fmt.Errorf("encoding %q: %w", outPath, err)
	}
	return writer.Flush()
}

// expandToCanvas draws a partial frame onto a transparent full-size canvas.
func expandToCanvas(rect image.Rectangle, paletted *image.Paletted) *image.Paletted {
	background := image.NewPaletted(rect, paletted.Palette)
	draw.Draw(
		background,
		background.Bounds(),
		image.Transparent,
		image.Point{},
		draw.Src,
	)
	draw.Draw(background, background.Rect, paletted, image.Point{}, draw.Over)
	return background
}

func nrgbaToPaletted(nrgba *image.NRGBA, palette color.Palette) *image.Paletted {
	paletted := image.NewPaletted(nrgba.Rect, palette)
	draw.FloydSteinberg.Draw(
		paletted,
		paletted.Rect,
		nrgba,
		image.Point{},
	)
	return paletted
}
