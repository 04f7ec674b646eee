// Package gifsicle wraps the gifsicle optimizer.
package gifsicle

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"makegif/internal/execx"
)

// Optimizer shrinks a raw GIF with maximum-effort LZW optimization and an
// upper bound on palette size.
type Optimizer struct {
	Bin string
	Run execx.Runner
}

func New(log zerolog.Logger) *Optimizer {
	return &Optimizer{Bin: "gifsicle", Run: execx.Runner{Log: log}}
}

// Optimize writes the optimized GIF to out, leaving in untouched.
func (o *Optimizer) Optimize(ctx context.Context, in, out string, colors int) error {
	_, err := o.Run.Run(ctx, o.Bin,
		"-O3",
		"--colors", strconv.Itoa(colors),
		"-o", out,
		in,
	)
	if err != nil {
		return fmt.Errorf("optimizing: %w", err)
	}
	return nil
}
