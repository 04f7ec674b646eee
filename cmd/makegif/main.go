// Command makegif converts a video segment into an optimized animated GIF.
// With no arguments it runs the interactive wizard; with five or more
// positional arguments it runs straight through.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"makegif/internal/execx"
	"makegif/internal/ffmpeg"
	"makegif/internal/gifsicle"
	"makegif/internal/params"
	"makegif/internal/pipeline"
	"makegif/internal/tempfile"
	"makegif/internal/ui"
	"makegif/internal/wizard"
)

func main() {
	err := command.Run(context.Background(), os.Args)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

var command = &cli.Command{
	Name:      "makegif",
	Usage:     "Convert a video segment into an optimized animated GIF",
	ArgsUsage: "[<source> <start> <duration> <output.gif> <quality> [width] [fps] [colors] [remove-bars] [square]]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Log every external tool invocation",
			Aliases: []string{"v"},
		},
	},
}

func init() {
	command.Action = action
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func action(ctx context.Context, c *cli.Command) error {
	log := newLogger(c.Bool("verbose"))

	if err := execx.RequireTools("ffmpeg", "ffprobe", "gifsicle"); err != nil {
		return err
	}

	guard := tempfile.New()
	guard.HandleSignals()
	defer guard.Cleanup()

	prober := ffmpeg.NewProber(log)
	pl := &pipeline.Pipeline{
		Enc:  ffmpeg.NewEncoder(log),
		Bars: ffmpeg.NewBarDetector(log, prober),
		Opt:  gifsicle.New(log),
		Temp: guard,
		Log:  log,
	}

	args := c.Args().Slice()
	switch {
	case len(args) == 0:
		w := &wizard.Wizard{
			Ask:   wizard.NewAsker(),
			Probe: prober,
			Execute: func(ctx context.Context, p params.Params) error {
				return runJob(ctx, pl, p)
			},
		}
		return w.Run(ctx)
	case len(args) < 5:
		return fmt.Errorf("expected no arguments (wizard) or at least 5, got %d; usage: makegif %s", len(args), command.ArgsUsage)
	}

	p, err := parseArgs(ctx, args, prober)
	if err != nil {
		return err
	}
	return runJob(ctx, pl, p)
}

// parseArgs maps the positional argument form onto a validated record.
func parseArgs(ctx context.Context, args []string, prober *ffmpeg.Prober) (params.Params, error) {
	p := params.Defaults()
	var err error

	if p.Source, err = params.ValidateSource(ctx, args[0], prober); err != nil {
		return p, err
	}
	if _, err = params.ParseTimecode(args[1]); err != nil {
		return p, fmt.Errorf("start time: %w", err)
	}
	p.Start = args[1]
	if _, err = params.ParseTimecode(args[2]); err != nil {
		return p, fmt.Errorf("duration: %w", err)
	}
	p.Duration = args[2]

	ask := wizard.NewAsker()
	confirmed := func(path string) bool {
		ok, err := ask.Confirm(fmt.Sprintf("%s exists — overwrite?", path), false)
		return err == nil && ok
	}
	if p.Output, err = params.ValidateOutput(args[3], confirmed); err != nil {
		return p, err
	}

	if p.Quality, err = params.ParseQuality(args[4]); err != nil {
		return p, err
	}
	if len(args) > 5 {
		if p.Width, err = params.ParseBounded("width", args[5], params.MinWidth, params.MaxWidth); err != nil {
			return p, err
		}
	}
	if len(args) > 6 {
		if p.FPS, err = params.ParseBounded("fps", args[6], params.MinFPS, params.MaxFPS); err != nil {
			return p, err
		}
	}
	if len(args) > 7 {
		if p.Colors, err = params.ParseBounded("colors", args[7], params.MinColors, params.MaxColors); err != nil {
			return p, err
		}
	}
	if len(args) > 8 {
		if p.RemoveBars, err = params.ParseYesNo("remove-bars", args[8]); err != nil {
			return p, err
		}
	}
	if len(args) > 9 {
		if p.Square, err = params.ParseYesNo("square", args[9]); err != nil {
			return p, err
		}
	}
	return p, nil
}

func runJob(ctx context.Context, pl *pipeline.Pipeline, p params.Params) error {
	rep, err := pl.CreateGIF(ctx, p)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s, optimized from %s)\n",
		rep.Output, formatBytes(rep.FinalBytes), formatBytes(rep.RawBytes))
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
