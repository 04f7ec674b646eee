// Package wizard implements the interactive step-by-step parameter
// collection as an explicit finite-state machine: ten ordered steps plus a
// confirmation state, each yielding a transition and a mutated context.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"makegif/internal/params"
	"makegif/internal/ui"
)

// Transition is a step's verdict on where the wizard goes next.
type Transition int

const (
	// Stay reruns the current step (retry after a local failure).
	Stay Transition = iota
	// Advance moves to the next step, or to execution after the last one.
	Advance
	// Retreat moves one step back, clamped at the first step.
	Retreat
	// Abort leaves the wizard with no side effects.
	Abort
)

// Context is the record threaded through the steps. SourceDuration is the
// only cross-step state besides the accumulating parameters: steps two and
// three bound-check against it when step one managed to determine it.
type Context struct {
	Params         params.Params
	SourceDuration float64 // seconds; 0 when unknown
}

// SourceProber is the probing surface step one needs.
type SourceProber interface {
	Duration(ctx context.Context, path string) (float64, error)
	HasVideoStream(ctx context.Context, path string) (bool, error)
}

// Wizard collects a full parameter record interactively and hands it to
// Execute on confirmation.
type Wizard struct {
	Ask     Asker
	Probe   SourceProber
	Execute func(ctx context.Context, p params.Params) error
	Out     io.Writer // summary destination; defaults to stdout
}

type step struct {
	title string
	run   func(ctx context.Context, c *Context) (Transition, error)
}

// Run drives the state machine. A user abort returns nil: it is not an
// error.
func (w *Wizard) Run(ctx context.Context) error {
	if w.Out == nil {
		w.Out = os.Stdout
	}
	c := &Context{Params: params.Defaults()}
	steps := w.steps()

	i := 0
	for {
		if i >= len(steps) {
			t, err := w.confirm(ctx, c)
			if err != nil {
				return err
			}
			switch t {
			case Advance:
				return w.Execute(ctx, c.Params)
			case Retreat:
				i = len(steps) - 1
				continue
			case Abort:
				fmt.Fprintln(w.Out, "Aborted.")
				return nil
			}
			continue
		}

		fmt.Fprintf(w.Out, "\nStep %d/%d — %s\n", i+1, len(steps), steps[i].title)
		t, err := steps[i].run(ctx, c)
		if errors.Is(err, ErrCancelled) {
			fmt.Fprintln(w.Out, "Aborted.")
			return nil
		}
		if err != nil {
			return err
		}
		switch t {
		case Advance:
			i++
		case Retreat:
			if i > 0 {
				i--
			}
		case Abort:
			fmt.Fprintln(w.Out, "Aborted.")
			return nil
		}
	}
}

// recover asks what to do after a local validation failure instead of
// killing the whole wizard.
func (w *Wizard) recover(reason string) (Transition, error) {
	ui.Errorf("%s", reason)
	choice, err := w.Ask.Select("What now?", []string{"Try again", "Go back", "Exit"}, "Try again")
	if err != nil {
		return Abort, err
	}
	switch choice {
	case "Go back":
		return Retreat, nil
	case "Exit":
		return Abort, nil
	}
	return Stay, nil
}

func (w *Wizard) steps() []step {
	return []step{
		{"select video", w.stepSource},
		{"start time", w.stepStart},
		{"duration", w.stepDuration},
		{"output location", w.stepOutput},
		{"quality", w.stepQuality},
		{"width", w.stepWidth},
		{"frame rate", w.stepFPS},
		{"colors", w.stepColors},
		{"remove black bars", w.stepRemoveBars},
		{"square crop", w.stepSquare},
	}
}

func (w *Wizard) stepSource(ctx context.Context, c *Context) (Transition, error) {
	path, err := w.Ask.Input("Video file to convert:", c.Params.Source)
	if err != nil {
		return Abort, err
	}
	expanded, err := params.ValidateSource(ctx, path, w.Probe)
	if err != nil {
		return w.recover(err.Error())
	}
	c.Params.Source = expanded

	c.SourceDuration = 0
	if d, err := w.Probe.Duration(ctx, expanded); err != nil {
		ui.Warnf("could not determine video duration; start/duration checks are relaxed")
	} else {
		c.SourceDuration = d
	}
	return Advance, nil
}

func (w *Wizard) stepStart(ctx context.Context, c *Context) (Transition, error) {
	def := c.Params.Start
	if def == "" {
		def = "0"
	}
	in, err := w.Ask.Input("Start time (seconds, MM:SS, or HH:MM:SS):", def)
	if err != nil {
		return Abort, err
	}
	secs, err := params.ParseTimecode(in)
	if err != nil {
		return w.recover(err.Error())
	}
	if c.SourceDuration > 0 && secs > c.SourceDuration {
		return w.recover(fmt.Sprintf("start time %s is beyond the end of the video (%s)",
			in, formatSeconds(c.SourceDuration)))
	}
	c.Params.Start = in
	return Advance, nil
}

func (w *Wizard) stepDuration(ctx context.Context, c *Context) (Transition, error) {
	in, err := w.Ask.Input("Clip duration (seconds, MM:SS, or HH:MM:SS):", c.Params.Duration)
	if err != nil {
		return Abort, err
	}
	secs, err := params.ParseTimecode(in)
	if err != nil {
		return w.recover(err.Error())
	}
	if secs <= 0 {
		return w.recover("duration must be greater than zero")
	}
	if c.SourceDuration > 0 {
		start, _ := params.ParseTimecode(c.Params.Start)
		if remaining := c.SourceDuration - start; secs > remaining {
			return w.recover(fmt.Sprintf("duration %s exceeds the remaining video time (%s after the start point)",
				in, formatSeconds(remaining)))
		}
	}
	c.Params.Duration = in
	return Advance, nil
}

func (w *Wizard) stepOutput(ctx context.Context, c *Context) (Transition, error) {
	def := c.Params.Output
	if def == "" && c.Params.Source != "" {
		def = strings.TrimSuffix(c.Params.Source, filepath.Ext(c.Params.Source)) + ".gif"
	}
	in, err := w.Ask.Input("Output GIF path:", def)
	if err != nil {
		return Abort, err
	}
	var cancelled bool
	confirmed := func(path string) bool {
		ok, err := w.Ask.Confirm(fmt.Sprintf("%s exists — overwrite?", path), false)
		if err != nil {
			cancelled = true
			return false
		}
		return ok
	}
	expanded, err := params.ValidateOutput(in, confirmed)
	if cancelled {
		return Abort, ErrCancelled
	}
	if err != nil {
		return w.recover(err.Error())
	}
	c.Params.Output = expanded
	return Advance, nil
}

func (w *Wizard) stepQuality(ctx context.Context, c *Context) (Transition, error) {
	choice, err := w.Ask.Select("Quality:", []string{
		"low (one pass, smaller)",
		"high (two-pass palette, better colors)",
	}, "low (one pass, smaller)")
	if err != nil {
		return Abort, err
	}
	if strings.HasPrefix(choice, "high") {
		c.Params.Quality = params.QualityHigh
	} else {
		c.Params.Quality = params.QualityLow
	}
	return Advance, nil
}

func (w *Wizard) stepWidth(ctx context.Context, c *Context) (Transition, error) {
	return w.numericStep("Width in pixels:", strconv.Itoa(c.Params.Width),
		"width", params.MinWidth, params.MaxWidth, func(v int) { c.Params.Width = v })
}

func (w *Wizard) stepFPS(ctx context.Context, c *Context) (Transition, error) {
	return w.numericStep("Frames per second:", strconv.Itoa(c.Params.FPS),
		"fps", params.MinFPS, params.MaxFPS, func(v int) { c.Params.FPS = v })
}

func (w *Wizard) stepColors(ctx context.Context, c *Context) (Transition, error) {
	return w.numericStep("Maximum colors:", strconv.Itoa(c.Params.Colors),
		"colors", params.MinColors, params.MaxColors, func(v int) { c.Params.Colors = v })
}

func (w *Wizard) numericStep(msg, def, name string, min, max int, set func(int)) (Transition, error) {
	in, err := w.Ask.Input(msg, def)
	if err != nil {
		return Abort, err
	}
	v, err := params.ParseBounded(name, in, min, max)
	if err != nil {
		return w.recover(err.Error())
	}
	set(v)
	return Advance, nil
}

func (w *Wizard) stepRemoveBars(ctx context.Context, c *Context) (Transition, error) {
	ok, err := w.Ask.Confirm("Detect and remove black bars?", c.Params.RemoveBars)
	if err != nil {
		return Abort, err
	}
	c.Params.RemoveBars = ok
	return Advance, nil
}

func (w *Wizard) stepSquare(ctx context.Context, c *Context) (Transition, error) {
	ok, err := w.Ask.Confirm("Crop to a centered square?", c.Params.Square)
	if err != nil {
		return Abort, err
	}
	c.Params.Square = ok
	return Advance, nil
}

func (w *Wizard) confirm(ctx context.Context, c *Context) (Transition, error) {
	p := c.Params
	fmt.Fprintf(w.Out, `
Summary
  source:      %s
  start:       %s
  duration:    %s
  output:      %s
  quality:     %s
  width:       %d
  fps:         %d
  colors:      %d
  remove bars: %s
  square:      %s
`, p.Source, p.Start, p.Duration, p.Output, p.Quality,
		p.Width, p.FPS, p.Colors, yesNo(p.RemoveBars), yesNo(p.Square))

	ok, err := w.Ask.Confirm("Create this GIF?", true)
	if errors.Is(err, ErrCancelled) {
		return Abort, nil
	}
	if err != nil {
		return Abort, err
	}
	if ok {
		return Advance, nil
	}
	return Retreat, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "s"
}
