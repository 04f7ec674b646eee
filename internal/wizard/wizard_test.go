package wizard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"makegif/internal/params"
)

type cancelMark struct{}

// scriptAsker replays queued answers; a cancelMark simulates Ctrl+C.
type scriptAsker struct {
	t       *testing.T
	answers []any
}

func (s *scriptAsker) next(kind string) (any, error) {
	if len(s.answers) == 0 {
		s.t.Fatalf("script exhausted, wizard asked for another %s", kind)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	if _, ok := a.(cancelMark); ok {
		return nil, ErrCancelled
	}
	return a, nil
}

func (s *scriptAsker) Input(msg, def string) (string, error) {
	a, err := s.next("input")
	if err != nil {
		return "", err
	}
	if a == "" {
		return def, nil
	}
	return a.(string), nil
}

func (s *scriptAsker) Select(msg string, options []string, def string) (string, error) {
	a, err := s.next("select")
	if err != nil {
		return "", err
	}
	return a.(string), nil
}

func (s *scriptAsker) Confirm(msg string, def bool) (bool, error) {
	a, err := s.next("confirm")
	if err != nil {
		return false, err
	}
	return a.(bool), nil
}

type fakeProbe struct {
	duration    float64
	durationErr error
}

func (f fakeProbe) Duration(_ context.Context, _ string) (float64, error) {
	return f.duration, f.durationErr
}

func (f fakeProbe) HasVideoStream(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func testWizard(t *testing.T, probe SourceProber, answers []any) (*Wizard, *params.Params) {
	t.Helper()
	var got params.Params
	executed := &got
	w := &Wizard{
		Ask:   &scriptAsker{t: t, answers: answers},
		Probe: probe,
		Out:   io.Discard,
		Execute: func(_ context.Context, p params.Params) error {
			*executed = p
			return nil
		},
	}
	return w, executed
}

func sourceFile(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestWizardHappyPath(t *testing.T) {
	src := sourceFile(t)
	out := filepath.Join(t.TempDir(), "out.gif")

	w, got := testWizard(t, fakeProbe{duration: 120}, []any{
		src,                                     // 1 source
		"2",                                     // 2 start
		"5",                                     // 3 duration
		out,                                     // 4 output
		"high (two-pass palette, better colors)", // 5 quality
		"480",  // 6 width
		"15",   // 7 fps
		"128",  // 8 colors
		true,   // 9 remove bars
		false,  // 10 square
		true,   // confirm
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := params.Params{
		Source: src, Start: "2", Duration: "5", Output: out,
		Quality: params.QualityHigh, Width: 480, FPS: 15, Colors: 128,
		RemoveBars: true, Square: false,
	}
	if *got != want {
		t.Errorf("collected params = %+v, want %+v", *got, want)
	}
}

func TestWizardCrossValidatesStartAgainstDuration(t *testing.T) {
	src := sourceFile(t)
	out := filepath.Join(t.TempDir(), "out.gif")

	w, got := testWizard(t, fakeProbe{duration: 60}, []any{
		src,
		"90",        // start beyond the 60s video
		"Try again", // recover choice
		"10",        // retry start
		"100",       // duration beyond remaining 50s
		"Try again",
		"30", // retry duration
		out,
		"low (one pass, smaller)",
		"", "", "", // width/fps/colors defaults
		false, false,
		true,
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Start != "10" || got.Duration != "30" {
		t.Errorf("start/duration = %q/%q, want 10/30", got.Start, got.Duration)
	}
}

func TestWizardRetreatGoesBackOneStep(t *testing.T) {
	src := sourceFile(t)
	out := filepath.Join(t.TempDir(), "out.gif")

	w, got := testWizard(t, fakeProbe{duration: 60}, []any{
		src,
		"5",       // start
		"nonsense", // bad duration
		"Go back", // retreat to start step
		"8",       // start again
		"20",      // duration
		out,
		"low (one pass, smaller)",
		"", "", "",
		false, false,
		true,
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Start != "8" || got.Duration != "20" {
		t.Errorf("start/duration = %q/%q, want 8/20", got.Start, got.Duration)
	}
}

func TestWizardAbortIsNotAnError(t *testing.T) {
	src := sourceFile(t)

	w, got := testWizard(t, fakeProbe{duration: 60}, []any{
		src,
		cancelMark{}, // Ctrl+C at the start-time prompt
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("abort must return nil, got %v", err)
	}
	if got.Output != "" {
		t.Error("Execute ran after an abort")
	}
}

func TestWizardConfirmRejectionReturnsToLastStep(t *testing.T) {
	src := sourceFile(t)
	out := filepath.Join(t.TempDir(), "out.gif")

	w, got := testWizard(t, fakeProbe{duration: 60}, []any{
		src, "0", "5", out,
		"low (one pass, smaller)",
		"", "", "",
		false,
		false, // square = no
		false, // reject summary -> back to square step
		true,  // square = yes this time
		true,  // accept summary
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !got.Square {
		t.Error("square answer from the revisited step was not kept")
	}
}

func TestWizardUnknownDurationRelaxesChecks(t *testing.T) {
	src := sourceFile(t)
	out := filepath.Join(t.TempDir(), "out.gif")

	w, got := testWizard(t, fakeProbe{durationErr: errors.New("no duration")}, []any{
		src,
		"10:00:00", // would exceed any plausible video; accepted without a known duration
		"5",
		out,
		"low (one pass, smaller)",
		"", "", "",
		false, false,
		true,
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Start != "10:00:00" {
		t.Errorf("start = %q", got.Start)
	}
}
