package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"makegif/internal/ffmpeg"
	"makegif/internal/params"
	"makegif/internal/tempfile"
	"makegif/internal/ui"
)

type fakeEncoder struct {
	calls       []string
	paletteErr  error
	applyErr    error
	directErr   error
	skipRawFile bool
}

func (f *fakeEncoder) GeneratePalette(_ context.Context, _, _, _, _, palettePath string, _ int) error {
	f.calls = append(f.calls, "palette")
	if f.paletteErr != nil {
		return f.paletteErr
	}
	return os.WriteFile(palettePath, []byte("PNG"), 0o644)
}

func (f *fakeEncoder) ApplyPalette(_ context.Context, _, _, _, _, _, outPath string) error {
	f.calls = append(f.calls, "apply")
	if f.applyErr != nil {
		return f.applyErr
	}
	if f.skipRawFile {
		return nil
	}
	return os.WriteFile(outPath, []byte("GIF89a-raw-data"), 0o644)
}

func (f *fakeEncoder) EncodeDirect(_ context.Context, _, _, _, _, outPath string) error {
	f.calls = append(f.calls, "direct")
	if f.directErr != nil {
		return f.directErr
	}
	if f.skipRawFile {
		return nil
	}
	return os.WriteFile(outPath, []byte("GIF89a-raw-data"), 0o644)
}

type fakeBars struct {
	rect ffmpeg.CropRect
	err  error
}

func (f fakeBars) Detect(_ context.Context, _ string) (ffmpeg.CropRect, error) {
	return f.rect, f.err
}

type fakeOptimizer struct {
	err error
}

func (f fakeOptimizer) Optimize(_ context.Context, in, out string, _ int) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("GIF89a"), 0o644)
}

func testParams(t *testing.T) params.Params {
	t.Helper()
	p := params.Defaults()
	p.Source = "clip.mp4"
	p.Start = "1:30"
	p.Duration = "5"
	p.Output = filepath.Join(t.TempDir(), "out.gif")
	return p
}

func newPipeline(enc Encoder, bars BarDetector, opt Optimizer) (*Pipeline, *tempfile.Guard) {
	g := tempfile.New()
	return &Pipeline{Enc: enc, Bars: bars, Opt: opt, Temp: g, Log: zerolog.Nop()}, g
}

func TestLowQualitySinglePass(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	enc := &fakeEncoder{}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})
	defer guard.Cleanup()

	rep, err := pl.CreateGIF(context.Background(), testParams(t))
	if err != nil {
		t.Fatalf("CreateGIF: %v", err)
	}
	if got := strings.Join(enc.calls, ","); got != "direct" {
		t.Errorf("encoder calls = %q, want %q", got, "direct")
	}
	if rep.FinalBytes <= 0 || rep.RawBytes <= 0 {
		t.Errorf("report sizes not populated: %+v", rep)
	}
	if _, err := os.Stat(rep.Output); err != nil {
		t.Errorf("final output missing: %v", err)
	}
}

func TestHighQualityTwoPassOrdering(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	enc := &fakeEncoder{}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})
	defer guard.Cleanup()

	p := testParams(t)
	p.Quality = params.QualityHigh
	if _, err := pl.CreateGIF(context.Background(), p); err != nil {
		t.Fatalf("CreateGIF: %v", err)
	}
	if got := strings.Join(enc.calls, ","); got != "palette,apply" {
		t.Errorf("encoder calls = %q, want palette before apply", got)
	}
}

func TestPaletteFailureSkipsApply(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	enc := &fakeEncoder{paletteErr: errors.New("palettegen exploded")}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})
	defer guard.Cleanup()

	p := testParams(t)
	p.Quality = params.QualityHigh
	_, err := pl.CreateGIF(context.Background(), p)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Join(enc.calls, ","); got != "palette" {
		t.Errorf("encoder calls = %q; apply must never run after a palette failure", got)
	}
	if _, err := os.Stat(p.Output); !os.IsNotExist(err) {
		t.Error("partial output left at the declared output path")
	}
}

func TestBarDetectionFailureProceedsUncropped(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	var warnings strings.Builder
	oldOut := ui.Out
	ui.Out = &warnings
	defer func() { ui.Out = oldOut }()

	enc := &fakeEncoder{}
	pl, guard := newPipeline(enc, fakeBars{err: ffmpeg.ErrUndetected}, fakeOptimizer{})
	defer guard.Cleanup()

	p := testParams(t)
	p.RemoveBars = true
	if _, err := pl.CreateGIF(context.Background(), p); err != nil {
		t.Fatalf("detection failure must not be fatal: %v", err)
	}
	if !strings.Contains(warnings.String(), "Warning:") {
		t.Error("no warning emitted for inconclusive detection")
	}
}

func TestMissingRawOutputIsFatal(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	enc := &fakeEncoder{skipRawFile: true}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})
	defer guard.Cleanup()

	_, err := pl.CreateGIF(context.Background(), testParams(t))
	if err == nil || !strings.Contains(err.Error(), "produced no output") {
		t.Errorf("silent encoder failure not caught: %v", err)
	}
}

func TestInvalidParamsRejectedBeforeAnyWork(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	enc := &fakeEncoder{}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})
	defer guard.Cleanup()

	p := testParams(t)
	p.FPS = 61
	if _, err := pl.CreateGIF(context.Background(), p); err == nil {
		t.Fatal("out-of-range fps accepted")
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder invoked despite invalid parameters: %v", enc.calls)
	}
}

func TestCleanupLeavesNoTempFiles(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	enc := &fakeEncoder{}
	pl, guard := newPipeline(enc, fakeBars{}, fakeOptimizer{})

	p := testParams(t)
	p.Quality = params.QualityHigh
	if _, err := pl.CreateGIF(context.Background(), p); err != nil {
		t.Fatalf("CreateGIF: %v", err)
	}
	guard.Cleanup()

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "makegif-") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}
