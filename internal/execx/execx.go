// Package execx runs external tools with structured argument lists and
// captured diagnostics. All text scraping of tool output happens in the
// packages that own the respective tool; nothing here ever builds a shell
// command line.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Runner executes one tool invocation at a time.
type Runner struct {
	Log zerolog.Logger
}

// Result holds the captured output of a single invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Run invokes name with args and waits for it to finish. On a non-zero exit
// the returned error is a *ToolError carrying the captured stderr.
func (r Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Log.Debug().Str("tool", name).Strs("args", args).Msg("exec")

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, &ToolError{Tool: name, Err: err, Stderr: res.Stderr}
	}
	return res, nil
}

// ToolError reports a failed tool invocation together with the tail of its
// diagnostic output.
type ToolError struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if diag := TailLines(e.Stderr, 12); diag != "" {
		msg += "\n" + diag
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// TailLines returns at most n trailing non-blank lines of s.
func TailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}

var installHints = map[string]string{
	"ffmpeg":   "install it with your package manager, e.g. 'apt install ffmpeg' or 'brew install ffmpeg'",
	"ffprobe":  "ffprobe ships with ffmpeg; install ffmpeg with your package manager",
	"gifsicle": "install it with your package manager, e.g. 'apt install gifsicle' or 'brew install gifsicle'",
}

// RequireTools verifies that every named tool is on PATH before any work
// starts, so a missing dependency fails with install guidance instead of a
// mid-pipeline exec error.
func RequireTools(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			if hint, ok := installHints[name]; ok {
				return fmt.Errorf("required tool %q not found in PATH; %s", name, hint)
			}
			return fmt.Errorf("required tool %q not found in PATH", name)
		}
	}
	return nil
}
