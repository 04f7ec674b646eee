package params

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	secondsRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	minSecRe  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(\.\d+)?$`)
	hmsRe     = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(\.\d+)?$`)
)

// ParseTimecode converts one of the three accepted time shapes into seconds:
// plain seconds ("90", "90.5"), M:SS / MM:SS ("1:30"), or H:MM:SS / HH:MM:SS
// ("01:30:45", fractional seconds allowed). Anything else is rejected with a
// message naming the accepted shapes.
func ParseTimecode(s string) (float64, error) {
	switch {
	case secondsRe.MatchString(s):
		return strconv.ParseFloat(s, 64)
	case minSecRe.MatchString(s):
		m := minSecRe.FindStringSubmatch(s)
		minutes, _ := strconv.ParseFloat(m[1], 64)
		seconds, _ := strconv.ParseFloat(m[2]+m[3], 64)
		return minutes*60 + seconds, nil
	case hmsRe.MatchString(s):
		m := hmsRe.FindStringSubmatch(s)
		hours, _ := strconv.ParseFloat(m[1], 64)
		minutes, _ := strconv.ParseFloat(m[2], 64)
		seconds, _ := strconv.ParseFloat(m[3]+m[4], 64)
		return hours*3600 + minutes*60 + seconds, nil
	}
	return 0, fmt.Errorf("invalid time %q: use seconds (\"90\" or \"90.5\"), MM:SS (\"1:30\"), or HH:MM:SS (\"01:30:45\")", s)
}

// ParseBounded parses a non-negative integer string and enforces the
// inclusive [min,max] range. Non-digit input is rejected outright; values are
// never silently clamped.
func ParseBounded(name, s string, min, max int) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%s must be a whole number between %d and %d, got %q", name, min, max, s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number between %d and %d, got %q", name, min, max, s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, v)
	}
	return v, nil
}

// ExpandHome rewrites a leading "~" to the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// CheckGifPath enforces the .gif suffix on an output path.
func CheckGifPath(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".gif") {
		return fmt.Errorf("output %q must end in .gif", path)
	}
	return nil
}

// StreamChecker reports whether a file contains a decodable video stream.
// Satisfied by the ffprobe wrapper; faked in tests.
type StreamChecker interface {
	HasVideoStream(ctx context.Context, path string) (bool, error)
}

// ValidateSource expands the path, requires an existing readable regular
// file, and requires a decodable video stream. Returns the expanded path.
func ValidateSource(ctx context.Context, path string, probe StreamChecker) (string, error) {
	path = ExpandHome(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("source %q does not exist or is not readable", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source %q is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("source %q is not readable: %v", path, err)
	}
	f.Close()

	ok, err := probe.HasVideoStream(ctx, path)
	if err != nil {
		return "", fmt.Errorf("probing %q: %w", path, err)
	}
	if !ok {
		return "", fmt.Errorf("source %q contains no decodable video stream", path)
	}
	return path, nil
}

// ValidateOutput expands the path, requires a .gif suffix and a writable
// parent directory, and asks confirm before clobbering an existing file.
// Returns the expanded path.
func ValidateOutput(path string, confirm func(path string) bool) (string, error) {
	path = ExpandHome(path)
	if err := CheckGifPath(path); err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("output directory %q does not exist", dir)
	}
	probe, err := os.CreateTemp(dir, ".makegif-write-check-*")
	if err != nil {
		return "", fmt.Errorf("output directory %q is not writable", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	if _, err := os.Stat(path); err == nil {
		if confirm == nil || !confirm(path) {
			return "", fmt.Errorf("refusing to overwrite %q", path)
		}
	}
	return path, nil
}
