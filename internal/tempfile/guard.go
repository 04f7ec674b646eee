// Package tempfile provides a scoped guard for the pipeline's intermediate
// files. Paths are registered the moment they are allocated so a crash window
// cannot leak an untracked file, and one cleanup drains them on every exit
// path: normal return, early error, or signal.
package tempfile

import (
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

// Guard tracks temporary paths for deferred removal.
type Guard struct {
	mu    sync.Mutex
	paths []string
}

func New() *Guard {
	return &Guard{}
}

// Alloc reserves a unique path under the temp directory (TMPDIR is honored
// via os.TempDir) and registers it immediately. The file itself is created by
// whichever tool writes to the path.
func (g *Guard) Alloc(suffix string) string {
	path := filepath.Join(os.TempDir(), "makegif-"+uuid.NewString()+suffix)
	g.Track(path)
	return path
}

// Track registers an externally created path for cleanup.
func (g *Guard) Track(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paths = append(g.paths, path)
}

// Cleanup removes every tracked path. Idempotent; missing files are fine.
func (g *Guard) Cleanup() {
	g.mu.Lock()
	paths := g.paths
	g.paths = nil
	g.mu.Unlock()

	for _, p := range paths {
		os.Remove(p)
	}
}

// HandleSignals installs a watcher that drains the guard and exits 1 on
// SIGINT or SIGTERM.
func (g *Guard) HandleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		g.Cleanup()
		os.Exit(1)
	}()
}
