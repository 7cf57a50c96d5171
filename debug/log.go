// Package debug is a process-wide diagnostic log. It stays silent until
// Enable is called; the decoder writes to it only when its Debug or Verbose
// options are set, so a terminal UI can run while the log is tailed.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const stampFormat = "15:04:05.000"

var (
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	counters = make(map[string]int)
)

// DefaultPath is ~/.config/go-smfstream/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-smfstream", "debug.log"), nil
}

// Enable starts logging to DefaultPath
func Enable() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return EnableAt(path)
}

// EnableAt starts logging to path, truncating it. Calling it while a log is
// already open does nothing.
func EnableAt(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if out != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "open debug log")
	}
	out, closer = f, f
	write("debug", "=== logging to %s ===", path)
	return nil
}

// SetOutput sends log lines to w until Disable. Nil disables.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	out = w
}

// Disable closes the log file, if any, and clears the LogEvery counters
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	out = nil
	clear(counters)
}

func closeLocked() {
	if closer != nil {
		closer.Close()
		closer = nil
	}
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}

// Log writes one "[time] category message" line
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		write(category, format, args...)
	}
}

// write expects mu held
func write(category, format string, args ...any) {
	fmt.Fprintf(out, "[%s] %-8s %s\n", time.Now().Format(stampFormat), category, fmt.Sprintf(format, args...))
	if f, ok := out.(*os.File); ok {
		f.Sync() // tail -f sees lines even if the process dies
	}
}

// LogEvery logs the first call and then every nth call for the same
// category and format, for lines that can fire once per event.
func LogEvery(n int, category, format string, args ...any) {
	if n < 1 {
		n = 1
	}
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}

	key := category + "\x00" + format
	counters[key]++
	count := counters[key]
	if (count-1)%n == 0 {
		write(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
