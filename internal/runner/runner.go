// Package runner executes wrapped commands on behalf of the editor,
// replaying cached results when an identical invocation already ran and
// spilling oversized output to disk instead of flooding the frontend.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runger/winnow/internal/cache"
	"github.com/runger/winnow/internal/display"
	"github.com/runger/winnow/internal/protocol"
)

// CommandError reports a wrapped command that exited non-zero with output
// on stderr. The error frame has already been written when this is
// returned; callers only map it to an exit code.
type CommandError struct {
	Stderr string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed: %s", e.Stderr)
}

// Runner executes one wrapped command invocation.
type Runner struct {
	// Args is the argv of the command to run. Must be non-empty.
	Args []string

	// Dir is the working directory. A file path resolves to its parent.
	// Empty inherits the current directory.
	Dir string

	// Number, when positive, responds with the first Number lines and
	// never spills.
	Number int

	// Output is an explicit spill target. When set it takes precedence
	// over the cache-derived entry path.
	Output string

	// Threshold is the line count above which output spills to a file.
	// Zero spills any non-empty output, with no inline preview; the grep
	// path relies on that to keep volatile results off the wire.
	Threshold int

	// Decorate, when non-nil, transforms each responded line.
	Decorate func(string) string

	Writer *protocol.Writer
	Cache  *cache.Store
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// RunCached replays a cached result for this invocation if one exists,
// otherwise executes and caches per Run.
func (r *Runner) RunCached(ctx context.Context) error {
	dir := r.workDir()
	if entry, ok := r.Cache.Lookup(r.Args, dir); ok {
		r.logger().Debug("cache hit",
			"args", strings.Join(r.Args, " "),
			"path", entry.Path,
			"total", entry.Total)
		return r.Writer.Write(protocol.ExecResult{
			Total:    entry.Total,
			Tempfile: entry.Path,
		})
	}
	return r.Run(ctx)
}

// Run executes the command and responds with its output: inline when small,
// the first Number lines when bounded, or a preview plus spill file when the
// line count exceeds Threshold.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.Args) == 0 {
		return errors.New("empty command")
	}
	dir := r.workDir()

	id := uuid.NewString()
	log := r.logger().With("invocation", id)
	log.Debug("executing", "args", strings.Join(r.Args, " "), "dir", dir)

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Args[0], r.Args[1:]...)
	cmd.Dir = dir
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("running %s: %w", r.Args[0], err)
		}
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if stderr != "" {
			log.Debug("command failed", "stderr", stderr, "elapsed", time.Since(start))
			if werr := r.Writer.Write(protocol.ErrorMessage{Error: stderr}); werr != nil {
				return werr
			}
			return &CommandError{Stderr: stderr}
		}
		// Non-zero exit with silent stderr: whatever reached stdout is
		// still the answer (grep exits 1 on zero matches).
	}

	total := bytes.Count(stdout, []byte{'\n'})
	log.Debug("executed", "total", total, "elapsed", time.Since(start))

	if r.Number > 0 {
		lines := firstLines(stdout, r.Number)
		return r.respond(protocol.ExecResult{Total: total, Lines: r.decorated(lines)})
	}

	if total > r.Threshold {
		return r.spill(dir, total, stdout, log)
	}

	return r.respond(protocol.ExecResult{Total: total, Lines: r.decorated(allLines(stdout))})
}

// spill writes the full stdout to a file and responds with a capped preview
// plus the file path.
func (r *Runner) spill(dir string, total int, stdout []byte, log *slog.Logger) error {
	path := r.Output
	if path == "" {
		var err error
		path, err = r.Cache.Create(r.Args, dir, total, stdout)
		if err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(path, stdout, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	}
	log.Debug("spilled output", "path", path, "total", total)

	preview := firstLines(stdout, r.Threshold)
	return r.respond(protocol.ExecResult{
		Total:    total,
		Lines:    r.decorated(preview),
		Tempfile: path,
	})
}

func (r *Runner) respond(msg protocol.ExecResult) error {
	return r.Writer.Write(msg)
}

func (r *Runner) decorated(lines []string) []string {
	if r.Decorate != nil {
		for i, line := range lines {
			lines[i] = r.Decorate(line)
		}
	}
	return display.TrimTrailing(lines)
}

// workDir resolves Dir to a directory: a file path becomes its parent. An
// unreadable path is passed through untouched and left to the command to
// reject.
func (r *Runner) workDir() string {
	if r.Dir == "" {
		return ""
	}
	info, err := os.Stat(r.Dir)
	if err != nil {
		return r.Dir
	}
	if !info.IsDir() {
		return filepath.Dir(r.Dir)
	}
	return r.Dir
}

// firstLines returns up to n leading lines of raw output without splitting
// the remainder.
func firstLines(raw []byte, n int) []string {
	lines := make([]string, 0, n)
	for len(raw) > 0 && len(lines) < n {
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			lines = append(lines, string(raw))
			break
		}
		lines = append(lines, string(raw[:idx]))
		raw = raw[idx+1:]
	}
	return lines
}

func allLines(raw []byte) []string {
	s := strings.TrimSuffix(string(raw), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
