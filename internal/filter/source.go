package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"unicode/utf8"

	"github.com/google/shlex"
)

// maxLineBytes bounds a single candidate line. Longer lines abort the scan
// rather than silently splitting.
const maxLineBytes = 1024 * 1024

// Source produces a lazy, finite-or-unbounded sequence of candidate lines.
// ForEach invokes fn for every line until the source is exhausted, the
// context is cancelled, or the source fails. Lines that are not valid UTF-8
// are skipped, not fatal.
type Source interface {
	ForEach(ctx context.Context, fn func(line string)) error
}

// ReaderSource streams lines from an io.Reader, typically stdin.
type ReaderSource struct {
	R io.Reader
}

func (s *ReaderSource) ForEach(ctx context.Context, fn func(line string)) error {
	return scanLines(ctx, s.R, fn)
}

// FileSource reads a file and splits its contents into lines.
type FileSource struct {
	Path string
}

func (s *FileSource) ForEach(ctx context.Context, fn func(line string)) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("opening candidate file: %w", err)
	}
	defer f.Close()
	return scanLines(ctx, f, fn)
}

// CommandSource streams the stdout of a spawned command.
type CommandSource struct {
	Command string // raw command line, split with shlex
	Dir     string // working directory, "" inherits
}

func (s *CommandSource) ForEach(ctx context.Context, fn func(line string)) error {
	argv, err := shlex.Split(s.Command)
	if err != nil {
		return fmt.Errorf("splitting command: %w", err)
	}
	if len(argv) == 0 {
		return errors.New("command produced empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = s.Dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("piping stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}

	scanErr := scanLines(ctx, stdout, fn)

	// The candidates already streamed stand on their own; a non-zero exit
	// after a complete scan is not an error here.
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("waiting for %s: %w", argv[0], err)
		}
	}
	return scanErr
}

// ListSource serves an in-memory sequence of lines.
type ListSource []string

func (s ListSource) ForEach(ctx context.Context, fn func(line string)) error {
	for _, line := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !utf8.ValidString(line) {
			continue
		}
		fn(line)
	}
	return nil
}

func scanLines(ctx context.Context, r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if !utf8.ValidString(line) {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading candidates: %w", err)
	}
	return nil
}
