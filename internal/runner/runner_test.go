package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/winnow/internal/cache"
	"github.com/runger/winnow/internal/config"
	"github.com/runger/winnow/internal/protocol"
)

// lastFrame decodes the final framed JSON payload in out into v.
func lastFrame(t *testing.T, out string, v any) {
	t.Helper()
	frames := strings.Split(out, "Content-length: ")
	require.Greater(t, len(frames), 1)
	last := frames[len(frames)-1]
	_, body, found := strings.Cut(last, "\n\n")
	require.True(t, found, "frame %q missing blank line", last)
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSuffix(body, "\n")), v))
}

func newRunner(t *testing.T, args ...string) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &Runner{
		Args:      args,
		Threshold: config.DefaultConfig().Exec.OutputThreshold,
		Writer:    protocol.NewWriter(&buf),
		Cache:     cache.New(t.TempDir()),
	}, &buf
}

func TestRun_InlineWhenSmall(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "seq", "10")
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, 10, res.Total)
	assert.Len(t, res.Lines, 10)
	assert.Equal(t, "1", res.Lines[0])
	assert.Empty(t, res.Tempfile)
}

func TestRun_NumberNeverSpills(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "seq", "10000")
	r.Number = 5
	r.Threshold = 100 // would spill if the number path did not win
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, 10000, res.Total)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, res.Lines)
	assert.Empty(t, res.Tempfile)
}

func TestRun_SpillsAboveThreshold(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "seq", "10000")
	r.Threshold = 500
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, 10000, res.Total)
	assert.Len(t, res.Lines, 500)
	require.NotEmpty(t, res.Tempfile)

	spilled, err := os.ReadFile(res.Tempfile)
	require.NoError(t, err)
	assert.Equal(t, 10000, bytes.Count(spilled, []byte{'\n'}))
}

func TestRun_ZeroThresholdAlwaysSpills(t *testing.T) {
	t.Parallel()

	// The grep path runs with a zero threshold: every non-empty result set
	// goes to a file, never inline.
	r, buf := newRunner(t, "seq", "50000")
	r.Threshold = 0
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, 50000, res.Total)
	assert.Empty(t, res.Lines)
	require.NotEmpty(t, res.Tempfile)

	spilled, err := os.ReadFile(res.Tempfile)
	require.NoError(t, err)
	assert.Equal(t, 50000, bytes.Count(spilled, []byte{'\n'}))
}

func TestRun_ZeroThresholdEmptyOutputStaysInline(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "true")
	r.Threshold = 0
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Tempfile)
}

func TestRun_ExplicitOutputPath(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "spill.txt")
	r, buf := newRunner(t, "seq", "1000")
	r.Threshold = 10
	r.Output = out
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, out, res.Tempfile)

	spilled, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1000, bytes.Count(spilled, []byte{'\n'}))
}

func TestRunCached_ReplaysWithoutExecuting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, buf := newRunner(t, "sh", "-c", "echo x >> marker; seq 1000")
	r.Dir = dir
	r.Threshold = 100

	require.NoError(t, r.RunCached(context.Background()))
	var first protocol.ExecResult
	lastFrame(t, buf.String(), &first)
	require.NotEmpty(t, first.Tempfile)

	buf.Reset()
	require.NoError(t, r.RunCached(context.Background()))
	var second protocol.ExecResult
	lastFrame(t, buf.String(), &second)
	assert.Equal(t, first.Tempfile, second.Tempfile)
	assert.Equal(t, 1000, second.Total)
	assert.Empty(t, second.Lines)

	// The side-effect marker proves the second invocation never ran.
	marker, err := os.ReadFile(filepath.Join(dir, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(marker))
}

func TestRun_StderrBecomesCommandError(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "sh", "-c", "echo boom >&2; exit 3")
	err := r.Run(context.Background())

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "boom", cmdErr.Stderr)

	var msg protocol.ErrorMessage
	lastFrame(t, buf.String(), &msg)
	assert.Equal(t, "boom", msg.Error)
}

func TestRun_NonZeroExitSilentStderrProceeds(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "sh", "-c", "echo out; exit 1")
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []string{"out"}, res.Lines)
}

func TestRun_FilePathResolvesToParentDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "anchor.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	r, buf := newRunner(t, "ls")
	r.Dir = file
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Contains(t, res.Lines, "anchor.txt")
}

func TestRun_DecorateAndTrimTrailing(t *testing.T) {
	t.Parallel()

	r, buf := newRunner(t, "printf", `a\nb\n`)
	r.Decorate = func(line string) string { return "* " + line }
	require.NoError(t, r.Run(context.Background()))

	var res protocol.ExecResult
	lastFrame(t, buf.String(), &res)
	assert.Equal(t, []string{"* a", "* b"}, res.Lines)
}

func TestRun_EmptyArgs(t *testing.T) {
	t.Parallel()

	r, _ := newRunner(t)
	assert.Error(t, r.Run(context.Background()))
}
