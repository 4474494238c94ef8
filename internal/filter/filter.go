// Package filter implements the streaming fuzzy-rank core: candidate
// sources are drained through a pluggable scorer into a bounded top-K
// selector, progress snapshots are emitted on a throttle, and the completed
// buffer is ranked and written to the editor protocol.
package filter

import (
	"context"
	"time"

	"github.com/runger/winnow/internal/display"
	"github.com/runger/winnow/internal/protocol"
)

// Options configure one search invocation.
type Options struct {
	// Number, when positive, bounds the search to the first Number ranked
	// results (collect-bounded mode). Zero collects every match.
	Number int

	// Icon prepends file-type icons to emitted lines.
	Icon bool

	// Winwidth is the display width matched lines are fit to in bounded
	// mode. Zero falls back to display.DefaultWinwidth.
	Winwidth int

	// UpdateInterval throttles progress snapshots. Zero falls back to
	// DefaultUpdateInterval.
	UpdateInterval time.Duration
}

// Run drains src through scorer and writes the ranked results to w.
//
// In bounded mode the response is a single framed message with the first
// Options.Number ranked lines. In collect-all mode every match is emitted
// as an individual framed record, best first. Either way progress
// snapshots are interleaved while the stream is still being consumed.
func Run(ctx context.Context, src Source, scorer Scorer, w *protocol.Writer, opts Options) error {
	var decorate func(string) string
	if opts.Icon {
		decorate = display.Prepend
	}
	n := newNotifier(w, opts.UpdateInterval)

	if opts.Number > 0 {
		total, buffer, err := collectBounded(ctx, src, scorer, opts.Number, n, decorate)
		if err != nil {
			return err
		}
		return writeRanked(w, total, buffer, opts, decorate)
	}

	_, buffer, err := collectAll(ctx, src, scorer, n, decorate)
	if err != nil {
		return err
	}

	sortDescParallel(buffer)
	for _, cand := range buffer {
		if err := w.Write(protocol.Record{Text: cand.Text, Indices: cand.Indices}); err != nil {
			return err
		}
	}
	return nil
}

func writeRanked(w *protocol.Writer, total int, buffer []Candidate, opts Options, decorate func(string) string) error {
	sortDescParallel(buffer)
	if len(buffer) > opts.Number {
		buffer = buffer[:opts.Number]
	}

	lines := make([]string, len(buffer))
	indices := make([][]int, len(buffer))
	for i, cand := range buffer {
		lines[i] = cand.Text
		indices[i] = cand.Indices
	}

	width := opts.Winwidth
	if width <= 0 {
		width = display.DefaultWinwidth
	}
	lines, indices, truncatedMap := display.TruncateLines(lines, indices, width)

	if decorate != nil {
		for i, line := range lines {
			lines[i] = decorate(line)
		}
	}

	return w.Write(protocol.Ranked{
		Total:        total,
		Lines:        lines,
		Indices:      indices,
		TruncatedMap: truncatedMap,
	})
}
