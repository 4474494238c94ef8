package filter

import (
	"context"
)

// collector drives scored candidates through the buffer and the top board.
// It is owned by a single goroutine for the duration of one search
// invocation; neither the buffer nor the board tolerates concurrent
// mutation.
type collector struct {
	buffer   []Candidate
	top      *topList
	total    int
	bounded  bool
	capacity int
	notifier *notifier
	decorate func(string) string
}

// newCollector returns a collector in collect-all mode (number == 0) or
// collect-bounded mode. Bounded buffers are capped at 2 x max(TopKSize,
// number) so a compaction pass always leaves the full top board intact in
// the surviving half.
func newCollector(number int, n *notifier, decorate func(string) string) *collector {
	c := &collector{
		top:      newTopList(),
		notifier: n,
		decorate: decorate,
	}
	if number > 0 {
		c.bounded = true
		c.capacity = 2 * max(TopKSize, number)
		c.buffer = make([]Candidate, 0, c.capacity)
	}
	return c
}

// add consumes one accepted candidate: buffer append, board offer, progress
// consideration, and compaction when a bounded buffer fills.
func (c *collector) add(cand Candidate) {
	full := c.total >= TopKSize
	c.top.offer(cand.Score, len(c.buffer), full)
	c.buffer = append(c.buffer, cand)
	c.total++

	c.notifier.maybeNotify(c.total, c.snapshot)

	if c.bounded && len(c.buffer) == c.capacity {
		c.compact()
	}
}

// compact sorts the full buffer descending, rebinds the board to the sorted
// prefix, and discards the provably-irrelevant worse half. The buffer is
// not mutated by anything else while the sort runs, so the data-parallel
// path is safe here.
func (c *collector) compact() {
	sortDescParallel(c.buffer)
	c.top.resync(c.buffer)
	c.buffer = c.buffer[:len(c.buffer)/2]
}

// snapshot renders the currently filled board slots, best first.
func (c *collector) snapshot() ([]string, [][]int) {
	n := min(c.total, TopKSize)
	lines := make([]string, 0, n)
	indices := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		cand := c.buffer[c.top.refs[i]]
		text := cand.Text
		if c.decorate != nil {
			text = c.decorate(text)
		}
		lines = append(lines, text)
		indices = append(indices, cand.Indices)
	}
	return lines, indices
}

// collectAll drains src keeping every match; the returned buffer is the
// unsorted full result set. The board only drives progress snapshots along
// the way.
func collectAll(ctx context.Context, src Source, scorer Scorer, n *notifier, decorate func(string) string) (int, []Candidate, error) {
	return collect(ctx, src, scorer, newCollector(0, n, decorate))
}

// collectBounded drains src keeping only enough candidates to guarantee the
// first number ranked results, compacting periodically to bound memory.
func collectBounded(ctx context.Context, src Source, scorer Scorer, number int, n *notifier, decorate func(string) string) (int, []Candidate, error) {
	return collect(ctx, src, scorer, newCollector(number, n, decorate))
}

func collect(ctx context.Context, src Source, scorer Scorer, c *collector) (int, []Candidate, error) {
	err := src.ForEach(ctx, func(line string) {
		m, ok := scorer.Score(line)
		if !ok {
			return
		}
		c.add(Candidate{Text: line, Score: m.Score, Indices: m.Positions})
	})
	if err != nil {
		return c.total, nil, err
	}
	return c.total, c.buffer, nil
}
