package filter

import (
	"time"

	"github.com/runger/winnow/internal/protocol"
)

// notifySampleRate gates how often the clock is consulted: only every 16th
// candidate is even considered for emission. Reading the clock costs more
// than the per-candidate bookkeeping around it.
const notifySampleRate = 16

// DefaultUpdateInterval is the minimum gap between progress snapshots.
const DefaultUpdateInterval = 300 * time.Millisecond

// snapshotFunc materializes the current top lines and match positions. It is
// only invoked once both emission gates have passed.
type snapshotFunc func() (lines []string, indices [][]int)

// notifier decides, after each processed candidate, whether to emit a
// progress snapshot. Emission never blocks the collection loop; if the
// frontend reads slowly the frames queue in the OS pipe buffer.
type notifier struct {
	w        *protocol.Writer
	interval time.Duration
	last     time.Time
	clock    func() time.Time
}

func newNotifier(w *protocol.Writer, interval time.Duration) *notifier {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	n := &notifier{w: w, interval: interval, clock: time.Now}
	n.last = n.clock()
	return n
}

func (n *notifier) withClock(clock func() time.Time) *notifier {
	n.clock = clock
	n.last = clock()
	return n
}

// maybeNotify emits a snapshot when total hits a sampling point and the
// update interval has elapsed. The last-emitted timestamp advances only on
// actual emission. Reports whether a frame was written.
func (n *notifier) maybeNotify(total int, snapshot snapshotFunc) bool {
	if n == nil || n.w == nil {
		return false
	}
	if total%notifySampleRate != 0 {
		return false
	}
	now := n.clock()
	if !now.After(n.last.Add(n.interval)) {
		return false
	}
	lines, indices := snapshot()
	if err := n.w.Write(protocol.Progress{Total: total, Lines: lines, Indices: indices}); err != nil {
		return false
	}
	n.last = now
	return true
}
