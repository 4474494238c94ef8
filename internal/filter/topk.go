package filter

import "math"

// TopKSize is the capacity of the ranked board driving progress snapshots.
const TopKSize = 30

const maxIdx = TopKSize - 1

// topList tracks the best TopKSize candidates seen so far as two parallel
// fixed arrays: scores sorted descending (math.MinInt64 marks an empty
// slot) and, for each slot, the index of the candidate in the collection
// buffer. The arrays are small and flat; every insertion is a
// single O(K) shift, independent of how many candidates the stream has
// produced.
type topList struct {
	scores [TopKSize]int64
	refs   [TopKSize]int
}

func newTopList() *topList {
	t := &topList{}
	for i := range t.scores {
		t.scores[i] = math.MinInt64
		t.refs[i] = -1
	}
	return t
}

// bestScoreIdx scans from the worst (last) slot backward and returns the
// index of the first slot whose score is strictly greater than score.
// ok is false when no slot beats score, i.e. score ranks first.
func (t *topList) bestScoreIdx(score int64) (idx int, ok bool) {
	for i := maxIdx; i >= 0; i-- {
		if t.scores[i] > score {
			return i, true
		}
	}
	return 0, false
}

// offer places (score, ref) at its rank, shifting worse entries toward the
// end and implicitly evicting the previous worst. When full is true (the
// stream has already produced TopKSize candidates) an entry ranking below
// the current worst is discarded instead; offer reports whether the entry
// entered the board.
func (t *topList) offer(score int64, ref int, full bool) bool {
	i, found := t.bestScoreIdx(score)
	if full && found && i == maxIdx {
		return false
	}
	idx := 0
	if found {
		idx = i + 1
	}
	popAndInsert(&t.scores, idx, score)
	popAndInsert(&t.refs, idx, ref)
	return true
}

// resync rebuilds the board against a buffer freshly sorted descending, as
// done after a compaction pass: the best TopKSize candidates are exactly the
// buffer's prefix.
func (t *topList) resync(buffer []Candidate) {
	n := min(TopKSize, len(buffer))
	for i := 0; i < n; i++ {
		t.scores[i] = buffer[i].Score
		t.refs[i] = i
	}
}

// popAndInsert shifts a[idx:maxIdx] one slot toward the end and writes v at
// idx, dropping the previous last element.
func popAndInsert[T any](a *[TopKSize]T, idx int, v T) {
	if idx < maxIdx {
		copy(a[idx+1:], a[idx:maxIdx])
		a[idx] = v
	} else {
		a[maxIdx] = v
	}
}
