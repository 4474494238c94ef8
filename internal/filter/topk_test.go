package filter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSortedDescending(t *testing.T, top *topList) {
	t.Helper()
	for i := 1; i < TopKSize; i++ {
		require.GreaterOrEqual(t, top.scores[i-1], top.scores[i],
			"scores must be descending at slot %d", i)
	}
}

func TestTopList_SortedAfterEveryOffer(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	top := newTopList()
	for i := 0; i < 500; i++ {
		top.offer(int64(rng.Intn(1000)), i, i >= TopKSize)
		assertSortedDescending(t, top)
	}
}

func TestBestScoreIdx_EmptyList(t *testing.T) {
	t.Parallel()

	top := newTopList()
	_, ok := top.bestScoreIdx(0)
	assert.False(t, ok, "nothing beats a score in an empty list")
}

func TestBestScoreIdx_NoneFoundIffAtLeastBest(t *testing.T) {
	t.Parallel()

	top := newTopList()
	top.offer(10, 0, false)
	top.offer(5, 1, false)

	// Strictly above the best: none found.
	_, ok := top.bestScoreIdx(11)
	assert.False(t, ok)

	// Equal to the best: none found (equal is not "better than").
	_, ok = top.bestScoreIdx(10)
	assert.False(t, ok)

	// Below the best: the best slot is the first strictly-greater one.
	idx, ok := top.bestScoreIdx(7)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// Below everything real: the worst filled slot wins the scan.
	idx, ok = top.bestScoreIdx(1)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestOffer_FillThenEvict(t *testing.T) {
	t.Parallel()

	top := newTopList()
	for i := 0; i < TopKSize; i++ {
		entered := top.offer(int64(i), i, false)
		assert.True(t, entered)
	}
	assert.Equal(t, int64(TopKSize-1), top.scores[0])
	assert.Equal(t, int64(0), top.scores[maxIdx])

	// Steady state: a new best evicts the worst.
	entered := top.offer(1000, 99, true)
	require.True(t, entered)
	assert.Equal(t, int64(1000), top.scores[0])
	assert.Equal(t, 99, top.refs[0])
	assert.Equal(t, int64(1), top.scores[maxIdx], "previous worst evicted")
	assertSortedDescending(t, top)
}

func TestOffer_DiscardsBelowWorstWhenFull(t *testing.T) {
	t.Parallel()

	top := newTopList()
	for i := 0; i < TopKSize; i++ {
		top.offer(int64(i+100), i, false)
	}

	entered := top.offer(1, 99, true)
	assert.False(t, entered, "worse than the current worst must be discarded")
	assert.Equal(t, int64(100), top.scores[maxIdx])
	assertSortedDescending(t, top)
}

func TestOffer_BelowWorstStillEntersDuringFill(t *testing.T) {
	t.Parallel()

	top := newTopList()
	top.offer(100, 0, false)
	entered := top.offer(1, 1, false)
	assert.True(t, entered, "fill mode grows unconditionally")
	assert.Equal(t, int64(1), top.scores[1])
}

func TestResync(t *testing.T) {
	t.Parallel()

	buffer := make([]Candidate, 0, 2*TopKSize)
	for i := 0; i < 2*TopKSize; i++ {
		buffer = append(buffer, Candidate{Score: int64(1000 - i)})
	}

	top := newTopList()
	top.resync(buffer)
	for i := 0; i < TopKSize; i++ {
		assert.Equal(t, buffer[i].Score, top.scores[i])
		assert.Equal(t, i, top.refs[i])
	}
	assertSortedDescending(t, top)
}

func TestPopAndInsert_ShiftsTowardEnd(t *testing.T) {
	t.Parallel()

	var a [TopKSize]int64
	for i := range a {
		a[i] = math.MinInt64
	}
	popAndInsert(&a, 0, 7)
	popAndInsert(&a, 1, 5)
	popAndInsert(&a, 1, 6)

	assert.Equal(t, int64(7), a[0])
	assert.Equal(t, int64(6), a[1])
	assert.Equal(t, int64(5), a[2])
}
