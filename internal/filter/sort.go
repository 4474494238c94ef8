package filter

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// parallelSortMin is the buffer size below which a plain sequential sort
// wins over goroutine fan-out.
const parallelSortMin = 4096

// sortDesc stable-sorts candidates by score descending. Equal scores keep
// their arrival order, which pins down tie ordering for consumers.
func sortDesc(items []Candidate) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// sortDescParallel sorts like sortDesc but fans large buffers out across
// goroutines: contiguous chunks are sorted concurrently, then merged.
// Safe only once the streaming phase has stopped mutating the buffer; the
// slice is treated as exclusively owned for the duration of the sort.
// Merging prefers the left (earlier-arrival) chunk on ties, so the result is
// identical to the sequential stable sort.
func sortDescParallel(items []Candidate) {
	workers := runtime.GOMAXPROCS(0)
	if len(items) < parallelSortMin || workers < 2 {
		sortDesc(items)
		return
	}

	chunks := splitChunks(items, workers)

	var g errgroup.Group
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			sortDesc(chunk)
			return nil
		})
	}
	// Sorting closures never fail; Wait only synchronizes.
	_ = g.Wait()

	for len(chunks) > 1 {
		chunks = mergePairs(chunks)
	}
	copy(items, chunks[0])
}

func splitChunks(items []Candidate, n int) [][]Candidate {
	chunkSize := (len(items) + n - 1) / n
	chunks := make([][]Candidate, 0, n)
	for start := 0; start < len(items); start += chunkSize {
		end := min(start+chunkSize, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func mergePairs(chunks [][]Candidate) [][]Candidate {
	merged := make([][]Candidate, 0, (len(chunks)+1)/2)
	for i := 0; i < len(chunks); i += 2 {
		if i+1 == len(chunks) {
			merged = append(merged, chunks[i])
			break
		}
		merged = append(merged, mergeDesc(chunks[i], chunks[i+1]))
	}
	return merged
}

// mergeDesc merges two descending-sorted runs, taking from left on ties.
func mergeDesc(left, right []Candidate) []Candidate {
	out := make([]Candidate, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i].Score >= right[j].Score {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
