package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
	"github.com/sahilm/fuzzy"
)

// Candidate is one scored line: the text, its relevance score (higher is
// better) and the rune indices of the matched characters. Immutable once
// produced; owned by whichever buffer holds it.
type Candidate struct {
	Text    string
	Score   int64
	Indices []int
}

// Match is a scorer verdict for a single line.
type Match struct {
	Score     int64
	Positions []int // rune indices, ascending
}

// Scorer judges one candidate line against a fixed query. Implementations
// are not required to be safe for concurrent use; the collection loop is
// single-threaded.
type Scorer interface {
	Score(line string) (Match, bool)
}

// Scorer algorithm names accepted by NewScorer.
const (
	AlgoSubseq = "subseq"
	AlgoV2     = "v2"
)

// NewScorer returns the scorer implementing algo for query.
func NewScorer(algoName, query string) (Scorer, error) {
	switch algoName {
	case AlgoSubseq, "":
		return newSubseqScorer(query), nil
	case AlgoV2:
		return newV2Scorer(query), nil
	default:
		return nil, fmt.Errorf("unknown scoring algorithm %q", algoName)
	}
}

// subseqScorer ranks by subsequence match quality: consecutive runs,
// word-boundary and camel-case hits score up, unmatched leading characters
// score down.
type subseqScorer struct {
	query string
}

func newSubseqScorer(query string) *subseqScorer {
	return &subseqScorer{query: query}
}

func (s *subseqScorer) Score(line string) (Match, bool) {
	if s.query == "" {
		return Match{}, false
	}
	matches := fuzzy.Find(s.query, []string{line})
	if len(matches) == 0 {
		return Match{}, false
	}
	m := matches[0]
	return Match{
		Score:     int64(m.Score),
		Positions: byteToRuneIndices(line, m.MatchedIndexes),
	}, true
}

// Slab dimensions match fzf's own defaults; the slab is reused across calls
// so per-line matching does not allocate scoring matrices.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

// v2Scorer wraps fzf's FuzzyMatchV2. Both sides are pre-lowercased and
// matched case-sensitively: the algorithm's own case-insensitive fast path
// misses matches when the input mixes cases. Lowercasing preserves rune
// count, so positions map back to the original line.
type v2Scorer struct {
	pattern []rune
	slab    *util.Slab
}

func newV2Scorer(query string) *v2Scorer {
	return &v2Scorer{
		pattern: []rune(strings.ToLower(query)),
		slab:    util.MakeSlab(slab16Size, slab32Size),
	}
}

func (s *v2Scorer) Score(line string) (Match, bool) {
	if len(s.pattern) == 0 {
		return Match{}, false
	}
	chars := util.ToChars([]byte(strings.ToLower(line)))
	result, positions := algo.FuzzyMatchV2(true, true, true, &chars, s.pattern, true, s.slab)
	if result.Score <= 0 {
		return Match{}, false
	}
	var pos []int
	if positions != nil {
		pos = *positions
		sort.Ints(pos)
	}
	return Match{Score: int64(result.Score), Positions: pos}, true
}

// byteToRuneIndices converts byte offsets into s to rune indices.
func byteToRuneIndices(s string, byteIdxs []int) []int {
	if len(byteIdxs) == 0 {
		return nil
	}
	byteToRune := make(map[int]int, len(s))
	runeIdx := 0
	for byteIdx := range s {
		byteToRune[byteIdx] = runeIdx
		runeIdx++
	}
	out := make([]int, 0, len(byteIdxs))
	for _, b := range byteIdxs {
		if r, ok := byteToRune[b]; ok {
			out = append(out, r)
		}
	}
	sort.Ints(out)
	return out
}
