package display

import (
	"github.com/mattn/go-runewidth"
)

// DefaultWinwidth is the display width lines are fit to when the caller
// does not specify one.
const DefaultWinwidth = 62

// leftTrimMarker replaces the dropped head of a line truncated from the left.
const leftTrimMarker = ".."

// TruncateLines shortens lines whose display width exceeds width while
// keeping the matched region visible, adjusting the match positions to the
// truncated text. The returned map records, keyed by 1-based result index,
// the full original line for every entry that was shortened; the editor uses
// it to restore the real line on selection.
//
// Positions are rune indices. Width checks are display-width aware
// (CJK/emoji count as two columns) but window offsets are computed in runes,
// which matches how the frontend highlights.
func TruncateLines(lines []string, indices [][]int, width int) ([]string, [][]int, map[int]string) {
	if width <= 0 {
		return lines, indices, nil
	}

	truncated := make(map[int]string)
	for i, line := range lines {
		if runewidth.StringWidth(line) <= width {
			continue
		}

		var idxs []int
		if i < len(indices) {
			idxs = indices[i]
		}

		// Matches (if any) fit in the head: keep the head.
		if len(idxs) == 0 || idxs[len(idxs)-1]+2 < width {
			lines[i] = truncateRight(line, width)
			truncated[i+1] = line
			continue
		}

		// Shift the window left so the last match stays visible, replacing
		// the dropped head with a marker.
		runes := []rune(line)
		last := idxs[len(idxs)-1]
		cut := len(runes) - width + len(leftTrimMarker)
		if cut > last {
			cut = last
		}
		display := leftTrimMarker + string(runes[cut:])
		display = truncateRight(display, width)

		adjusted := make([]int, 0, len(idxs))
		for _, p := range idxs {
			np := p - cut + len(leftTrimMarker)
			if np >= 0 && np < width {
				adjusted = append(adjusted, np)
			}
		}

		lines[i] = display
		if i < len(indices) {
			indices[i] = adjusted
		}
		truncated[i+1] = line
	}

	if len(truncated) == 0 {
		return lines, indices, nil
	}
	return lines, indices, truncated
}

// truncateRight returns the longest prefix of s whose display width does not
// exceed maxWidth.
func truncateRight(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}
