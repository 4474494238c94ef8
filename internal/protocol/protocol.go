// Package protocol implements the content-length framed JSON message
// contract used to talk to the editor frontend over stdout.
//
// Every message is written as:
//
//	Content-length: {byte_length}\n\n{json}\n
//
// where byte_length counts the JSON payload only, excluding the trailing
// newline. The editor reads the header, then exactly that many bytes.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Writer serializes messages onto a stream with content-length framing.
// It is safe for use from a single goroutine per invocation; the mutex
// guards against interleaved frames if a caller ever shares one.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer framing messages onto out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Write marshals msg and writes one framed message.
func (w *Writer) Write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintf(w.out, "Content-length: %d\n\n%s\n", len(data), data); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

// Progress is a periodic snapshot of an in-flight search: the number of
// candidates seen so far and the current top-ranked lines with their
// matched character positions.
type Progress struct {
	Total   int      `json:"total"`
	Lines   []string `json:"lines"`
	Indices [][]int  `json:"indices"`
}

// Record is one ranked line of a completed collect-all search. Records are
// emitted individually, best first.
type Record struct {
	Text    string `json:"text"`
	Indices []int  `json:"indices"`
}

// Ranked is the final message of a bounded search: the first N ranked lines.
// TruncatedMap, when present, maps 1-based result index to the full line for
// entries that were shortened to fit the display width.
type Ranked struct {
	Total        int            `json:"total"`
	Lines        []string       `json:"lines"`
	Indices      [][]int        `json:"indices"`
	TruncatedMap map[int]string `json:"truncated_map,omitempty"`
}

// ExecResult reports the outcome of an executed (or cache-replayed) command:
// the total line count, optionally a preview of the output, and optionally
// the path the full output was spilled to.
type ExecResult struct {
	Total    int      `json:"total"`
	Lines    []string `json:"lines,omitempty"`
	Tempfile string   `json:"tempfile,omitempty"`
}

// ErrorMessage reports a fatal failure, typically a subprocess's stderr.
type ErrorMessage struct {
	Error string `json:"error"`
}
