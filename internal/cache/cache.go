// Package cache persists command output so identical repeated invocations
// can be replayed without re-executing.
//
// Layout: {root}/{args joined by '_'}/{sha256(working_dir)}/{unix_ts}_{total}
// where the file content is the raw captured stdout. An entry directory
// holds at most one file. Entries are never updated in place: a miss always
// performs a fresh write.
//
// Known limitations: there is no staleness check
// against the source directory, and no locking: concurrent identical
// invocations race on the entry and the last writer wins.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultRoot returns the cache root directory. WINNOW_CACHE overrides the
// default under the system temp dir.
func DefaultRoot() string {
	if dir := os.Getenv("WINNOW_CACHE"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "clap_cache")
}

// Store is a result cache rooted at a single directory.
type Store struct {
	root string
}

// New returns a Store rooted at root, or at DefaultRoot() when root is empty.
func New(root string) *Store {
	if root == "" {
		root = DefaultRoot()
	}
	return &Store{root: root}
}

// Entry is a replayable cached result.
type Entry struct {
	Path  string // file holding the raw stdout
	Total int    // line count recorded at write time
}

// EntryDir returns the directory an entry for (args, cmdDir) lives in.
func (s *Store) EntryDir(args []string, cmdDir string) string {
	return filepath.Join(s.root, strings.Join(args, "_"), hashDir(cmdDir))
}

// Lookup reports whether a well-formed entry exists for (args, cmdDir).
// A malformed entry name is treated as a miss rather than an error, so the
// caller falls through to re-execution.
func (s *Store) Lookup(args []string, cmdDir string) (Entry, bool) {
	dir := s.EntryDir(args, cmdDir)
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return Entry{}, false
	}

	name := entries[0].Name()
	parts := strings.Split(name, "_")
	if len(parts) != 2 {
		return Entry{}, false
	}
	total, err := strconv.Atoi(parts[1])
	if err != nil {
		return Entry{}, false
	}

	return Entry{Path: filepath.Join(dir, name), Total: total}, true
}

// Create writes a fresh entry holding stdout and returns its path.
func (s *Store) Create(args []string, cmdDir string, total int, stdout []byte) (string, error) {
	dir := s.EntryDir(args, cmdDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d_%d", time.Now().Unix(), total))
	if err := os.WriteFile(path, stdout, 0o644); err != nil {
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	return path, nil
}

func hashDir(dir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(dir)))
	return hex.EncodeToString(sum[:])
}
