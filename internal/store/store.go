// Package store persists bookmarks and visit history as line-oriented
// text files. Each record is itself a valid gopher menu line, so the
// files double as directly browsable pages.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfr-dev/phetch/internal/gopher"
)

// Default record file names inside the config directory.
const (
	BookmarksFile = "bookmarks.gph"
	HistoryFile   = "history.gph"
)

// Store is the record log consumed by navigation: append one formatted
// record, or read back everything written so far.
type Store interface {
	Append(label string, addr gopher.Address) error
	Load() ([]gopher.Item, error)
}

// FileStore is a Store backed by one append-only text file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. The file is created on
// first append; a missing file loads as empty.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Append writes one record. Append order is the persisted order.
func (s *FileStore) Append(label string, addr gopher.Address) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatRecord(label, addr)); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

// Load reads back all records in append order. The record format is a
// menu line, so the lenient menu parser does the reading.
func (s *FileStore) Load() ([]gopher.Item, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return gopher.ParseMenu(raw, gopher.Address{Port: gopher.DefaultPort}), nil
}

// FormatRecord renders one record line: type, label, selector, host, port.
// The fields are tab-delimited, so embedded separators would shift every
// field on reload: tabs and newlines in the label collapse to spaces, and
// a search selector is cut at the tab carrying its query.
func FormatRecord(label string, addr gopher.Address) string {
	sel := addr.Selector
	if i := strings.IndexAny(sel, "\t\r\n"); i >= 0 {
		sel = sel[:i]
	}
	return fmt.Sprintf("%c%s\t%s\t%s\t%d\r\n", byte(addr.Type), cleanLabel(label), sel, addr.Host, addr.Port)
}

func cleanLabel(label string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, label)
}

// MostRecentFirst returns a reversed copy of items. History files are
// written oldest-first but displayed newest-first; the inversion happens
// at read time, never in the file.
func MostRecentFirst(items []gopher.Item) []gopher.Item {
	out := make([]gopher.Item, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
