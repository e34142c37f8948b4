package nav

import (
	"strings"

	"github.com/pfr-dev/phetch/internal/gopher"
)

// FindMatches returns the item indices of links whose display text
// contains query, case-insensitively, in menu order. An empty query
// matches nothing.
func FindMatches(items []gopher.Item, query string) []int {
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)
	var matches []int
	for i, item := range items {
		if !item.Type.IsLink() {
			continue
		}
		if strings.Contains(strings.ToLower(item.Display), needle) {
			matches = append(matches, i)
		}
	}
	return matches
}

// SearchSession is the live state of one incremental search over the
// current page's links. It exists only while search mode is active and is
// thrown away on confirm or cancel.
type SearchSession struct {
	items   []gopher.Item
	origin  int // selection to restore on cancel
	query   string
	matches []int
	cursor  int
}

// NewSearch opens a search session over items. origin is the selection at
// the moment search mode was entered.
func NewSearch(items []gopher.Item, origin int) *SearchSession {
	return &SearchSession{items: items, origin: origin}
}

// Query returns the current query string.
func (s *SearchSession) Query() string {
	return s.query
}

// Matches returns the matching item indices in menu order.
func (s *SearchSession) Matches() []int {
	return s.matches
}

// SetQuery recomputes matches for an updated query. The cursor lands on
// the first match at or after the origin selection, wrapping to the top
// when everything matching sits above it.
func (s *SearchSession) SetQuery(query string) {
	s.query = query
	s.matches = FindMatches(s.items, query)
	s.cursor = 0
	for i, idx := range s.matches {
		if idx >= s.origin {
			s.cursor = i
			break
		}
	}
}

// Advance moves the cursor to the next match, wrapping.
func (s *SearchSession) Advance() {
	if len(s.matches) > 0 {
		s.cursor = (s.cursor + 1) % len(s.matches)
	}
}

// Retreat moves the cursor to the previous match, wrapping.
func (s *SearchSession) Retreat() {
	if len(s.matches) > 0 {
		s.cursor = (s.cursor - 1 + len(s.matches)) % len(s.matches)
	}
}

// Cursor returns the item index under the cursor, or false when there are
// no matches (selection is then left where it was).
func (s *SearchSession) Cursor() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	return s.matches[s.cursor], true
}

// Confirm returns the item index to select on exit. With no matches the
// origin selection is kept.
func (s *SearchSession) Confirm() int {
	if idx, ok := s.Cursor(); ok {
		return idx
	}
	return s.origin
}

// Origin returns the selection to restore when search is cancelled.
func (s *SearchSession) Origin() int {
	return s.origin
}
