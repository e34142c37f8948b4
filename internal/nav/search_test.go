package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfr-dev/phetch/internal/gopher"
)

func searchItems(displays ...string) []gopher.Item {
	items := make([]gopher.Item, len(displays))
	for i, d := range displays {
		items[i] = gopher.Item{Type: gopher.TypeMenu, Display: d, Host: "x", Port: 70}
	}
	return items
}

func TestFindMatches(t *testing.T) {
	items := searchItems("Home", "About", "Contact")

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, []int{0}, FindMatches(items, "home"))
		assert.Equal(t, []int{1, 2}, FindMatches(items, "t"))
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		assert.Empty(t, FindMatches(items, ""))
	})

	t.Run("non-link items are not matched", func(t *testing.T) {
		mixed := []gopher.Item{
			{Type: gopher.TypeInfo, Display: "Home sweet home"},
			{Type: gopher.TypeMenu, Display: "Home", Host: "x", Port: 70},
		}
		assert.Equal(t, []int{1}, FindMatches(mixed, "home"))
	})
}

func TestSearchSession(t *testing.T) {
	items := searchItems("Home", "About", "Contact")

	t.Run("cursor wraps to the first match when starting past it", func(t *testing.T) {
		s := NewSearch(items, 2)
		s.SetQuery("home")
		idx, ok := s.Cursor()
		require.True(t, ok)
		assert.Equal(t, 0, idx)
	})

	t.Run("cursor starts at or after the selection", func(t *testing.T) {
		s := NewSearch(items, 1)
		s.SetQuery("t")
		idx, ok := s.Cursor()
		require.True(t, ok)
		assert.Equal(t, 1, idx)
	})

	t.Run("advance and retreat wrap", func(t *testing.T) {
		s := NewSearch(items, 0)
		s.SetQuery("t")
		idx, _ := s.Cursor()
		assert.Equal(t, 1, idx)
		s.Advance()
		idx, _ = s.Cursor()
		assert.Equal(t, 2, idx)
		s.Advance()
		idx, _ = s.Cursor()
		assert.Equal(t, 1, idx)
		s.Retreat()
		idx, _ = s.Cursor()
		assert.Equal(t, 2, idx)
	})

	t.Run("no matches leaves selection unchanged", func(t *testing.T) {
		s := NewSearch(items, 1)
		s.SetQuery("zzz")
		_, ok := s.Cursor()
		assert.False(t, ok)
		s.Advance()
		assert.Equal(t, 1, s.Confirm())
	})

	t.Run("confirm lands on the cursor match", func(t *testing.T) {
		s := NewSearch(items, 0)
		s.SetQuery("contact")
		assert.Equal(t, 2, s.Confirm())
	})

	t.Run("narrowing the query recomputes matches", func(t *testing.T) {
		s := NewSearch(items, 0)
		s.SetQuery("o")
		assert.Equal(t, []int{0, 1, 2}, s.Matches())
		s.SetQuery("ou")
		assert.Equal(t, []int{1}, s.Matches())
	})
}
