package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfr-dev/phetch/internal/gopher"
	"github.com/pfr-dev/phetch/internal/render"
	"github.com/pfr-dev/phetch/internal/store"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	dir := t.TempDir()
	deps := Deps{
		Fetcher:   gopher.NewFetcher(gopher.NewDialer(), 0),
		Mode:      gopher.ModePlain,
		Bookmarks: store.NewFileStore(filepath.Join(dir, store.BookmarksFile)),
		History:   store.NewFileStore(filepath.Join(dir, store.HistoryFile)),
	}
	m := New(deps, Dashboard(), render.Options{Color: false})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func extAddr(host string) gopher.Address {
	return gopher.Address{Host: host, Port: 70, Type: gopher.TypeMenu, Selector: "/"}
}

func TestInternalNavigation(t *testing.T) {
	t.Run("b opens bookmarks, back returns", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "b")
		assert.Equal(t, "/bookmarks", m.nav.Current().Address.Selector)

		press(m, "left")
		assert.Equal(t, "/dashboard", m.nav.Current().Address.Selector)

		press(m, "right")
		assert.Equal(t, "/bookmarks", m.nav.Current().Address.Selector)
	})

	t.Run("u opens history newest first", func(t *testing.T) {
		m := newTestModel(t)
		for _, host := range []string{"a.example", "b.example"} {
			require.NoError(t, m.deps.History.Append(host, extAddr(host)))
		}
		press(m, "u")
		page := m.nav.Current()
		require.Equal(t, "/history", page.Address.Selector)

		var hosts []string
		for _, item := range page.Items {
			if item.Type.IsLink() {
				hosts = append(hosts, item.Host)
			}
		}
		assert.Equal(t, []string{"b.example", "a.example"}, hosts)
	})

	t.Run("s bookmarks the current page", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "s")
		items, err := m.deps.Bookmarks.Load()
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, internalHost, items[0].Host)
	})
}

func TestFetchLifecycle(t *testing.T) {
	t.Run("success commits the page and appends history", func(t *testing.T) {
		m := newTestModel(t)
		target := extAddr("example.com")
		_, cmd := m.open(target)
		require.NotNil(t, cmd)
		require.True(t, m.nav.Fetching())

		page := gopher.NewPage(target, []byte("1Home\t/home\texample.com\t70\r\n"))
		m.Update(pageFetchedMsg{id: m.fetchID, page: page})

		assert.False(t, m.nav.Fetching())
		assert.Equal(t, "example.com", m.nav.Current().Address.Host)

		records, err := m.deps.History.Load()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "example.com", records[0].Host)
	})

	t.Run("failure commits an inspectable error page", func(t *testing.T) {
		m := newTestModel(t)
		target := extAddr("down.example")
		m.open(target)

		m.Update(fetchFailedMsg{id: m.fetchID, addr: target, err: assert.AnError})

		assert.False(t, m.nav.Fetching())
		assert.Equal(t, "down.example", m.nav.Current().Address.Host)
		assert.Equal(t, gopher.KindText, m.nav.Current().Kind)
		assert.True(t, m.nav.CanBack(), "error pages stay in history")
	})

	t.Run("esc cancels and history is untouched", func(t *testing.T) {
		m := newTestModel(t)
		m.open(extAddr("slow.example"))
		oldID := m.fetchID

		press(m, "esc")
		assert.False(t, m.nav.Fetching())
		assert.Equal(t, "/dashboard", m.nav.Current().Address.Selector)
		assert.False(t, m.nav.CanBack(), "speculative push must roll back")

		// A late result from the cancelled fetch is dropped.
		m.Update(pageFetchedMsg{id: oldID, page: gopher.NewPage(extAddr("slow.example"), nil)})
		assert.Equal(t, "/dashboard", m.nav.Current().Address.Selector)
	})

	t.Run("stale result from a superseded fetch is dropped", func(t *testing.T) {
		m := newTestModel(t)
		m.open(extAddr("first.example"))
		firstID := m.fetchID

		press(m, "esc")
		m.open(extAddr("second.example"))

		m.Update(pageFetchedMsg{id: firstID, page: gopher.NewPage(extAddr("first.example"), nil)})
		assert.True(t, m.nav.Fetching(), "still waiting on the live fetch")

		m.Update(pageFetchedMsg{id: m.fetchID, page: gopher.NewPage(extAddr("second.example"), nil)})
		assert.Equal(t, "second.example", m.nav.Current().Address.Host)
	})

	t.Run("no new navigation while fetching", func(t *testing.T) {
		m := newTestModel(t)
		m.open(extAddr("slow.example"))
		id := m.fetchID

		press(m, "b")
		assert.True(t, m.nav.Fetching())
		assert.Equal(t, id, m.fetchID, "no second fetch started")
	})
}

func TestDisplayToggles(t *testing.T) {
	t.Run("wide mode survives navigation", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "w")
		require.True(t, m.display.Wide)

		press(m, "b")
		assert.True(t, m.display.Wide, "wide mode is session-wide")
		press(m, "left")
		assert.True(t, m.display.Wide)
	})

	t.Run("emoji toggle", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "e")
		assert.True(t, m.display.Emoji)
		press(m, "e")
		assert.False(t, m.display.Emoji)
	})
}

func TestNumericJump(t *testing.T) {
	m := newTestModel(t)
	// Dashboard links: 1 Bookmarks, 2 History, 3 Floodgap, 4 Veronica, 5 SDF.
	press(m, "3")
	item, ok := m.nav.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, "Floodgap", item.Display)

	press(m, "1")
	item, _ = m.nav.SelectedItem()
	assert.Equal(t, "Bookmarks", item.Display)
}

func TestSearchOverlay(t *testing.T) {
	t.Run("confirm moves selection", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "/")
		require.Equal(t, modeSearch, m.mode)

		press(m, "s", "d", "f")
		press(m, "enter")

		assert.Equal(t, modeIdle, m.mode)
		item, ok := m.nav.SelectedItem()
		require.True(t, ok)
		assert.Contains(t, item.Display, "SDF")
	})

	t.Run("cancel restores the original selection", func(t *testing.T) {
		m := newTestModel(t)
		origin := m.nav.Selected()

		press(m, "/", "s", "d", "f")
		item, _ := m.nav.SelectedItem()
		require.Contains(t, item.Display, "SDF", "selection follows the cursor while typing")

		press(m, "esc")
		assert.Equal(t, modeIdle, m.mode)
		assert.Equal(t, origin, m.nav.Selected())
	})

	t.Run("search needs a menu page", func(t *testing.T) {
		m := newTestModel(t)
		text := gopher.NewPage(gopher.Address{Host: "x", Port: 70, Type: gopher.TypeText}, []byte("body\n"))
		m.nav.Begin(extAddr("x"))
		m.nav.Commit(text)

		press(m, "/")
		assert.Equal(t, modeIdle, m.mode)
	})
}

func TestOpenSelected(t *testing.T) {
	t.Run("search items prompt for a query", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "4") // Veronica-2
		press(m, "enter")
		require.Equal(t, modeQuery, m.mode)

		press(m, "g", "o")
		press(m, "enter")
		require.True(t, m.nav.Fetching())
		target, ok := m.nav.Target()
		require.True(t, ok)
		assert.Equal(t, "/v2/vs\tgo", target.Selector)
	})

	t.Run("search results reload from history intact", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "4", "enter") // Veronica-2
		press(m, "g", "o", "enter")
		require.True(t, m.nav.Fetching())
		target, ok := m.nav.Target()
		require.True(t, ok)

		m.Update(pageFetchedMsg{id: m.fetchID, page: gopher.NewPage(target, nil)})

		// The query rides inside the selector after a tab; the record
		// format is tab-delimited, so the fields must still line up.
		records, err := m.deps.History.Load()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "gopher.floodgap.com", records[0].Host)
		assert.Equal(t, "/v2/vs", records[0].Selector)
		assert.Equal(t, uint16(70), records[0].Port)
	})

	t.Run("server-hosted html fetches like a text page", func(t *testing.T) {
		m := newTestModel(t)
		menu := gopher.MenuPage(extAddr("example.com"), []gopher.Item{
			{Type: gopher.TypeHTML, Display: "Styled notes", Selector: "/notes.html", Host: "example.com", Port: 70},
		})
		m.nav.Begin(extAddr("example.com"))
		m.nav.Commit(menu)

		press(m, "enter")
		require.True(t, m.nav.Fetching())
		target, ok := m.nav.Target()
		require.True(t, ok)
		assert.Equal(t, gopher.TypeHTML, target.Type)
		assert.Equal(t, "/notes.html", target.Selector)

		m.Update(pageFetchedMsg{id: m.fetchID, page: gopher.NewPage(target, []byte("<html>hi</html>\n"))})
		assert.Equal(t, gopher.KindText, m.nav.Current().Kind)
	})

	t.Run("web links never start a fetch", func(t *testing.T) {
		m := newTestModel(t)
		menu := gopher.MenuPage(extAddr("example.com"), []gopher.Item{
			{Type: gopher.TypeHTML, Display: "Homepage", Selector: "URL:http://example.com/", Host: "example.com", Port: 70},
		})
		m.nav.Begin(extAddr("example.com"))
		m.nav.Commit(menu)

		press(m, "enter")
		assert.False(t, m.nav.Fetching())
		// Either copied or the clipboard is unavailable; both are statuses.
		assert.NotEmpty(t, m.status)
	})

	t.Run("query can be abandoned", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "4", "enter")
		require.Equal(t, modeQuery, m.mode)
		press(m, "esc")
		assert.Equal(t, modeIdle, m.mode)
		assert.False(t, m.nav.Fetching())
	})
}

func TestURLPrompt(t *testing.T) {
	t.Run("malformed input is a status message, not fatal", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "g")
		require.Equal(t, modePrompt, m.mode)
		press(m, "enter") // empty input parses to nothing
		assert.Equal(t, modeIdle, m.mode)
		assert.NotEmpty(t, m.status)
		assert.False(t, m.nav.Fetching())
	})

	t.Run("valid URL starts a fetch", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "g")
		for _, r := range "example.com" {
			press(m, string(r))
		}
		press(m, "enter")
		require.True(t, m.nav.Fetching())
		target, _ := m.nav.Target()
		assert.Equal(t, "example.com", target.Host)
	})
}

func TestView(t *testing.T) {
	t.Run("dashboard renders with footer", func(t *testing.T) {
		m := newTestModel(t)
		view := m.View()
		assert.Contains(t, view, "phetch")
		assert.Contains(t, view, "gopher://phetch/1/dashboard")
	})

	t.Run("help overlay", func(t *testing.T) {
		m := newTestModel(t)
		press(m, "?")
		assert.Contains(t, m.View(), "phetch keys")
		press(m, "x")
		assert.NotContains(t, m.View(), "phetch keys")
	})

	t.Run("fetching footer offers cancel", func(t *testing.T) {
		m := newTestModel(t)
		m.open(extAddr("slow.example"))
		assert.Contains(t, m.View(), "esc cancels")
	})

	t.Run("view fills the viewport", func(t *testing.T) {
		m := newTestModel(t)
		lines := strings.Split(m.View(), "\n")
		assert.Equal(t, 24, len(lines))
	})
}
