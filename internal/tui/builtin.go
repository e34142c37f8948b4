package tui

import (
	"strings"

	"github.com/pfr-dev/phetch/internal/gopher"
	"github.com/pfr-dev/phetch/internal/store"
)

// internalHost serves the builtin pages; it is never dialed.
const internalHost = "phetch"

var (
	dashboardAddr = gopher.Address{Host: internalHost, Port: gopher.DefaultPort, Type: gopher.TypeMenu, Selector: "/dashboard"}
	bookmarksAddr = gopher.Address{Host: internalHost, Port: gopher.DefaultPort, Type: gopher.TypeMenu, Selector: "/bookmarks"}
	historyAddr   = gopher.Address{Host: internalHost, Port: gopher.DefaultPort, Type: gopher.TypeMenu, Selector: "/history"}
)

// internalPage serves addr from the builtins when it belongs to them.
func (m *Model) internalPage(addr gopher.Address) (*gopher.Page, bool) {
	if addr.Host != internalHost {
		return nil, false
	}
	switch addr.Selector {
	case "/bookmarks":
		return m.storePage(addr, m.deps.Bookmarks, "Bookmarks", false), true
	case "/history":
		return m.storePage(addr, m.deps.History, "History", true), true
	default:
		return Dashboard(), true
	}
}

// storePage renders a record store as a browsable menu page.
func (m *Model) storePage(addr gopher.Address, s store.Store, title string, newestFirst bool) *gopher.Page {
	if s == nil {
		return gopher.MenuPage(addr, []gopher.Item{
			{Type: gopher.TypeInfo, Display: title + " unavailable"},
		})
	}
	records, err := s.Load()
	if err != nil {
		return gopher.ErrorPage(addr, err)
	}
	if newestFirst {
		records = store.MostRecentFirst(records)
	}
	items := []gopher.Item{
		{Type: gopher.TypeInfo, Display: title},
		{Type: gopher.TypeInfo},
	}
	if len(records) == 0 {
		items = append(items, gopher.Item{Type: gopher.TypeInfo, Display: "nothing here yet"})
	}
	return gopher.MenuPage(addr, append(items, records...))
}

// Dashboard is the page shown when phetch starts without a URL.
func Dashboard() *gopher.Page {
	return gopher.MenuPage(dashboardAddr, []gopher.Item{
		{Type: gopher.TypeInfo, Display: "phetch: a terminal gopher client"},
		{Type: gopher.TypeInfo},
		{Type: gopher.TypeInfo, Display: "press ? for keys, g to open a URL, q to quit"},
		{Type: gopher.TypeInfo},
		{Type: gopher.TypeMenu, Display: "Bookmarks", Selector: "/bookmarks", Host: internalHost, Port: gopher.DefaultPort},
		{Type: gopher.TypeMenu, Display: "History", Selector: "/history", Host: internalHost, Port: gopher.DefaultPort},
		{Type: gopher.TypeInfo},
		{Type: gopher.TypeMenu, Display: "Floodgap", Selector: "", Host: "gopher.floodgap.com", Port: 70},
		{Type: gopher.TypeSearch, Display: "Search gopherspace (Veronica-2)", Selector: "/v2/vs", Host: "gopher.floodgap.com", Port: 70},
		{Type: gopher.TypeMenu, Display: "SDF public gopherspace", Selector: "", Host: "sdf.org", Port: 70},
	})
}

var helpText = []string{
	"phetch keys",
	"",
	"  up/down, ctrl+p/n   move link selection",
	"  1-9                 jump to numbered link",
	"  enter               open selected link",
	"  left, backspace     back",
	"  right               forward",
	"  pgup/pgdn, space    scroll",
	"  /                   search links on this page",
	"  g                   open a URL",
	"  y                   copy current URL to clipboard",
	"  s                   bookmark current page",
	"  b                   show bookmarks",
	"  u                   show history",
	"  w                   toggle wide mode",
	"  e                   toggle emoji glyphs",
	"  esc                 cancel fetch / leave search",
	"  q, ctrl+c           quit",
	"",
	"press any key to continue",
}

func helpView() string {
	return strings.Join(helpText, "\n")
}
