// Package tui is the interactive browsing loop. It owns all navigation
// state mutation; fetches run as cancellable bubbletea commands that hand
// back immutable pages.
package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pfr-dev/phetch/internal/gopher"
	"github.com/pfr-dev/phetch/internal/nav"
	"github.com/pfr-dev/phetch/internal/render"
	"github.com/pfr-dev/phetch/internal/store"
)

// mode is the input mode layered over the navigation state.
type mode int

const (
	modeIdle mode = iota
	modeSearch
	modePrompt // typing a URL
	modeQuery  // typing a query for a type-7 search item
)

// pageFetchedMsg delivers a completed fetch. The id lets the model drop
// results from fetches that were already cancelled or superseded.
type pageFetchedMsg struct {
	id   uuid.UUID
	page *gopher.Page
}

// fetchFailedMsg delivers a failed fetch.
type fetchFailedMsg struct {
	id   uuid.UUID
	addr gopher.Address
	err  error
}

// clearStatusMsg expires the transient status message.
type clearStatusMsg struct {
	at time.Time
}

const statusTTL = 3 * time.Second

// Deps are the collaborators the model consumes but does not own.
type Deps struct {
	Fetcher   *gopher.Fetcher
	Mode      gopher.TransportMode
	Bookmarks store.Store
	History   store.Store
}

// Model is the bubbletea model for the whole session.
type Model struct {
	deps Deps

	nav     *nav.State
	display render.Options

	mode     mode
	search   *nav.SearchSession
	input    textinput.Model
	queryFor gopher.Address // pending type-7 target while in modeQuery

	fetchID     uuid.UUID
	fetchCancel context.CancelFunc

	numBuf   string // accumulated digits for numeric link jump
	status   string
	statusAt time.Time
	showHelp bool

	width  int
	height int
}

// New builds the session model showing start as the first page.
func New(deps Deps, start *gopher.Page, display render.Options) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 512
	return &Model{
		deps:    deps,
		nav:     nav.New(start),
		display: display,
		input:   input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.display.Cols = msg.Width
		m.display.Rows = msg.Height
		return m, nil

	case pageFetchedMsg:
		if msg.id != m.fetchID || !m.nav.Fetching() {
			return m, nil // stale result from a cancelled fetch
		}
		m.fetchCancel = nil
		m.nav.Commit(msg.page)
		if m.deps.History != nil {
			if err := m.deps.History.Append(pageLabel(msg.page), msg.page.Address); err != nil {
				return m, m.setStatus("history not saved: " + err.Error())
			}
		}
		return m, nil

	case fetchFailedMsg:
		if msg.id != m.fetchID || !m.nav.Fetching() {
			return m, nil
		}
		m.fetchCancel = nil
		m.nav.Commit(gopher.ErrorPage(msg.addr, msg.err))
		return m, nil

	case clearStatusMsg:
		if msg.at.Equal(m.statusAt) {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.cancelFetch()
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	case modeQuery:
		return m.handleQueryKey(msg)
	}
	return m.handleIdleKey(msg)
}

func (m *Model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.nav.Fetching() {
		switch msg.String() {
		case "esc":
			m.cancelFetch()
			m.nav.Cancel()
			return m, m.setStatus("cancelled")
		case "q":
			m.cancelFetch()
			return m, tea.Quit
		}
		return m, nil
	}

	key := msg.String()

	// Digits accumulate into a 1-based link number; selection follows
	// what has been typed so far, enter opens it.
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		if n, _ := strconv.Atoi(m.numBuf + key); m.nav.JumpLink(n) {
			m.numBuf += key
		} else if n, _ := strconv.Atoi(key); m.nav.JumpLink(n) {
			m.numBuf = key
		} else {
			m.numBuf = ""
		}
		m.ensureVisible()
		return m, nil
	}
	m.numBuf = ""

	switch key {
	case "q":
		return m, tea.Quit

	case "up", "ctrl+p":
		if m.nav.Current().Kind == gopher.KindMenu {
			m.nav.PrevLink()
			m.ensureVisible()
		} else {
			m.scrollBy(-1)
		}
	case "down", "ctrl+n":
		if m.nav.Current().Kind == gopher.KindMenu {
			m.nav.NextLink()
			m.ensureVisible()
		} else {
			m.scrollBy(1)
		}

	case "pgdown", " ":
		m.scrollBy(m.viewRows())
	case "pgup":
		m.scrollBy(-m.viewRows())
	case "home":
		m.scrollBy(-1 << 30)
	case "end":
		m.scrollBy(1 << 30)

	case "enter":
		return m.openSelected()

	case "left", "backspace":
		if target, ok := m.nav.Back(); ok {
			return m, m.startFetch(target)
		}
	case "right":
		if target, ok := m.nav.Forward(); ok {
			return m, m.startFetch(target)
		}

	case "/":
		if page := m.nav.Current(); page.Kind == gopher.KindMenu {
			m.mode = modeSearch
			m.search = nav.NewSearch(page.Items, m.nav.Selected())
			m.input.SetValue("")
			m.input.Focus()
		}

	case "g":
		m.mode = modePrompt
		m.input.SetValue("")
		m.input.Focus()

	case "y":
		url := m.nav.Current().Address.String()
		if err := clipboard.WriteAll(url); err != nil {
			return m, m.setStatus("clipboard unavailable: " + err.Error())
		}
		return m, m.setStatus("copied " + url)

	case "w":
		m.display.Wide = !m.display.Wide
		return m, m.setStatus(onOff("wide mode", m.display.Wide))
	case "e":
		m.display.Emoji = !m.display.Emoji
		return m, m.setStatus(onOff("emoji mode", m.display.Emoji))

	case "s":
		return m, m.saveBookmark()
	case "b":
		return m.openInternal(bookmarksAddr)
	case "u":
		return m.openInternal(historyAddr)

	case "?":
		m.showHelp = true
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nav.Select(m.search.Origin())
		m.exitInput()
		return m, nil
	case "enter":
		m.nav.Select(m.search.Confirm())
		m.ensureVisible()
		m.exitInput()
		return m, nil
	case "down", "ctrl+n":
		m.search.Advance()
		m.followCursor()
		return m, nil
	case "up", "ctrl+p":
		m.search.Retreat()
		m.followCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.search.SetQuery(m.input.Value())
	m.followCursor()
	return m, cmd
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.exitInput()
		return m, nil
	case "enter":
		raw := m.input.Value()
		m.exitInput()
		addr, err := gopher.ParseAddress(raw)
		if err != nil {
			return m, m.setStatus(err.Error())
		}
		return m.open(addr)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.exitInput()
		return m, nil
	case "enter":
		query := m.input.Value()
		target := m.queryFor
		m.exitInput()
		if query == "" {
			return m, nil
		}
		// Search requests carry the query after a tab in the selector.
		target.Selector = target.Selector + "\t" + query
		target.Type = gopher.TypeMenu
		return m.open(target)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// openSelected acts on the selected link: navigate, prompt for a search
// query, or hand web links to the clipboard.
func (m *Model) openSelected() (tea.Model, tea.Cmd) {
	item, ok := m.nav.SelectedItem()
	if !ok {
		return m, nil
	}
	switch {
	case item.Type == gopher.TypeSearch:
		m.mode = modeQuery
		m.queryFor = gopher.AddressOf(item)
		m.input.SetValue("")
		m.input.Focus()
		return m, nil
	case item.Type == gopher.TypeHTML:
		if url, ok := webURL(item.Selector); ok {
			if err := clipboard.WriteAll(url); err != nil {
				return m, m.setStatus("clipboard unavailable: " + err.Error())
			}
			return m, m.setStatus("web link copied: " + url)
		}
		// Server-hosted HTML fetches over gopher and reads as text.
		return m.open(gopher.AddressOf(item))
	default:
		return m.open(gopher.AddressOf(item))
	}
}

// open starts a navigation to addr, serving builtin pages synchronously.
func (m *Model) open(addr gopher.Address) (tea.Model, tea.Cmd) {
	if m.nav.Fetching() {
		return m, nil
	}
	if page, ok := m.internalPage(addr); ok {
		m.nav.Begin(addr)
		m.nav.Commit(page)
		return m, nil
	}
	m.nav.Begin(addr)
	return m, m.startFetch(addr)
}

// openInternal navigates to one of the builtin pages.
func (m *Model) openInternal(addr gopher.Address) (tea.Model, tea.Cmd) {
	if m.nav.Fetching() {
		return m, nil
	}
	page, ok := m.internalPage(addr)
	if !ok {
		return m, nil
	}
	m.nav.Begin(addr)
	m.nav.Commit(page)
	return m, nil
}

// startFetch launches the fetch worker for an already-begun navigation.
// At most one fetch is outstanding; the uuid ties results to it.
func (m *Model) startFetch(addr gopher.Address) tea.Cmd {
	if page, ok := m.internalPage(addr); ok {
		// Back/forward replays can land on builtin pages.
		m.nav.Commit(page)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.fetchCancel = cancel
	m.fetchID = uuid.New()

	id := m.fetchID
	fetcher := m.deps.Fetcher
	return func() tea.Msg {
		body, err := fetcher.Fetch(ctx, addr)
		if err != nil {
			return fetchFailedMsg{id: id, addr: addr, err: err}
		}
		return pageFetchedMsg{id: id, page: gopher.NewPage(addr, body)}
	}
}

func (m *Model) cancelFetch() {
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
	m.fetchID = uuid.UUID{}
}

func (m *Model) saveBookmark() tea.Cmd {
	if m.deps.Bookmarks == nil {
		return m.setStatus("bookmarks unavailable")
	}
	page := m.nav.Current()
	if err := m.deps.Bookmarks.Append(pageLabel(page), page.Address); err != nil {
		return m.setStatus("bookmark not saved: " + err.Error())
	}
	return m.setStatus("bookmarked " + page.Address.String())
}

// setStatus shows a transient status message and schedules its expiry.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.status = msg
	m.statusAt = time.Now()
	at := m.statusAt
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{at: at}
	})
}

func (m *Model) exitInput() {
	m.mode = modeIdle
	m.search = nil
	m.input.Blur()
	m.input.SetValue("")
}

// followCursor moves the live selection to the search cursor so the
// match is visible while typing.
func (m *Model) followCursor() {
	if idx, ok := m.search.Cursor(); ok {
		m.nav.Select(idx)
		m.ensureVisible()
	}
}

func (m *Model) viewRows() int {
	rows := m.height - 1 // last row is the status/input line
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) pageLen() int {
	return len(render.Lines(m.nav.Current(), m.display, m.nav.Selected(), nil))
}

func (m *Model) scrollBy(delta int) {
	m.nav.SetScroll(m.nav.Scroll()+delta, m.pageLen(), m.viewRows())
}

// ensureVisible scrolls just enough to keep the selected item on screen.
// Menu pages render one line per item, so the selected index is the line.
func (m *Model) ensureVisible() {
	sel := m.nav.Selected()
	if sel < 0 {
		return
	}
	rows := m.viewRows()
	if sel < m.nav.Scroll() {
		m.nav.SetScroll(sel, m.pageLen(), rows)
	} else if sel >= m.nav.Scroll()+rows {
		m.nav.SetScroll(sel-rows+1, m.pageLen(), rows)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp {
		return helpView()
	}

	var search *render.Search
	if m.mode == modeSearch && m.search != nil {
		s := &render.Search{Query: m.search.Query(), Matches: m.search.Matches(), Cursor: -1}
		if idx, ok := m.search.Cursor(); ok {
			s.Cursor = idx
		}
		search = s
	}

	lines := render.Lines(m.nav.Current(), m.display, m.nav.Selected(), search)
	visible := render.Window(lines, m.nav.Scroll(), m.viewRows())

	var b []byte
	for _, line := range visible {
		b = append(b, line...)
		b = append(b, '\n')
	}
	for i := len(visible); i < m.viewRows(); i++ {
		b = append(b, '\n')
	}
	b = append(b, m.footer()...)
	return string(b)
}

func (m *Model) footer() string {
	switch m.mode {
	case modeSearch:
		return "/" + m.input.View()
	case modePrompt:
		return "url> " + m.input.View()
	case modeQuery:
		return "query> " + m.input.View()
	}
	if m.nav.Fetching() {
		if target, ok := m.nav.Target(); ok {
			return render.StatusLine(target, m.deps.Mode, "fetching... (esc cancels)", m.display)
		}
	}
	return render.StatusLine(m.nav.Current().Address, m.deps.Mode, m.status, m.display)
}

// pageLabel is the history/bookmark label for a page: its selector, or
// the host for server roots.
func pageLabel(page *gopher.Page) string {
	if page.Address.Selector == "" || page.Address.Selector == "/" {
		return page.Address.Host
	}
	return page.Address.Host + page.Address.Selector
}

// webURL extracts the http target of an h item carrying a URL: pseudo
// selector. A plain h selector is a server-hosted file, not a web link.
func webURL(sel string) (string, bool) {
	if len(sel) > 4 && (sel[:4] == "URL:" || sel[:4] == "url:") {
		return sel[4:], true
	}
	return "", false
}

func onOff(what string, on bool) string {
	if on {
		return what + " on"
	}
	return what + " off"
}
