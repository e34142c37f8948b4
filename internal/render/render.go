// Package render turns a fetched page plus display state into terminal
// lines. Rendering is pure: no I/O, no mutation of the page or the
// navigation state.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pfr-dev/phetch/internal/gopher"
)

// Options is the session-wide display state the renderer consumes.
type Options struct {
	Cols  int
	Rows  int
	Wide  bool // disable truncation/wrapping to Cols
	Emoji bool // emoji item-type glyphs instead of colored type tags
	Color bool
}

// Search is the renderer's read-only view of an active search.
type Search struct {
	Query   string
	Matches []int // item indices
	Cursor  int   // item index under the search cursor
}

var (
	styleSelected  = lipgloss.NewStyle().Bold(true)
	styleNumber    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleCursor    = lipgloss.NewStyle().Reverse(true).Bold(true)
	styleInfo      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleErrorItem = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	typeStyles = map[gopher.Type]lipgloss.Style{
		gopher.TypeMenu:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		gopher.TypeText:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		gopher.TypeSearch: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		gopher.TypeHTML:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
)

// emojiCols is the display-cell width of the glyph column, gap included.
const emojiCols = 3

// typeEmoji maps item types to the glyph shown in emoji mode.
var typeEmoji = map[gopher.Type]string{
	gopher.TypeMenu:   "📁",
	gopher.TypeText:   "📄",
	gopher.TypeSearch: "🔍",
	gopher.TypeHTML:   "🌐",
	gopher.TypeGIF:    "🖼️",
	gopher.TypeImage:  "🖼️",
	gopher.TypeSound:  "🎵",
	gopher.TypeError:  "❌",
}

// Lines renders the whole page as styled lines; the caller windows them
// with Window. selected is the selected item index (-1 for none); search
// may be nil when search mode is off.
func Lines(page *gopher.Page, opts Options, selected int, search *Search) []string {
	switch page.Kind {
	case gopher.KindMenu:
		return menuLines(page, opts, selected, search)
	case gopher.KindBinary:
		return []string{fmt.Sprintf("[binary: %d bytes from %s; not displayable]", len(page.Raw), page.Address)}
	default:
		return textLines(page, opts)
	}
}

// Window slices rendered lines to the visible viewport.
func Window(lines []string, scroll, rows int) []string {
	if rows <= 0 || scroll >= len(lines) {
		return nil
	}
	if scroll < 0 {
		scroll = 0
	}
	end := scroll + rows
	if end > len(lines) {
		end = len(lines)
	}
	return lines[scroll:end]
}

func menuLines(page *gopher.Page, opts Options, selected int, search *Search) []string {
	links := page.Links()
	numWidth := len(fmt.Sprintf("%d", len(links)))
	if numWidth < 2 {
		numWidth = 2
	}

	linkNum := make(map[int]int, len(links))
	for n, idx := range links {
		linkNum[idx] = n + 1
	}

	matchSet := make(map[int]bool)
	cursorIdx := -1
	if search != nil {
		for _, idx := range search.Matches {
			matchSet[idx] = true
		}
		cursorIdx = search.Cursor
	}

	lines := make([]string, 0, len(page.Items))
	for i, item := range page.Items {
		lines = append(lines, menuLine(item, menuLineState{
			number:   linkNum[i],
			numWidth: numWidth,
			selected: i == selected,
			match:    matchSet[i],
			cursor:   search != nil && i == cursorIdx && matchSet[i],
		}, opts))
	}
	return lines
}

type menuLineState struct {
	number   int // 1-based link number, 0 for non-links
	numWidth int
	selected bool
	match    bool
	cursor   bool
}

func menuLine(item gopher.Item, st menuLineState, opts Options) string {
	var b strings.Builder

	marker := "  "
	if st.selected {
		marker = "* "
		if opts.Color {
			marker = styleSelected.Render("*") + " "
		}
	}
	b.WriteString(marker)

	if st.number > 0 {
		num := fmt.Sprintf("%*d. ", st.numWidth, st.number)
		if opts.Color {
			num = styleNumber.Render(num)
		}
		b.WriteString(num)
	} else {
		b.WriteString(strings.Repeat(" ", st.numWidth+2))
	}

	if opts.Emoji {
		if glyph, ok := typeEmoji[item.Type]; ok {
			b.WriteString(glyph)
			// Glyph cell widths vary; pad each to the same column.
			if pad := emojiCols - runewidth.StringWidth(glyph); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		} else {
			b.WriteString(strings.Repeat(" ", emojiCols))
		}
	}

	b.WriteString(displayText(item, st, opts))

	line := b.String()
	if !opts.Wide && opts.Cols > 0 {
		line = truncate.String(line, uint(opts.Cols))
	}
	return line
}

func displayText(item gopher.Item, st menuLineState, opts Options) string {
	text := item.Display
	if !opts.Color {
		return text
	}
	style, ok := typeStyles[item.Type]
	switch {
	case item.Type == gopher.TypeInfo:
		style = styleInfo
	case item.Type == gopher.TypeError:
		style = styleErrorItem
	case !ok:
		style = lipgloss.NewStyle()
	}
	if st.selected {
		style = style.Bold(true)
	}
	// Search decoration wins over the type color so matches stand out.
	if st.cursor {
		style = styleCursor
	} else if st.match {
		style = style.Underline(true)
	}
	return style.Render(text)
}

func textLines(page *gopher.Page, opts Options) []string {
	if opts.Wide || opts.Cols <= 0 {
		return page.Lines
	}
	var lines []string
	for _, line := range page.Lines {
		wrapped := wordwrap.String(line, opts.Cols)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	return lines
}

// StatusLine renders the single-line footer: the current address, the
// transport mode, and a transient message when one is active.
func StatusLine(addr gopher.Address, mode gopher.TransportMode, msg string, opts Options) string {
	left := addr.String()
	if mode != gopher.ModePlain {
		left += " [" + mode.String() + "]"
	}
	if msg != "" {
		left += "  | " + msg
	}
	if !opts.Wide && opts.Cols > 0 {
		left = truncate.String(left, uint(opts.Cols))
	}
	if opts.Color {
		left = lipgloss.NewStyle().Faint(true).Render(left)
	}
	return left
}
