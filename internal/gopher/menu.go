package gopher

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Item is one line of a parsed gopher menu.
type Item struct {
	Type     Type
	Display  string
	Selector string
	Host     string
	Port     uint16
}

// ParseMenu turns the raw bytes of a menu response into items. It never
// fails: real-world gopher servers are wildly non-conforming, so every
// rule here degrades instead of aborting.
//
//   - Lines are split on LF; a trailing CR is trimmed.
//   - A line that is a lone "." ends the listing, per RFC 1436.
//   - Fields after the display text default from base, so relative links
//     with missing host/port still resolve.
//   - Selectors missing their leading slash get one synthesized; several
//     popular servers omit it.
//   - Invalid UTF-8 is substituted, not rejected; lines with no item type
//     are dropped, not fatal.
func ParseMenu(raw []byte, base Address) []Item {
	var items []Item
	for _, line := range splitLines(raw) {
		if line == "." {
			break
		}
		if line == "" {
			continue
		}
		item, ok := parseMenuLine(line, base)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ParseText splits a text response into display lines, substituting any
// invalid UTF-8. A trailing lone "." is the end-of-transmission marker
// and is dropped.
func ParseText(raw []byte) []string {
	lines := splitLines(raw)
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if n := len(lines); n > 0 && lines[n-1] == "." {
		lines = lines[:n-1]
	}
	return lines
}

func parseMenuLine(line string, base Address) (Item, bool) {
	t := Type(line[0])
	if !t.Valid() {
		return Item{}, false
	}

	item := Item{
		Type: t,
		Host: base.Host,
		Port: base.Port,
	}

	fields := strings.SplitN(line[1:], "\t", 4)
	item.Display = fields[0]
	if len(fields) > 1 {
		item.Selector = fields[1]
	}
	if len(fields) > 2 && fields[2] != "" {
		item.Host = fields[2]
	}
	if len(fields) > 3 {
		if n, err := strconv.ParseUint(strings.TrimSpace(fields[3]), 10, 16); err == nil && n > 0 {
			item.Port = uint16(n)
		}
	}

	// Interop fix: some servers serve selectors without the leading
	// slash, which breaks relative resolution downstream.
	if item.Selector != "" && !strings.HasPrefix(item.Selector, "/") && !isExternalSelector(item.Selector) {
		item.Selector = "/" + item.Selector
	}
	return item, true
}

// isExternalSelector reports whether the selector is one of the URL:
// style pseudo-selectors used by h-type items, which must not be slash
// prefixed.
func isExternalSelector(sel string) bool {
	return strings.HasPrefix(sel, "URL:") || strings.HasPrefix(sel, "url:")
}

// splitLines splits on LF, trims a trailing CR from each line, and scrubs
// invalid UTF-8 into the replacement character.
func splitLines(raw []byte) []string {
	lines := strings.Split(string(raw), "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if !utf8.ValidString(line) {
			line = strings.ToValidUTF8(line, string(utf8.RuneError))
		}
		lines[i] = line
	}
	return lines
}
