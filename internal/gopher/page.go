package gopher

import "fmt"

// PageKind classifies how a fetched page is interpreted and rendered.
type PageKind int

const (
	KindMenu PageKind = iota
	KindText
	KindBinary
)

// Page is the immutable result of one fetch: the raw response plus its
// parsed interpretation. The interpretation is fixed at construction from
// the address's item type and never re-derived.
type Page struct {
	Address Address
	Raw     []byte
	Kind    PageKind
	Items   []Item   // populated when Kind == KindMenu
	Lines   []string // populated when Kind == KindText
}

// NewPage builds a Page from a completed response body.
func NewPage(addr Address, raw []byte) *Page {
	p := &Page{Address: addr, Raw: raw}
	switch {
	case addr.Type.IsMenu():
		p.Kind = KindMenu
		p.Items = ParseMenu(raw, addr)
	case addr.Type.IsBinary():
		p.Kind = KindBinary
	default:
		p.Kind = KindText
		p.Lines = ParseText(raw)
	}
	return p
}

// MenuPage builds a synthetic menu page from pre-parsed items, used for
// builtin pages and for browsing bookmark/history files.
func MenuPage(addr Address, items []Item) *Page {
	return &Page{Address: addr, Kind: KindMenu, Items: items}
}

// ErrorPage builds a synthetic text page describing a failed fetch. Error
// pages are ordinary pages: they enter history and can be navigated back
// to and inspected like anything else.
func ErrorPage(addr Address, err error) *Page {
	return &Page{
		Address: addr,
		Kind:    KindText,
		Lines: []string{
			fmt.Sprintf("could not load %s", addr),
			"",
			err.Error(),
		},
	}
}

// Links returns the indices into Items that are navigable links, in menu
// order. Nil for non-menu pages.
func (p *Page) Links() []int {
	if p.Kind != KindMenu {
		return nil
	}
	var links []int
	for i, item := range p.Items {
		if item.Type.IsLink() {
			links = append(links, i)
		}
	}
	return links
}
