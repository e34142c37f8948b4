// Package nav owns the in-session navigation state: the back/forward
// stacks, the current page, link selection, and scrolling. All mutation
// happens on the single loop goroutine that owns the State; fetch workers
// only ever hand back immutable pages.
package nav

import (
	"github.com/pfr-dev/phetch/internal/gopher"
)

// State is the navigation state machine. Navigation is two-phase: Begin
// speculatively pushes the page being left onto the back stack, and the
// fetch outcome either commits (success or error page) or rolls the push
// back (cancel). The speculative push is what makes an in-flight fetch
// show up as a pending back target.
type State struct {
	back    []*gopher.Page
	forward []*gopher.Page
	current *gopher.Page

	selected int // index into current.Items, -1 when no link
	scroll   int

	pending *pending
}

// pending records what Begin did so Cancel can undo it exactly.
type pending struct {
	target   gopher.Address
	replay   replayKind
	pushed   bool
	popped   *gopher.Page   // page removed from the replayed stack
	forward  []*gopher.Page // forward stack cleared by a fresh navigation
	selected int
	scroll   int
}

type replayKind int

const (
	replayNone replayKind = iota // fresh navigation: forward stack clears
	replayBack
	replayForward
)

// New creates navigation state showing start as the current page.
func New(start *gopher.Page) *State {
	s := &State{current: start}
	s.resetCursor()
	return s
}

// Current returns the page on display.
func (s *State) Current() *gopher.Page {
	return s.current
}

// Fetching reports whether a navigation is in flight.
func (s *State) Fetching() bool {
	return s.pending != nil
}

// Target returns the address the in-flight navigation is for.
func (s *State) Target() (gopher.Address, bool) {
	if s.pending == nil {
		return gopher.Address{}, false
	}
	return s.pending.target, true
}

// Begin enters the Fetching state for a fresh navigation to target. The
// current page is pushed as a back target and the forward stack clears;
// both are undone if the fetch is cancelled.
func (s *State) Begin(target gopher.Address) {
	s.begin(target, replayNone)
}

// Back begins a replay of the most recent back target. Returns false when
// there is nowhere to go.
func (s *State) Back() (gopher.Address, bool) {
	if s.pending != nil || len(s.back) == 0 {
		return gopher.Address{}, false
	}
	target := s.back[len(s.back)-1].Address
	s.begin(target, replayBack)
	return target, true
}

// Forward begins a replay of the most recent forward target.
func (s *State) Forward() (gopher.Address, bool) {
	if s.pending != nil || len(s.forward) == 0 {
		return gopher.Address{}, false
	}
	target := s.forward[len(s.forward)-1].Address
	s.begin(target, replayForward)
	return target, true
}

func (s *State) begin(target gopher.Address, kind replayKind) {
	s.pending = &pending{
		target:   target,
		replay:   kind,
		selected: s.selected,
		scroll:   s.scroll,
	}
	switch kind {
	case replayNone:
		if s.current != nil {
			s.back = append(s.back, s.current)
			s.pending.pushed = true
		}
		s.pending.forward = s.forward
		s.forward = nil
	case replayBack:
		s.pending.popped = s.back[len(s.back)-1]
		s.back = s.back[:len(s.back)-1]
		s.forward = append(s.forward, s.current)
	case replayForward:
		s.pending.popped = s.forward[len(s.forward)-1]
		s.forward = s.forward[:len(s.forward)-1]
		s.back = append(s.back, s.current)
	}
}

// Commit completes the in-flight navigation with the fetched page. Works
// the same for error pages: a failed fetch is still a visitable page.
func (s *State) Commit(page *gopher.Page) {
	if s.pending == nil {
		return
	}
	s.pending = nil
	s.current = page
	s.resetCursor()
}

// Cancel abandons the in-flight navigation. History must come out exactly
// as it was before Begin.
func (s *State) Cancel() {
	if s.pending == nil {
		return
	}
	p := s.pending
	s.pending = nil
	switch p.replay {
	case replayNone:
		if p.pushed {
			s.back = s.back[:len(s.back)-1]
		}
		s.forward = p.forward
	case replayBack:
		s.forward = s.forward[:len(s.forward)-1]
		s.back = append(s.back, p.popped)
	case replayForward:
		s.back = s.back[:len(s.back)-1]
		s.forward = append(s.forward, p.popped)
	}
	s.selected = p.selected
	s.scroll = p.scroll
}

// CanBack reports whether a back target exists.
func (s *State) CanBack() bool {
	return len(s.back) > 0
}

// CanForward reports whether a forward target exists.
func (s *State) CanForward() bool {
	return len(s.forward) > 0
}

// Selected returns the index of the selected link item, -1 if none.
func (s *State) Selected() int {
	return s.selected
}

// Scroll returns the viewport line offset into the current page.
func (s *State) Scroll() int {
	return s.scroll
}

// SetScroll clamps and stores the scroll offset.
func (s *State) SetScroll(offset, pageLen, viewRows int) {
	max := pageLen - viewRows
	if max < 0 {
		max = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > max {
		offset = max
	}
	s.scroll = offset
}

// NextLink moves selection to the following link, stopping at the last.
func (s *State) NextLink() {
	links := s.currentLinks()
	for i, idx := range links {
		if idx == s.selected && i+1 < len(links) {
			s.selected = links[i+1]
			return
		}
	}
	if s.selected == -1 && len(links) > 0 {
		s.selected = links[0]
	}
}

// PrevLink moves selection to the preceding link, stopping at the first.
func (s *State) PrevLink() {
	links := s.currentLinks()
	for i, idx := range links {
		if idx == s.selected && i > 0 {
			s.selected = links[i-1]
			return
		}
	}
}

// JumpLink selects the n-th link (1-based, the numbering shown on menu
// pages). Returns false when n is out of range.
func (s *State) JumpLink(n int) bool {
	links := s.currentLinks()
	if n < 1 || n > len(links) {
		return false
	}
	s.selected = links[n-1]
	return true
}

// Select sets the selection to an item index, ignoring invalid values.
func (s *State) Select(itemIndex int) {
	for _, idx := range s.currentLinks() {
		if idx == itemIndex {
			s.selected = itemIndex
			return
		}
	}
}

// SelectedItem returns the selected menu item, if any.
func (s *State) SelectedItem() (gopher.Item, bool) {
	if s.current == nil || s.current.Kind != gopher.KindMenu {
		return gopher.Item{}, false
	}
	if s.selected < 0 || s.selected >= len(s.current.Items) {
		return gopher.Item{}, false
	}
	return s.current.Items[s.selected], true
}

func (s *State) currentLinks() []int {
	if s.current == nil {
		return nil
	}
	return s.current.Links()
}

// resetCursor points selection at the first link of the current page and
// rewinds scrolling.
func (s *State) resetCursor() {
	s.scroll = 0
	s.selected = -1
	if links := s.currentLinks(); len(links) > 0 {
		s.selected = links[0]
	}
}
