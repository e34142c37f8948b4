package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pfr-dev/phetch/internal/config"
	"github.com/pfr-dev/phetch/internal/gopher"
	"github.com/pfr-dev/phetch/internal/render"
	"github.com/pfr-dev/phetch/internal/tui"
)

// runDump performs one fetch, renders, and writes the lines to w without
// entering the interactive loop. styled selects the full styling; piped
// output gets the plain-text reduction.
func runDump(cfg config.Config, startURL string, styled bool, w io.Writer) error {
	opts := render.Options{
		Cols:  80,
		Wide:  cfg.Wide,
		Emoji: cfg.Emoji,
		Color: styled,
	}

	page := tui.Dashboard()
	if startURL != "" {
		addr, err := gopher.ParseAddress(startURL)
		if err != nil {
			return err
		}
		body, err := newFetcher(cfg).Fetch(context.Background(), addr)
		if err != nil {
			return err
		}
		page = gopher.NewPage(addr, body)
	}

	for _, line := range render.Lines(page, opts, -1, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
