// Package cli wires configuration, flags, and the choice between the
// interactive session and one-shot rendered output.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pfr-dev/phetch/internal/config"
	"github.com/pfr-dev/phetch/internal/gopher"
	"github.com/pfr-dev/phetch/internal/render"
	"github.com/pfr-dev/phetch/internal/store"
	"github.com/pfr-dev/phetch/internal/tui"
)

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	var flags struct {
		tls      bool
		tor      bool
		torAddr  string
		noVerify bool
		wide     bool
		emoji    bool
		noColor  bool
		dump     bool
		cfgPath  string
	}

	cmd := &cobra.Command{
		Use:     "phetch [url]",
		Short:   "phetch - a terminal gopher client",
		Long:    "phetch is a terminal client for the gopher protocol, with TLS and Tor support.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.cfgPath)
			if err != nil {
				return err
			}

			// Flags override the file only when actually given.
			set := cmd.Flags().Changed
			if set("tls") {
				cfg.TLS = flags.tls
			}
			if set("tor") {
				cfg.Tor = flags.tor
			}
			if set("tor-addr") {
				cfg.TorAddr = flags.torAddr
			}
			if set("no-verify") {
				cfg.NoVerify = flags.noVerify
			}
			if set("wide") {
				cfg.Wide = flags.wide
			}
			if set("emoji") {
				cfg.Emoji = flags.emoji
			}
			if set("no-color") {
				cfg.NoColor = flags.noColor
			}

			startURL := cfg.Start
			if len(args) > 0 {
				startURL = args[0]
			}

			interactive := isatty.IsTerminal(os.Stdout.Fd())
			if flags.dump || !interactive {
				return runDump(cfg, startURL, interactive && !cfg.NoColor, cmd.OutOrStdout())
			}
			return runTUI(cfg, startURL)
		},
	}

	cmd.Flags().BoolVar(&flags.tls, "tls", false, "use TLS for all connections")
	cmd.Flags().BoolVar(&flags.tor, "tor", false, "route connections through the local Tor SOCKS proxy")
	cmd.Flags().StringVar(&flags.torAddr, "tor-addr", gopher.DefaultTorAddr, "Tor SOCKS proxy address")
	cmd.Flags().BoolVar(&flags.noVerify, "no-verify", false, "skip TLS certificate validation")
	cmd.Flags().BoolVarP(&flags.wide, "wide", "w", false, "disable truncation to terminal width")
	cmd.Flags().BoolVarP(&flags.emoji, "emoji", "e", false, "emoji item-type glyphs")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&flags.dump, "dump", "d", false, "render the page to stdout and exit")
	cmd.Flags().StringVarP(&flags.cfgPath, "config", "c", "", "config file path")

	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	dir, err := config.Dir()
	if err != nil {
		// No resolvable home: run on defaults.
		return config.Default(), nil
	}
	return config.Load(filepath.Join(dir, config.FileName))
}

func newFetcher(cfg config.Config) *gopher.Fetcher {
	opts := []gopher.Option{
		gopher.WithMode(cfg.Mode()),
		gopher.WithTorAddr(cfg.TorAddr),
		gopher.WithConnectTimeout(cfg.FetchTimeout()),
	}
	if cfg.NoVerify {
		opts = append(opts, gopher.WithTLSInsecure())
	}
	return gopher.NewFetcher(gopher.NewDialer(opts...), cfg.FetchTimeout())
}

// runTUI starts the interactive session. A malformed URL argument is the
// only fatal address error; once the session runs, failures become pages.
func runTUI(cfg config.Config, startURL string) error {
	fetcher := newFetcher(cfg)

	start := tui.Dashboard()
	if startURL != "" {
		addr, err := gopher.ParseAddress(startURL)
		if err != nil {
			return err
		}
		if body, err := fetcher.Fetch(context.Background(), addr); err != nil {
			start = gopher.ErrorPage(addr, err)
		} else {
			start = gopher.NewPage(addr, body)
		}
	}

	deps := tui.Deps{
		Fetcher: fetcher,
		Mode:    cfg.Mode(),
	}
	if dir, err := config.Dir(); err == nil {
		deps.Bookmarks = store.NewFileStore(filepath.Join(dir, store.BookmarksFile))
		deps.History = store.NewFileStore(filepath.Join(dir, store.HistoryFile))
	}

	display := render.Options{
		Wide:  cfg.Wide,
		Emoji: cfg.Emoji,
		Color: !cfg.NoColor,
	}

	p := tea.NewProgram(tui.New(deps, start, display), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run session: %w", err)
	}
	return nil
}
