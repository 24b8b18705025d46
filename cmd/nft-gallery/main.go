package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/josebetomex/nft-gallery/ens"
	"github.com/josebetomex/nft-gallery/gallery"
	"github.com/josebetomex/nft-gallery/opensea"
)

type cliOptions struct {
	owner        string
	contract     string
	apiKey       string
	testnet      bool
	dark         bool
	hideMetadata bool
	showcaseIDs  []string
	noLightbox   bool
	noLinks      bool
	inline       bool
	manualPaging bool
	logFile      string
	verbose      bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "nft-gallery: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(opts.logFile, opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nft-gallery: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client := opensea.NewClient(opensea.Config{
		APIKey:  opts.apiKey,
		Testnet: opts.testnet,
		Logger:  &logger,
	})
	resolver, err := ens.NewResolver(ens.Config{Logger: &logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "nft-gallery: %v\n", err)
		os.Exit(1)
	}

	// The gallery owns the terminal, so the browser helper must not write to it.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	m := gallery.New(gallery.Options{
		OwnerAddress:          opts.owner,
		ContractAddress:       opts.contract,
		Testnet:               opts.testnet,
		DarkMode:              opts.dark,
		HideMetadata:          opts.hideMetadata,
		ShowcaseMode:          len(opts.showcaseIDs) > 0,
		ShowcaseItemIDs:       opts.showcaseIDs,
		DisableLightbox:       opts.noLightbox,
		DisableExternalLinks:  opts.noLinks,
		Inline:                opts.inline,
		DisableInfiniteScroll: opts.manualPaging,
		OpenURL:               browser.OpenURL,
		Logger:                &logger,
	}, client, resolver)

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "nft-gallery failed: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("nft-gallery", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	owner := fs.String("owner", "", "wallet address or ENS name (required)")
	contract := fs.String("contract", "", "restrict the gallery to one collection contract")
	apiKey := fs.String("api-key", "", "OpenSea API key (default $OPENSEA_API_KEY)")
	testnet := fs.Bool("testnet", false, "query the testnets API")
	dark := fs.Bool("dark", false, "start with the dark palette")
	hideMetadata := fs.Bool("hide-metadata", false, "hide names and collections on cards")
	showcase := fs.String("showcase", "", "comma-separated contract/tokenID keys to showcase")
	noLightbox := fs.Bool("no-lightbox", false, "disable the detail lightbox")
	noLinks := fs.Bool("no-external-links", false, "never open marketplace pages")
	inline := fs.Bool("inline", false, "render a single horizontal strip")
	manualPaging := fs.Bool("no-infinite-scroll", false, "load pages with the m key instead of automatically")
	logFile := fs.String("log", "", "append debug logs to this file")
	verbose := fs.Bool("verbose", false, "log at debug level")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("%w\n%s", err, usageText())
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("unexpected argument %q\n%s", fs.Arg(0), usageText())
	}

	opts := cliOptions{
		owner:        strings.TrimSpace(*owner),
		contract:     strings.TrimSpace(*contract),
		apiKey:       strings.TrimSpace(*apiKey),
		testnet:      *testnet,
		dark:         *dark,
		hideMetadata: *hideMetadata,
		showcaseIDs:  splitShowcaseIDs(*showcase),
		noLightbox:   *noLightbox,
		noLinks:      *noLinks,
		inline:       *inline,
		manualPaging: *manualPaging,
		logFile:      strings.TrimSpace(*logFile),
		verbose:      *verbose,
	}
	if opts.apiKey == "" {
		opts.apiKey = strings.TrimSpace(os.Getenv("OPENSEA_API_KEY"))
	}
	if opts.owner == "" {
		return cliOptions{}, fmt.Errorf("missing -owner\n%s", usageText())
	}
	return opts, nil
}

func splitShowcaseIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// newLogger writes console-formatted logs to the given file. The TUI owns
// stdout and stderr, so without -log everything is discarded.
func newLogger(path string, verbose bool) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}

func usageText() string {
	return strings.TrimSpace(`
Usage:
  nft-gallery -owner <address|name.eth> [flags]

Flags:
  -owner <addr>          wallet address or ENS name (required)
  -contract <addr>       restrict the gallery to one collection contract
  -api-key <key>         OpenSea API key (default $OPENSEA_API_KEY)
  -testnet               query the testnets API
  -dark                  start with the dark palette
  -hide-metadata         hide names and collections on cards
  -showcase <ids>        comma-separated contract/tokenID keys to showcase
  -no-lightbox           disable the detail lightbox
  -no-external-links     never open marketplace pages
  -inline                render a single horizontal strip
  -no-infinite-scroll    load pages with the m key instead of automatically
  -log <path>            append debug logs to this file
  -verbose               log at debug level
`)
}
