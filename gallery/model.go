// Package gallery renders a wallet's NFTs as a paginated, lazily loaded
// gallery with a keyboard-driven lightbox. The Model embeds into any Bubble
// Tea program; cmd/nft-gallery runs it standalone.
package gallery

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/josebetomex/nft-gallery/ens"
	"github.com/josebetomex/nft-gallery/opensea"
)

// AssetSource lists pages of a wallet's assets. *opensea.Client satisfies it.
type AssetSource interface {
	Assets(ctx context.Context, owner string, offset int) ([]opensea.Asset, error)
	CollectionAssets(ctx context.Context, owner, contractAddress string, offset int) ([]opensea.Asset, error)
}

// NameResolver turns a wallet name like vitalik.eth into an address.
// *ens.Resolver satisfies it.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Options configure a gallery. OwnerAddress is required; everything else
// defaults to a plain mainnet gallery.
type Options struct {
	// OwnerAddress is the wallet whose assets are shown. Either a raw
	// address or a resolvable name.
	OwnerAddress string
	// ContractAddress restricts the gallery to one collection when set.
	ContractAddress string
	// Testnet is forwarded to the asset source by the embedding program;
	// the gallery itself only displays it.
	Testnet bool

	DarkMode     bool
	HideMetadata bool

	// ShowcaseMode limits the gallery to ShowcaseItemIDs, each a
	// contract/tokenID composite key.
	ShowcaseMode    bool
	ShowcaseItemIDs []string

	DisableLightbox       bool
	DisableExternalLinks  bool
	Inline                bool
	DisableInfiniteScroll bool

	// Style overrides; nil keeps the built-in palette.
	ContainerStyle *lipgloss.Style
	ItemStyle      *lipgloss.Style
	ImageStyle     *lipgloss.Style

	// OpenURL launches a permalink in the user's browser. Nil disables the
	// open-link key even when external links are shown.
	OpenURL func(url string) error

	// Logger receives widget debug logs. Nil disables logging.
	Logger *zerolog.Logger
}

// Model tracks gallery state: the accumulated asset list, the page cursor,
// grid selection, and the lightbox.
type Model struct {
	opts     Options
	source   AssetSource
	resolver NameResolver
	log      zerolog.Logger

	assets []opensea.Asset
	seen   map[int64]bool

	// offset is the next page offset to request. It advances when a request
	// is issued and is never rolled back; retries reuse inFlightOffset.
	offset         int
	inFlightOffset int
	fetchSeq       int
	loadState      loadState
	loadErr        error

	resolvedOwner string

	cursor   int
	lightbox lightboxState

	spin   spinner.Model
	detail viewport.Model

	mdRenderer *glamour.TermRenderer
	mdWidth    int
	mdDark     bool

	width  int
	height int
	status string

	// Runtime copies of the display flags so keys can toggle them without
	// touching Options.
	dark         bool
	showMetadata bool
}

// New returns a gallery primed to fetch the owner's first page once the
// program starts.
func New(opts Options, source AssetSource, resolver NameResolver) Model {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	m := Model{
		opts:         opts,
		source:       source,
		resolver:     resolver,
		log:          logger,
		seen:         make(map[int64]bool),
		spin:         spin,
		dark:         opts.DarkMode,
		showMetadata: !opts.HideMetadata,
	}

	if strings.TrimSpace(opts.OwnerAddress) == "" {
		m.loadState = loadFailed
		m.loadErr = errors.New("missing owner address")
		m.status = "Error: missing owner address"
		return m
	}
	if source == nil {
		m.loadState = loadFailed
		m.loadErr = errors.New("missing asset source")
		m.status = "Error: missing asset source"
		return m
	}

	m.primeInitialFetch()
	return m
}

// primeInitialFetch arms the first page request; Init issues the command
// once the program starts.
func (m *Model) primeInitialFetch() {
	m.assets = nil
	m.seen = make(map[int64]bool)
	m.cursor = 0
	m.lightbox = lightboxState{}
	m.resolvedOwner = ""
	m.loadErr = nil
	m.status = ""
	m.inFlightOffset = 0
	m.offset = opensea.PageSize
	m.fetchSeq++
	m.loadState = loadInitial
}

func (m Model) Init() tea.Cmd {
	if m.loadState != loadInitial {
		return nil
	}
	return tea.Batch(m.spin.Tick, m.fetchPageCmd(m.inFlightOffset, m.fetchSeq))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDetailViewport()
		if m.lightbox.open {
			m.refreshLightboxViewport()
		}
		return m, nil
	case assetsPageMsg:
		return m.handleAssetsPage(msg)
	case fetchFailedMsg:
		return m.handleFetchFailed(msg)
	case linkOpenedMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Opened " + msg.url
		}
		return m, nil
	case spinner.TickMsg:
		if m.loadState != loadInitial {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lightbox.open {
		return m.handleLightboxKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	displayed := m.displayedAssets()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.cursor = clamp(m.cursor-1, 0, max(0, len(displayed)-1))
	case "right", "l":
		m.cursor = clamp(m.cursor+1, 0, max(0, len(displayed)-1))
		cmd := m.maybeLoadMore()
		return m, cmd
	case "up", "k":
		if !m.opts.Inline {
			m.cursor = clamp(m.cursor-m.gridColumns(), 0, max(0, len(displayed)-1))
		}
	case "down", "j":
		if !m.opts.Inline {
			m.cursor = clamp(m.cursor+m.gridColumns(), 0, max(0, len(displayed)-1))
			cmd := m.maybeLoadMore()
			return m, cmd
		}
	case "enter":
		if m.opts.DisableLightbox {
			return m, nil
		}
		if len(displayed) == 0 {
			m.status = "No items to open"
			return m, nil
		}
		m.lightbox = m.lightbox.openAt(m.cursor, len(displayed))
		m.refreshLightboxViewport()
	case "m":
		if m.opts.DisableInfiniteScroll {
			cmd := m.requestNextPage()
			return m, cmd
		}
	case "r":
		cmd := m.retryFailedPage()
		return m, cmd
	case "R":
		cmd := m.reinitialize()
		return m, cmd
	case "d":
		m.dark = !m.dark
	case "i":
		m.showMetadata = !m.showMetadata
	case "o":
		return m, m.openSelectedPermalink()
	}
	return m, nil
}

func (m Model) handleLightboxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.displayedAssets())
	switch msg.String() {
	case "left", "h":
		m.lightbox = m.lightbox.prev()
		m.cursor = m.lightbox.index
		m.refreshLightboxViewport()
	case "right", "l":
		m.lightbox = m.lightbox.next(count)
		m.cursor = m.lightbox.index
		m.refreshLightboxViewport()
	case "up", "k":
		m.detail.LineUp(1)
	case "down", "j":
		m.detail.LineDown(1)
	case "pgup":
		m.detail.HalfViewUp()
	case "pgdown":
		m.detail.HalfViewDown()
	case "g":
		m.detail.GotoTop()
	case "G":
		m.detail.GotoBottom()
	case "o":
		return m, m.openSelectedPermalink()
	case "esc", "q", "backspace":
		m.lightbox = m.lightbox.dismiss()
	}
	return m, nil
}

// openSelectedPermalink launches the selected asset's marketplace page.
func (m Model) openSelectedPermalink() tea.Cmd {
	if m.opts.DisableExternalLinks || m.opts.OpenURL == nil {
		return nil
	}
	asset, ok := m.selectedAsset()
	if !ok || asset.Permalink == "" {
		return nil
	}
	open := m.opts.OpenURL
	url := asset.Permalink
	return func() tea.Msg {
		return linkOpenedMsg{url: url, err: open(url)}
	}
}

// selectedAsset returns the asset under the cursor, or the lightbox asset
// while the lightbox is open.
func (m Model) selectedAsset() (opensea.Asset, bool) {
	displayed := m.displayedAssets()
	idx := m.cursor
	if m.lightbox.open {
		idx = m.lightbox.index
	}
	if len(displayed) == 0 || idx < 0 || idx >= len(displayed) {
		return opensea.Asset{}, false
	}
	return displayed[idx], true
}

// displayedAssets returns the assets the grid shows: the accumulated list,
// or its showcase subset when showcase mode is on.
func (m Model) displayedAssets() []opensea.Asset {
	if m.opts.ShowcaseMode {
		return showcaseAssets(m.assets, m.opts.ShowcaseItemIDs)
	}
	return m.assets
}

// OwnerLabel returns the display form of the owner: the resolved address
// once known, otherwise the configured name.
func (m Model) OwnerLabel() string {
	if m.resolvedOwner != "" && ens.IsName(m.opts.OwnerAddress) {
		return m.opts.OwnerAddress + " (" + shortAddress(m.resolvedOwner) + ")"
	}
	if m.resolvedOwner != "" {
		return shortAddress(m.resolvedOwner)
	}
	return m.opts.OwnerAddress
}
