package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/josebetomex/nft-gallery/ens"
	"github.com/josebetomex/nft-gallery/opensea"
)

// loadState is the loader's explicit lifecycle. The spinner shows only while
// the accumulated list is still empty; later pages load silently.
type loadState int

const (
	// loadIdle means no request is outstanding and more pages may exist.
	loadIdle loadState = iota
	// loadInitial means the first page is in flight.
	loadInitial
	// loadMore means a follow-up page is in flight.
	loadMore
	// loadFailed means the last request failed; the retry key reissues it.
	loadFailed
	// loadExhausted means a short page marked the inventory complete.
	// Only reinitialization leaves this state.
	loadExhausted
)

const (
	// loadAheadItems triggers the next fetch once the cursor is this close
	// to the end of the loaded grid.
	loadAheadItems = 3

	fetchTimeout = 2 * time.Minute
)

// assetsPageMsg delivers one successfully fetched page.
type assetsPageMsg struct {
	seq    int
	offset int
	owner  string
	assets []opensea.Asset
}

// fetchFailedMsg delivers a name-resolution or page-fetch failure.
type fetchFailedMsg struct {
	seq    int
	offset int
	err    error
}

type linkOpenedMsg struct {
	url string
	err error
}

func (m Model) fetchInFlight() bool {
	return m.loadState == loadInitial || m.loadState == loadMore
}

// HasMore reports whether further pages may exist.
func (m Model) HasMore() bool {
	return m.loadState != loadExhausted
}

// requestNextPage issues the next page fetch. It is a silent no-op while a
// request is outstanding, after a failure, or once the inventory is
// exhausted.
func (m *Model) requestNextPage() tea.Cmd {
	if m.loadState != loadIdle {
		return nil
	}
	offset := m.offset
	m.offset += opensea.PageSize
	return m.startFetch(offset)
}

// retryFailedPage reissues the failed request at its original offset. The
// page cursor stays where the optimistic advance left it.
func (m *Model) retryFailedPage() tea.Cmd {
	if m.loadState != loadFailed {
		return nil
	}
	return m.startFetch(m.inFlightOffset)
}

// reinitialize drops everything and fetches the first page again.
func (m *Model) reinitialize() tea.Cmd {
	m.primeInitialFetch()
	return tea.Batch(m.spin.Tick, m.fetchPageCmd(m.inFlightOffset, m.fetchSeq))
}

func (m *Model) startFetch(offset int) tea.Cmd {
	m.inFlightOffset = offset
	m.fetchSeq++
	m.loadErr = nil
	fetch := m.fetchPageCmd(offset, m.fetchSeq)
	if len(m.assets) == 0 {
		m.loadState = loadInitial
		return tea.Batch(m.spin.Tick, fetch)
	}
	m.loadState = loadMore
	return fetch
}

// maybeLoadMore fires the next fetch when the cursor reaches the trailing
// edge of the loaded grid. Manual-load galleries skip this entirely.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.opts.DisableInfiniteScroll {
		return nil
	}
	remaining := len(m.displayedAssets()) - m.cursor
	if remaining > max(loadAheadItems, m.gridColumns()) {
		return nil
	}
	return m.requestNextPage()
}

// fetchPageCmd resolves the owner on the first call, then fetches one page.
// Results come back tagged with seq so stale responses are dropped.
func (m Model) fetchPageCmd(offset, seq int) tea.Cmd {
	opts := m.opts
	source := m.source
	resolver := m.resolver
	owner := m.resolvedOwner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if owner == "" {
			owner = strings.TrimSpace(opts.OwnerAddress)
			if resolver != nil && ens.IsName(owner) {
				resolved, err := resolver.Resolve(ctx, owner)
				if err != nil {
					return fetchFailedMsg{seq: seq, offset: offset, err: err}
				}
				owner = resolved
			}
		}

		var (
			page []opensea.Asset
			err  error
		)
		if opts.ContractAddress != "" {
			page, err = source.CollectionAssets(ctx, owner, opts.ContractAddress, offset)
		} else {
			page, err = source.Assets(ctx, owner, offset)
		}
		if err != nil {
			return fetchFailedMsg{seq: seq, offset: offset, err: err}
		}
		return assetsPageMsg{seq: seq, offset: offset, owner: owner, assets: page}
	}
}

func (m Model) handleAssetsPage(msg assetsPageMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || !m.fetchInFlight() {
		return m, nil
	}

	m.resolvedOwner = msg.owner
	added := m.appendAssets(msg.assets)

	// A page shorter than the page size is the sole exhaustion signal.
	if len(msg.assets) < opensea.PageSize {
		m.loadState = loadExhausted
	} else {
		m.loadState = loadIdle
	}

	displayed := m.displayedAssets()
	m.cursor = clamp(m.cursor, 0, max(0, len(displayed)-1))
	m.lightbox = m.lightbox.clampToBounds(len(displayed))

	if added < len(msg.assets) {
		m.status = fmt.Sprintf("Loaded %d items (%d duplicates skipped)", len(m.assets), len(msg.assets)-added)
	} else {
		m.status = fmt.Sprintf("Loaded %d items", len(m.assets))
	}
	m.log.Debug().
		Int("offset", msg.offset).
		Int("added", added).
		Int("total", len(m.assets)).
		Bool("exhausted", m.loadState == loadExhausted).
		Msg("page appended")
	return m, nil
}

func (m Model) handleFetchFailed(msg fetchFailedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || !m.fetchInFlight() {
		return m, nil
	}
	m.loadState = loadFailed
	m.loadErr = msg.err
	m.status = "Error: " + msg.err.Error()
	m.log.Warn().Err(msg.err).Int("offset", msg.offset).Msg("page fetch failed")
	return m, nil
}

// appendAssets adds a page to the accumulated list, skipping assets whose ID
// was already appended. Returns the number actually added.
func (m *Model) appendAssets(batch []opensea.Asset) int {
	added := 0
	for _, asset := range batch {
		if m.seen[asset.ID] {
			continue
		}
		m.seen[asset.ID] = true
		m.assets = append(m.assets, asset)
		added++
	}
	return added
}
