package gallery

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/josebetomex/nft-gallery/opensea"
)

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing nft-gallery..."
	}
	if m.lightbox.open {
		return m.renderLightbox()
	}
	header := m.renderHeader()
	body := m.renderBody()
	footer := m.styles().help.Render(m.renderStatus())
	return header + "\n" + body + "\n" + footer
}

func (m Model) renderHeader() string {
	s := m.styles()
	title := "nft-gallery | " + m.OwnerLabel()
	if m.opts.ContractAddress != "" {
		title += " | " + shortAddress(m.opts.ContractAddress)
	}
	if m.opts.Testnet {
		title += " | testnet"
	}
	if m.opts.ShowcaseMode {
		title += " | showcase"
	}
	return s.title.Render(title) + "\n" + s.help.Render(m.renderHelp())
}

func (m Model) renderHelp() string {
	if m.lightbox.open {
		help := "left/right: prev/next | j/k: scroll | esc/q: close"
		if m.linkOpenAvailable() {
			help += " | o: open link"
		}
		return help
	}

	movement := "arrows/hjkl: move"
	if m.opts.Inline {
		movement = "left/right: move"
	}
	parts := []string{movement}
	if !m.opts.DisableLightbox {
		parts = append(parts, "enter: open")
	}
	if m.linkOpenAvailable() {
		parts = append(parts, "o: link")
	}
	if m.opts.DisableInfiniteScroll && m.HasMore() {
		parts = append(parts, "m: load more")
	}
	if m.loadState == loadFailed {
		parts = append(parts, "r: retry")
	}
	parts = append(parts, "d: dark", "i: info", "R: reload", "q: quit")
	return strings.Join(parts, " | ")
}

func (m Model) linkOpenAvailable() bool {
	return !m.opts.DisableExternalLinks && m.opts.OpenURL != nil
}

func (m Model) renderBody() string {
	if m.loadState == loadInitial {
		return m.spin.View() + " Loading gallery..."
	}
	displayed := m.displayedAssets()
	if len(displayed) == 0 {
		return m.renderEmptyNotice()
	}
	if m.opts.Inline {
		return m.renderInline(displayed)
	}
	return m.renderGrid(displayed)
}

func (m Model) renderEmptyNotice() string {
	s := m.styles()
	switch {
	case m.loadState == loadFailed:
		message := "Could not load the gallery"
		if m.loadErr != nil {
			message += ": " + m.loadErr.Error()
		}
		return s.errorText.Render(message) + "\n" + s.help.Render("r: retry")
	case m.opts.ShowcaseMode && len(m.assets) > 0:
		if m.HasMore() {
			return "No showcase items loaded yet"
		}
		return "No showcase items matched"
	case m.loadState == loadExhausted:
		return "No items found for this owner"
	default:
		return ""
	}
}

func (m Model) renderGrid(displayed []opensea.Asset) string {
	s := m.styles()
	columns := m.gridColumns()
	totalRows := (len(displayed) + columns - 1) / columns
	visibleRows := max(1, (m.height-4)/m.cardHeight())
	cursorRow := m.cursor / columns
	startRow := listOffset(cursorRow, totalRows, visibleRows)

	rows := make([]string, 0, visibleRows)
	for row := startRow; row < min(totalRows, startRow+visibleRows); row++ {
		cards := make([]string, 0, columns)
		for col := 0; col < columns; col++ {
			idx := row*columns + col
			if idx >= len(displayed) {
				break
			}
			cards = append(cards, m.renderCard(displayed[idx], idx == m.cursor, s))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return s.container.Render(strings.Join(rows, "\n"))
}

func (m Model) renderInline(displayed []opensea.Asset) string {
	s := m.styles()
	columns := m.gridColumns()
	start := listOffset(m.cursor, len(displayed), columns)
	end := min(len(displayed), start+columns)

	cards := make([]string, 0, columns)
	for idx := start; idx < end; idx++ {
		cards = append(cards, m.renderCard(displayed[idx], idx == m.cursor, s))
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	markers := ""
	if start > 0 {
		markers += "< "
	}
	if end < len(displayed) {
		markers += "> more"
	}
	if markers != "" {
		strip += "\n" + s.help.Render(strings.TrimSpace(markers))
	}
	return s.container.Render(strip)
}

func (m Model) renderCard(asset opensea.Asset, selected bool, s stylePalette) string {
	image := "▣"
	if thumb := asset.ThumbnailURL(); thumb != "" {
		image += " " + truncateString(thumb, cardInnerWidth-2)
	}
	lines := []string{s.image.Render(image)}
	if m.showMetadata {
		lines = append(lines, s.name.Render(truncateString(asset.DisplayName(), cardInnerWidth)))
		collection := truncateString(asset.CollectionName, cardInnerWidth)
		if collection == "" {
			collection = " "
		}
		lines = append(lines, s.collection.Render(collection))
	}

	card := s.card
	if selected {
		card = card.BorderForeground(s.accent)
	}
	return card.Render(strings.Join(lines, "\n"))
}

// cardHeight is the rendered height of one card including its border.
func (m Model) cardHeight() int {
	if m.showMetadata {
		return 5
	}
	return 3
}

// gridColumns computes how many cards fit per row at the current width.
func (m Model) gridColumns() int {
	return max(1, (m.width-2)/(cardFrameWidth+2))
}

func (m Model) renderStatus() string {
	displayed := m.displayedAssets()
	var counts string
	if m.opts.ShowcaseMode {
		counts = fmt.Sprintf("showing %d of %d loaded", len(displayed), len(m.assets))
	} else {
		counts = fmt.Sprintf("%d items", len(m.assets))
	}

	switch m.loadState {
	case loadMore:
		counts += " | loading more..."
	case loadExhausted:
		counts += " | complete"
	case loadFailed:
		counts += " | r: retry"
	case loadIdle:
		if m.opts.DisableInfiniteScroll {
			counts += " | m: load more"
		}
	}

	if m.status == "" {
		return counts
	}
	return counts + " | " + m.status
}

func (m Model) renderLightbox() string {
	displayed := m.displayedAssets()
	asset, ok := m.selectedAsset()
	if !ok {
		return "No item selected"
	}
	s := m.styles()

	title := fmt.Sprintf("%s  (%d/%d)", asset.DisplayName(), m.lightbox.index+1, len(displayed))
	header := s.title.Render(title)
	subText := oneLine(asset.CollectionName)
	if subText == "" {
		subText = shortAddress(asset.ContractAddress)
	}
	sub := s.collection.Render(subText)
	body := m.detail.View()
	footer := s.help.Render(m.renderHelp())
	return s.overlay.Render(header + "\n" + sub + "\n\n" + body + "\n\n" + footer)
}

// refreshLightboxViewport rebuilds the detail viewport for the current item.
func (m *Model) refreshLightboxViewport() {
	if !m.lightbox.open {
		return
	}
	m.resizeDetailViewport()
	asset, ok := m.selectedAsset()
	if !ok {
		m.detail.SetContent("No item selected")
		return
	}

	s := m.styles()
	width := max(20, m.detail.Width-2)

	var sections []string
	if image := asset.FullImageURL(); image != "" {
		sections = append(sections, s.traitName.Render("Image  ")+s.link.Render(image))
	}
	if desc := strings.TrimSpace(asset.Description); desc != "" {
		sections = append(sections, m.renderDescription(desc, width))
	}
	if len(asset.Traits) > 0 {
		lines := make([]string, 0, len(asset.Traits)+1)
		lines = append(lines, s.traitName.Render("Traits"))
		for _, trait := range asset.Traits {
			lines = append(lines, "  "+s.traitName.Render(trait.Type)+": "+trait.Value)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if !m.opts.DisableExternalLinks && asset.Permalink != "" {
		sections = append(sections, s.traitName.Render("Listing  ")+s.link.Render(asset.Permalink))
	}
	if len(sections) == 0 {
		sections = append(sections, "(no metadata)")
	}

	m.detail.SetContent(strings.Join(sections, "\n\n"))
	m.detail.GotoTop()
}

func (m *Model) resizeDetailViewport() {
	width := max(20, m.width-8)
	height := max(3, m.height-10)
	if m.detail.Width == 0 {
		m.detail = viewport.New(width, height)
		return
	}
	m.detail.Width = width
	m.detail.Height = height
}

// renderDescription renders markdown descriptions through glamour, falling
// back to plain wrapping when the renderer is unavailable.
func (m *Model) renderDescription(text string, width int) string {
	if renderer := m.markdownRenderer(width); renderer != nil {
		if rendered, err := renderer.Render(text); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return wrapText(text, width)
}

func (m *Model) markdownRenderer(width int) *glamour.TermRenderer {
	if m.mdRenderer != nil && m.mdWidth == width && m.mdDark == m.dark {
		return m.mdRenderer
	}
	style := "light"
	if m.dark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil
	}
	m.mdRenderer = renderer
	m.mdWidth = width
	m.mdDark = m.dark
	return renderer
}

func wrapText(text string, width int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	wrapped := wordwrap.String(trimmed, width)
	return strings.ReplaceAll(wrapped, "\r", "")
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func oneLine(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	return strings.Join(strings.Fields(trimmed), " ")
}

func truncateString(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func listOffset(cursor, total, visible int) int {
	if total <= visible {
		return 0
	}
	offset := cursor - visible/2
	return clamp(offset, 0, total-visible)
}

func clamp(value, low, high int) int {
	if high < low {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
