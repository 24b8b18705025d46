package gallery

import "github.com/charmbracelet/lipgloss"

const (
	cardInnerWidth = 22
	cardFrameWidth = cardInnerWidth + 2
)

// stylePalette groups the lipgloss styles for one color scheme. Callers can
// replace the container, card, and image styles through Options.
type stylePalette struct {
	title      lipgloss.Style
	help       lipgloss.Style
	errorText  lipgloss.Style
	container  lipgloss.Style
	card       lipgloss.Style
	image      lipgloss.Style
	name       lipgloss.Style
	collection lipgloss.Style
	overlay    lipgloss.Style
	traitName  lipgloss.Style
	link       lipgloss.Style
	accent     lipgloss.Color
}

func newPalette(dark bool) stylePalette {
	// ANSI-256 pairs picked to stay readable on both default schemes.
	accent := lipgloss.Color("69")
	frame := lipgloss.Color("240")
	text := lipgloss.Color("252")
	dim := lipgloss.Color("244")
	imageInk := lipgloss.Color("62")
	if !dark {
		accent = lipgloss.Color("25")
		frame = lipgloss.Color("250")
		text = lipgloss.Color("235")
		dim = lipgloss.Color("243")
		imageInk = lipgloss.Color("61")
	}

	return stylePalette{
		title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		help:      lipgloss.NewStyle().Foreground(dim),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		container: lipgloss.NewStyle(),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frame).
			Padding(0, 1).
			Width(cardFrameWidth),
		image: lipgloss.NewStyle().
			Foreground(imageInk).
			Width(cardInnerWidth).
			Align(lipgloss.Center),
		name:       lipgloss.NewStyle().Bold(true).Foreground(text),
		collection: lipgloss.NewStyle().Foreground(dim),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		traitName: lipgloss.NewStyle().Foreground(accent),
		link:      lipgloss.NewStyle().Foreground(imageInk).Underline(true),
		accent:    accent,
	}
}

var (
	darkStyles  = newPalette(true)
	lightStyles = newPalette(false)
)

// styles returns the palette for the current scheme with any caller
// overrides applied.
func (m Model) styles() stylePalette {
	p := lightStyles
	if m.dark {
		p = darkStyles
	}
	if m.opts.ContainerStyle != nil {
		p.container = *m.opts.ContainerStyle
	}
	if m.opts.ItemStyle != nil {
		p.card = *m.opts.ItemStyle
	}
	if m.opts.ImageStyle != nil {
		p.image = *m.opts.ImageStyle
	}
	return p
}
