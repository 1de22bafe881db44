// Package render draws dashboard pages for the terminal and as static HTML.
package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ppiankov/trustboard/internal/badge"
	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/format"
	"github.com/ppiankov/trustboard/internal/model"
)

// Palette
var (
	colorHigh    = lipgloss.Color("#8BC34A")
	colorMid     = lipgloss.Color("#FFC107")
	colorLow     = lipgloss.Color("#e53935")
	colorInfo    = lipgloss.Color("#2196F3")
	colorMuted   = lipgloss.Color("#7f8c9d")
	colorBorder  = lipgloss.Color("#2a3850")
	colorHeading = lipgloss.Color("#f2f2f2")
)

// Styles holds the lipgloss styles bound to one output
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Subtle  lipgloss.Style
	Error   lipgloss.Style
	Card    lipgloss.Style
	Tag     lipgloss.Style
	Border  lipgloss.Style

	High lipgloss.Style
	Mid  lipgloss.Style
	Low  lipgloss.Style

	renderer *lipgloss.Renderer
}

// NewStyles builds styles for w. With noColor every style renders as plain text.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorHeading),
		Heading: r.NewStyle().Bold(true).Foreground(colorInfo),
		Subtle:  r.NewStyle().Foreground(colorMuted),
		Error:   r.NewStyle().Bold(true).Foreground(colorLow),
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Tag:    r.NewStyle().Foreground(colorInfo),
		Border: r.NewStyle().Foreground(colorBorder),

		High: r.NewStyle().Foreground(colorHigh),
		Mid:  r.NewStyle().Foreground(colorMid),
		Low:  r.NewStyle().Foreground(colorLow),

		renderer: r,
	}
}

// Band colors text by trust band
func (s Styles) Band(b format.Band, text string) string {
	switch b {
	case format.BandHigh:
		return s.High.Render(text)
	case format.BandMid:
		return s.Mid.Render(text)
	default:
		return s.Low.Render(text)
	}
}

// Tone colors text by claim status tone
func (s Styles) Tone(t dashboard.Tone, text string) string {
	switch t {
	case dashboard.ToneGood:
		return s.High.Render(text)
	case dashboard.ToneWarn:
		return s.Mid.Render(text)
	default:
		return s.Low.Render(text)
	}
}

// Badge renders one journal badge with its classification mark
func (s Styles) Badge(b badge.Badge) string {
	label := badgeMark(b.Kind) + " " + b.Journal
	switch b.Kind {
	case badge.KindVerified:
		return s.High.Render(label)
	case badge.KindQuestioned:
		return s.Mid.Render(label)
	case badge.KindDebunked:
		return s.Low.Render(label)
	default:
		return s.Subtle.Render(label)
	}
}

// Trend renders a trend arrow
func (s Styles) Trend(t model.Trend) string {
	switch t {
	case model.TrendUp:
		return s.High.Render("↑")
	case model.TrendDown:
		return s.Low.Render("↓")
	default:
		return s.Subtle.Render("·")
	}
}

func badgeMark(k badge.Kind) string {
	switch k {
	case badge.KindVerified:
		return "✓"
	case badge.KindQuestioned:
		return "?"
	case badge.KindDebunked:
		return "✗"
	default:
		return "-"
	}
}
