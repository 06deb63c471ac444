package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/coverglow/internal/artwork"
	"karolbroda.com/coverglow/internal/colors"
	"karolbroda.com/coverglow/internal/sampler"
	"karolbroda.com/coverglow/internal/terminal"
)

const (
	maxArtHeight = 14
	minArtHeight = 3
	maxBarWidth  = 48

	accentMaxBackground = 35
	accentMinLightness  = 65
)

// row is one line of content; its background comes from the gradient row it
// lands on, so styling is deferred until placement.
type row func(bg, fg sampler.Color) string

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var content []row
	if m.track == nil {
		content = m.waitingRows()
	} else {
		content = m.playerRows(width, height)
	}

	footer := m.helpRow()

	gradient := colors.Gradient(m.color, colors.MustParse(colors.Black), height)
	top := (height - len(content) - 1) / 2
	if top < 0 {
		top = 0
	}

	lines := make([]string, height)
	for y := range lines {
		bg := gradient[y]
		fg := colors.Foreground(bg)

		switch {
		case y == height-1:
			lines[y] = placeCenter(footer(bg, fg), bg, width)
		case y >= top && y-top < len(content):
			lines[y] = placeCenter(content[y-top](bg, fg), bg, width)
		default:
			lines[y] = fill(bg, width)
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) waitingRows() []row {
	return []row{
		textRow("awaiting track", func(s lipgloss.Style) lipgloss.Style { return s.Italic(true).Faint(true) }),
	}
}

func (m Model) playerRows(width, height int) []row {
	var rows []row

	rows = append(rows, m.artRows(width, height)...)
	if len(rows) > 0 {
		rows = append(rows, blankRow)
	}

	rows = append(rows,
		textRow(truncate(m.track.Title, width-4), func(s lipgloss.Style) lipgloss.Style { return s.Bold(true) }),
		textRow(truncate(m.track.Artist, width-4), func(s lipgloss.Style) lipgloss.Style { return s.Faint(true) }),
		blankRow,
		m.progressRow(width),
		blankRow,
		m.controlsRow(),
		blankRow,
		m.statusRow(),
	)

	return rows
}

func (m Model) artRows(width, height int) []row {
	if !m.showArt {
		return nil
	}

	artHeight := min(maxArtHeight, height-12, (width-4)/2)
	if artHeight < minArtHeight {
		return nil
	}
	artWidth := artHeight * 2

	if m.image == nil {
		placeholder := make([]row, artHeight)
		for i := range placeholder {
			placeholder[i] = func(bg, fg sampler.Color) string {
				return lipgloss.NewStyle().
					Background(lipgloss.Color(colors.Hex(colors.Dim(bg, 0.3)))).
					Render(strings.Repeat(" ", artWidth))
			}
		}
		return placeholder
	}

	if m.termCaps != nil && m.termCaps.Kitty {
		if encoded := terminal.EncodeKitty(m.image, artWidth, artHeight); encoded != "" {
			rows := make([]row, artHeight)
			rows[0] = func(bg, fg sampler.Color) string {
				return encoded + style(bg, fg).Render(strings.Repeat(" ", artWidth))
			}
			for i := 1; i < artHeight; i++ {
				rows[i] = func(bg, fg sampler.Color) string {
					return style(bg, fg).Render(strings.Repeat(" ", artWidth))
				}
			}
			return rows
		}
	}

	art := artwork.RenderHalfBlock(m.image, artWidth, artHeight)
	rows := make([]row, len(art))
	for i, line := range art {
		rows[i] = func(bg, fg sampler.Color) string { return line }
	}
	return rows
}

func (m Model) progressRow(width int) row {
	barWidth := min(maxBarWidth, width-16)
	if barWidth < 10 {
		barWidth = 10
	}

	pb := m.playback
	filled := int(float64(barWidth) * pb.Fraction())

	var elapsed, total string
	if m.track != nil && m.track.DurationSecs > 0 {
		elapsed = colors.FormatTime(pb.Elapsed(m.track.DurationSecs))
		total = colors.FormatTime(m.track.DurationSecs)
	}

	cover := m.color
	return func(bg, fg sampler.Color) string {
		base := style(bg, fg)
		empty := base.Foreground(lipgloss.Color(colors.Hex(blend(fg, bg))))
		full := base.Foreground(lipgloss.Color(colors.Hex(accent(cover, bg, fg))))

		var bar strings.Builder
		bar.WriteString(full.Render(strings.Repeat("━", filled)))
		bar.WriteString(empty.Render(strings.Repeat("─", barWidth-filled)))

		if elapsed == "" {
			return bar.String()
		}
		return empty.Render(elapsed+"  ") + bar.String() + empty.Render("  "+total)
	}
}

func (m Model) controlsRow() row {
	icon := "▶"
	if m.playback.Playing {
		icon = "⏸"
	}

	return func(bg, fg sampler.Color) string {
		base := style(bg, fg)
		skip := base.Faint(true)

		// the play button inverts the row colors
		play := lipgloss.NewStyle().
			Background(lipgloss.Color(colors.Hex(fg))).
			Foreground(lipgloss.Color(colors.Hex(bg))).
			Bold(true).
			Padding(0, 2)

		return skip.Render("⏮") + base.Render("    ") + play.Render(icon) + base.Render("    ") + skip.Render("⏭")
	}
}

func (m Model) statusRow() row {
	var cover string
	switch m.state {
	case SampleLoading:
		cover = "sampling cover…"
	case SampleFailed:
		cover = "cover unavailable"
	case SampleSampled:
		cover = colors.CSS(m.color)
	default:
		cover = "no cover"
	}
	text := m.playback.Label() + " · " + cover

	return textRow(text, func(s lipgloss.Style) lipgloss.Style { return s.Faint(true).Italic(true) })
}

func (m Model) helpRow() row {
	h := m.help
	return func(bg, fg sampler.Color) string {
		base := style(bg, fg)
		dim := base.Faint(true)

		h.Styles.ShortKey = base
		h.Styles.ShortDesc = dim
		h.Styles.ShortSeparator = dim
		h.Styles.FullKey = base
		h.Styles.FullDesc = dim
		h.Styles.FullSeparator = dim
		h.Styles.Ellipsis = dim

		if h.ShowAll {
			// full help spans several lines; keep the footer to one
			return h.ShortHelpView(flatten(m.keys.FullHelp()))
		}
		return h.ShortHelpView(m.keys.ShortHelp())
	}
}

func blankRow(bg, fg sampler.Color) string { return "" }

func textRow(text string, decorate func(lipgloss.Style) lipgloss.Style) row {
	return func(bg, fg sampler.Color) string {
		return decorate(style(bg, fg)).Render(text)
	}
}

func style(bg, fg sampler.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(colors.Hex(bg))).
		Foreground(lipgloss.Color(colors.Hex(fg)))
}

func fill(bg sampler.Color, width int) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(colors.Hex(bg))).
		Render(strings.Repeat(" ", width))
}

// placeCenter pads an already styled line with background-colored space.
func placeCenter(content string, bg sampler.Color, width int) string {
	w := lipgloss.Width(content)
	if w >= width {
		return content
	}
	left := (width - w) / 2
	right := width - w - left

	var b strings.Builder
	if left > 0 {
		b.WriteString(fill(bg, left))
	}
	b.WriteString(content)
	if right > 0 {
		b.WriteString(fill(bg, right))
	}
	return b.String()
}

// accent picks the filled progress color. On dark rows the cover color is
// lifted to a readable lightness; elsewhere the text color is used.
func accent(cover, bg, fg sampler.Color) sampler.Color {
	if colors.Lightness(bg) >= accentMaxBackground {
		return fg
	}
	return colors.Lift(cover, accentMinLightness)
}

func blend(a, b sampler.Color) sampler.Color {
	return colors.Gradient(a, b, 3)[1]
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func flatten[T any](groups [][]T) []T {
	var out []T
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
