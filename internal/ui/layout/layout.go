package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 16

	CompactWidthThreshold = 90
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactWidth returns true if the terminal width is in compact range.
func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks for a larger terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Lessons need at least %d×%d.\nThis terminal is %d×%d.",
			MinWidth, MinHeight, width, height))
}

// RenderHeader draws the top bar: brand and screen title on the left,
// the signed-in caller on the right. The caller is dropped when the
// terminal is too narrow for both.
func RenderHeader(title, who string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Examprep")
	left := " " + brand
	if title != "" {
		left += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  ›  ") +
			lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(who) + " "

	inner := max(width-2, 0)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	content := left
	if gap >= 2 {
		content += strings.Repeat(" ", gap) + right
	}
	return bar(content, width)
}

// RenderFooter lists key hints. Narrow terminals show keys only.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := keyStyle.Render(h.Key)
		if !IsCompactWidth(width) {
			part += " " + descStyle.Render(h.Description)
		}
		parts = append(parts, part)
	}
	sep := "   "
	if IsCompactWidth(width) {
		sep = "  "
	}
	return bar(" "+strings.Join(parts, sep), width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFrame stacks header, content and footer, sizing the content to
// the rows left over.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
