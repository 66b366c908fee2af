package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2)

	switch {
	case s.fatal != "":
		return box.Render(theme.Banner.Render(s.fatal))
	case s.ed == nil:
		return box.Render(theme.Hint.Render("Loading lesson..."))
	case s.mode == pickingTag || s.mode == pickingTask || s.mode == pickingTopic:
		return box.Render(s.picker.View())
	}

	var b strings.Builder
	title := s.ed.Title()
	if strings.TrimSpace(title) == "" {
		title = theme.Hint.Render("(untitled)")
	} else {
		title = theme.Title.Render(title)
	}
	b.WriteString(title + "\n")
	if s.mode == editingTitle {
		b.WriteString(s.input.View() + "\n")
	}
	b.WriteString("\n")

	entries := s.ed.Entries()
	if len(entries) == 0 {
		b.WriteString(theme.Hint.Render("No blocks yet. Press a to add one.") + "\n")
	}
	summaryWidth := width - 24
	if summaryWidth < 20 {
		summaryWidth = 20
	}
	for i, e := range entries {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%s%2d  %-10s  %s", prefix, i+1, e.Block.Tag().Label(), truncate(summarize(e.Block, s), summaryWidth))
		b.WriteString(style.Render(line) + "\n")
		if i == s.selected && s.mode == editingField {
			b.WriteString("      " + s.input.View() + "\n")
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n" + theme.Banner.Render(s.errMsg) + "\n")
	}
	if s.status != "" {
		b.WriteString("\n" + theme.Hint.Render(s.status) + "\n")
	}
	return box.Render(b.String())
}

// summarize is the one-line description of a block in the list.
func summarize(b block.Block, s *Screen) string {
	switch c := b.Content.(type) {
	case block.Theory:
		if strings.TrimSpace(c.Text) == "" {
			return "(empty)"
		}
		return strings.ReplaceAll(c.Text, "\n", " ⏎ ")
	case block.Task:
		if t, ok := s.ed.Catalog().Find(c.Ref); ok {
			return fmt.Sprintf("#%d %s", t.TaskNumber, t.Text)
		}
		if c.Ref == "" {
			return "(no task selected)"
		}
		return "task " + c.Ref
	case block.TaskGroup:
		return fmt.Sprintf("%d tasks · %s", c.Count, block.TopicName(c.TopicID))
	case block.Check:
		return block.CheckMessage(c)
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
