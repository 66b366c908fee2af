package player

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/playback"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2)

	switch {
	case s.fatal != "":
		return box.Render(theme.Banner.Render(s.fatal))
	case s.player == nil:
		return box.Render(theme.Hint.Render("Loading lesson..."))
	case s.player.State() == playback.Completed:
		return box.Render(s.renderCompleted())
	}

	inner := width - 4
	if !layout.IsCompactWidth(width) && inner > 80 {
		inner = 80
	}

	var b strings.Builder
	v := s.view
	bar := components.NewProgressBar(fmt.Sprintf("%d/%d", v.Position, v.Total), v.Position, v.Total, false, inner)
	b.WriteString(bar.View())
	b.WriteString("\n\n")
	b.WriteString(theme.Tag.Render(v.Tag.Label()))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(inner).Render(s.renderBlock(inner)))
	b.WriteString("\n\n")
	b.WriteString(s.renderActions())
	if s.banner != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Banner.Render(s.banner))
	}
	return box.Render(b.String())
}

func (s *Screen) renderBlock(width int) string {
	v := s.view
	switch v.Tag {
	case block.TagTheory:
		return renderSpans(v.Spans)
	case block.TagTask:
		return s.renderTask()
	case block.TagTaskGroup:
		return theme.Body.Render(fmt.Sprintf("Practice drill: %d tasks · %s", v.Count, v.Topic)) +
			"\n" + theme.Hint.Render("Drills open from the practice section.")
	case block.TagCheck:
		return theme.Card.Width(width).Render(theme.Correct.Render(v.Message))
	}
	return ""
}

// renderSpans draws THEORY markup: bold spans and line breaks.
func renderSpans(spans []block.Span) string {
	var b strings.Builder
	for _, sp := range spans {
		switch {
		case sp.Break:
			b.WriteString("\n")
		case sp.Bold:
			b.WriteString(theme.Strong.Render(sp.Text))
		default:
			b.WriteString(theme.Body.Render(sp.Text))
		}
	}
	return b.String()
}

func (s *Screen) renderTask() string {
	v := s.view
	num, text := s.taskText(v.TaskRef)

	var b strings.Builder
	if num > 0 {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Task %d", num)) + "\n")
	}
	b.WriteString(theme.Strong.Render(text))
	b.WriteString("\n\n")

	switch {
	case v.Result != nil:
		b.WriteString(theme.Subtitle.Render("Your answer: ") + theme.Body.Render(v.Answer) + "\n\n")
		b.WriteString(renderResult(*v.Result))
	case v.Submitting:
		b.WriteString(theme.Subtitle.Render("Your answer: ") + theme.Body.Render(v.Answer) + "\n\n")
		b.WriteString(theme.Pending.Render("Checking your answer..."))
	default:
		b.WriteString(s.input.View())
	}
	return b.String()
}

func renderResult(r playback.Result) string {
	switch {
	case !r.Graded:
		return theme.Hint.Render(r.Feedback)
	case r.Correct:
		return theme.Correct.Render("✓ ") + theme.Body.Render(r.Feedback)
	default:
		return theme.Incorrect.Render("✗ ") + theme.Body.Render(r.Feedback)
	}
}

func (s *Screen) renderActions() string {
	v := s.view
	label := "Next"
	if v.Final {
		label = "Finish"
	}
	buttons := []components.Button{{Key: "←", Label: "Back", Active: v.Position > 1}}
	if v.Tag == block.TagTask && !v.Locked {
		buttons = append(buttons, components.Button{Key: "⏎", Label: "Check", Active: v.CanSubmit})
	} else {
		buttons = append(buttons, components.Button{Key: "⏎", Label: label, Active: v.CanAdvance})
	}
	return components.ButtonRow(buttons...)
}

func (s *Screen) renderCompleted() string {
	l := s.player.Lesson()
	return theme.Title.Render("Lesson complete") + "\n\n" +
		theme.Body.Render(l.Title) + "\n\n" +
		theme.Hint.Render("Your progress has been saved.")
}
