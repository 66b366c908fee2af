// Package lessonlist shows a group's lessons with the caller's progress.
package lessonlist

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/progress"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/editor"
	"github.com/abhisek/examprep/internal/screens/player"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

type loadedMsg struct {
	list []lesson.Summary
	err  error
}

// Screen lists the lessons of one group.
type Screen struct {
	env     screens.Env
	list    []lesson.Summary
	menu    components.Menu
	loading bool
	err     error
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(env screens.Env) *Screen {
	return &Screen{env: env, loading: true}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

func (s *Screen) Title() string {
	return "Lessons · " + s.env.GroupID
}

func (s *Screen) load() tea.Cmd {
	s.loading = true
	env := s.env
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		list, err := env.Tracker.Lessons(ctx, env.GroupID)
		return loadedMsg{list: list, err: err}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.setList(msg.list)
		}
		return s, nil

	case screens.RefreshMsg:
		if msg.GroupID == "" || msg.GroupID == s.env.GroupID {
			return s, s.load()
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) setList(list []lesson.Summary) {
	selected := s.menu.Selected
	s.list = list
	items := make([]components.MenuItem, len(list))
	for i, l := range list {
		id := l.ID
		detail := fmt.Sprintf("%d blocks", l.BlockCount)
		if l.Completed {
			detail = "✓ completed"
		}
		items[i] = components.MenuItem{
			Label:  l.Title,
			Detail: detail,
			Action: func() tea.Cmd {
				return push(player.New(s.env, id))
			},
		}
	}
	s.menu = components.NewMenu(items)
	s.menu.Select(selected)
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "r":
		s.env.Tracker.Notify(progress.Refresh{GroupID: s.env.GroupID})
		return s, s.load()
	case "n":
		if s.env.CanAuthor() {
			return s, push(editor.New(s.env, ""))
		}
	case "e":
		if s.env.CanAuthor() && len(s.list) > 0 {
			return s, push(editor.New(s.env, s.list[s.menu.Selected].ID))
		}
	}
	if len(s.list) == 0 {
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "r", Description: "Reload"},
	}
	if s.env.CanAuthor() {
		hints = append(hints,
			layout.KeyHint{Key: "e", Description: "Edit"},
			layout.KeyHint{Key: "n", Description: "New"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case s.err != nil:
		b.WriteString(theme.Banner.Render("Could not load lessons: " + s.err.Error()))
		b.WriteString("\n\n" + theme.Hint.Render("Press r to try again."))
	case s.loading && s.list == nil:
		b.WriteString(theme.Hint.Render("  Loading lessons..."))
	case len(s.list) == 0:
		b.WriteString(theme.Hint.Render("  No lessons in this group yet."))
	default:
		barWidth := width - 8
		if barWidth > 60 {
			barWidth = 60
		}
		done := progress.Completed(s.list)
		bar := components.NewProgressBar(
			fmt.Sprintf("%d/%d done", done, len(s.list)), done, len(s.list), true, barWidth)
		b.WriteString("  " + bar.View() + "\n\n")
		b.WriteString(s.menu.View())
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}
