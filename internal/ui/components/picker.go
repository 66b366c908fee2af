package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// Picker is a one-shot option selector. Enter chooses the highlighted
// option; number keys choose directly.
type Picker struct {
	Prompt   string
	Options  []string
	Selected int
	Chosen   int
}

// NewPicker creates a picker with the cursor on selected.
func NewPicker(prompt string, options []string, selected int) Picker {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return Picker{Prompt: prompt, Options: options, Selected: selected, Chosen: -1}
}

// Done reports whether an option was chosen.
func (p Picker) Done() bool { return p.Chosen >= 0 }

// Update handles keyboard navigation and selection.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	if p.Done() {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		p.Chosen = p.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(p.Options) {
			p.Selected = int(key[0] - '1')
			p.Chosen = p.Selected
		}
	}
	return p, nil
}

// View renders the picker.
func (p Picker) View() string {
	var b strings.Builder
	b.WriteString(theme.Strong.Render(p.Prompt) + "\n\n")
	for i, opt := range p.Options {
		line := fmt.Sprintf("%d) %s", i+1, opt)
		if i == p.Selected {
			b.WriteString(theme.Selected.Render("▸ "+line) + "\n")
			continue
		}
		b.WriteString(theme.Unselected.Render("  "+line) + "\n")
	}
	return b.String()
}
