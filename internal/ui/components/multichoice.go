package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/ui/theme"
)

// NoChoice marks an unset Chosen or Correct index.
const NoChoice = -1

// MultiChoice renders a lettered option list with a cursor. The caller owns
// selection: it reads Cursor and writes Chosen. Correct is revealed only
// when set.
type MultiChoice struct {
	Prompt  string
	Options []string
	Cursor  int
	Chosen  int
	Correct int
}

// NewMultiChoice creates a component with nothing chosen.
func NewMultiChoice(prompt string, options []string) MultiChoice {
	return MultiChoice{
		Prompt:  prompt,
		Options: options,
		Chosen:  NoChoice,
		Correct: NoChoice,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	}
	return m, nil
}

// OptionIndex maps a letter or digit key to an option index.
func (m MultiChoice) OptionIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	var i int
	switch c := key[0]; {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	return i, i < len(m.Options)
}

// View renders the prompt and options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Prompt))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %c)  %s", prefix, mark, 'A'+i, opt)

		style := theme.Unselected
		switch {
		case m.Correct != NoChoice && i == m.Correct:
			style = theme.Correct
		case m.Correct != NoChoice && i == m.Chosen:
			style = theme.Incorrect
		case i == m.Chosen || i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
