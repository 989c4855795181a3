package components

import (
	"fmt"
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/ui/theme"
)

// NumberField is a digits-only prompt for a whole number in [Min, Max].
// An empty field commits the number it was opened with.
type NumberField struct {
	Label    string
	Min, Max int
	current  int
	input    textinput.Model
	err      error
}

// NewNumberField opens a focused field showing current as its placeholder.
func NewNumberField(label string, current, lo, hi int) NumberField {
	in := textinput.New()
	in.Placeholder = strconv.Itoa(current)
	in.CharLimit = len(strconv.Itoa(hi))
	in.Focus()
	return NumberField{Label: label, Min: lo, Max: hi, current: current, input: in}
}

// Focus returns the cursor blink command.
func (f NumberField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Update feeds msg to the input. Printable non-digits are dropped; any edit
// clears a previous rejection.
func (f NumberField) Update(msg tea.Msg) (NumberField, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		if t := k.Text; t != "" && (t[0] < '0' || t[0] > '9') {
			return f, nil
		}
		f.err = nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// Commit parses the field. Out-of-range or unparsable input is rejected and
// shown under the prompt until the next edit.
func (f *NumberField) Commit() (int, bool) {
	raw := f.input.Value()
	if raw == "" {
		return f.current, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < f.Min || n > f.Max {
		f.Reject(fmt.Errorf("enter a number between %d and %d", f.Min, f.Max))
		return 0, false
	}
	return n, true
}

// Reject marks the field invalid with err.
func (f *NumberField) Reject(err error) {
	f.err = err
}

// Err is the current rejection, if any.
func (f NumberField) Err() error { return f.err }

func (f NumberField) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Accent).
		Render(fmt.Sprintf("%s (%d-%d): ", f.Label, f.Min, f.Max))
	v := label + f.input.View()
	if f.err != nil {
		v += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+f.err.Error())
	}
	return v
}
