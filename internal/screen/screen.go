package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/neuroveil/internal/ui/layout"
)

// Screen is a full-window view managed by the router.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen body, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens that want their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that fill the header chips.
type StatusProvider interface {
	Status() layout.Status
}
