package console

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// TickMsg advances the session countdown by one second. The app model owns
// the tick loop so the countdown keeps running under pushed screens.
type TickMsg time.Time

// TickCmd schedules the next TickMsg.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// choiceMsg is sent when a scene choice is activated from the menu.
type choiceMsg int
