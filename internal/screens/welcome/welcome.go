package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screen"
	"github.com/abhisek/neuroveil/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	lineInterval = 400 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

const tagline = "Attention is fuel. Recall is the map."

// bootLines scroll in one by one before the banner appears.
var bootLines = []string{
	"› linking synaptic lattice",
	"› limbic gate ........ standby",
	"› hippocampal index .. standby",
	"› focus corridor ..... sealed",
}

// glyphFrames flicker at the banner edges.
var glyphFrames = []string{"◈", "◇"}

type tickMsg time.Time

// WelcomeScreen plays the boot sequence, then hands over to the console.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with next() on a key press.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed = min(w.elapsed+tickInterval, totalDur)
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		// Any key skips the rest of the sequence.
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	shown := min(int(w.elapsed/lineInterval), len(bootLines))
	lineStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	for _, l := range bootLines[:shown] {
		sections = append(sections, lineStyle.Render(l))
	}

	if shown == len(bootLines) {
		glyph := lipgloss.NewStyle().Foreground(theme.Secondary).
			Render(glyphFrames[w.tickCount%len(glyphFrames)])

		banner := strings.Split(RenderBanner(width), "\n")
		for i := range banner {
			if i%3 == 1 {
				banner[i] = glyph + "  " + banner[i] + "  " + glyph
			}
		}

		sections = append(sections, "", strings.Join(banner, "\n"), "")
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(tagline))
		sections = append(sections, "", theme.Hint.Render("press any key to begin"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
