package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screen"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/ui/components"
	"github.com/abhisek/neuroveil/internal/ui/layout"
	"github.com/abhisek/neuroveil/internal/ui/theme"
)

const quizLimit = 50

type historyLoadedMsg struct {
	Quizzes []store.QuizEvent
	Stats   []store.ConceptStat
	Err     error
}

// HistoryScreen lists finished knowledge checks and per-concept accuracy.
type HistoryScreen struct {
	eventRepo store.EventRepo
	quizzes   []store.QuizEvent
	stats     []store.ConceptStat
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		quizzes, err := s.eventRepo.QueryQuizzes(ctx, true, store.QueryOpts{Limit: quizLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Stats are a bonus; a failure here still shows the quiz list.
		stats, err := s.eventRepo.ConceptStats(ctx)
		if err != nil {
			stats = nil
		}
		return historyLoadedMsg{Quizzes: quizzes, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "Archive"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.quizzes = msg.Quizzes
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quizzes)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return centered.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered.Foreground(theme.TextDim).Render("\n\n  Reading archive...")
	}
	if len(s.quizzes) == 0 {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No cycles archived yet. Start a session to begin.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, q := range s.quizzes {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %d/%d correct  %3d%%",
			prefix, q.Timestamp.Format("Jan 02, 2006 15:04"), q.Correct, q.Total, q.Percent)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "    All channels stable"
			style := lipgloss.NewStyle().Foreground(theme.Success).Italic(true)
			if len(q.Missed) > 0 {
				detail = "    Destabilized: " + strings.Join(q.Missed, ", ")
				style = lipgloss.NewStyle().Foreground(theme.Error)
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(detail)))
			b.WriteString("\n")
		}
	}

	if len(s.stats) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Concept accuracy")))
		b.WriteString("\n")
		barWidth := min(width-8, 60)
		for _, st := range s.stats {
			label := fmt.Sprintf("%-18s %2d/%-2d", st.Concept, st.Correct, st.Attempts)
			bar := components.NewProgressBar(label, st.Accuracy(), true, barWidth)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
	}

	return b.String()
}
