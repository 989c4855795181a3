package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screen"
	"github.com/abhisek/neuroveil/internal/ui/components"
	"github.com/abhisek/neuroveil/internal/ui/layout"
	"github.com/abhisek/neuroveil/internal/ui/theme"
)

// TeachFunc returns the review line for a missed concept, or "".
type TeachFunc func(concept string) string

// SummaryScreen shows the result of a completed knowledge check.
type SummaryScreen struct {
	result quiz.Result
	teach  TeachFunc
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. teach may be nil.
func New(result quiz.Result, teach TeachFunc) *SummaryScreen {
	return &SummaryScreen{result: result, teach: teach}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Cycle Analysis"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render("QUIZ COMPLETE")))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Correct: %d / %d        Score: %d%%", r.Correct, r.Total, r.Percent)
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", float64(r.Percent)/100, false, min(width-8, 50))
	bar.Fill = scoreColor(r.Percent)
	b.WriteString(center(bar.View()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))

	if len(r.Missed) == 0 {
		b.WriteString(center(theme.Correct.Render("All channels stable.")))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Destabilized")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	for _, concept := range r.Missed {
		b.WriteString(center(theme.Incorrect.Render("✖ " + concept)))
		b.WriteString("\n")
		if s.teach != nil {
			if line := s.teach(concept); line != "" {
				b.WriteString(center(theme.Hint.Width(min(width-8, 70)).Render("↳ " + line)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func scoreColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 50:
		return theme.Accent
	default:
		return theme.Error
	}
}
