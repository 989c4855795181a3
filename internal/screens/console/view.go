package console

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/profile"
	"github.com/abhisek/neuroveil/internal/timer"
	"github.com/abhisek/neuroveil/internal/ui/components"
	"github.com/abhisek/neuroveil/internal/ui/layout"
	"github.com/abhisek/neuroveil/internal/ui/theme"
)

const (
	sideWidth       = 40
	compactLogLines = 6
)

func (s *ConsoleScreen) View(width, height int) string {
	if layout.IsCompactWidth(width) {
		main := s.renderScene(width - 2)
		side := s.renderSide(width-2, compactLogLines)
		return lipgloss.JoinVertical(lipgloss.Left, main, side)
	}

	mainWidth := width - sideWidth - 3
	main := s.renderScene(mainWidth)
	side := s.renderSide(sideWidth, max(height-10, compactLogLines))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(mainWidth).Render(main),
		"  ",
		side,
	)
}

func (s *ConsoleScreen) renderScene(width int) string {
	v := s.engine.View()
	var b strings.Builder

	if v.NotFound {
		b.WriteString(theme.Incorrect.Render("  " + v.Title))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Scene %q is missing from the archive. Press r to reset.", v.ID)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(theme.Title.Render("  " + v.Title))
	b.WriteString("\n")
	if v.Kicker != "" {
		b.WriteString(theme.Kicker.Render("  " + v.Kicker))
		b.WriteString("\n")
	}
	b.WriteString(s.renderBody(v.Body, width))
	b.WriteString("\n")

	if v.Notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("  " + v.Notice))
		b.WriteString("\n\n")
	}

	if s.feedback != nil {
		b.WriteString(s.renderFeedback(width))
		b.WriteString("\n")
	}

	if s.quizActive {
		b.WriteString(s.renderQuiz(width))
	} else if len(v.Choices) > 0 {
		b.WriteString(s.menu.View())
	} else {
		b.WriteString(theme.Hint.Render("  The corridor ends here. Press r to reset."))
		b.WriteString("\n")
	}

	switch {
	case s.editing:
		b.WriteString("\n")
		b.WriteString("  ")
		b.WriteString(s.minutes.View())
		b.WriteString("\n")
	case s.confirmReset:
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  Wipe stability, score and progress? (y/N)"))
		b.WriteString("\n")
	}

	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("  " + s.status))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBody renders scene prose as markdown, falling back to plain
// wrapping when glamour fails.
func (s *ConsoleScreen) renderBody(body string, width int) string {
	plain := func() string {
		return theme.Body.Width(width).PaddingLeft(2).Render(body) + "\n"
	}
	if s.renderer == nil || s.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.DarkStyle),
			glamour.WithWordWrap(max(width-4, 20)),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			s.renderer = nil
			return plain()
		}
		s.renderer, s.rendererWidth = r, width
	}
	out, err := s.renderer.Render(body)
	if err != nil {
		return plain()
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func (s *ConsoleScreen) renderQuiz(width int) string {
	qv, ok := s.engine.QuizView()
	if !ok {
		return ""
	}
	var b strings.Builder
	header := fmt.Sprintf("KNOWLEDGE CHECK • Question %d / %d", qv.Index+1, qv.Total)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + header))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("  " + strings.Repeat("─", max(min(width-4, 60), 10))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Width(width).Render(s.mc.View()))
	return b.String()
}

func (s *ConsoleScreen) renderFeedback(width int) string {
	fb := s.feedback
	var head string
	if fb.Correct {
		head = theme.Correct.Render(fmt.Sprintf("  ✔ %s: integrity confirmed.", fb.Concept))
	} else {
		head = theme.Incorrect.Render(fmt.Sprintf("  ✖ %s: mismatch detected.", fb.Concept))
	}
	out := head + "\n"
	if fb.Answer != "" {
		out += theme.Hint.Width(width).PaddingLeft(4).Render("Correct answer: "+fb.Answer) + "\n"
	}
	if fb.Teach != "" {
		out += theme.Hint.Width(width).PaddingLeft(4).Render("↳ "+fb.Teach) + "\n"
	}
	return out
}

func (s *ConsoleScreen) renderSide(width, logLines int) string {
	p := s.engine.Profile()
	t := s.engine.Timer()

	stab := components.NewProgressBar("Stability", float64(p.Stability)/float64(profile.MaxStability), true, width-4)
	stab.Fill = theme.Success
	if p.Stability < 40 {
		stab.Fill = theme.Error
	}

	var elapsed float64
	if t.Total > 0 {
		elapsed = 1 - float64(t.Remaining)/float64(t.Total)
	}
	clock := components.NewProgressBar("T "+t.Display(), elapsed, false, width-4)
	clock.Fill = theme.Secondary

	var b strings.Builder
	b.WriteString(stab.View())
	b.WriteString("\n")
	b.WriteString(clock.View())
	b.WriteString("\n")
	if t.Next > 0 {
		b.WriteString(theme.Hint.Render("Next session: " + timer.Format(t.Next)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render("SYSTEM LOG"))
	b.WriteString("\n")

	var entries []journal.Entry
	if logLines > 0 {
		entries = s.engine.LogTail(logLines)
	}
	for _, e := range entries {
		line := e.Time.Format("15:04:05") + " " + e.Text
		b.WriteString(logStyle(e.Severity).Width(width - 4).Render(line))
		b.WriteString("\n")
	}

	return theme.Panel.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func logStyle(sev journal.Severity) lipgloss.Style {
	switch sev {
	case journal.SeveritySuccess:
		return theme.LogSuccess
	case journal.SeverityWarning:
		return theme.LogWarning
	default:
		return theme.LogInfo
	}
}
