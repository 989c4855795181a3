// Package console is the main screen: the current scene, its choices, the
// knowledge check panel and the running log.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"

	"github.com/abhisek/neuroveil/internal/narrative"
	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screen"
	"github.com/abhisek/neuroveil/internal/screens/history"
	"github.com/abhisek/neuroveil/internal/screens/summary"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/ui/components"
	"github.com/abhisek/neuroveil/internal/ui/layout"
)

// Options are the optional collaborators of a ConsoleScreen.
type Options struct {
	// Events backs the history screen. Without it the history key is inert.
	Events store.EventRepo
	// Teach supplies review lines on the quiz summary.
	Teach summary.TeachFunc
	// BeforeReset runs before a confirmed reset wipes the profile.
	BeforeReset func()
}

// ConsoleScreen drives a narrative.Engine from key presses and TickMsg.
type ConsoleScreen struct {
	ctx    context.Context
	engine *narrative.Engine
	opts   Options

	menu    components.Menu
	menuFor string

	mc         components.MultiChoice
	mcKey      string
	quizActive bool
	feedback   *quiz.Feedback

	minutes      components.NumberField
	editing      bool
	confirmReset bool
	status       string

	renderer      *glamour.TermRenderer
	rendererWidth int
}

var _ screen.Screen = (*ConsoleScreen)(nil)
var _ screen.KeyHintProvider = (*ConsoleScreen)(nil)
var _ screen.StatusProvider = (*ConsoleScreen)(nil)

// New creates a ConsoleScreen for an engine that has already booted.
func New(ctx context.Context, engine *narrative.Engine, opts Options) *ConsoleScreen {
	s := &ConsoleScreen{ctx: ctx, engine: engine, opts: opts}
	s.sync()
	return s
}

func (s *ConsoleScreen) Init() tea.Cmd {
	return nil
}

func (s *ConsoleScreen) Title() string {
	switch {
	case !s.engine.SessionActive():
		return "Standby"
	case !s.engine.Timer().Running:
		return "Session Paused"
	case s.engine.FastSession():
		return "Test Cycle"
	default:
		return "Focus Session"
	}
}

func (s *ConsoleScreen) Status() layout.Status {
	p := s.engine.Profile()
	t := s.engine.Timer()
	st := layout.Status{
		Stability: p.Stability,
		Timer:     t.Display(),
		Running:   t.Running,
	}
	if p.HasScore() {
		st.Score, st.HasScore = *p.LastScore, true
	}
	return st
}

func (s *ConsoleScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.editing:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.confirmReset:
		return []layout.KeyHint{
			{Key: "Y", Description: "Wipe profile"},
			{Key: "any key", Description: "Cancel"},
		}
	case s.quizActive:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "A-D", Description: "Select"},
			{Key: "Enter", Description: "Submit"},
			{Key: "p", Description: "Pause"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Choose"},
		{Key: "s", Description: "Session"},
		{Key: "f", Description: "Fast"},
		{Key: "p", Description: "Pause"},
		{Key: "m", Description: "Minutes"},
		{Key: "h", Description: "History"},
		{Key: "r", Description: "Reset"},
	}
}

func (s *ConsoleScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if s.engine.Tick(s.ctx) {
			s.feedback = nil
			s.sync()
		}
		return s, nil

	case choiceMsg:
		s.feedback = nil
		if err := s.engine.Choose(s.ctx, int(msg)); err != nil {
			s.status = err.Error()
		} else {
			s.status = ""
		}
		s.sync()
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.minutes, cmd = s.minutes.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ConsoleScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.editing {
		return s.handleMinutesKey(msg)
	}
	if s.confirmReset {
		s.confirmReset = false
		if key == "y" || key == "Y" {
			if s.opts.BeforeReset != nil {
				s.opts.BeforeReset()
			}
			s.engine.Reset(s.ctx)
			s.feedback = nil
			s.status = ""
			s.sync()
		}
		return s, nil
	}

	switch key {
	case "s":
		return s.startSession(false)
	case "f":
		return s.startSession(true)
	case "p":
		s.togglePause()
		return s, nil
	case "r":
		s.confirmReset = true
		return s, nil
	case "m":
		s.editing = true
		current := int(s.engine.Timer().Total / time.Minute)
		s.minutes = components.NewNumberField("Session minutes", current, 1, narrative.MaxSessionMinutes)
		return s, s.minutes.Focus()
	case "h":
		if s.opts.Events == nil {
			return s, nil
		}
		h := history.New(s.opts.Events)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: h} }
	}

	if s.quizActive {
		return s.handleQuizKey(key, msg)
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ConsoleScreen) handleQuizKey(key string, msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if i, ok := s.mc.OptionIndex(key); ok {
		s.mc.Cursor = i
		s.selectOption(i)
		return s, nil
	}
	if key == "space" {
		s.selectOption(s.mc.Cursor)
		return s, nil
	}
	if key != "enter" {
		s.mc, _ = s.mc.Update(msg)
		return s, nil
	}

	if s.mc.Chosen == components.NoChoice {
		s.selectOption(s.mc.Cursor)
	}
	fb, err := s.engine.SubmitAnswer(s.ctx)
	if err != nil {
		s.status = submitError(err)
		return s, nil
	}
	s.status = ""
	s.feedback = &fb
	s.sync()

	if fb.Complete && fb.Result != nil {
		sum := summary.New(*fb.Result, s.opts.Teach)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: sum} }
	}
	return s, nil
}

func (s *ConsoleScreen) selectOption(i int) {
	if err := s.engine.SelectOption(i); err != nil {
		s.status = err.Error()
		return
	}
	s.status = ""
	s.mc.Chosen = i
}

func submitError(err error) string {
	switch {
	case errors.Is(err, quiz.ErrNoSelection):
		return "Select an option first."
	case errors.Is(err, quiz.ErrNotActive):
		return "No knowledge check in progress."
	default:
		return err.Error()
	}
}

func (s *ConsoleScreen) handleMinutesKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.editing = false
		s.status = ""
		return s, nil
	case "enter":
		n, ok := s.minutes.Commit()
		if !ok {
			return s, nil
		}
		if err := s.engine.SetSessionMinutes(s.ctx, n); err != nil {
			s.minutes.Reject(err)
			return s, nil
		}
		s.editing = false
		s.status = ""
		return s, nil
	}

	var cmd tea.Cmd
	s.minutes, cmd = s.minutes.Update(msg)
	return s, cmd
}

func (s *ConsoleScreen) startSession(fast bool) (screen.Screen, tea.Cmd) {
	s.engine.StartSession(s.ctx, fast)
	s.feedback = nil
	s.status = ""
	s.sync()
	return s, nil
}

func (s *ConsoleScreen) togglePause() {
	switch {
	case s.engine.Timer().Running:
		s.engine.PauseSession(s.ctx)
	case s.engine.SessionActive():
		s.engine.ResumeSession(s.ctx)
	default:
		s.status = "No session running. Press s to start one."
	}
}

// sync rebuilds the choice menu and quiz panel from the engine state.
func (s *ConsoleScreen) sync() {
	v := s.engine.View()
	sig := v.ID + "\x00" + fmt.Sprint(v.Choices)
	if sig != s.menuFor {
		items := make([]components.MenuItem, len(v.Choices))
		for i, label := range v.Choices {
			items[i] = components.MenuItem{
				Label:  label,
				Action: func() tea.Cmd { return func() tea.Msg { return choiceMsg(i) } },
			}
		}
		s.menu = components.NewMenu(items)
		s.menu.Numbered = true
		s.menuFor = sig
	}

	qv, ok := s.engine.QuizView()
	if !ok {
		s.quizActive = false
		s.mcKey = ""
		return
	}
	key := fmt.Sprintf("%d/%d %s", qv.Index, qv.Total, qv.Prompt)
	if key != s.mcKey {
		s.mc = components.NewMultiChoice(qv.Prompt, qv.Options)
		s.mcKey = key
	}
	s.mc.Chosen = qv.Selected
	s.quizActive = true
}
