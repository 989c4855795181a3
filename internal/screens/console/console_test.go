package console

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/neuroveil/internal/content"
	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/narrative"
	"github.com/abhisek/neuroveil/internal/profile"
	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screens/history"
	"github.com/abhisek/neuroveil/internal/screens/summary"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/terms"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

type fixture struct {
	screen *ConsoleScreen
	engine *narrative.Engine
	log    *journal.Journal
	pack   *content.Pack
	resets int
}

func newFixture(t *testing.T, cfg narrative.Config) *fixture {
	t.Helper()
	ctx := context.Background()

	pack, err := content.Default()
	require.NoError(t, err)
	bank := terms.FromPack(pack)
	rng := rand.New(rand.NewPCG(11, 12))

	tracker := profile.NewTracker(ctx, profile.NewStore(profile.NewMemoryKV(), bank.Known))
	log := journal.New(nil)
	q := quiz.NewEngine(bank, quiz.CuratedFromPack(pack), tracker, log, quiz.Options{Scope: pack.Scope, Rand: rng})

	eng := narrative.NewEngine(narrative.Deps{
		Graph:   narrative.FromPack(pack),
		Profile: tracker,
		Quiz:    q,
		Journal: log,
	}, cfg)
	eng.Boot(ctx)

	f := &fixture{engine: eng, log: log, pack: pack}
	f.screen = New(ctx, eng, Options{
		Teach:       func(string) string { return "review" },
		BeforeReset: func() { f.resets++ },
	})
	return f
}

func defaultFixture(t *testing.T) *fixture {
	return newFixture(t, narrative.DefaultConfig())
}

// press sends a key and, when it activates a scene choice, delivers the
// resulting choiceMsg too. It returns the last command.
func (f *fixture) press(msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := f.screen.Update(msg)
	if cmd == nil {
		return nil
	}
	if c, ok := cmd().(choiceMsg); ok {
		_, cmd = f.screen.Update(c)
	}
	return cmd
}

func (f *fixture) view() string {
	return ansi.Strip(f.screen.View(120, 40))
}

func (f *fixture) correctIndex(t *testing.T) int {
	t.Helper()
	qv, ok := f.engine.QuizView()
	require.True(t, ok)
	for _, q := range f.pack.Questions {
		if q.Prompt == qv.Prompt {
			return q.Answer
		}
	}
	for _, c := range f.pack.Concepts {
		if qv.Prompt == "Which definition matches "+c.Name+"?" {
			for i, o := range qv.Options {
				if o == c.Definition {
					return i
				}
			}
		}
	}
	t.Fatalf("unknown question %q", qv.Prompt)
	return -1
}

func (f *fixture) logTexts() []string {
	var out []string
	for _, e := range f.log.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func TestConsole_BootView(t *testing.T) {
	f := defaultFixture(t)

	assert.Equal(t, "Standby", f.screen.Title())
	view := f.view()
	assert.Contains(t, view, "Boot Sequence")
	assert.Contains(t, view, "1. Begin calibration (recommended)")
	assert.Contains(t, view, "SYSTEM LOG")
	assert.Contains(t, view, "System online.")
}

func TestConsole_ChoiceNavigates(t *testing.T) {
	f := defaultFixture(t)

	f.press(keyPress('2'))
	assert.Equal(t, "interface", f.engine.View().ID)

	f.press(specialKey(tea.KeyDown))
	f.press(specialKey(tea.KeyEnter))
	assert.Equal(t, "lattice_probe", f.engine.View().ID)
	assert.Contains(t, f.view(), "Field Test")
}

func TestConsole_SessionQuizFlow(t *testing.T) {
	f := defaultFixture(t)

	f.press(keyPress('s'))
	assert.Equal(t, "Focus Session", f.screen.Title())
	require.True(t, f.screen.quizActive)
	assert.Contains(t, f.view(), "KNOWLEDGE CHECK • Question 1 / 5")

	var last tea.Cmd
	for i := 0; f.screen.quizActive; i++ {
		require.Less(t, i, 10, "quiz did not finish")
		want := f.correctIndex(t)
		f.press(keyPress(rune('a' + want)))
		assert.Equal(t, want, f.screen.mc.Chosen)
		last = f.press(specialKey(tea.KeyEnter))
	}

	require.NotNil(t, last, "finishing the quiz pushes the summary")
	push, ok := last().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &summary.SummaryScreen{}, push.Screen)

	assert.Equal(t, "debrief", f.engine.View().ID)
	st := f.screen.Status()
	assert.True(t, st.HasScore)
	assert.Equal(t, 100, st.Score)
	assert.Equal(t, 65, st.Stability)
	assert.Contains(t, f.view(), "integrity confirmed")
}

func TestConsole_EnterWithoutSelectionUsesCursor(t *testing.T) {
	f := defaultFixture(t)
	f.press(keyPress('s'))

	f.press(specialKey(tea.KeyDown))
	f.press(specialKey(tea.KeyEnter))

	require.NotNil(t, f.screen.feedback)
	assert.Empty(t, f.screen.status)
	qv, ok := f.engine.QuizView()
	require.True(t, ok)
	assert.Equal(t, 1, qv.Index)
}

func TestConsole_PauseResume(t *testing.T) {
	f := defaultFixture(t)

	f.press(keyPress('p'))
	assert.Contains(t, f.screen.status, "No session running")

	f.press(keyPress('f'))
	assert.Equal(t, "Test Cycle", f.screen.Title())

	f.press(keyPress('p'))
	assert.Equal(t, "Session Paused", f.screen.Title())
	assert.False(t, f.engine.Timer().Running)

	f.press(keyPress('p'))
	assert.True(t, f.engine.Timer().Running)
	assert.Contains(t, f.logTexts(), "SESSION RESUMED.")
}

func TestConsole_TickExpiresSession(t *testing.T) {
	cfg := narrative.DefaultConfig()
	cfg.SessionDuration = 3 * time.Second
	f := newFixture(t, cfg)

	f.press(keyPress('s'))
	for range 3 {
		f.screen.Update(TickMsg(time.Now()))
	}

	assert.Equal(t, "Standby", f.screen.Title())
	assert.Equal(t, "session_end", f.engine.View().ID)
	view := f.view()
	assert.Contains(t, view, "Session Complete")
	assert.Contains(t, view, "No quiz completed this session.")
}

func TestConsole_SetMinutes(t *testing.T) {
	f := defaultFixture(t)

	f.screen.Update(keyPress('m'))
	require.True(t, f.screen.editing)
	assert.Equal(t, "Apply", f.screen.KeyHints()[0].Description)

	f.screen.Update(keyPress('4'))
	f.screen.Update(keyPress('0'))
	f.press(specialKey(tea.KeyEnter))
	assert.False(t, f.screen.editing)
	assert.Equal(t, 40*time.Minute, f.engine.Timer().Total)

	f.screen.Update(keyPress('m'))
	f.screen.Update(keyPress('0'))
	f.press(specialKey(tea.KeyEnter))
	assert.True(t, f.screen.editing)
	assert.Contains(t, f.view(), "Session minutes (1-180):")
	assert.Contains(t, f.view(), "between 1 and 180")

	f.press(specialKey(tea.KeyEscape))
	assert.False(t, f.screen.editing)
	assert.Equal(t, 40*time.Minute, f.engine.Timer().Total)
}

func TestConsole_PendingLengthShown(t *testing.T) {
	f := defaultFixture(t)

	f.press(keyPress('s'))
	require.NoError(t, f.engine.SetSessionMinutes(context.Background(), 40))
	assert.Contains(t, f.view(), "Next session: 40:00")

	f.press(keyPress('s'))
	assert.NotContains(t, f.view(), "Next session:")
}

func TestConsole_MissShowsCorrectAnswer(t *testing.T) {
	f := defaultFixture(t)

	f.press(keyPress('s'))
	want := f.correctIndex(t)
	qv, ok := f.engine.QuizView()
	require.True(t, ok)
	answer := qv.Options[want]
	wrong := (want + 1) % len(qv.Options)
	f.press(keyPress(rune('a' + wrong)))
	f.press(specialKey(tea.KeyEnter))

	require.NotNil(t, f.screen.feedback)
	assert.Equal(t, answer, f.screen.feedback.Answer)
	assert.Contains(t, f.view(), "Correct answer: "+strings.Fields(answer)[0])
}

func TestConsole_ResetNeedsConfirmation(t *testing.T) {
	f := defaultFixture(t)
	f.press(keyPress('1'))
	require.Equal(t, "calibration", f.engine.View().ID)

	f.press(keyPress('r'))
	assert.Contains(t, f.view(), "(y/N)")
	f.press(keyPress('n'))
	assert.Equal(t, "calibration", f.engine.View().ID)
	assert.Equal(t, 0, f.resets)

	f.press(keyPress('r'))
	f.press(keyPress('y'))
	assert.Equal(t, "boot", f.engine.View().ID)
	assert.Equal(t, 1, f.resets)
	assert.Equal(t, []string{"System reset."}, f.logTexts())
}

func TestConsole_HistoryNeedsEvents(t *testing.T) {
	f := defaultFixture(t)
	_, cmd := f.screen.Update(keyPress('h'))
	assert.Nil(t, cmd)
}

func TestConsole_HistoryPush(t *testing.T) {
	f := defaultFixture(t)
	f.screen.opts.Events = nopEvents{}

	_, cmd := f.screen.Update(keyPress('h'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &history.HistoryScreen{}, push.Screen)
}

func TestConsole_MicroCheckNotice(t *testing.T) {
	f := defaultFixture(t)
	f.press(keyPress('2')) // interface
	f.press(keyPress('2')) // lattice_probe
	f.press(keyPress('2')) // cerebellum: wrong

	assert.Equal(t, "lattice_probe", f.engine.View().ID)
	assert.Equal(t, 48, f.screen.Status().Stability)
	assert.Contains(t, f.view(), "does not evaluate threats")
}

func TestConsole_CompactLayout(t *testing.T) {
	f := defaultFixture(t)
	view := ansi.Strip(f.screen.View(80, 24))
	assert.Contains(t, view, "Boot Sequence")
	assert.Contains(t, view, "SYSTEM LOG")
	assert.True(t, strings.Index(view, "Boot Sequence") < strings.Index(view, "SYSTEM LOG"))
}

func TestConsole_KeyHints(t *testing.T) {
	f := defaultFixture(t)
	assert.NotEmpty(t, f.screen.KeyHints())

	f.press(keyPress('s'))
	assert.Equal(t, "Move", f.screen.KeyHints()[0].Description)
}

// nopEvents is an empty event history.
type nopEvents struct{}

func (nopEvents) AppendSessionEvent(context.Context, store.SessionEventData) error { return nil }
func (nopEvents) AppendQuizEvent(context.Context, store.QuizEventData) error       { return nil }
func (nopEvents) AppendAnswerEvent(context.Context, store.AnswerEventData) error   { return nil }
func (nopEvents) AppendLogLine(context.Context, string, string) error              { return nil }
func (nopEvents) QueryQuizzes(context.Context, bool, store.QueryOpts) ([]store.QuizEvent, error) {
	return nil, nil
}
func (nopEvents) QuerySessions(context.Context, store.QueryOpts) ([]store.SessionEvent, error) {
	return nil, nil
}
func (nopEvents) QueryLog(context.Context, store.QueryOpts) ([]store.LogEvent, error) {
	return nil, nil
}
func (nopEvents) ConceptAccuracy(context.Context, string) (float64, error)  { return 0, nil }
func (nopEvents) ConceptStats(context.Context) ([]store.ConceptStat, error) { return nil, nil }
