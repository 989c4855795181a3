package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/profile"
	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/timer"
)

// MicroCheckDelta is the stability change for a micro-check answer.
const MicroCheckDelta = 2

// MaxSessionMinutes bounds SetSessionMinutes.
const MaxSessionMinutes = 180

var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidChoice  = errors.New("choice out of range")
	ErrInvalidMinutes = errors.New("session minutes must be between 1 and 180")
)

// View is the render payload for the current scene.
type View struct {
	ID       string
	Title    string
	Kicker   string
	Body     string
	Choices  []string
	Terminal bool
	NotFound bool
	Notice   string // transient message for this render, e.g. a final score
}

// TimerState is a read-only snapshot of the session timer.
type TimerState struct {
	Total     time.Duration
	Remaining time.Duration
	Running   bool
	// Next is a length change held for the next session, or zero.
	Next time.Duration
}

// Display formats the remaining time as MM:SS.
func (s TimerState) Display() string {
	return timer.Format(s.Remaining)
}

// SessionRecorder appends session lifecycle history. Failures are ignored.
type SessionRecorder interface {
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

// Config holds session tuning.
type Config struct {
	SessionDuration time.Duration
	FastDuration    time.Duration
	QuizSize        int
}

// DefaultConfig returns the classic 25-minute setup.
func DefaultConfig() Config {
	return Config{
		SessionDuration: timer.DefaultDuration,
		FastDuration:    timer.FastDuration,
		QuizSize:        5,
	}
}

// Deps are the collaborators an Engine drives.
type Deps struct {
	Graph    *Graph
	Profile  *profile.Tracker
	Quiz     *quiz.Engine
	Journal  *journal.Journal
	Recorder SessionRecorder // optional
}

// Engine is the application state: current scene, timer, quiz and log.
// It is not safe for concurrent use; the UI loop serializes all calls.
type Engine struct {
	graph   *Graph
	profile *profile.Tracker
	quiz    *quiz.Engine
	log     *journal.Journal
	rec     SessionRecorder
	timer   *timer.Timer
	cfg     Config

	view      View
	sessionID string
	fast      bool
}

// NewEngine wires an engine. Call Boot before use.
func NewEngine(deps Deps, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = def.SessionDuration
	}
	if cfg.FastDuration <= 0 {
		cfg.FastDuration = def.FastDuration
	}
	if cfg.QuizSize <= 0 {
		cfg.QuizSize = def.QuizSize
	}

	e := &Engine{
		graph:   deps.Graph,
		profile: deps.Profile,
		quiz:    deps.Quiz,
		log:     deps.Journal,
		rec:     deps.Recorder,
		timer:   timer.New(cfg.SessionDuration),
		cfg:     cfg,
	}
	if e.profile.OnSaveError == nil {
		e.profile.OnSaveError = func(err error) {
			e.log.Warning(context.Background(), "Profile save failed: %v", err)
		}
	}
	return e
}

// Boot announces the system and renders the stored scene, falling back to
// the boot anchor when the stored scene no longer exists.
func (e *Engine) Boot(ctx context.Context) View {
	e.log.Info(ctx, "System online.")
	id := e.profile.CurrentSceneID()
	if !e.graph.Has(id) {
		if id != "" {
			e.log.Warning(ctx, "Stored scene %q not found; returning to boot.", id)
		}
		id = e.graph.Anchors().Boot
	}
	return e.Render(ctx, id)
}

// Render shows scene id. An unknown id yields a not-found view and leaves
// the stored scene untouched.
func (e *Engine) Render(ctx context.Context, id string) View {
	s, ok := e.graph.Scene(id)
	if !ok {
		e.view = View{
			ID:       id,
			Title:    "Scene not found",
			Body:     fmt.Sprintf("No scene with id %q exists.", id),
			Terminal: true,
			NotFound: true,
		}
		return e.view
	}

	e.profile.SetScene(ctx, id)
	v := View{
		ID:       s.ID,
		Title:    s.Title,
		Kicker:   s.Kicker,
		Body:     s.Body,
		Terminal: s.Terminal(),
	}
	for _, c := range s.Choices {
		v.Choices = append(v.Choices, c.Label)
	}
	e.view = v
	return e.view
}

// Choose resolves choice index of the current scene. Any failure, including
// a panic inside the effect, is logged as a warning naming the choice and
// returned; the engine stays usable.
func (e *Engine) Choose(ctx context.Context, index int) (err error) {
	s, ok := e.graph.Scene(e.view.ID)
	if !ok || e.view.NotFound {
		err = fmt.Errorf("%w: %q", ErrUnknownScene, e.view.ID)
		e.log.Warning(ctx, "Choice %d failed: %v", index+1, err)
		return err
	}
	if index < 0 || index >= len(s.Choices) {
		err = fmt.Errorf("%w: %d of %d", ErrInvalidChoice, index+1, len(s.Choices))
		e.log.Warning(ctx, "Choice %d failed: %v", index+1, err)
		return err
	}

	ch := s.Choices[index]
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("choice panicked: %v", r)
		}
		if err != nil {
			e.log.Warning(ctx, "Choice %d (%s) failed: %v", index+1, ch.Label, err)
		}
	}()

	switch eff := ch.Effect.(type) {
	case Navigate:
		if v := e.Render(ctx, eff.Target); v.NotFound {
			return fmt.Errorf("%w: %q", ErrUnknownScene, eff.Target)
		}
		return nil
	case Action:
		return e.runAction(ctx, eff.Name)
	default:
		return fmt.Errorf("%w: choice has no effect", ErrUnknownAction)
	}
}

func (e *Engine) runAction(ctx context.Context, name string) error {
	switch name {
	case ActionStartSession:
		e.StartSession(ctx, false)
		return nil
	case ActionStartFast:
		e.StartSession(ctx, true)
		return nil
	case ActionContinue:
		return e.continueAfterQuiz(ctx)
	}

	mc, ok := e.graph.MicroCheck(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return e.microCheck(ctx, mc)
}

func (e *Engine) microCheck(ctx context.Context, mc MicroCheck) error {
	if mc.Correct {
		e.profile.AdjustStability(ctx, MicroCheckDelta)
		e.log.Success(ctx, "%s", mc.Explanation)
	} else {
		e.profile.AdjustStability(ctx, -MicroCheckDelta)
		e.log.Warning(ctx, "%s", mc.Explanation)
	}

	if mc.Correct && mc.Next != "" {
		if v := e.Render(ctx, mc.Next); v.NotFound {
			return fmt.Errorf("%w: %q", ErrUnknownScene, mc.Next)
		}
	}
	e.view.Notice = mc.Explanation
	return nil
}

func (e *Engine) continueAfterQuiz(ctx context.Context) error {
	target := e.graph.Router().Route(e.profile.Missed())
	if v := e.Render(ctx, target); v.NotFound {
		return fmt.Errorf("%w: %q", ErrUnknownScene, target)
	}
	return nil
}

// StartSession starts the timer and a fresh quiz. A running session is
// replaced: its quiz is discarded and the timer restarts.
func (e *Engine) StartSession(ctx context.Context, fast bool) {
	d := e.cfg.SessionDuration
	if fast {
		d = e.cfg.FastDuration
	}

	e.quiz.Discard()
	_ = e.timer.SetDuration(d)
	e.timer.Restart()
	e.sessionID = uuid.New().String()
	e.fast = fast

	e.log.Success(ctx, "SESSION START: focus corridor engaged.")
	e.record(ctx, "start")

	if r := e.quiz.Start(ctx, e.cfg.QuizSize); r != nil {
		e.Render(ctx, e.graph.Anchors().Debrief)
	}
}

// PauseSession stops the countdown, keeping the remaining time.
func (e *Engine) PauseSession(ctx context.Context) {
	if !e.timer.Running() {
		return
	}
	e.timer.Pause()
	e.log.Info(ctx, "SESSION PAUSED.")
	e.record(ctx, "pause")
}

// ResumeSession continues a paused session. It does nothing when no
// session is paused.
func (e *Engine) ResumeSession(ctx context.Context) {
	if e.timer.Running() || e.sessionID == "" || e.timer.Remaining() <= 0 {
		return
	}
	e.timer.Start()
	e.log.Info(ctx, "SESSION RESUMED.")
	e.record(ctx, "resume")
}

// SetSessionMinutes changes the standard session length. While a session
// is running the change applies to the next one.
func (e *Engine) SetSessionMinutes(ctx context.Context, minutes int) error {
	if minutes < 1 || minutes > MaxSessionMinutes {
		return fmt.Errorf("%w: got %d", ErrInvalidMinutes, minutes)
	}
	d := time.Duration(minutes) * time.Minute
	e.cfg.SessionDuration = d
	if err := e.timer.SetDuration(d); err != nil {
		return err
	}
	if e.timer.Running() {
		e.log.Info(ctx, "Session length set to %d min (applies next session).", minutes)
	} else {
		e.log.Info(ctx, "Session length set to %d min.", minutes)
	}
	return nil
}

// Tick advances the timer by one second. On expiry it logs the final score
// and renders the summary scene; the quiz is left as it is.
func (e *Engine) Tick(ctx context.Context) (expired bool) {
	if !e.timer.Tick() {
		return false
	}

	e.log.Info(ctx, "SESSION END: timer complete.")
	e.record(ctx, "expire")

	var notice string
	if pct, ok := e.profile.LastScore(); ok {
		e.log.Success(ctx, "FINAL SCORE: %d%%", pct)
		notice = fmt.Sprintf("Final score: %d%%", pct)
	} else {
		e.log.Warning(ctx, "FINAL SCORE: — (no quiz completed)")
		notice = "No quiz completed this session."
	}
	e.sessionID = ""

	e.Render(ctx, e.graph.Anchors().Summary)
	e.view.Notice = notice
	return true
}

// Reset stops everything, restores the default profile and clears the log.
func (e *Engine) Reset(ctx context.Context) View {
	e.timer.Reset()
	e.quiz.Discard()
	e.profile.Reset(ctx)
	e.log.Clear()
	e.log.Info(ctx, "System reset.")
	e.record(ctx, "reset")
	e.sessionID = ""
	e.fast = false
	return e.Render(ctx, e.graph.Anchors().Boot)
}

// SelectOption records a tentative quiz answer.
func (e *Engine) SelectOption(i int) error {
	return e.quiz.Select(i)
}

// SubmitAnswer scores the selected option. When it completes the quiz the
// debrief scene is rendered.
func (e *Engine) SubmitAnswer(ctx context.Context) (quiz.Feedback, error) {
	fb, err := e.quiz.Submit(ctx)
	if err != nil {
		return fb, err
	}
	if fb.Complete {
		e.Render(ctx, e.graph.Anchors().Debrief)
	}
	return fb, nil
}

// View returns the current scene payload.
func (e *Engine) View() View { return e.view }

// QuizView returns the current question, if a quiz is active.
func (e *Engine) QuizView() (quiz.QuestionView, bool) { return e.quiz.View() }

// Log returns every journal entry.
func (e *Engine) Log() []journal.Entry { return e.log.Entries() }

// LogTail returns up to n of the latest journal entries.
func (e *Engine) LogTail(n int) []journal.Entry { return e.log.Tail(n) }

// Timer returns a snapshot of the session timer.
func (e *Engine) Timer() TimerState {
	st := TimerState{Total: e.timer.Total(), Remaining: e.timer.Remaining(), Running: e.timer.Running()}
	if next, ok := e.timer.Pending(); ok {
		st.Next = next
	}
	return st
}

// SessionActive reports whether a session has started and not expired.
func (e *Engine) SessionActive() bool { return e.sessionID != "" }

// FastSession reports whether the current session is a short test cycle.
func (e *Engine) FastSession() bool { return e.fast }

// Profile returns a snapshot of the learner profile.
func (e *Engine) Profile() profile.Profile { return e.profile.Profile() }

// Graph returns the scene graph.
func (e *Engine) Graph() *Graph { return e.graph }

func (e *Engine) record(ctx context.Context, action string) {
	if e.rec == nil {
		return
	}
	_ = e.rec.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:     e.sessionID,
		Action:        action,
		Fast:          e.fast,
		DurationSecs:  int(e.timer.Total() / time.Second),
		RemainingSecs: int(e.timer.Remaining() / time.Second),
	})
}
