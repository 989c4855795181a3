package narrative

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/neuroveil/internal/content"
	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/profile"
	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/terms"
)

type sessionRecorder struct {
	actions []string
}

func (r *sessionRecorder) AppendSessionEvent(_ context.Context, d store.SessionEventData) error {
	r.actions = append(r.actions, d.Action)
	return nil
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingKV) Set(context.Context, string, string) error       { return errors.New("disk full") }

type harness struct {
	engine  *Engine
	tracker *profile.Tracker
	quiz    *quiz.Engine
	kv      profile.KV
	log     *journal.Journal
	rec     *sessionRecorder
}

func newHarness(t *testing.T, kv profile.KV, cfg Config) *harness {
	t.Helper()
	ctx := context.Background()

	pack, err := content.Default()
	require.NoError(t, err)
	bank := terms.FromPack(pack)
	rng := rand.New(rand.NewPCG(3, 4))

	tracker := profile.NewTracker(ctx, profile.NewStore(kv, bank.Known))
	log := journal.New(nil)
	q := quiz.NewEngine(bank, quiz.CuratedFromPack(pack), tracker, log, quiz.Options{
		Scope: pack.Scope,
		Rand:  rng,
		Consequence: func(name string) string {
			c, _ := bank.ByName(name)
			return c.Consequence
		},
	})
	rec := &sessionRecorder{}

	e := NewEngine(Deps{
		Graph:    FromPack(pack),
		Profile:  tracker,
		Quiz:     q,
		Journal:  log,
		Recorder: rec,
	}, cfg)
	return &harness{engine: e, tracker: tracker, quiz: q, kv: kv, log: log, rec: rec}
}

func defaultHarness(t *testing.T) *harness {
	return newHarness(t, profile.NewMemoryKV(), DefaultConfig())
}

func (h *harness) texts() []string {
	var out []string
	for _, e := range h.log.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func (h *harness) chooseLabel(t *testing.T, label string) {
	t.Helper()
	for i, c := range h.engine.View().Choices {
		if strings.HasPrefix(c, label) {
			require.NoError(t, h.engine.Choose(context.Background(), i))
			return
		}
	}
	t.Fatalf("no choice %q on scene %q", label, h.engine.View().ID)
}

// answerAll submits every remaining question, answering correctly when
// correct returns true for the question's concept.
func (h *harness) answerAll(t *testing.T, correct func(concept string) bool) quiz.Feedback {
	t.Helper()
	ctx := context.Background()
	var fb quiz.Feedback
	for h.quiz.Active() {
		v, ok := h.engine.QuizView()
		require.True(t, ok)
		pick := h.correctIndex(t, v)
		if !correct(h.currentConcept(t)) {
			pick = (pick + 1) % len(v.Options)
		}
		require.NoError(t, h.engine.SelectOption(pick))
		var err error
		fb, err = h.engine.SubmitAnswer(ctx)
		require.NoError(t, err)
	}
	return fb
}

func (h *harness) correctIndex(t *testing.T, v quiz.QuestionView) int {
	t.Helper()
	pack, _ := content.Default()
	for _, q := range pack.Questions {
		if q.Prompt == v.Prompt {
			return q.Answer
		}
	}
	for _, c := range pack.Concepts {
		if v.Prompt == "Which definition matches "+c.Name+"?" {
			for i, o := range v.Options {
				if o == c.Definition {
					return i
				}
			}
		}
	}
	t.Fatalf("unknown question %q", v.Prompt)
	return 0
}

func (h *harness) currentConcept(t *testing.T) string {
	t.Helper()
	v, _ := h.engine.QuizView()
	pack, _ := content.Default()
	for _, q := range pack.Questions {
		if q.Prompt == v.Prompt {
			return q.Concept
		}
	}
	for _, c := range pack.Concepts {
		if v.Prompt == "Which definition matches "+c.Name+"?" {
			return c.Name
		}
	}
	t.Fatalf("unknown question %q", v.Prompt)
	return ""
}

func expire(h *harness) bool {
	ctx := context.Background()
	for i := 0; i < 24*60*60; i++ {
		if h.engine.Tick(ctx) {
			return true
		}
	}
	return false
}

func TestBoot_RendersStoredScene(t *testing.T) {
	ctx := context.Background()
	kv := profile.NewMemoryKV()
	p := profile.Default()
	p.CurrentSceneID = "calibration"
	require.NoError(t, profile.NewStore(kv, nil).Save(ctx, p))

	h := newHarness(t, kv, DefaultConfig())
	v := h.engine.Boot(ctx)

	assert.Equal(t, "calibration", v.ID)
	assert.Equal(t, "System online.", h.texts()[0])
}

func TestBoot_UnknownStoredSceneFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := profile.NewMemoryKV()
	p := profile.Default()
	p.CurrentSceneID = "deleted_scene"
	require.NoError(t, profile.NewStore(kv, nil).Save(ctx, p))

	h := newHarness(t, kv, DefaultConfig())
	v := h.engine.Boot(ctx)

	assert.Equal(t, "boot", v.ID)
	assert.Equal(t, "boot", h.tracker.CurrentSceneID())
}

func TestRender_PersistsScene(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()

	v := h.engine.Render(ctx, "interface")
	assert.Equal(t, "interface", v.ID)
	assert.Len(t, v.Choices, 3)
	assert.False(t, v.Terminal)

	stored := profile.NewStore(h.kv, nil).Load(ctx)
	assert.Equal(t, "interface", stored.CurrentSceneID)
}

func TestRender_UnknownSceneDoesNotPersist(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "interface")

	v := h.engine.Render(ctx, "ghost")
	assert.True(t, v.NotFound)
	assert.Contains(t, v.Body, "ghost")
	assert.Equal(t, "interface", h.tracker.CurrentSceneID())

	err := h.engine.Choose(ctx, 0)
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestRender_DeadEndScene(t *testing.T) {
	ctx := context.Background()
	tracker := profile.NewTracker(ctx, profile.NewStore(profile.NewMemoryKV(), nil))
	log := journal.New(nil)
	g := NewGraph([]Scene{{ID: "end", Title: "The End"}}, nil, Anchors{Boot: "end", Debrief: "end", Summary: "end"}, Router{Clear: "end"})
	e := NewEngine(Deps{Graph: g, Profile: tracker, Quiz: quiz.NewEngine(nil, nil, tracker, log, quiz.Options{}), Journal: log}, DefaultConfig())

	v := e.Boot(ctx)
	assert.True(t, v.Terminal)
	assert.Empty(t, v.Choices)
	assert.ErrorIs(t, e.Choose(ctx, 0), ErrInvalidChoice)
}

func TestChoose_Navigate(t *testing.T) {
	h := defaultHarness(t)
	h.engine.Boot(context.Background())
	h.chooseLabel(t, "Inspect the neural interface")
	assert.Equal(t, "interface", h.engine.View().ID)
}

func TestChoose_OutOfRangeIsLogged(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Boot(ctx)

	err := h.engine.Choose(ctx, 9)
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, "boot", h.engine.View().ID)

	entries := h.log.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, journal.SeverityWarning, last.Severity)
	assert.Contains(t, last.Text, "Choice 10")
}

func TestChoose_FaultsAreCaughtAndNamed(t *testing.T) {
	ctx := context.Background()
	tracker := profile.NewTracker(ctx, profile.NewStore(profile.NewMemoryKV(), nil))
	log := journal.New(nil)
	g := NewGraph(
		[]Scene{{ID: "a", Choices: []Choice{
			{Label: "Broken link", Effect: Navigate{Target: "ghost"}},
			{Label: "Mystery", Effect: Action{Name: "dance"}},
			{Label: "Start", Effect: Action{Name: ActionStartSession}},
		}}},
		nil, Anchors{Boot: "a", Debrief: "a", Summary: "a"}, Router{Clear: "a"},
	)
	// A nil quiz engine makes startSession panic.
	e := NewEngine(Deps{Graph: g, Profile: tracker, Journal: log}, DefaultConfig())
	e.Boot(ctx)

	assert.ErrorIs(t, e.Choose(ctx, 0), ErrUnknownScene)
	assert.True(t, e.View().NotFound)
	assert.Equal(t, "a", tracker.CurrentSceneID())

	e.Render(ctx, "a")
	assert.ErrorIs(t, e.Choose(ctx, 1), ErrUnknownAction)

	e.Render(ctx, "a")
	err := e.Choose(ctx, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	var warnings []string
	for _, en := range log.Entries() {
		if en.Severity == journal.SeverityWarning {
			warnings = append(warnings, en.Text)
		}
	}
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "Choice 1 (Broken link)")
	assert.Contains(t, warnings[1], "Choice 2 (Mystery)")
	assert.Contains(t, warnings[2], "Choice 3 (Start)")
}

func TestMicroCheck_Correct(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "lattice_probe")

	h.chooseLabel(t, "Route it to the amygdala")

	assert.Equal(t, "calibration", h.engine.View().ID)
	assert.NotEmpty(t, h.engine.View().Notice)
	assert.Equal(t, profile.DefaultStability+MicroCheckDelta, h.tracker.Stability())
}

func TestMicroCheck_IncorrectStays(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "archive_gate")

	h.chooseLabel(t, "Thalamus")

	assert.Equal(t, "archive_gate", h.engine.View().ID)
	assert.Contains(t, h.engine.View().Notice, "thalamus")
	assert.Equal(t, profile.DefaultStability-MicroCheckDelta, h.tracker.Stability())
}

func TestSession_AllCorrectRunRoutesToStableChannel(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "calibration")

	h.chooseLabel(t, "Start Session")
	assert.True(t, h.engine.Timer().Running)
	assert.True(t, h.quiz.Active())
	assert.Contains(t, h.texts(), "SESSION START: focus corridor engaged.")

	fb := h.answerAll(t, func(string) bool { return true })
	require.True(t, fb.Complete)
	assert.Equal(t, 100, fb.Result.Percent)

	assert.Equal(t, "debrief", h.engine.View().ID)
	assert.Equal(t, profile.DefaultStability+fb.Result.Total*quiz.CorrectDelta, h.tracker.Stability())

	h.chooseLabel(t, "Continue")
	assert.Equal(t, "stable_channel", h.engine.View().ID)
}

func TestSession_MissedRoutesByPriority(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "calibration")
	h.chooseLabel(t, "Start Session")

	h.answerAll(t, func(string) bool { return false })
	assert.ElementsMatch(t, []string{"Amygdala", "Hippocampus"}, h.tracker.Missed())

	texts := h.texts()
	assert.Contains(t, texts, "⚠ THREAT RESPONSE SPIKE: amygdala misfire detected.")
	assert.Contains(t, texts, "⚠ MEMORY CORRUPTION: hippocampal index mismatch.")

	h.chooseLabel(t, "Continue")
	assert.Equal(t, "threat_spike", h.engine.View().ID)
}

func TestSession_HippocampusOnly(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "calibration")
	h.chooseLabel(t, "Start Session")

	h.answerAll(t, func(c string) bool { return c != "Hippocampus" })
	require.Equal(t, []string{"Hippocampus"}, h.tracker.Missed())

	h.chooseLabel(t, "Continue")
	assert.Equal(t, "memory_corruption", h.engine.View().ID)
}

func TestSession_FastExpiryWithoutAnswers(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Render(ctx, "calibration")

	h.chooseLabel(t, "Run a 5-minute test cycle")
	assert.Equal(t, 5*time.Minute, h.engine.Timer().Total)
	assert.True(t, h.engine.FastSession())

	require.True(t, expire(h))

	v := h.engine.View()
	assert.Equal(t, "session_end", v.ID)
	assert.Equal(t, "No quiz completed this session.", v.Notice)
	assert.False(t, h.engine.Timer().Running)

	_, scored := h.tracker.LastScore()
	assert.False(t, scored)
	assert.Equal(t, profile.DefaultStability, h.tracker.Stability())
	assert.Contains(t, h.texts(), "FINAL SCORE: — (no quiz completed)")
	assert.True(t, h.quiz.Active(), "expiry leaves the quiz alone")
	assert.False(t, h.engine.SessionActive())
}

func TestSession_ExpiryReportsLastScore(t *testing.T) {
	h := newHarness(t, profile.NewMemoryKV(), Config{FastDuration: 3 * time.Second, QuizSize: 1})
	ctx := context.Background()
	h.engine.StartSession(ctx, true)
	h.answerAll(t, func(string) bool { return true })

	require.True(t, expire(h))
	assert.Equal(t, "Final score: 100%", h.engine.View().Notice)
	assert.Contains(t, h.texts(), "FINAL SCORE: 100%")
}

func TestSession_StartWhileActiveReplaces(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()

	h.engine.StartSession(ctx, false)
	h.engine.Tick(ctx)
	require.NoError(t, h.engine.SelectOption(0))
	_, err := h.engine.SubmitAnswer(ctx)
	require.NoError(t, err)
	require.NoError(t, h.engine.SelectOption(0))

	h.engine.StartSession(ctx, true)
	assert.Equal(t, 5*time.Minute, h.engine.Timer().Remaining)
	v, ok := h.engine.QuizView()
	require.True(t, ok)
	assert.Equal(t, 0, v.Index)
	assert.False(t, v.HasSelection())
}

func TestSession_PauseResume(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()

	h.engine.ResumeSession(ctx)
	assert.False(t, h.engine.Timer().Running, "nothing to resume before a session")

	h.engine.StartSession(ctx, false)
	h.engine.Tick(ctx)
	h.engine.PauseSession(ctx)

	ts := h.engine.Timer()
	assert.False(t, ts.Running)
	assert.Equal(t, 25*time.Minute-time.Second, ts.Remaining)
	assert.Equal(t, "24:59", ts.Display())
	assert.Contains(t, h.texts(), "SESSION PAUSED.")

	assert.False(t, h.engine.Tick(ctx))
	h.engine.ResumeSession(ctx)
	assert.True(t, h.engine.Timer().Running)

	assert.Equal(t, []string{"start", "pause", "resume"}, h.rec.actions)
}

func TestSetSessionMinutes(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.engine.SetSessionMinutes(ctx, 0), ErrInvalidMinutes)
	assert.ErrorIs(t, h.engine.SetSessionMinutes(ctx, MaxSessionMinutes+1), ErrInvalidMinutes)

	require.NoError(t, h.engine.SetSessionMinutes(ctx, 15))
	assert.Equal(t, 15*time.Minute, h.engine.Timer().Remaining)

	h.engine.StartSession(ctx, false)
	require.NoError(t, h.engine.SetSessionMinutes(ctx, 50))
	assert.Equal(t, 15*time.Minute, h.engine.Timer().Total, "running session keeps its length")
	assert.Equal(t, 50*time.Minute, h.engine.Timer().Next)

	h.engine.StartSession(ctx, false)
	assert.Equal(t, 50*time.Minute, h.engine.Timer().Total)
	assert.Zero(t, h.engine.Timer().Next)
}

func TestLogTail(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()

	h.engine.StartSession(ctx, false)
	h.engine.PauseSession(ctx)

	tail := h.engine.LogTail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "SESSION PAUSED.", tail[1].Text)
	assert.Len(t, h.engine.LogTail(0), len(h.engine.Log()))
}

func TestSubmitAnswer_RequiresSelection(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.StartSession(ctx, false)

	_, err := h.engine.SubmitAnswer(ctx)
	assert.ErrorIs(t, err, quiz.ErrNoSelection)
	assert.Equal(t, profile.DefaultStability, h.tracker.Stability())
}

func TestReset(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	h.engine.Boot(ctx)
	h.engine.StartSession(ctx, false)
	h.answerAll(t, func(string) bool { return false })

	v := h.engine.Reset(ctx)

	assert.Equal(t, "boot", v.ID)
	assert.False(t, h.engine.Timer().Running)
	assert.False(t, h.quiz.Active())
	assert.Equal(t, []string{"System reset."}, h.texts())

	p := h.tracker.Profile()
	assert.Equal(t, profile.DefaultStability, p.Stability)
	assert.Nil(t, p.LastScore)
	assert.Empty(t, p.MissedConcepts)

	stored := profile.NewStore(h.kv, nil).Load(ctx)
	assert.Equal(t, profile.DefaultStability, stored.Stability)
	assert.Empty(t, stored.MissedConcepts)
}

func TestSaveFailureIsLogged(t *testing.T) {
	h := newHarness(t, failingKV{}, DefaultConfig())
	ctx := context.Background()

	v := h.engine.Render(ctx, "interface")
	assert.Equal(t, "interface", v.ID, "mutation survives the failed save")

	var warned bool
	for _, e := range h.log.Entries() {
		if e.Severity == journal.SeverityWarning && strings.Contains(e.Text, "disk full") {
			warned = true
		}
	}
	assert.True(t, warned)
}
