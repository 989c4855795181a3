package quiz

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/terms"
)

// Stability changes applied per answer.
const (
	CorrectDelta   = 3
	IncorrectDelta = -5
)

var (
	ErrNotActive     = errors.New("quiz: no active question")
	ErrNoSelection   = errors.New("quiz: no option selected")
	ErrInvalidOption = errors.New("quiz: option out of range")
)

// Profile is the slice of the learner profile the quiz mutates. Every
// mutator is expected to persist before returning.
type Profile interface {
	AdjustStability(ctx context.Context, delta int) int
	MarkMissed(ctx context.Context, concept string)
	MarkRecovered(ctx context.Context, concept string)
	SetLastScore(ctx context.Context, pct int)
	Missed() []string
}

// Recorder appends quiz history. Failures are ignored.
type Recorder interface {
	AppendQuizEvent(ctx context.Context, data store.QuizEventData) error
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
}

// ConsequenceFunc returns the warning text for a missed concept, or "".
type ConsequenceFunc func(concept string) string

// Options configures an Engine.
type Options struct {
	Scope       []string
	Rand        *rand.Rand
	Recorder    Recorder
	Consequence ConsequenceFunc
}

// Engine runs knowledge checks. Each Start builds a fresh pool, so
// distractors and option order change between quizzes.
type Engine struct {
	bank        *terms.Bank
	curated     []Question
	profile     Profile
	log         *journal.Journal
	scope       []string
	rng         *rand.Rand
	rec         Recorder
	consequence ConsequenceFunc
	now         func() time.Time

	sess *Session
}

// NewEngine creates an idle engine drawing on the bank and the curated
// questions. bank may be nil when only curated questions are wanted.
func NewEngine(bank *terms.Bank, curated []Question, prof Profile, log *journal.Journal, opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{
		bank:        bank,
		curated:     curated,
		profile:     prof,
		log:         log,
		scope:       opts.Scope,
		rng:         rng,
		rec:         opts.Recorder,
		consequence: opts.Consequence,
		now:         time.Now,
	}
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	if e.sess == nil {
		return PhaseIdle
	}
	return e.sess.Phase
}

// Active reports whether questions are being served.
func (e *Engine) Active() bool {
	return e.Phase() == PhaseActive
}

// Start discards any running quiz and begins a new one of up to n
// questions. When no question is eligible the quiz finishes at once and the
// returned Result is non-nil.
func (e *Engine) Start(ctx context.Context, n int) *Result {
	e.Discard()

	pool := BuildPool(e.bank, e.curated, e.rng)
	qs := SelectQuestions(pool, n, e.scope, e.profile.Missed(), e.rng)
	e.sess = &Session{
		ID:        uuid.New().String(),
		Phase:     PhaseActive,
		Questions: qs,
		Selected:  noSelection,
		StartedAt: e.now(),
	}

	e.log.Info(ctx, "KNOWLEDGE CHECK: limbic/hippocampal calibration initiated.")
	if e.rec != nil {
		_ = e.rec.AppendQuizEvent(ctx, store.QuizEventData{
			SessionID: e.sess.ID,
			Action:    "start",
			Total:     len(qs),
		})
	}

	if len(qs) == 0 {
		e.log.Warning(ctx, "KNOWLEDGE CHECK: no eligible questions in scope.")
		r := e.finish(ctx)
		return &r
	}
	return nil
}

// Select records a tentative answer for the current question. The profile
// is not touched.
func (e *Engine) Select(i int) error {
	q, ok := e.sess.Current()
	if !ok {
		return ErrNotActive
	}
	if i < 0 || i >= len(q.Options) {
		return ErrInvalidOption
	}
	e.sess.Selected = i
	return nil
}

// Submit scores the selected option, persists the profile change and
// advances. The final answer finishes the quiz.
func (e *Engine) Submit(ctx context.Context) (Feedback, error) {
	q, ok := e.sess.Current()
	if !ok {
		return Feedback{}, ErrNotActive
	}
	if e.sess.Selected == noSelection {
		return Feedback{}, ErrNoSelection
	}

	selected := e.sess.Selected
	correct := q.IsCorrect(selected)
	e.sess.Outcomes = append(e.sess.Outcomes, Outcome{QuestionID: q.ID, Concept: q.Concept, Correct: correct})

	fb := Feedback{Concept: q.Concept, Correct: correct}
	var stability int
	if correct {
		e.log.Success(ctx, "✔ %s: integrity confirmed.", q.Concept)
		stability = e.profile.AdjustStability(ctx, CorrectDelta)
		e.profile.MarkRecovered(ctx, q.Concept)
	} else {
		e.log.Warning(ctx, "✖ %s: mismatch detected.", q.Concept)
		if q.Teach != "" {
			e.log.Info(ctx, "↳ %s", q.Teach)
		}
		fb.Teach = q.Teach
		fb.Answer = q.CorrectText()
		stability = e.profile.AdjustStability(ctx, IncorrectDelta)
		e.profile.MarkMissed(ctx, q.Concept)
	}

	if e.rec != nil {
		_ = e.rec.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:      e.sess.ID,
			QuestionID:     q.ID,
			Concept:        q.Concept,
			Prompt:         q.Prompt,
			Selected:       selected,
			Answer:         q.Answer,
			Correct:        correct,
			StabilityAfter: stability,
		})
	}

	e.sess.Index++
	e.sess.Selected = noSelection
	if e.sess.Index >= len(e.sess.Questions) {
		r := e.finish(ctx)
		fb.Complete = true
		fb.Result = &r
	}
	return fb, nil
}

// Discard drops the running quiz without scoring it.
func (e *Engine) Discard() {
	e.sess = nil
}

// View returns the render payload for the current question.
func (e *Engine) View() (QuestionView, bool) {
	q, ok := e.sess.Current()
	if !ok {
		return QuestionView{}, false
	}
	return QuestionView{
		Prompt:   q.Prompt,
		Options:  append([]string(nil), q.Options...),
		Selected: e.sess.Selected,
		Index:    e.sess.Index,
		Total:    len(e.sess.Questions),
	}, true
}

func (e *Engine) finish(ctx context.Context) Result {
	total := len(e.sess.Outcomes)
	got := e.sess.CorrectCount()
	pct := Percent(got, total)

	e.sess.Phase = PhaseComplete
	e.log.Info(ctx, "QUIZ COMPLETE: %d/%d correct.", got, total)
	e.profile.SetLastScore(ctx, pct)

	missed := e.profile.Missed()
	if e.consequence != nil {
		for _, c := range missed {
			if text := e.consequence(c); text != "" {
				e.log.Warning(ctx, "%s", text)
			}
		}
	}

	if e.rec != nil {
		_ = e.rec.AppendQuizEvent(ctx, store.QuizEventData{
			SessionID: e.sess.ID,
			Action:    "finish",
			Total:     total,
			Correct:   got,
			Percent:   pct,
			Missed:    missed,
		})
	}

	return Result{SessionID: e.sess.ID, Correct: got, Total: total, Percent: pct, Missed: missed}
}

// Percent is round(100*correct/total), or 0 for an empty quiz.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
