package quiz

import "time"

// Phase is the lifecycle position of a quiz session.
type Phase int

const (
	PhaseIdle     Phase = iota // no quiz running
	PhaseActive                // serving questions
	PhaseComplete              // last question answered
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// noSelection marks a question with no tentative answer.
const noSelection = -1

// Outcome records one answered question.
type Outcome struct {
	QuestionID string
	Concept    string
	Correct    bool
}

// Session is the state of one knowledge check.
type Session struct {
	ID        string
	Phase     Phase
	Questions []Question
	Index     int
	Selected  int
	Outcomes  []Outcome
	StartedAt time.Time
}

// Current returns the question being shown, if any.
func (s *Session) Current() (Question, bool) {
	if s == nil || s.Phase != PhaseActive || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// CorrectCount returns the number of correct outcomes so far.
func (s *Session) CorrectCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Correct {
			n++
		}
	}
	return n
}

// QuestionView is the render payload for the current question.
type QuestionView struct {
	Prompt   string
	Options  []string
	Selected int // -1 when nothing is selected
	Index    int // zero-based
	Total    int
}

// HasSelection reports whether an option is tentatively chosen.
func (v QuestionView) HasSelection() bool {
	return v.Selected >= 0
}

// Feedback describes the result of submitting one answer.
type Feedback struct {
	Concept  string
	Correct  bool
	Teach    string
	Answer   string // correct option text, set on a miss
	Complete bool
	Result   *Result // set when Complete
}

// Result summarizes a finished quiz.
type Result struct {
	SessionID string
	Correct   int
	Total     int
	Percent   int
	Missed    []string // missed-concept set after the quiz
}
