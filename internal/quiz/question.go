// Package quiz builds question pools from the concept bank and runs the
// knowledge-check session that feeds stability and the missed-concept set.
package quiz

import "github.com/abhisek/neuroveil/internal/content"

// Question is a single multiple-choice item.
type Question struct {
	ID      string
	Concept string // concept name
	Prompt  string
	Options []string
	Answer  int // zero-based index into Options
	Teach   string
}

// IsCorrect reports whether option i is the right answer.
func (q Question) IsCorrect(i int) bool {
	return i == q.Answer
}

// CorrectText returns the text of the right answer.
func (q Question) CorrectText() string {
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return ""
	}
	return q.Options[q.Answer]
}

// CuratedFromPack converts the pack's hand-authored questions.
func CuratedFromPack(p *content.Pack) []Question {
	out := make([]Question, 0, len(p.Questions))
	for _, q := range p.Questions {
		out = append(out, Question{
			ID:      q.ID,
			Concept: q.Concept,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
			Answer:  q.Answer,
			Teach:   q.Teach,
		})
	}
	return out
}
