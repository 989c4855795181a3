package quiz

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/neuroveil/internal/terms"
)

// maxDistractors is the number of wrong options on a definition question.
const maxDistractors = 3

// BuildPool returns the curated questions followed by one generated
// definition-matching question per concept that has a definition. A nil
// bank yields only the curated questions.
func BuildPool(bank *terms.Bank, curated []Question, rng *rand.Rand) []Question {
	if bank == nil {
		return slices.Clone(curated)
	}
	pool := make([]Question, 0, len(curated)+bank.Len())
	pool = append(pool, curated...)

	concepts := bank.All()
	for _, c := range concepts {
		if c.Definition == "" {
			continue
		}
		pool = append(pool, definitionQuestion(c, concepts, rng))
	}
	return pool
}

// definitionQuestion asks which definition matches c. Distractors are other
// concepts' definitions; with fewer than three available the question has
// fewer options. Identical distractor text is kept as-is.
func definitionQuestion(c terms.Concept, all []terms.Concept, rng *rand.Rand) Question {
	var others []string
	for _, o := range all {
		if o.ID == c.ID || o.Definition == "" {
			continue
		}
		others = append(others, o.Definition)
	}
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if len(others) > maxDistractors {
		others = others[:maxDistractors]
	}

	opts := append([]string{c.Definition}, others...)
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

	teach := c.Teach
	if teach == "" {
		teach = fmt.Sprintf("%s: %s", c.Name, c.Definition)
	}

	return Question{
		ID:      "def_" + c.ID,
		Concept: c.Name,
		Prompt:  fmt.Sprintf("Which definition matches %s?", c.Name),
		Options: opts,
		Answer:  slices.Index(opts, c.Definition),
		Teach:   teach,
	}
}
