package quiz

import (
	"math/rand/v2"
	"slices"
)

// SelectQuestions picks up to n questions from pool. Only concepts in scope
// are eligible (an empty scope admits every concept). The eligible set is
// shuffled, then questions on missed concepts are moved to the front without
// disturbing the shuffled order within either group.
func SelectQuestions(pool []Question, n int, scope, missed []string, rng *rand.Rand) []Question {
	if n <= 0 {
		return nil
	}

	eligible := make([]Question, 0, len(pool))
	for _, q := range pool {
		if len(scope) == 0 || slices.Contains(scope, q.Concept) {
			eligible = append(eligible, q)
		}
	}
	rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })

	ordered := make([]Question, 0, len(eligible))
	for _, q := range eligible {
		if slices.Contains(missed, q.Concept) {
			ordered = append(ordered, q)
		}
	}
	for _, q := range eligible {
		if !slices.Contains(missed, q.Concept) {
			ordered = append(ordered, q)
		}
	}

	return ordered[:min(n, len(ordered))]
}
