package narrative

import (
	"fmt"
	"maps"
	"slices"

	"github.com/abhisek/neuroveil/internal/content"
)

// Validate checks that every scene reference in g resolves and every action
// is either built in or a declared micro-check. All problems are reported
// together.
func Validate(g *Graph) error {
	var problems []string
	need := func(where, id string) {
		if !g.Has(id) {
			problems = append(problems, fmt.Sprintf("%s references unknown scene %q", where, id))
		}
	}

	a := g.Anchors()
	need("boot anchor", a.Boot)
	need("debrief anchor", a.Debrief)
	need("summary anchor", a.Summary)

	for _, s := range g.Scenes() {
		for i, c := range s.Choices {
			where := fmt.Sprintf("scene %q choice %d (%s)", s.ID, i+1, c.Label)
			switch e := c.Effect.(type) {
			case Navigate:
				need(where, e.Target)
			case Action:
				if IsBuiltinAction(e.Name) {
					continue
				}
				if _, ok := g.MicroCheck(e.Name); !ok {
					problems = append(problems, fmt.Sprintf("%s uses unknown action %q", where, e.Name))
				}
			default:
				problems = append(problems, fmt.Sprintf("%s has no effect", where))
			}
		}
	}

	for _, action := range slices.Sorted(maps.Keys(g.checks)) {
		if mc := g.checks[action]; mc.Next != "" {
			need(fmt.Sprintf("micro-check %q", action), mc.Next)
		}
	}

	r := g.Router()
	for _, rule := range r.Rules {
		need(fmt.Sprintf("routing rule for %q", rule.Concept), rule.Scene)
	}
	need("routing clear branch", r.Clear)

	if len(problems) > 0 {
		return &content.ValidationError{Problems: problems}
	}
	return nil
}

// Unreachable returns scenes that no path from the anchors or the router
// can reach, in declaration order.
func Unreachable(g *Graph) []string {
	seen := map[string]bool{}
	var queue []string
	visit := func(id string) {
		if id != "" && g.Has(id) && !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}

	a := g.Anchors()
	visit(a.Boot)
	visit(a.Debrief)
	visit(a.Summary)
	for _, id := range g.Router().Targets() {
		visit(id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s, _ := g.Scene(id)
		for _, c := range s.Choices {
			switch e := c.Effect.(type) {
			case Navigate:
				visit(e.Target)
			case Action:
				if mc, ok := g.MicroCheck(e.Name); ok {
					visit(mc.Next)
				}
			}
		}
	}

	var out []string
	for _, s := range g.Scenes() {
		if !seen[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}
