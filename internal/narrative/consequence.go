package narrative

import "slices"

// Rule sends the actor to Scene when Concept is in the missed set.
type Rule struct {
	Concept string
	Scene   string
}

// Router picks the post-quiz scene. Rules are checked in order and the
// first match wins, so earlier concepts take priority.
type Router struct {
	Rules []Rule
	Clear string // used when no rule matches
}

// Route returns the scene for the given missed-concept set.
func (r Router) Route(missed []string) string {
	for _, rule := range r.Rules {
		if slices.Contains(missed, rule.Concept) {
			return rule.Scene
		}
	}
	return r.Clear
}

// Targets returns every scene the router can produce.
func (r Router) Targets() []string {
	out := make([]string, 0, len(r.Rules)+1)
	for _, rule := range r.Rules {
		out = append(out, rule.Scene)
	}
	return append(out, r.Clear)
}
