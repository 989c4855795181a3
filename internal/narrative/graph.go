// Package narrative owns the scene graph and the application state machine
// that ties scenes, the session timer and the quiz together.
package narrative

import (
	"fmt"

	"github.com/abhisek/neuroveil/internal/content"
)

// Built-in action names. Any other action must name a micro-check.
const (
	ActionStartSession = "startSession"
	ActionStartFast    = "startFast"
	ActionContinue     = "continueAfterQuiz"
)

// IsBuiltinAction reports whether name is handled by the engine itself.
func IsBuiltinAction(name string) bool {
	switch name {
	case ActionStartSession, ActionStartFast, ActionContinue:
		return true
	}
	return false
}

// Effect is what a choice does. It is either Navigate or Action.
type Effect interface {
	effect()
}

// Navigate moves to another scene.
type Navigate struct {
	Target string
}

// Action invokes a named engine behavior or micro-check.
type Action struct {
	Name string
}

func (Navigate) effect() {}
func (Action) effect()   {}

// Choice is a labeled effect.
type Choice struct {
	Label  string
	Effect Effect
}

// String describes the effect for listings.
func (c Choice) String() string {
	switch e := c.Effect.(type) {
	case Navigate:
		return fmt.Sprintf("%s -> %s", c.Label, e.Target)
	case Action:
		return fmt.Sprintf("%s [%s]", c.Label, e.Name)
	}
	return c.Label
}

// Scene is a story node.
type Scene struct {
	ID      string
	Title   string
	Kicker  string
	Body    string
	Choices []Choice
}

// Terminal reports whether the scene is a dead end.
func (s Scene) Terminal() bool {
	return len(s.Choices) == 0
}

// MicroCheck is the scripted outcome of an in-scene knowledge check.
type MicroCheck struct {
	Correct     bool
	Explanation string
	Next        string // scene to render on success; empty stays put
}

// Anchors are scenes the engine renders without a choice.
type Anchors struct {
	Boot    string
	Debrief string // after a quiz completes
	Summary string // after the session timer expires
}

// Graph is an immutable set of scenes plus the tables that refer to them.
type Graph struct {
	scenes  map[string]Scene
	order   []string
	checks  map[string]MicroCheck
	anchors Anchors
	router  Router
}

// NewGraph builds a graph. Scene order is kept for listings.
func NewGraph(scenes []Scene, checks map[string]MicroCheck, anchors Anchors, router Router) *Graph {
	g := &Graph{
		scenes:  make(map[string]Scene, len(scenes)),
		checks:  checks,
		anchors: anchors,
		router:  router,
	}
	if g.checks == nil {
		g.checks = map[string]MicroCheck{}
	}
	for _, s := range scenes {
		if _, dup := g.scenes[s.ID]; !dup {
			g.order = append(g.order, s.ID)
		}
		g.scenes[s.ID] = s
	}
	return g
}

// FromPack converts a content pack into a graph.
func FromPack(p *content.Pack) *Graph {
	scenes := make([]Scene, 0, len(p.Scenes))
	for _, s := range p.Scenes {
		sc := Scene{ID: s.ID, Title: s.Title, Kicker: s.Kicker, Body: s.Body}
		for _, c := range s.Choices {
			ch := Choice{Label: c.Text}
			if c.Action != "" {
				ch.Effect = Action{Name: c.Action}
			} else {
				ch.Effect = Navigate{Target: c.Go}
			}
			sc.Choices = append(sc.Choices, ch)
		}
		scenes = append(scenes, sc)
	}

	checks := make(map[string]MicroCheck, len(p.MicroChecks))
	for _, mc := range p.MicroChecks {
		checks[mc.Action] = MicroCheck{Correct: mc.Correct, Explanation: mc.Explanation, Next: mc.Next}
	}

	router := Router{Clear: p.Routing.Clear}
	for _, r := range p.Routing.Rules {
		router.Rules = append(router.Rules, Rule{Concept: r.Concept, Scene: r.Scene})
	}

	anchors := Anchors{Boot: p.Anchors.Boot, Debrief: p.Anchors.Debrief, Summary: p.Anchors.Summary}
	return NewGraph(scenes, checks, anchors, router)
}

// Scene looks up a scene by ID.
func (g *Graph) Scene(id string) (Scene, bool) {
	s, ok := g.scenes[id]
	return s, ok
}

// Has reports whether id is a known scene.
func (g *Graph) Has(id string) bool {
	_, ok := g.scenes[id]
	return ok
}

// Scenes returns every scene in declaration order.
func (g *Graph) Scenes() []Scene {
	out := make([]Scene, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.scenes[id])
	}
	return out
}

// MicroCheck looks up a micro-check by action name.
func (g *Graph) MicroCheck(action string) (MicroCheck, bool) {
	mc, ok := g.checks[action]
	return mc, ok
}

// Anchors returns the anchor scene IDs.
func (g *Graph) Anchors() Anchors { return g.anchors }

// Router returns the consequence router.
func (g *Graph) Router() Router { return g.router }
