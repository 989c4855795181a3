// Package content loads the static story pack: concepts, curated questions,
// scenes, micro-checks and consequence routing.
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

//go:embed pack.json
var defaultPack []byte

//go:embed schema.json
var packSchema []byte

// SupportedMajor is the pack format major version this build understands.
const SupportedMajor = "v1"

// Pack is the decoded story pack.
type Pack struct {
	Version     string       `json:"version"`
	Scope       []string     `json:"scope"`
	Anchors     Anchors      `json:"anchors"`
	Concepts    []Concept    `json:"concepts"`
	Questions   []Question   `json:"questions"`
	MicroChecks []MicroCheck `json:"microChecks"`
	Routing     Routing      `json:"routing"`
	Scenes      []Scene      `json:"scenes"`
}

// Anchors names the scenes the engine jumps to on its own.
type Anchors struct {
	Boot    string `json:"boot"`
	Debrief string `json:"debrief"`
	Summary string `json:"summary"`
}

// Concept is a term bank entry.
type Concept struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Definition  string   `json:"definition,omitempty"`
	Teach       string   `json:"teach,omitempty"`
	Consequence string   `json:"consequence,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Question is a hand-authored multiple-choice question.
type Question struct {
	ID      string   `json:"id"`
	Concept string   `json:"concept"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
	Teach   string   `json:"teach,omitempty"`
}

// MicroCheck is the outcome of a named in-scene knowledge check.
type MicroCheck struct {
	Action      string `json:"action"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
	Next        string `json:"next,omitempty"`
}

// Routing maps the missed-concept set to a post-quiz scene.
type Routing struct {
	Rules []RouteRule `json:"rules"`
	Clear string      `json:"clear"`
}

// RouteRule sends the actor to Scene when Concept is missed.
type RouteRule struct {
	Concept string `json:"concept"`
	Scene   string `json:"scene"`
}

// Scene is a story node as stored in the pack. Exactly one of Go or Action
// is set on each choice; the schema enforces it.
type Scene struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Kicker  string   `json:"kicker,omitempty"`
	Body    string   `json:"body"`
	Choices []Choice `json:"choices,omitempty"`
}

// Choice is a raw scene choice.
type Choice struct {
	Text   string `json:"text"`
	Go     string `json:"go,omitempty"`
	Action string `json:"action,omitempty"`
}

// ValidationError collects every problem found in a pack.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content pack validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

var (
	defaultOnce   sync.Once
	defaultLoaded *Pack
	defaultErr    error

	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Default returns the embedded pack. The result is parsed once and shared;
// callers must not mutate it.
func Default() (*Pack, error) {
	defaultOnce.Do(func() {
		defaultLoaded, defaultErr = Parse(defaultPack)
	})
	return defaultLoaded, defaultErr
}

// Parse decodes and validates a pack.
func Parse(data []byte) (*Pack, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}

	sch, err := packSchemaCompiled()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("pack schema: %w", err)
	}

	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}

	if err := checkVersion(p.Version); err != nil {
		return nil, err
	}
	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func packSchemaCompiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(packSchema))
		if err != nil {
			schemaErr = fmt.Errorf("decode pack schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("pack.schema.json", doc); err != nil {
			schemaErr = fmt.Errorf("add pack schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("pack.schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile pack schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// checkVersion rejects packs written for a different major format.
func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("pack version %q is not a semantic version", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("pack version %s is not supported (want %s.x.y)", v, SupportedMajor)
	}
	return nil
}

// validate checks cross references that the schema cannot express. Scene
// graph closure is checked by the narrative package, which owns the graph.
func validate(p *Pack) error {
	var problems []string

	ids := make(map[string]bool, len(p.Concepts))
	names := make(map[string]bool, len(p.Concepts))
	for _, c := range p.Concepts {
		if ids[c.ID] {
			problems = append(problems, fmt.Sprintf("duplicate concept ID: %q", c.ID))
		}
		ids[c.ID] = true
		// Names key the missed-concept set, so they must be unique too.
		if names[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate concept name: %q", c.Name))
		}
		names[c.Name] = true
	}

	for _, name := range p.Scope {
		if !names[name] {
			problems = append(problems, fmt.Sprintf("scope references unknown concept %q", name))
		}
	}

	qids := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if qids[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		qids[q.ID] = true
		if !names[q.Concept] {
			problems = append(problems, fmt.Sprintf("question %q references unknown concept %q", q.ID, q.Concept))
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			problems = append(problems, fmt.Sprintf("question %q answer index %d out of range [0,%d)", q.ID, q.Answer, len(q.Options)))
		}
	}

	for _, r := range p.Routing.Rules {
		if !names[r.Concept] {
			problems = append(problems, fmt.Sprintf("routing rule references unknown concept %q", r.Concept))
		}
	}

	actions := make(map[string]bool, len(p.MicroChecks))
	for _, mc := range p.MicroChecks {
		if actions[mc.Action] {
			problems = append(problems, fmt.Sprintf("duplicate micro-check action: %q", mc.Action))
		}
		actions[mc.Action] = true
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ConceptNames returns the concept display names in pack order.
func (p *Pack) ConceptNames() []string {
	out := make([]string, 0, len(p.Concepts))
	for _, c := range p.Concepts {
		out = append(out, c.Name)
	}
	return out
}
