// Package terms holds the static concept bank that quizzes and consequence
// text are drawn from.
package terms

import "github.com/abhisek/neuroveil/internal/content"

// Concept is a named unit of testable knowledge.
type Concept struct {
	ID          string
	Name        string
	Definition  string
	Teach       string
	Consequence string
	Tags        []string
}

// Bank is a read-only, ordered concept collection indexed by ID and name.
type Bank struct {
	concepts []Concept
	byID     map[string]int
	byName   map[string]int
}

// NewBank builds a bank from concepts. Later duplicates of an ID or name
// shadow earlier ones in the indices; content validation rejects them first.
func NewBank(concepts []Concept) *Bank {
	b := &Bank{
		concepts: concepts,
		byID:     make(map[string]int, len(concepts)),
		byName:   make(map[string]int, len(concepts)),
	}
	for i, c := range concepts {
		b.byID[c.ID] = i
		b.byName[c.Name] = i
	}
	return b
}

// FromPack builds a bank from a content pack.
func FromPack(p *content.Pack) *Bank {
	concepts := make([]Concept, 0, len(p.Concepts))
	for _, c := range p.Concepts {
		concepts = append(concepts, Concept{
			ID:          c.ID,
			Name:        c.Name,
			Definition:  c.Definition,
			Teach:       c.Teach,
			Consequence: c.Consequence,
			Tags:        append([]string(nil), c.Tags...),
		})
	}
	return NewBank(concepts)
}

// All returns every concept in bank order.
func (b *Bank) All() []Concept {
	out := make([]Concept, len(b.concepts))
	copy(out, b.concepts)
	return out
}

// ByID looks up a concept by its ID.
func (b *Bank) ByID(id string) (Concept, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Concept{}, false
	}
	return b.concepts[i], true
}

// ByName looks up a concept by its display name.
func (b *Bank) ByName(name string) (Concept, bool) {
	i, ok := b.byName[name]
	if !ok {
		return Concept{}, false
	}
	return b.concepts[i], true
}

// Known reports whether name is a concept display name.
func (b *Bank) Known(name string) bool {
	_, ok := b.byName[name]
	return ok
}

// Names returns the display names in bank order.
func (b *Bank) Names() []string {
	out := make([]string, 0, len(b.concepts))
	for _, c := range b.concepts {
		out = append(out, c.Name)
	}
	return out
}

// Len returns the number of concepts.
func (b *Bank) Len() int {
	return len(b.concepts)
}
