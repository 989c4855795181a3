// Package profile persists the actor's progress: current scene, stability,
// last quiz score and the missed-concept set.
package profile

import "slices"

// Defaults applied to missing or invalid fields.
const (
	DefaultSceneID   = "boot"
	DefaultStability = 50

	MinStability = 0
	MaxStability = 100
)

// Profile is the persisted progress record.
type Profile struct {
	CurrentSceneID string   `json:"currentSceneId"`
	Stability      int      `json:"stability"`
	LastScore      *int     `json:"lastScore"`
	MissedConcepts []string `json:"missedConcepts"`
}

// Default returns a fresh profile.
func Default() Profile {
	return Profile{
		CurrentSceneID: DefaultSceneID,
		Stability:      DefaultStability,
		MissedConcepts: []string{},
	}
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	out := p
	if p.LastScore != nil {
		v := *p.LastScore
		out.LastScore = &v
	}
	out.MissedConcepts = append([]string{}, p.MissedConcepts...)
	return out
}

// HasScore reports whether a quiz has completed since the last reset.
func (p Profile) HasScore() bool {
	return p.LastScore != nil
}

// IsMissed reports whether concept is in the missed set.
func (p Profile) IsMissed(concept string) bool {
	return slices.Contains(p.MissedConcepts, concept)
}

// ClampStability bounds v to [MinStability, MaxStability].
func ClampStability(v int) int {
	return max(MinStability, min(MaxStability, v))
}

// addMissed appends concept if absent. Returns true if it was added.
func (p *Profile) addMissed(concept string) bool {
	if p.IsMissed(concept) {
		return false
	}
	p.MissedConcepts = append(p.MissedConcepts, concept)
	return true
}

// removeMissed drops concept, keeping the order of the rest. Returns true if
// it was present.
func (p *Profile) removeMissed(concept string) bool {
	i := slices.Index(p.MissedConcepts, concept)
	if i < 0 {
		return false
	}
	p.MissedConcepts = slices.Delete(p.MissedConcepts, i, i+1)
	return true
}
