package profile

import "context"

// Tracker owns the live profile and writes every mutation through to the
// store before returning.
type Tracker struct {
	store *Store
	p     Profile

	// OnSaveError, if set, receives save failures. The in-memory profile keeps
	// the mutation either way.
	OnSaveError func(error)
}

// NewTracker loads the stored profile and wraps it.
func NewTracker(ctx context.Context, store *Store) *Tracker {
	return &Tracker{store: store, p: store.Load(ctx)}
}

// Profile returns a copy of the live profile.
func (t *Tracker) Profile() Profile {
	return t.p.Clone()
}

// Stability returns the current stability.
func (t *Tracker) Stability() int {
	return t.p.Stability
}

// LastScore returns the last quiz percentage, if any.
func (t *Tracker) LastScore() (int, bool) {
	if t.p.LastScore == nil {
		return 0, false
	}
	return *t.p.LastScore, true
}

// CurrentSceneID returns the last rendered scene.
func (t *Tracker) CurrentSceneID() string {
	return t.p.CurrentSceneID
}

// Missed returns a copy of the missed-concept set in insertion order.
func (t *Tracker) Missed() []string {
	return append([]string{}, t.p.MissedConcepts...)
}

// IsMissed reports whether concept is in the missed set.
func (t *Tracker) IsMissed(concept string) bool {
	return t.p.IsMissed(concept)
}

// SetScene records the current scene.
func (t *Tracker) SetScene(ctx context.Context, id string) {
	t.p.CurrentSceneID = id
	t.save(ctx)
}

// AdjustStability adds delta and clamps. Returns the new value.
func (t *Tracker) AdjustStability(ctx context.Context, delta int) int {
	t.p.Stability = ClampStability(t.p.Stability + delta)
	t.save(ctx)
	return t.p.Stability
}

// SetLastScore records a completed quiz percentage.
func (t *Tracker) SetLastScore(ctx context.Context, pct int) {
	pct = max(0, min(100, pct))
	t.p.LastScore = &pct
	t.save(ctx)
}

// MarkMissed adds concept to the missed set if absent.
func (t *Tracker) MarkMissed(ctx context.Context, concept string) {
	if t.p.addMissed(concept) {
		t.save(ctx)
	}
}

// MarkRecovered removes concept from the missed set if present.
func (t *Tracker) MarkRecovered(ctx context.Context, concept string) {
	if t.p.removeMissed(concept) {
		t.save(ctx)
	}
}

// Persist saves the live profile unconditionally.
func (t *Tracker) Persist(ctx context.Context) {
	t.save(ctx)
}

// Reset restores defaults and saves them.
func (t *Tracker) Reset(ctx context.Context) {
	t.p = Default()
	t.save(ctx)
}

func (t *Tracker) save(ctx context.Context) {
	if err := t.store.Save(ctx, t.p); err != nil && t.OnSaveError != nil {
		t.OnSaveError(err)
	}
}
