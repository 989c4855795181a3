package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/neuroveil/internal/config"
	"github.com/abhisek/neuroveil/internal/content"
	"github.com/abhisek/neuroveil/internal/journal"
	"github.com/abhisek/neuroveil/internal/narrative"
	"github.com/abhisek/neuroveil/internal/profile"
	"github.com/abhisek/neuroveil/internal/quiz"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/terms"
)

// snapshotsKept bounds the profile backups kept across resets.
const snapshotsKept = 10

// Runtime is the wired application: content, persistence and engines.
type Runtime struct {
	Config  config.Config
	Pack    *content.Pack
	Bank    *terms.Bank
	Store   *store.Store
	Events  store.EventRepo
	Journal *journal.Journal
	Tracker *profile.Tracker
	Engine  *narrative.Engine
}

// Bootstrap loads the content pack and wires every engine over st. The
// narrative engine is returned un-booted.
func Bootstrap(ctx context.Context, cfg config.Config, st *store.Store) (*Runtime, error) {
	pack, err := content.Default()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	graph := narrative.FromPack(pack)
	if err := narrative.Validate(graph); err != nil {
		return nil, err
	}

	bank := terms.FromPack(pack)
	scope := cfg.Scope
	if len(scope) == 0 {
		scope = pack.Scope
	}
	for _, name := range scope {
		if !bank.Known(name) {
			return nil, fmt.Errorf("quiz scope: unknown concept %q", name)
		}
	}

	events := st.EventRepo()
	log := journal.New(events)

	pstore := profile.NewStore(st.KV(), bank.Known)
	pstore.OnCorrupt = func(reason string) {
		log.Warning(ctx, "Profile repaired: %s", reason)
	}
	tracker := profile.NewTracker(ctx, pstore)

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	q := quiz.NewEngine(bank, quiz.CuratedFromPack(pack), tracker, log, quiz.Options{
		Scope:    scope,
		Rand:     rng,
		Recorder: events,
		Consequence: func(name string) string {
			c, _ := bank.ByName(name)
			return c.Consequence
		},
	})

	eng := narrative.NewEngine(narrative.Deps{
		Graph:    graph,
		Profile:  tracker,
		Quiz:     q,
		Journal:  log,
		Recorder: events,
	}, cfg.Narrative())

	return &Runtime{
		Config:  cfg,
		Pack:    pack,
		Bank:    bank,
		Store:   st,
		Events:  events,
		Journal: log,
		Tracker: tracker,
		Engine:  eng,
	}, nil
}

// Teach returns the review line for a concept name.
func (r *Runtime) Teach(concept string) string {
	c, ok := r.Bank.ByName(concept)
	switch {
	case !ok:
		return ""
	case c.Teach != "":
		return c.Teach
	case c.Definition != "":
		return c.Name + ": " + c.Definition
	}
	return ""
}

// Snapshot saves the stored profile record verbatim and prunes old
// snapshots. A missing record is not an error and saves nothing.
func (r *Runtime) Snapshot(ctx context.Context, reason string) error {
	raw, ok, err := r.Store.KV().Get(ctx, profile.DefaultKey)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if !ok {
		return nil
	}

	seq, err := r.Store.NextSequence(ctx)
	if err != nil {
		return err
	}
	snaps := r.Store.SnapshotRepo()
	if err := snaps.Save(ctx, &store.Snapshot{
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		Data:      store.SnapshotData{Version: 1, Reason: reason, Profile: raw},
	}); err != nil {
		return err
	}
	return snaps.Prune(ctx, snapshotsKept)
}
