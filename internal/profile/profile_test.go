package profile

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	known := func(name string) bool { return name == "Amygdala" || name == "Hippocampus" }
	return NewStore(kv, known), kv
}

func TestLoad_MissingRecordGivesDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	p := s.Load(context.Background())
	assert.Equal(t, Default(), p)
	assert.False(t, p.HasScore())
}

func TestSaveLoad_RoundTripIsFixedPoint(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	score := 80
	in := Profile{
		CurrentSceneID: "calibration",
		Stability:      73,
		LastScore:      &score,
		MissedConcepts: []string{"Hippocampus", "Amygdala"},
	}
	require.NoError(t, s.Save(ctx, in))
	first, _, _ := kv.Get(ctx, DefaultKey)

	out := s.Load(ctx)
	assert.Equal(t, in, out)

	require.NoError(t, s.Save(ctx, out))
	second, _, _ := kv.Get(ctx, DefaultKey)
	assert.JSONEq(t, first, second)
}

func TestSave_WireShape(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, Default()))

	raw, ok, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"currentSceneId":"boot","stability":50,"lastScore":null,"missedConcepts":[]}`, raw)
}

func TestLoad_FieldLevelDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(p Profile) bool
	}{
		{"garbage", `not json at all`, func(p Profile) bool { return equalProfiles(p, Default()) }},
		{"array root", `[1,2,3]`, func(p Profile) bool { return equalProfiles(p, Default()) }},
		{"null root", `null`, func(p Profile) bool { return equalProfiles(p, Default()) }},
		{"scene wrong type", `{"currentSceneId": 7, "stability": 60}`, func(p Profile) bool {
			return p.CurrentSceneID == DefaultSceneID && p.Stability == 60
		}},
		{"scene empty", `{"currentSceneId": ""}`, func(p Profile) bool { return p.CurrentSceneID == DefaultSceneID }},
		{"stability wrong type", `{"currentSceneId": "calibration", "stability": "high"}`, func(p Profile) bool {
			return p.CurrentSceneID == "calibration" && p.Stability == DefaultStability
		}},
		{"stability out of range", `{"stability": 400}`, func(p Profile) bool { return p.Stability == MaxStability }},
		{"stability negative", `{"stability": -3}`, func(p Profile) bool { return p.Stability == MinStability }},
		{"stability fractional", `{"stability": 52.6}`, func(p Profile) bool { return p.Stability == 53 }},
		{"lastScore null", `{"lastScore": null}`, func(p Profile) bool { return p.LastScore == nil }},
		{"lastScore wrong type", `{"lastScore": "80%"}`, func(p Profile) bool { return p.LastScore == nil }},
		{"lastScore valid", `{"lastScore": 40}`, func(p Profile) bool { return p.LastScore != nil && *p.LastScore == 40 }},
		{"missed wrong type", `{"missedConcepts": "Amygdala"}`, func(p Profile) bool { return len(p.MissedConcepts) == 0 }},
		{"missed mixed entries", `{"missedConcepts": ["Amygdala", 3, "Cortex", "Amygdala", "Hippocampus"]}`, func(p Profile) bool {
			return len(p.MissedConcepts) == 2 && p.MissedConcepts[0] == "Amygdala" && p.MissedConcepts[1] == "Hippocampus"
		}},
		{"legacy keys", `{"nodeId": "interface", "missed": ["Hippocampus"]}`, func(p Profile) bool {
			return p.CurrentSceneID == "interface" && len(p.MissedConcepts) == 1 && p.MissedConcepts[0] == "Hippocampus"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, DefaultKey, tt.raw))

			p := s.Load(ctx)
			assert.True(t, tt.want(p), "unexpected profile: %+v", p)
			assert.NotNil(t, p.MissedConcepts)
		})
	}
}

func TestLoad_ReportsCorruption(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()
	var reasons []string
	s.OnCorrupt = func(r string) { reasons = append(reasons, r) }

	require.NoError(t, kv.Set(ctx, DefaultKey, `{"stability": "x"}`))
	s.Load(ctx)
	assert.Len(t, reasons, 1)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk gone")
}

func TestLoad_ReadErrorGivesDefaults(t *testing.T) {
	s := NewStore(failingKV{}, nil)
	assert.Equal(t, Default(), s.Load(context.Background()))
}

func TestClampStability(t *testing.T) {
	tests := []struct{ in, want int }{
		{-10, 0}, {0, 0}, {50, 50}, {100, 100}, {103, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampStability(tt.in), "ClampStability(%d)", tt.in)
	}
}

func TestTracker_StabilityAlwaysClamped(t *testing.T) {
	deltas := []int{3, -5, 2, -2}
	r := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 50; run++ {
		tr := NewTracker(context.Background(), NewStore(NewMemoryKV(), nil))
		for i := 0; i < 200; i++ {
			got := tr.AdjustStability(context.Background(), deltas[r.IntN(len(deltas))])
			if got < MinStability || got > MaxStability {
				t.Fatalf("stability %d out of range after step %d", got, i)
			}
		}
	}
}

func TestTracker_WritesThrough(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, nil)
	ctx := context.Background()
	tr := NewTracker(ctx, store)

	tr.SetScene(ctx, "calibration")
	tr.AdjustStability(ctx, 3)
	tr.SetLastScore(ctx, 60)
	tr.MarkMissed(ctx, "Amygdala")

	reloaded := store.Load(ctx)
	assert.Equal(t, "calibration", reloaded.CurrentSceneID)
	assert.Equal(t, 53, reloaded.Stability)
	require.NotNil(t, reloaded.LastScore)
	assert.Equal(t, 60, *reloaded.LastScore)
	assert.Equal(t, []string{"Amygdala"}, reloaded.MissedConcepts)
}

func TestTracker_MissedSetIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, NewStore(NewMemoryKV(), nil))

	tr.MarkMissed(ctx, "Amygdala")
	tr.MarkMissed(ctx, "Amygdala")
	assert.Equal(t, []string{"Amygdala"}, tr.Missed())

	tr.MarkMissed(ctx, "Hippocampus")
	tr.MarkRecovered(ctx, "Amygdala")
	assert.Equal(t, []string{"Hippocampus"}, tr.Missed())
	assert.False(t, tr.IsMissed("Amygdala"))

	tr.MarkRecovered(ctx, "Amygdala")
	assert.Equal(t, []string{"Hippocampus"}, tr.Missed())
}

func TestTracker_ResetRestoresDefaults(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, nil)
	ctx := context.Background()
	tr := NewTracker(ctx, store)
	tr.SetLastScore(ctx, 90)
	tr.MarkMissed(ctx, "Amygdala")
	tr.AdjustStability(ctx, -20)

	tr.Reset(ctx)
	assert.Equal(t, Default(), tr.Profile())
	assert.Equal(t, Default(), store.Load(ctx))
}

func TestTracker_SaveErrorReported(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, NewStore(failingKV{}, nil))
	var got []error
	tr.OnSaveError = func(err error) { got = append(got, err) }

	tr.AdjustStability(ctx, 3)
	assert.Equal(t, 53, tr.Stability(), "mutation must survive a failed save")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "disk gone")
}

func TestProfile_CloneIsDeep(t *testing.T) {
	score := 10
	p := Profile{LastScore: &score, MissedConcepts: []string{"A"}}
	c := p.Clone()
	*c.LastScore = 99
	c.MissedConcepts[0] = "B"
	assert.Equal(t, 10, *p.LastScore)
	assert.Equal(t, "A", p.MissedConcepts[0])
}

func equalProfiles(a, b Profile) bool {
	x, _ := json.Marshal(a)
	y, _ := json.Marshal(b)
	return string(x) == string(y)
}
