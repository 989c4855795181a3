package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
)

// DefaultKey is the key the profile record is stored under.
const DefaultKey = "neuroveil.profile"

// KV is a string key-value store. Get returns ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store loads and saves a Profile as a single JSON value.
type Store struct {
	kv    KV
	key   string
	known func(string) bool

	// OnCorrupt, if set, is told why a stored record was (partly) replaced
	// by defaults.
	OnCorrupt func(reason string)
}

// NewStore creates a Store over kv. known filters missed-concept names on
// load; nil accepts every string.
func NewStore(kv KV, known func(string) bool) *Store {
	return &Store{kv: kv, key: DefaultKey, known: known}
}

// Load reads the stored profile. It never fails: a missing, unreadable or
// corrupt record degrades to defaults field by field.
func (s *Store) Load(ctx context.Context) Profile {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.corrupt(fmt.Sprintf("read profile: %v", err))
		return Default()
	}
	if !ok || raw == "" {
		return Default()
	}
	return s.decode(raw)
}

// Save writes the whole profile under the store key.
func (s *Store) Save(ctx context.Context, p Profile) error {
	if p.MissedConcepts == nil {
		p.MissedConcepts = []string{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// decode applies per-field defaults to a raw JSON record.
func (s *Store) decode(raw string) Profile {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		s.corrupt("profile record is not a JSON object")
		return Default()
	}

	p := Default()

	// Phase 1 saves used nodeId/missed; read them when the new keys are absent.
	sceneRaw, ok := fields["currentSceneId"]
	if !ok {
		sceneRaw, ok = fields["nodeId"]
	}
	if ok {
		var id string
		if err := json.Unmarshal(sceneRaw, &id); err == nil && id != "" {
			p.CurrentSceneID = id
		} else {
			s.corrupt("currentSceneId is not a non-empty string")
		}
	}

	if v, ok := fields["stability"]; ok {
		if n, ok := decodeNumber(v); ok {
			p.Stability = ClampStability(n)
		} else {
			s.corrupt("stability is not a number")
		}
	}

	if v, ok := fields["lastScore"]; ok && string(v) != "null" {
		if n, ok := decodeNumber(v); ok {
			score := max(0, min(100, n))
			p.LastScore = &score
		} else {
			s.corrupt("lastScore is not a number")
		}
	}

	missedRaw, ok := fields["missedConcepts"]
	if !ok {
		missedRaw, ok = fields["missed"]
	}
	if ok {
		var items []json.RawMessage
		if err := json.Unmarshal(missedRaw, &items); err != nil {
			s.corrupt("missedConcepts is not an array")
		} else {
			for _, item := range items {
				var name string
				if err := json.Unmarshal(item, &name); err != nil {
					continue
				}
				if s.known != nil && !s.known(name) {
					continue
				}
				p.addMissed(name)
			}
		}
	}

	return p
}

func (s *Store) corrupt(reason string) {
	if s.OnCorrupt != nil {
		s.OnCorrupt(reason)
	}
}

// decodeNumber accepts any finite JSON number and rounds it to an int.
func decodeNumber(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Max(math.MinInt32, math.Min(math.MaxInt32, f))
	return int(math.Round(f)), true
}

// MemoryKV is an in-process KV, used by tests and the scene preview.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
