package scene

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/protocol"
)

func smallConfig() city.Config {
	cfg := city.Defaults()
	cfg.TreeLevels = 1
	cfg.Counts = city.Counts{Houses: 1, Shops: 2, Trees: 2, Crystals: 1}
	return cfg
}

func TestNewManager_BuildsSceneMessage(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	sc := m.Current()
	if sc == nil || sc.RunID == "" {
		t.Fatalf("missing current scene")
	}
	var msg protocol.SceneMsg
	if err := json.Unmarshal(sc.Msg, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != protocol.TypeScene || msg.Seed != 1337 || msg.RunID != sc.RunID {
		t.Fatalf("unexpected scene header: %+v", msg.Type)
	}
	if msg.Stats.Vertices != len(msg.Mesh.Vertices) || msg.Stats.Triangles != len(msg.Mesh.Faces) {
		t.Fatalf("stats do not match mesh: %+v", msg.Stats)
	}
	if msg.Stats.Placed["houses"] != 1 || msg.Stats.Requested["shops"] != 2 {
		t.Fatalf("unexpected stats: %+v", msg.Stats)
	}
	if err := protocol.ValidateSceneJSON(sc.Msg); err != nil {
		t.Fatalf("scene fails schema: %v", err)
	}
}

func TestRegenerate_AppliesOverridesAndBroadcasts(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	out := make(chan []byte, 1)
	first := m.Join(out)
	if string(first) != string(m.Current().Msg) {
		t.Fatalf("Join should return the current scene")
	}

	seed := int64(7)
	sc, err := m.Regenerate(Request{Seed: &seed, Counts: map[string]int{"crystals": 3}})
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if sc.Config.Seed != 7 || sc.Config.Counts.Crystals != 3 || sc.Config.Counts.Shops != 2 {
		t.Fatalf("overrides not applied: %+v", sc.Config)
	}
	select {
	case b := <-out:
		if string(b) != string(sc.Msg) {
			t.Fatalf("broadcast is not the new scene")
		}
	default:
		t.Fatalf("no broadcast")
	}

	m.Leave(out)
	if _, err := m.Regenerate(Request{}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("left session still received a scene")
	}
}

func TestRegenerate_BadRequest(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	before := m.Current()
	if _, err := m.Regenerate(Request{Counts: map[string]int{"castles": 1}}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if _, err := m.Regenerate(Request{Counts: map[string]int{"trees": -1}}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if m.Current() != before {
		t.Fatalf("failed request replaced the scene")
	}
}

func TestRegenerate_RejectsOversizedRequests(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	before := m.Current()
	if _, err := m.Regenerate(Request{CitySize: 1e9}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("city_size 1e9: expected ErrBadRequest, got %v", err)
	}
	if _, err := m.Regenerate(Request{Counts: map[string]int{"trees": 1000000000}}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("trees 1e9: expected ErrBadRequest, got %v", err)
	}
	if m.Current() != before {
		t.Fatalf("rejected request replaced the scene")
	}
}

func TestRegenerate_BusyWhileGenerating(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.gen.Lock()
	_, err = m.Regenerate(Request{})
	m.gen.Unlock()
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	got := map[string]uint64{}
	for _, r := range m.RegenMetrics() {
		got[r.Result] = r.Count
	}
	if got["busy"] != 1 {
		t.Fatalf("metrics=%v", got)
	}
}

func TestManager_FullSessionQueueDrops(t *testing.T) {
	m, err := NewManager(smallConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	out := make(chan []byte)
	m.Join(out)
	if _, err := m.Regenerate(Request{}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if m.DroppedBroadcasts() != 1 {
		t.Fatalf("dropped=%d", m.DroppedBroadcasts())
	}
}

func TestManager_StateFileResumesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "scene.json")
	var seen []string
	m, err := NewManager(smallConfig(), WithStateFile(path), WithOnScene(func(sc *Scene) { seen = append(seen, sc.RunID) }))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	seed := int64(99)
	if _, err := m.Regenerate(Request{Seed: &seed, CitySize: 60}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("OnScene calls=%d", len(seen))
	}

	m2, err := NewManager(city.Defaults(), WithStateFile(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := m2.Current().Config
	if cfg.Seed != 99 || cfg.CitySize != 60 || cfg.Counts.Crystals != 1 {
		t.Fatalf("state not resumed: %+v", cfg)
	}
}
