// Package scene owns the current generated city served to viewers and fans
// regenerated scenes out to every connected session.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/protocol"
)

const stateVersion = 1

var (
	ErrBusy       = errors.New("generation in progress")
	ErrBadRequest = errors.New("bad request")
)

// Scene is one generated city and its encoded SCENE message.
type Scene struct {
	RunID     string
	Config    city.Config
	Result    *city.Result
	Doc       protocol.MeshDoc
	Msg       []byte
	CreatedAt time.Time
}

// Request overrides the manager's current config for one regeneration. Zero
// values keep the current setting.
type Request struct {
	Seed     *int64
	CitySize float64
	Counts   map[string]int
}

type persistedState struct {
	Version int         `json:"version"`
	RunID   string      `json:"run_id"`
	Config  city.Config `json:"config"`
}

type regenMetricKey struct {
	Result string
}

type RegenMetric struct {
	Result string
	Count  uint64
}

// Manager serializes generation and broadcasts each new scene.
type Manager struct {
	mu  sync.RWMutex
	gen sync.Mutex

	cur       *Scene
	sessions  map[chan []byte]struct{}
	stateFile string
	onScene   func(*Scene)

	regenTotals map[regenMetricKey]uint64
	dropTotal   uint64
}

type Option func(*Manager)

// WithStateFile persists the config of every scene so a restart resumes the
// same city.
func WithStateFile(path string) Option {
	return func(m *Manager) { m.stateFile = path }
}

// WithOnScene is called after every successful generation, before broadcast.
func WithOnScene(fn func(*Scene)) Option {
	return func(m *Manager) { m.onScene = fn }
}

// NewManager generates the initial scene from cfg, or from the persisted
// state file when one exists.
func NewManager(cfg city.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		sessions:    map[chan []byte]struct{}{},
		regenTotals: map[regenMetricKey]uint64{},
	}
	for _, fn := range opts {
		fn(m)
	}
	if st, ok := m.loadState(); ok {
		cfg = st.Config
	}
	sc, err := m.build(cfg)
	if err != nil {
		return nil, err
	}
	m.install(sc)
	return m, nil
}

func (m *Manager) Current() *Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Join registers out for scene broadcasts and returns the current SCENE
// message.
func (m *Manager) Join(out chan []byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[out] = struct{}{}
	return m.cur.Msg
}

func (m *Manager) Leave(out chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, out)
}

func (m *Manager) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Regenerate builds a new scene from the current config with req applied.
// Only one generation runs at a time; a concurrent call fails with ErrBusy.
func (m *Manager) Regenerate(req Request) (*Scene, error) {
	if !m.gen.TryLock() {
		m.recordRegen("busy")
		return nil, ErrBusy
	}
	defer m.gen.Unlock()

	cfg := m.Current().Config
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.CitySize != 0 {
		cfg.CitySize = req.CitySize
	}
	for name, n := range req.Counts {
		if !cfg.Counts.Set(city.Category(name), n) {
			m.recordRegen("bad_request")
			return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, name)
		}
	}
	if err := cfg.Validate(); err != nil {
		m.recordRegen("bad_request")
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	sc, err := m.build(cfg)
	if err != nil {
		m.recordRegen("error")
		return nil, err
	}
	m.install(sc)
	m.recordRegen("ok")
	return sc, nil
}

func (m *Manager) build(cfg city.Config) (*Scene, error) {
	res, err := city.Generate(cfg)
	if err != nil {
		return nil, err
	}
	sc := &Scene{
		RunID:     uuid.NewString(),
		Config:    cfg,
		Result:    res,
		Doc:       protocol.FromMesh(res.Mesh),
		CreatedAt: time.Now().UTC(),
	}
	msg := protocol.SceneMsg{
		Type:            protocol.TypeScene,
		ProtocolVersion: protocol.Version,
		RunID:           sc.RunID,
		Seed:            cfg.Seed,
		Stats:           SceneStats(res.Stats),
		Mesh:            sc.Doc,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	sc.Msg = b
	return sc, nil
}

func (m *Manager) install(sc *Scene) {
	if m.onScene != nil {
		m.onScene(sc)
	}
	m.persistState(sc)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = sc
	for out := range m.sessions {
		select {
		case out <- sc.Msg:
		default:
			m.dropTotal++
		}
	}
}

// SceneStats converts layout statistics to their wire form.
func SceneStats(s city.Stats) protocol.SceneStats {
	out := protocol.SceneStats{
		Placed:       map[string]int{},
		Requested:    map[string]int{},
		Vertices:     s.Vertices,
		Triangles:    s.Triangles,
		TotalObjects: s.Total(),
	}
	for k, v := range s.Placed {
		out.Placed[string(k)] = v
	}
	for k, v := range s.Requested {
		out.Requested[string(k)] = v
	}
	return out
}

func (m *Manager) recordRegen(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regenTotals[regenMetricKey{Result: result}]++
}

func (m *Manager) RegenMetrics() []RegenMetric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RegenMetric, 0, len(m.regenTotals))
	for k, n := range m.regenTotals {
		out = append(out, RegenMetric{Result: k.Result, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Result < out[j].Result })
	return out
}

// DroppedBroadcasts counts scenes not delivered because a session queue was
// full.
func (m *Manager) DroppedBroadcasts() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropTotal
}

func (m *Manager) loadState() (persistedState, bool) {
	if m.stateFile == "" {
		return persistedState{}, false
	}
	b, err := os.ReadFile(m.stateFile)
	if err != nil {
		return persistedState{}, false
	}
	var st persistedState
	if err := json.Unmarshal(b, &st); err != nil || st.Version != stateVersion {
		return persistedState{}, false
	}
	st.Config.Normalize()
	if err := st.Config.Validate(); err != nil {
		return persistedState{}, false
	}
	return st, true
}

func (m *Manager) persistState(sc *Scene) {
	if m.stateFile == "" {
		return
	}
	b, err := json.MarshalIndent(persistedState{Version: stateVersion, RunID: sc.RunID, Config: sc.Config}, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.stateFile), 0o755); err != nil {
		return
	}
	tmp := m.stateFile + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, m.stateFile)
}
