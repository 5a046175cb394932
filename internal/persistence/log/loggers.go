package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"polycity.ai/internal/gen/city"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream. The
// file is opened on first write.
type JSONLZstdWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// PlacementEntry is one line of a placement log.
type PlacementEntry struct {
	RunID     string     `json:"run_id"`
	Category  string     `json:"category"`
	Index     int        `json:"index"`
	Position  [3]float64 `json:"position"`
	Scale     float64    `json:"scale"`
	Vertices  int        `json:"vertices"`
	Triangles int        `json:"triangles"`
}

// PlacementLogger records every placement of one generation run. It is a
// city.Sink.
type PlacementLogger struct {
	runID string
	w     *JSONLZstdWriter
}

func PlacementPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("placements-%s.jsonl.zst", runID))
}

func NewPlacementLogger(dir, runID string) *PlacementLogger {
	return &PlacementLogger{runID: runID, w: NewJSONLZstdWriter(PlacementPath(dir, runID))}
}

func (l *PlacementLogger) Place(p city.Placement) error {
	return l.w.Write(PlacementEntry{
		RunID:     l.runID,
		Category:  string(p.Category),
		Index:     p.Index,
		Position:  p.Position,
		Scale:     p.Scale,
		Vertices:  p.Vertices,
		Triangles: p.Triangles,
	})
}

func (l *PlacementLogger) Path() string { return l.w.Path() }
func (l *PlacementLogger) Close() error { return l.w.Close() }

// ReadPlacements decodes a placement log.
func ReadPlacements(path string) ([]PlacementEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []PlacementEntry
	jd := json.NewDecoder(bufio.NewReader(dec))
	for {
		var e PlacementEntry
		if err := jd.Decode(&e); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, fmt.Errorf("decode placement %d: %w", len(out), err)
		}
		out = append(out, e)
	}
}
