package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// TimeLayout is the created_at format. It is fixed width so that string order
// matches time order down to the nanosecond.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC with TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun   atomic.Uint64
	writeErrs atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
)

type req struct {
	kind reqKind
	run  RunRow
}

// RunRow is one generation run and its per-category counts.
type RunRow struct {
	RunID      string
	Seed       int64
	CitySize   float64
	Vertices   int
	Triangles  int
	OutputPath string
	CreatedAt  string
	ConfigJSON string
	Placed     map[string]int
	Requested  map[string]int
}

type RunSummary struct {
	RunID      string  `json:"run_id"`
	Seed       int64   `json:"seed"`
	CitySize   float64 `json:"city_size"`
	Vertices   int     `json:"vertices"`
	Triangles  int     `json:"triangles"`
	OutputPath string  `json:"output_path"`
	CreatedAt  string  `json:"created_at"`
}

type CategoryStat struct {
	Category  string `json:"category"`
	Requested int    `json:"requested"`
	Placed    int    `json:"placed"`
}

type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropRunTotal   uint64 `json:"drop_run_total"`
	WriteErrsTotal uint64 `json:"write_errs_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			city_size REAL NOT NULL,
			vertices INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			output_path TEXT NOT NULL,
			created_at TEXT NOT NULL,
			config_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE TABLE IF NOT EXISTS placements (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			requested INTEGER NOT NULL,
			placed INTEGER NOT NULL,
			PRIMARY KEY (run_id, category)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun queues r for the writer. It never blocks; a full queue drops the
// row and counts the drop.
func (s *SQLiteIndex) RecordRun(r RunRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RunID == "" {
		return
	}
	if r.CreatedAt == "" {
		r.CreatedAt = FormatTime(time.Now())
	}
	if r.ConfigJSON == "" {
		r.ConfigJSON = "{}"
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropRunTotal:   s.dropRun.Load(),
		WriteErrsTotal: s.writeErrs.Load(),
	}
}

// ListRuns returns the newest runs first.
func (s *SQLiteIndex) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,seed,city_size,vertices,triangles,output_path,created_at FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Seed, &r.CitySize, &r.Vertices, &r.Triangles, &r.OutputPath, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunStats returns the per-category counts of one run, sorted by category.
func (s *SQLiteIndex) RunStats(ctx context.Context, runID string) ([]CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category,requested,placed FROM placements WHERE run_id=? ORDER BY category`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryStat
	for rows.Next() {
		var c CategoryStat
		if err := rows.Scan(&c.Category, &c.Requested, &c.Placed); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id=?`, runID).Scan(&n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("run %q not found", runID)
		}
	}
	return out, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,seed,city_size,vertices,triangles,output_path,created_at,config_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertPlacement, _ := s.db.Prepare(`INSERT OR REPLACE INTO placements(run_id,category,requested,placed) VALUES(?,?,?,?)`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
		if insertPlacement != nil {
			_ = insertPlacement.Close()
		}
	}()
	if insertRun == nil || insertPlacement == nil {
		for range s.ch {
			s.writeErrs.Add(1)
		}
		return
	}

	// Runs are rare, so each one commits on its own and readers never wait on
	// an open transaction.
	for r := range s.ch {
		switch r.kind {
		case reqRun:
			if err := s.writeRun(ctx, insertRun, insertPlacement, r.run); err != nil {
				s.writeErrs.Add(1)
			}
		}
	}
}

func (s *SQLiteIndex) writeRun(ctx context.Context, insertRun, insertPlacement *sql.Stmt, r RunRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Stmt(insertRun).Exec(
		r.RunID,
		r.Seed,
		r.CitySize,
		r.Vertices,
		r.Triangles,
		r.OutputPath,
		r.CreatedAt,
		r.ConfigJSON,
	); err != nil {
		return err
	}

	cats := make([]string, 0, len(r.Requested))
	for c := range r.Requested {
		cats = append(cats, c)
	}
	for c := range r.Placed {
		if _, ok := r.Requested[c]; !ok {
			cats = append(cats, c)
		}
	}
	sort.Strings(cats)
	for _, c := range cats {
		if _, err := tx.Stmt(insertPlacement).Exec(r.RunID, c, r.Requested[c], r.Placed[c]); err != nil {
			return err
		}
	}
	return tx.Commit()
}
