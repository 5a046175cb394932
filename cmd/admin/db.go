package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	runID := fs.String("run", "", "run id (placements query; defaults to latest)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "runs"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "runs.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runQuery(os.Stdout, db, q, strings.TrimSpace(*runID), *limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if strings.HasPrefix(err.Error(), "unknown query") {
			fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data|-db PATH] [-run ID] [-limit N] runs|placements|config")
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runQuery(w io.Writer, db *sql.DB, q, runID string, limit int) error {
	if q != "runs" && runID == "" {
		id, err := latestRunID(db)
		if err != nil {
			return fmt.Errorf("latest run: %w", err)
		}
		if id == "" {
			return fmt.Errorf("no runs found")
		}
		runID = id
	}

	switch q {
	case "runs":
		if limit <= 0 {
			limit = 20
		}
		rows, err := db.Query(`SELECT run_id,seed,city_size,vertices,triangles,output_path,created_at FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				RunID      string  `json:"run_id"`
				Seed       int64   `json:"seed"`
				CitySize   float64 `json:"city_size"`
				Vertices   int     `json:"vertices"`
				Triangles  int     `json:"triangles"`
				OutputPath string  `json:"output_path"`
				CreatedAt  string  `json:"created_at"`
			}
			if err := rows.Scan(&r.RunID, &r.Seed, &r.CitySize, &r.Vertices, &r.Triangles, &r.OutputPath, &r.CreatedAt); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSONTo(w, r)
		}
		return rows.Err()

	case "placements":
		rows, err := db.Query(`SELECT category,requested,placed FROM placements WHERE run_id=? ORDER BY category`, runID)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				RunID     string `json:"run_id"`
				Category  string `json:"category"`
				Requested int    `json:"requested"`
				Placed    int    `json:"placed"`
				Rejected  int    `json:"rejected"`
			}
			if err := rows.Scan(&r.Category, &r.Requested, &r.Placed); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			r.RunID = runID
			r.Rejected = r.Requested - r.Placed
			printJSONTo(w, r)
		}
		return rows.Err()

	case "config":
		var cfg string
		if err := db.QueryRow(`SELECT config_json FROM runs WHERE run_id=?`, runID).Scan(&cfg); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		var v any
		if err := json.Unmarshal([]byte(cfg), &v); err != nil {
			return fmt.Errorf("config_json: %w", err)
		}
		printJSONTo(w, v)
		return nil

	default:
		return fmt.Errorf("unknown query: %s", q)
	}
}

func latestRunID(db *sql.DB) (string, error) {
	if db == nil {
		return "", fmt.Errorf("nil db")
	}
	var id sql.NullString
	if err := db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC, run_id LIMIT 1`).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id.String, nil
}

func printJSONTo(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
