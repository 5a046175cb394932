package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/persistence/indexdb"
	"polycity.ai/internal/scene"
)

type runtimeIndex interface {
	RecordRun(r indexdb.RunRow)
	ListRuns(ctx context.Context, limit int) ([]indexdb.RunSummary, error)
	Stats() indexdb.Stats
	Close() error
}

func openRunIndex(dataDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("PC_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "runs.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported PC_INDEX_BACKEND: %s", backend)
	}
}

func runRow(sc *scene.Scene) indexdb.RunRow {
	cfgJSON, _ := json.Marshal(sc.Config)
	row := indexdb.RunRow{
		RunID:      sc.RunID,
		Seed:       sc.Config.Seed,
		CitySize:   sc.Config.CitySize,
		Vertices:   sc.Result.Stats.Vertices,
		Triangles:  sc.Result.Stats.Triangles,
		OutputPath: "ws",
		CreatedAt:  indexdb.FormatTime(sc.CreatedAt),
		ConfigJSON: string(cfgJSON),
		Placed:     map[string]int{},
		Requested:  map[string]int{},
	}
	for _, cat := range city.Categories {
		row.Placed[string(cat)] = sc.Result.Stats.Placed[cat]
		row.Requested[string(cat)] = sc.Result.Stats.Requested[cat]
	}
	return row
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
