package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"polycity.ai/internal/persistence/indexdb"
)

type runIndex interface {
	RecordRun(r indexdb.RunRow)
	Close() error
}

func openRunIndex(dataDir string) (runIndex, error) {
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
