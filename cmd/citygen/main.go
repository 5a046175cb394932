package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/persistence/archive"
	"polycity.ai/internal/persistence/indexdb"
	persistlog "polycity.ai/internal/persistence/log"
	"polycity.ai/internal/persistence/meshfile"
	"polycity.ai/internal/protocol"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("citygen", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "./configs/city.yaml", "path to city.yaml (empty for built-in defaults)")
		seed        = fs.Int64("seed", 0, "override the config seed")
		citySize    = fs.Float64("city_size", 0, "override the config city_size")
		out         = fs.String("out", "./data/cyber_city.json", "output mesh path (.json or .json.zst)")
		dataDir     = fs.String("data", "./data", "runtime data directory (index, placement logs, archives)")
		placements  = fs.Bool("log_placements", true, "write a placements-<run>.jsonl.zst log")
		assetsDir   = fs.String("assets", "", "also export standalone assets into this directory")
		archiveRun  = fs.Bool("archive", false, "copy the output mesh into <data>/archives/run_<id>/")
		validate    = fs.Bool("validate", true, "validate the mesh against mesh.schema.json before writing")
		profileMode = fs.String("profile", "", "cpu|mem profile written to the working directory")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	logger := log.New(os.Stdout, "[citygen] ", log.LstdFlags|log.Lmicroseconds)

	switch strings.ToLower(strings.TrimSpace(*profileMode)) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q (want cpu or mem)\n", *profileMode)
		return 2
	}

	cfg, err := city.Load(*configPath)
	if err != nil {
		logger.Printf("load config: %v", err)
		return 1
	}
	if seedSet {
		cfg.Seed = *seed
	}
	if *citySize != 0 {
		cfg.CitySize = *citySize
		if err := cfg.Validate(); err != nil {
			logger.Printf("config: %v", err)
			return 2
		}
	}

	runID := uuid.NewString()
	idx, err := openRunIndex(*dataDir)
	if err != nil {
		logger.Printf("open index backend: %v", err)
		return 1
	}
	if idx != nil {
		defer idx.Close()
	}

	var opts []city.Option
	var plog *persistlog.PlacementLogger
	if *placements {
		plog = persistlog.NewPlacementLogger(filepath.Join(*dataDir, "logs"), runID)
		defer plog.Close()
		opts = append(opts, city.WithSink(plog))
	}

	logger.Printf("generating run=%s seed=%d city_size=%.1f", runID, cfg.Seed, cfg.CitySize)
	start := time.Now()
	res, err := city.Generate(cfg, opts...)
	if err != nil {
		logger.Printf("generate: %v", err)
		return 1
	}
	logger.Printf("generated in %s", time.Since(start).Round(time.Millisecond))

	doc := protocol.FromMesh(res.Mesh)
	if *validate {
		if err := protocol.ValidateMesh(doc); err != nil {
			logger.Printf("validate mesh: %v", err)
			return 1
		}
	}
	if err := meshfile.Write(*out, meshfile.NewHeader(runID, cfg.Seed, doc), doc); err != nil {
		logger.Printf("write mesh: %v", err)
		return 1
	}
	logger.Printf("wrote %s", *out)
	if plog != nil {
		if err := plog.Close(); err != nil {
			logger.Printf("placement log: %v", err)
		} else {
			logger.Printf("placements logged to %s", plog.Path())
		}
	}

	if idx != nil {
		cfgJSON, _ := json.Marshal(cfg)
		idx.RecordRun(runRow(runID, *out, cfg, res, string(cfgJSON)))
	}

	if *archiveRun {
		dir, err := archive.ArchiveRun(*dataDir, runID, cfg.Seed, *out)
		if err != nil {
			logger.Printf("archive run: %v", err)
			return 1
		}
		logger.Printf("archived to %s", dir)
	}

	if strings.TrimSpace(*assetsDir) != "" {
		metas, err := archive.ExportAssets(*assetsDir, archive.DefaultAssets())
		if err != nil {
			logger.Printf("export assets: %v", err)
			return 1
		}
		for _, m := range metas {
			logger.Printf("asset %s: %d vertices, %d triangles", m.Name, m.Vertices, m.Triangles)
		}
	}

	printStats(os.Stdout, res.Stats)
	return 0
}

func runRow(runID, outPath string, cfg city.Config, res *city.Result, cfgJSON string) indexdb.RunRow {
	row := indexdb.RunRow{
		RunID:      runID,
		Seed:       cfg.Seed,
		CitySize:   cfg.CitySize,
		Vertices:   res.Stats.Vertices,
		Triangles:  res.Stats.Triangles,
		OutputPath: outPath,
		CreatedAt:  indexdb.FormatTime(time.Now()),
		ConfigJSON: cfgJSON,
		Placed:     map[string]int{},
		Requested:  map[string]int{},
	}
	for _, cat := range city.Categories {
		row.Placed[string(cat)] = res.Stats.Placed[cat]
		row.Requested[string(cat)] = res.Stats.Requested[cat]
	}
	return row
}
