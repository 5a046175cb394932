package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"polycity.ai/internal/gen/city"
	persistlog "polycity.ai/internal/persistence/log"
	"polycity.ai/internal/persistence/meshfile"
)

func main() {
	var (
		configPath = flag.String("config", "", "config of the recorded run (city.yaml, or the JSON printed by `admin db config`)")
		logPath    = flag.String("placements", "", "placements-<run>.jsonl.zst to verify")
		meshPath   = flag.String("mesh", "", "mesh file of the recorded run (optional)")
		maxReport  = flag.Int("max_report", 10, "mismatches to print")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -placements")
		os.Exit(2)
	}
	cfg, err := city.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	entries, err := persistlog.ReadPlacements(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read placements:", err)
		os.Exit(1)
	}

	res, err := city.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
	fmt.Printf("seed=%d city_size=%.1f recorded=%d regenerated=%d vertices=%d\n",
		cfg.Seed, cfg.CitySize, len(entries), len(res.Placements), res.Stats.Vertices)

	mismatches := comparePlacements(entries, res.Placements)
	if *meshPath != "" {
		hdr, doc, err := meshfile.Read(*meshPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read mesh:", err)
			os.Exit(1)
		}
		if len(doc.Vertices) != res.Stats.Vertices || len(doc.Faces) != res.Stats.Triangles {
			mismatches = append(mismatches, fmt.Sprintf("mesh: recorded %d/%d vertices/triangles, regenerated %d/%d",
				len(doc.Vertices), len(doc.Faces), res.Stats.Vertices, res.Stats.Triangles))
		}
		if hdr.Seed != 0 && hdr.Seed != cfg.Seed {
			mismatches = append(mismatches, fmt.Sprintf("mesh: header seed %d, config seed %d", hdr.Seed, cfg.Seed))
		}
	}

	for i, m := range mismatches {
		if i >= *maxReport {
			fmt.Printf("... %d more\n", len(mismatches)-i)
			break
		}
		fmt.Println("MISMATCH", m)
	}
	if len(mismatches) > 0 {
		os.Exit(1)
	}
	fmt.Println("replay ok")
}

const positionEpsilon = 1e-9

// comparePlacements pairs recorded and regenerated placements in order.
func comparePlacements(recorded []persistlog.PlacementEntry, got []city.Placement) []string {
	var out []string
	n := min(len(recorded), len(got))
	for i := 0; i < n; i++ {
		r, g := recorded[i], got[i]
		switch {
		case r.Category != string(g.Category) || r.Index != g.Index:
			out = append(out, fmt.Sprintf("#%d: recorded %s[%d], regenerated %s[%d]", i, r.Category, r.Index, g.Category, g.Index))
		case !near(r.Position, g.Position) || math.Abs(r.Scale-g.Scale) > positionEpsilon:
			out = append(out, fmt.Sprintf("#%d %s[%d]: recorded pos=%v scale=%.4f, regenerated pos=%v scale=%.4f", i, r.Category, r.Index, r.Position, r.Scale, g.Position, g.Scale))
		case r.Vertices != g.Vertices || r.Triangles != g.Triangles:
			out = append(out, fmt.Sprintf("#%d %s[%d]: recorded %d/%d vertices/triangles, regenerated %d/%d", i, r.Category, r.Index, r.Vertices, r.Triangles, g.Vertices, g.Triangles))
		}
	}
	if len(recorded) != len(got) {
		out = append(out, fmt.Sprintf("count: recorded %d placements, regenerated %d", len(recorded), len(got)))
	}
	return out
}

func near(a [3]float64, b [3]float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > positionEpsilon {
			return false
		}
	}
	return true
}
