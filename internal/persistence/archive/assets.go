package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"polycity.ai/internal/gen/crystal"
	"polycity.ai/internal/gen/flora"
	"polycity.ai/internal/mesh"
	"polycity.ai/internal/persistence/meshfile"
	"polycity.ai/internal/protocol"
)

// Asset is a standalone mesh exported next to the city.
type Asset struct {
	Name string
	Seed int64
	Mesh *mesh.Mesh
}

type AssetMeta struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	Seed      int64  `json:"seed"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
	CreatedAt string `json:"created_at"`
}

const (
	CrystalAssetSeed = 42
	TreeAssetSeed    = 123
	TreeAssetLevels  = 4
)

// DefaultAssets is the showcase crystal and tree.
func DefaultAssets() []Asset {
	return []Asset{
		{Name: "crystal", Seed: CrystalAssetSeed, Mesh: crystal.ClusterSeeded(CrystalAssetSeed)},
		{Name: "tree", Seed: TreeAssetSeed, Mesh: flora.TreeSeeded(TreeAssetSeed, TreeAssetLevels)},
	}
}

// ExportAssets writes every asset as <dir>/<name>.json plus a meta.json
// manifest. Each mesh is validated before it is written.
func ExportAssets(dir string, assets []Asset) ([]AssetMeta, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	metas := make([]AssetMeta, 0, len(assets))
	for _, a := range assets {
		if a.Name == "" {
			return nil, fmt.Errorf("asset without name")
		}
		doc := protocol.FromMesh(a.Mesh)
		if err := protocol.ValidateMesh(doc); err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.Name, err)
		}
		file := a.Name + ".json"
		if err := meshfile.Write(filepath.Join(dir, file), meshfile.Header{}, doc); err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.Name, err)
		}
		metas = append(metas, AssetMeta{
			Name:      a.Name,
			File:      file,
			Seed:      a.Seed,
			Vertices:  len(doc.Vertices),
			Triangles: len(doc.Faces),
			CreatedAt: now,
		})
	}
	b, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return nil, err
	}
	return metas, nil
}

type RunArchiveMeta struct {
	RunID     string `json:"run_id"`
	Seed      int64  `json:"seed"`
	Mesh      string `json:"mesh"`
	CreatedAt string `json:"created_at"`
}

// ArchiveRun copies a generated mesh file into `baseDir/archives/run_<id>/`
// with a meta.json and returns the archived path.
func ArchiveRun(baseDir, runID string, seed int64, meshPath string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("empty run id")
	}
	archiveDir := filepath.Join(baseDir, "archives", "run_"+runID)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(archiveDir, filepath.Base(meshPath))
	if err := copyFile(meshPath, dst); err != nil {
		return "", err
	}

	meta := RunArchiveMeta{
		RunID:     runID,
		Seed:      seed,
		Mesh:      filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
