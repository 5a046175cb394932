package meshfile

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"polycity.ai/internal/mesh"
	"polycity.ai/internal/protocol"
)

func sampleDoc() protocol.MeshDoc {
	m := mesh.New()
	m.Merge(mesh.Box(1, 2, 3, mesh.Color{0.2, 0.8, 1}))
	m.Merge(mesh.Box(1, 1, 1, mesh.Color{1, 1, 1}), mesh.Offset(mesh.Vec3{0, 3, 0}))
	return protocol.FromMesh(m)
}

func TestWriteRead_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "world.json")
	doc := sampleDoc()
	if err := Write(path, Header{}, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"vertices":[`) {
		t.Fatalf("plain file should be the bare document, got %.40q", b)
	}

	hdr, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if hdr != (Header{}) {
		t.Fatalf("plain file should have no header, got %+v", hdr)
	}
	if len(got.Vertices) != 16 || len(got.Faces) != 24 || got.Vertices[15] != doc.Vertices[15] {
		t.Fatalf("document changed through file")
	}
	if err := protocol.ValidateMesh(got); err != nil {
		t.Fatalf("ValidateMesh: %v", err)
	}
}

func TestWriteRead_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json.zst")
	doc := sampleDoc()
	if err := Write(path, NewHeader("run-1", 42, doc), doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	hdr, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if hdr.Version != HeaderVersion || hdr.RunID != "run-1" || hdr.Seed != 42 || hdr.Vertices != 16 || hdr.Triangles != 24 {
		t.Fatalf("unexpected header %+v", hdr)
	}

	full, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if full != hdr {
		t.Fatalf("Read header %+v != ReadHeader %+v", full, hdr)
	}
	if len(got.Colors) != 16 || got.Colors[8] != doc.Colors[8] || got.Faces[23] != doc.Faces[23] {
		t.Fatalf("document changed through file")
	}
}

func TestReadHeader_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	if err := Write(path, Header{}, sampleDoc()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := ReadHeader(path); err == nil {
		t.Fatalf("expected error for plain file")
	}
}

func TestWrite_EncodeErrorThenRewrite(t *testing.T) {
	dir := t.TempDir()
	bad := sampleDoc()
	bad.Vertices[0] = [3]float64{math.NaN(), 0, 0}
	for _, name := range []string{"world.json", "world.json.zst"} {
		path := filepath.Join(dir, name)
		if err := Write(path, NewHeader("run-1", 1, bad), bad); err == nil || !strings.Contains(err.Error(), "encode mesh") {
			t.Fatalf("%s: expected encode error, got %v", name, err)
		}

		doc := sampleDoc()
		if err := Write(path, NewHeader("run-2", 2, doc), doc); err != nil {
			t.Fatalf("%s: rewrite: %v", name, err)
		}
		_, got, err := Read(path)
		if err != nil {
			t.Fatalf("%s: Read after rewrite: %v", name, err)
		}
		if len(got.Vertices) != len(doc.Vertices) || got.Vertices[0] != doc.Vertices[0] {
			t.Fatalf("%s: rewritten document mismatch", name)
		}
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	if err := Write(filepath.Join(blocker, "world.json.zst"), Header{}, sampleDoc()); err == nil {
		t.Fatalf("expected error when the parent is a file")
	}
}

func TestRead_Missing(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "nope.json.zst")); err == nil {
		t.Fatalf("expected error")
	}
}
