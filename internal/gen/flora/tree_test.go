package flora

import (
	"testing"

	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/mesh"
)

func countLeaves(m *mesh.Mesh) int {
	n := 0
	for i := 0; i < len(m.Colors); i += 8 {
		if m.Colors[i] == LeafColor {
			n++
		}
	}
	return n
}

func TestTree_LeafAndLimbCounts(t *testing.T) {
	for levels := 0; levels <= 5; levels++ {
		m := TreeSeeded(11, levels)
		if err := m.Validate(); err != nil {
			t.Fatalf("levels=%d Validate: %v", levels, err)
		}
		leaves := 1 << levels
		boxes := 2*leaves - 1
		if got := m.VertexCount(); got != 8*boxes {
			t.Fatalf("levels=%d vertices=%d want %d", levels, got, 8*boxes)
		}
		if got := m.TriangleCount(); got != 12*boxes {
			t.Fatalf("levels=%d faces=%d want %d", levels, got, 12*boxes)
		}
		if got := countLeaves(m); got != leaves {
			t.Fatalf("levels=%d leaves=%d want %d", levels, got, leaves)
		}
	}
}

func TestTree_DeterministicPerSeed(t *testing.T) {
	a := TreeSeeded(42, 4)
	b := TreeSeeded(42, 4)
	if a.VertexCount() != b.VertexCount() {
		t.Fatalf("vertex count differs")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("vertex %d differs: %v vs %v", i, a.Vertices[i], b.Vertices[i])
		}
	}

	c := TreeSeeded(43, 4)
	same := true
	for i := range a.Vertices {
		if a.Vertices[i] != c.Vertices[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical trees")
	}
}

func TestTree_SameStateSameOutput(t *testing.T) {
	p := DefaultTreeParams(3)
	a := Tree(randx.New(9), p)
	b := Tree(randx.New(9), p)
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("vertex %d differs", i)
		}
	}
}

func TestTree_TrunkIsAxisAlignedAtMidpoint(t *testing.T) {
	m := TreeSeeded(1, 2)
	// The first box is the trunk: radius 0.4, length 3, centered at (0,1.5,0).
	b, ok := (&mesh.Mesh{Vertices: m.Vertices[:8]}).Bounds()
	if !ok {
		t.Fatalf("no bounds")
	}
	size := b.Size()
	if !near(size[0], 0.8) || !near(size[1], 3) || !near(size[2], 0.8) {
		t.Fatalf("trunk size=%v", size)
	}
	c := b.Center()
	if !near(c[0], 0) || !near(c[1], 1.5) || !near(c[2], 0) {
		t.Fatalf("trunk center=%v", c)
	}
}

func TestTree_GrowsUpward(t *testing.T) {
	m := TreeSeeded(5, 4)
	b, _ := m.Bounds()
	if b.Max[1] <= 3 {
		t.Fatalf("tree should extend above its trunk, max y=%f", b.Max[1])
	}
}

func TestTree_NegativeLevelsIsSingleLeaf(t *testing.T) {
	m := Tree(randx.New(1), DefaultTreeParams(-3))
	if m.VertexCount() != 8 || countLeaves(m) != 1 {
		t.Fatalf("expected a single leaf cluster, got %d vertices", m.VertexCount())
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
