package mesh

import (
	"math"
	"testing"
)

func TestBox_CornersAndColors(t *testing.T) {
	c := Color{0.2, 0.3, 0.4}
	m := Box(2, 4, 6, c)

	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Fatalf("got %d vertices %d faces", m.VertexCount(), m.TriangleCount())
	}
	seen := map[[3]int]bool{}
	for _, v := range m.Vertices {
		if math.Abs(v[0]) != 1 || math.Abs(v[1]) != 2 || math.Abs(v[2]) != 3 {
			t.Fatalf("vertex %v is not a corner", v)
		}
		seen[[3]int{sign(v[0]), sign(v[1]), sign(v[2])}] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct sign combinations, got %d", len(seen))
	}
	for i, got := range m.Colors {
		if got != c {
			t.Fatalf("color %d=%v want %v", i, got, c)
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBox_ClosedAndOutward(t *testing.T) {
	m := Box(2, 4, 6, Color{})
	if v := m.SignedVolume(); math.Abs(v-48) > 1e-9 {
		t.Fatalf("signed volume=%f want 48", v)
	}

	// Every undirected edge of a closed manifold is shared by exactly two faces
	// that traverse it in opposite directions.
	directed := map[[2]int]int{}
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			directed[[2]int{f[k], f[(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		if n != 1 {
			t.Fatalf("directed edge %v used %d times", e, n)
		}
		if directed[[2]int{e[1], e[0]}] != 1 {
			t.Fatalf("edge %v has no opposite", e)
		}
	}
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}
