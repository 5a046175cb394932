package mesh

import "math"

type Bounds struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

func (b Bounds) Size() Vec3   { return b.Max.Sub(b.Min) }
func (b Bounds) Center() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Bounds returns the axis-aligned box around all vertices; ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (b Bounds, ok bool) {
	if len(m.Vertices) == 0 {
		return Bounds{}, false
	}
	b.Min = Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	b.Max = Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], v[i])
			b.Max[i] = math.Max(b.Max[i], v[i])
		}
	}
	return b, true
}
