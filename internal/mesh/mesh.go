package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

// Color is linear RGB with components in [0,1].
type Color [3]float64

// Face is a triangle as three indices into Mesh.Vertices.
type Face [3]int

// Mesh is a per-vertex-colored triangle list.
//
// Colors is parallel to Vertices and every face index refers to an existing
// vertex. Merge keeps both properties; Validate checks them.
type Mesh struct {
	Vertices []Vec3
	Faces    []Face
	Colors   []Color
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

type mergeOpts struct {
	offset   Vec3
	scale    float64
	override *Color
}

type MergeOption func(*mergeOpts)

// Offset translates merged vertices after scaling.
func Offset(v Vec3) MergeOption {
	return func(o *mergeOpts) { o.offset = v }
}

// Scale multiplies merged vertices uniformly before translation.
func Scale(s float64) MergeOption {
	return func(o *mergeOpts) { o.scale = s }
}

// ColorOverride replaces every merged vertex color with c.
func ColorOverride(c Color) MergeOption {
	return func(o *mergeOpts) { o.override = &c }
}

// Merge appends other into m. Vertices become v*scale+offset, colors are
// copied (or overridden) and faces are shifted by m's vertex count before the
// merge. other is not modified and vertices are never deduplicated.
func (m *Mesh) Merge(other *Mesh, opts ...MergeOption) {
	if other == nil {
		return
	}
	o := mergeOpts{scale: 1}
	for _, fn := range opts {
		fn(&o)
	}

	start := len(m.Vertices)
	for _, v := range other.Vertices {
		m.Vertices = append(m.Vertices, v.Mul(o.scale).Add(o.offset))
	}
	for _, c := range other.Colors {
		if o.override != nil {
			c = *o.override
		}
		m.Colors = append(m.Colors, c)
	}
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, Face{f[0] + start, f[1] + start, f[2] + start})
	}
}

// VertexCount is len(m.Vertices).
func (m *Mesh) VertexCount() int   { return len(m.Vertices) }
func (m *Mesh) TriangleCount() int { return len(m.Faces) }
func (m *Mesh) IsEmpty() bool      { return len(m.Vertices) == 0 }

// Clone deep-copies m.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([]Vec3, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
		Colors:   make([]Color, len(m.Colors)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Faces, m.Faces)
	copy(out.Colors, m.Colors)
	return out
}

// Validate reports the first violation of the mesh invariants.
func (m *Mesh) Validate() error {
	if len(m.Colors) != len(m.Vertices) {
		return fmt.Errorf("colors/vertices length mismatch: %d colors for %d vertices", len(m.Colors), len(m.Vertices))
	}
	for i, v := range m.Vertices {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("vertex %d: non-finite coordinate %v", i, v)
			}
		}
	}
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d: index %d out of range [0,%d)", i, idx, n)
			}
		}
	}
	return nil
}

// SignedVolume is the divergence-theorem volume of the triangle list. It is
// positive for a closed mesh whose faces wind counter-clockwise seen from outside.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}
