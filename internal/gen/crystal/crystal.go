package crystal

import (
	"math"

	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/mesh"
)

const (
	ringSegments = 6
	apexIndex    = ringSegments
	nadirIndex   = ringSegments + 1

	MinShards = 5
	MaxShards = 12
)

var (
	BaseColor = mesh.Color{0.2, 0.8, 1.0}
	TipColor  = mesh.Color{1, 1, 1}
)

// Shard is a hexagonal bipyramid-like spike: a ring of radius width in the XZ
// plane, an apex at height and a nadir at the origin. Side faces fan to the
// apex; bottom faces fan to the nadir with the opposite winding. Both fans face
// outward.
func Shard(height, width float64, base, tip mesh.Color) *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: make([]mesh.Vec3, 0, ringSegments+2),
		Colors:   make([]mesh.Color, 0, ringSegments+2),
		Faces:    make([]mesh.Face, 0, 2*ringSegments),
	}
	for i := 0; i < ringSegments; i++ {
		a := float64(i) / ringSegments * 2 * math.Pi
		m.Vertices = append(m.Vertices, mesh.Vec3{math.Cos(a) * width, 0, math.Sin(a) * width})
		m.Colors = append(m.Colors, base)
	}
	m.Vertices = append(m.Vertices, mesh.Vec3{0, height, 0}, mesh.Vec3{0, 0, 0})
	m.Colors = append(m.Colors, tip, base)

	for i := 0; i < ringSegments; i++ {
		next := (i + 1) % ringSegments
		m.Faces = append(m.Faces, mesh.Face{next, i, apexIndex})
	}
	for i := 0; i < ringSegments; i++ {
		next := (i + 1) % ringSegments
		m.Faces = append(m.Faces, mesh.Face{i, next, nadirIndex})
	}
	return m
}

// Shear leans m by moving each vertex by y*tilt along x and z. It stands in for
// a rotation; vertical extents are unchanged.
func Shear(m *mesh.Mesh, tiltX, tiltZ float64) *mesh.Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = mesh.Vec3{v[0] + v[1]*tiltX, v[1], v[2] + v[1]*tiltZ}
	}
	return out
}

// Cluster scatters 5..12 sheared shards around the origin.
func Cluster(r *randx.Rand) *mesh.Mesh {
	m := mesh.New()
	n := r.IntRange(MinShards, MaxShards)
	for i := 0; i < n; i++ {
		height := r.Uniform(1.5, 4.0)
		width := r.Uniform(0.3, 0.8)
		shard := Shard(height, width, BaseColor, TipColor)

		tiltX := r.Uniform(-0.5, 0.5)
		tiltZ := r.Uniform(-0.5, 0.5)
		shard = Shear(shard, tiltX, tiltZ)

		ox := r.Uniform(-0.5, 0.5)
		oz := r.Uniform(-0.5, 0.5)
		m.Merge(shard, mesh.Offset(mesh.Vec3{ox, 0, oz}))
	}
	return m
}

// ClusterSeeded builds a cluster from its own seeded sub-stream.
func ClusterSeeded(seed int64) *mesh.Mesh {
	return Cluster(randx.Derive(seed, randx.StreamCrystal))
}
