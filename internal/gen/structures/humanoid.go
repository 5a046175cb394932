package structures

import (
	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/mesh"
)

// Humanoid is a ten-box figure about 1.9 units tall standing on y=0 and facing
// +Z. Shirt and pants colors are drawn in that order.
func Humanoid(r *randx.Rand) *mesh.Mesh {
	shirt := randx.Choose(r, ShirtColors)
	pants := randx.Choose(r, PantsColors)

	m := mesh.New()
	m.Merge(mesh.Box(0.4, 0.45, 0.35, skin), mesh.Offset(mesh.Vec3{0, 1.65, 0}))
	m.Merge(mesh.Box(0.6, 0.7, 0.35, shirt), mesh.Offset(mesh.Vec3{0, 1.15, 0}))
	for _, side := range []float64{-1, 1} {
		m.Merge(mesh.Box(0.2, 0.6, 0.2, shirt), mesh.Offset(mesh.Vec3{side * 0.4, 1.1, 0}))
		m.Merge(mesh.Box(0.15, 0.2, 0.15, skin), mesh.Offset(mesh.Vec3{side * 0.4, 0.7, 0}))
	}
	for _, side := range []float64{-1, 1} {
		m.Merge(mesh.Box(0.25, 0.8, 0.25, pants), mesh.Offset(mesh.Vec3{side * 0.18, 0.4, 0}))
	}
	for _, side := range []float64{-1, 1} {
		m.Merge(mesh.Box(0.25, 0.15, 0.35, shoeBrown), mesh.Offset(mesh.Vec3{side * 0.18, 0.075, 0.05}))
	}
	return m
}

// HumanoidSeeded builds a figure from its own seeded sub-stream.
func HumanoidSeeded(seed int64) *mesh.Mesh {
	return Humanoid(randx.Derive(seed, randx.StreamHumanoid))
}
