package structures

import "polycity.ai/internal/mesh"

// Axis is the horizontal direction a road segment runs along.
type Axis int

const (
	AxisZ Axis = iota
	AxisX
)

const (
	laneDashSpacing = 2.0
	laneDashLength  = 0.8
	laneDashWidth   = 0.15
)

// Streetlight is a pole with an arm reaching +X and a bulb at its tip.
func Streetlight(height float64) *mesh.Mesh {
	m := mesh.New()
	m.Merge(mesh.Box(0.3, height, 0.3, poleGray), mesh.Offset(mesh.Vec3{0, height / 2, 0}))
	m.Merge(mesh.Box(1.5, 0.2, 0.2, poleGray), mesh.Offset(mesh.Vec3{0.75, height - 0.3, 0}))
	m.Merge(mesh.Box(0.6, 0.4, 0.6, bulbWarm), mesh.Offset(mesh.Vec3{1.5, height - 0.5, 0}))
	return m
}

// Bench is a seat slab and backrest on two iron legs, seat facing +Z.
func Bench() *mesh.Mesh {
	m := mesh.New()
	m.Merge(mesh.Box(2, 0.15, 0.6, benchWood), mesh.Offset(mesh.Vec3{0, 0.5, 0}))
	m.Merge(mesh.Box(2, 0.6, 0.1, benchWood), mesh.Offset(mesh.Vec3{0, 0.9, -0.25}))
	for _, x := range []float64{-0.8, 0.8} {
		m.Merge(mesh.Box(0.1, 0.5, 0.5, benchIron), mesh.Offset(mesh.Vec3{x, 0.25, 0}))
	}
	return m
}

// RoadSegment is an asphalt slab of the given length and width centered on the
// origin, with int(length/2) center-line dashes. The segment runs along axis.
func RoadSegment(length, width float64, axis Axis) *mesh.Mesh {
	m := mesh.New()
	m.Merge(mesh.Box(footprint(axis, width, 0.1, length, asphalt)), mesh.Offset(mesh.Vec3{0, 0.05, 0}))

	dashes := int(length / laneDashSpacing)
	for i := 0; i < dashes; i++ {
		t := -length/2 + float64(i)*laneDashSpacing + 0.5
		off := mesh.Vec3{0, 0.11, t}
		if axis == AxisX {
			off = mesh.Vec3{t, 0.11, 0}
		}
		m.Merge(mesh.Box(footprint(axis, laneDashWidth, 0.02, laneDashLength, laneYellow)), mesh.Offset(off))
	}
	return m
}

// footprint returns Box arguments for a part that is across wide and runs
// lengthwise along axis.
func footprint(axis Axis, across, height, lengthwise float64, c mesh.Color) (float64, float64, float64, mesh.Color) {
	if axis == AxisX {
		return lengthwise, height, across, c
	}
	return across, height, lengthwise, c
}
