package flora

import (
	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/mesh"
)

const (
	childBranches = 2
	childShrink   = 0.7
)

var (
	BarkColor = mesh.Color{0.4, 0.2, 0.1}
	LeafColor = mesh.Color{1.0, 0.2, 0.5}
)

type TreeParams struct {
	Levels int
	Length float64
	Radius float64
	Spread float64

	Root mesh.Vec3
	Up   mesh.Vec3

	Bark mesh.Color
	Leaf mesh.Color
}

func DefaultTreeParams(levels int) TreeParams {
	return TreeParams{
		Levels: levels,
		Length: 3.0,
		Radius: 0.4,
		Spread: 0.5,
		Up:     mesh.Vec3{0, 1, 0},
		Bark:   BarkColor,
		Leaf:   LeafColor,
	}
}

// branch is one pending limb. A child's direction is drawn when it is popped,
// not when it is pushed, so draws happen in depth-first order.
type branch struct {
	pos    mesh.Vec3
	dir    mesh.Vec3
	length float64
	radius float64
	level  int
	child  bool
}

// Tree grows a binary branching tree. Each limb is an axis-aligned box at the
// midpoint of its true (tilted) span; the tilt only moves the limb's end point.
// Level 0 branches become cube leaf clusters, so a tree has 2^Levels leaves.
func Tree(r *randx.Rand, p TreeParams) *mesh.Mesh {
	m := mesh.New()
	if p.Levels < 0 {
		p.Levels = 0
	}

	stack := []branch{{pos: p.Root, dir: p.Up, length: p.Length, radius: p.Radius, level: p.Levels}}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.child {
			b.dir = perturb(r, b.dir, p.Spread)
		}

		if b.level <= 0 {
			m.Merge(mesh.Box(b.length, b.length, b.length, p.Leaf), mesh.Offset(b.pos))
			continue
		}

		end := b.pos.Add(b.dir.Mul(b.length))
		mid := b.pos.Add(b.dir.Mul(b.length * 0.5))
		m.Merge(mesh.Box(b.radius*2, b.length, b.radius*2, p.Bark), mesh.Offset(mid))

		for i := 0; i < childBranches; i++ {
			stack = append(stack, branch{
				pos:    end,
				dir:    b.dir,
				length: b.length * childShrink,
				radius: b.radius * childShrink,
				level:  b.level - 1,
				child:  true,
			})
		}
	}
	return m
}

// TreeSeeded builds a default tree from its own seeded sub-stream.
func TreeSeeded(seed int64, levels int) *mesh.Mesh {
	return Tree(randx.Derive(seed, randx.StreamTree), DefaultTreeParams(levels))
}

// perturb jitters x and z in [-spread,spread] and y in [0,spread] so growth
// leans upward, then renormalizes.
func perturb(r *randx.Rand, dir mesh.Vec3, spread float64) mesh.Vec3 {
	d := mesh.Vec3{
		dir[0] + r.Uniform(-spread, spread),
		dir[1] + r.Uniform(0, spread),
		dir[2] + r.Uniform(-spread, spread),
	}
	if d.Len() == 0 {
		return dir
	}
	return d.Normalize()
}
