package city

import "math"

// Exclusion is an axis-aligned box centered on the origin. A point is inside
// when both |x| < HalfX and |z| < HalfZ; the boundary itself is outside.
type Exclusion struct {
	HalfX float64
	HalfZ float64
}

func (e Exclusion) Inside(x, z float64) bool {
	if e.HalfX <= 0 || e.HalfZ <= 0 {
		return false
	}
	return math.Abs(x) < e.HalfX && math.Abs(z) < e.HalfZ
}

var (
	SkyscraperCore = Exclusion{HalfX: 6, HalfZ: 6}
	MediumCore     = Exclusion{HalfX: 10, HalfZ: 10}
	PlazaClear     = Exclusion{HalfX: 5, HalfZ: 5}
)

// Annulus is a ring of radii [Inner, Outer) around the origin.
type Annulus struct {
	Inner float64
	Outer float64
}

var (
	HouseRing   = Annulus{Inner: 45, Outer: 70}
	TreeRing    = Annulus{Inner: 50, Outer: 95}
	CrystalRing = Annulus{Inner: 60, Outer: 90}
)

func Polar(angle, radius float64) (x, z float64) {
	return math.Cos(angle) * radius, math.Sin(angle) * radius
}

const (
	GridSpacing = 12.0
	roadHalf    = 3
	RoadWidth   = 6.0
)

// ShopBands are the z offsets shops snap to, between the outer roads.
var ShopBands = []float64{-36, -24, 24, 36}

// RoadOffsets returns the z offset of every horizontal road, south to north.
func RoadOffsets() []float64 {
	out := make([]float64, 0, 2*roadHalf+1)
	for i := -roadHalf; i <= roadHalf; i++ {
		out = append(out, float64(i)*GridSpacing)
	}
	return out
}
