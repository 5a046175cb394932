package structures

import (
	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/mesh"
)

const (
	// MaxSkyscraperRows caps the displayed window rows of a tower; floors above
	// it stretch the remaining rows.
	MaxSkyscraperRows = 25

	buildingLitP   = 0.7
	skyscraperLitP = 0.6

	houseFloorHeight      = 3.0
	skyscraperFloorHeight = 3.5
	shopHeight            = 4.0

	plateDepth = 0.05
	plateGap   = 0.02
)

// Building is a generic office block centered on the origin. Window plates sit
// just off all four walls; each grid cell rolls lit or unlit once and the two
// mirrored plates on opposite walls share the roll.
func Building(r *randx.Rand, width, height, depth float64, floors int) *mesh.Mesh {
	m := mesh.New()
	m.Merge(mesh.Box(width, height, depth, slate))

	w, h, d := width/2, height/2, depth/2
	rows := floors
	if rows <= 0 {
		return m
	}
	rowH := height / float64(rows)
	winH := rowH * 0.6

	cols := max(2, int(width*2))
	winW := (width / float64(cols)) * 0.6
	for row := 0; row < rows; row++ {
		y := -h + rowH*(float64(row)+0.5)
		for c := 0; c < cols; c++ {
			x := -w + (width/float64(cols))*(float64(c)+0.5)
			col := windowColor(r, buildingLitP, litWarm, unlitGray)
			m.Merge(mesh.Box(winW, winH, plateDepth, col), mesh.Offset(mesh.Vec3{x, y, d + plateGap}))
			m.Merge(mesh.Box(winW, winH, plateDepth, col), mesh.Offset(mesh.Vec3{-x, y, -d - plateGap}))
		}
	}

	sideCols := max(2, int(depth*2))
	winD := (depth / float64(sideCols)) * 0.6
	for row := 0; row < rows; row++ {
		y := -h + rowH*(float64(row)+0.5)
		for c := 0; c < sideCols; c++ {
			z := -d + (depth/float64(sideCols))*(float64(c)+0.5)
			col := windowColor(r, buildingLitP, litWarm, unlitGray)
			m.Merge(mesh.Box(plateDepth, winH, winD, col), mesh.Offset(mesh.Vec3{w + plateGap, y, z}))
			m.Merge(mesh.Box(plateDepth, winH, winD, col), mesh.Offset(mesh.Vec3{-w - plateGap, y, -z}))
		}
	}
	return m
}

// House is a small residence standing on y=0 with a slab roof, a door and two
// front windows per floor.
func House(r *randx.Rand, floors int) *mesh.Mesh {
	m := mesh.New()
	width := r.Uniform(4, 6)
	depth := r.Uniform(4, 6)
	height := float64(floors) * houseFloorHeight
	wall := randx.Choose(r, WallColors)

	m.Merge(mesh.Box(width, height, depth, wall), mesh.Offset(mesh.Vec3{0, height / 2, 0}))

	const roofHeight = 2.0
	m.Merge(mesh.Box(width+0.5, roofHeight, depth+0.5, roofBrown), mesh.Offset(mesh.Vec3{0, height + roofHeight/2, 0}))
	m.Merge(mesh.Box(1, 2.5, 0.1, doorBrown), mesh.Offset(mesh.Vec3{0, 1.25, depth/2 + 0.05}))

	for f := 0; f < floors; f++ {
		y := float64(f)*houseFloorHeight + houseFloorHeight/2 + 0.5
		m.Merge(mesh.Box(1, 1.2, plateDepth, houseGlass), mesh.Offset(mesh.Vec3{-width / 4, y, depth/2 + 0.05}))
		m.Merge(mesh.Box(1, 1.2, plateDepth, houseGlass), mesh.Offset(mesh.Vec3{width / 4, y, depth/2 + 0.05}))
	}
	return m
}

// HouseSeeded builds a house from its own seeded sub-stream.
func HouseSeeded(seed int64, floors int) *mesh.Mesh {
	return House(randx.Derive(seed, randx.StreamHouse), floors)
}

// Shop is a one-floor storefront: glass front, colored awning and a sign.
func Shop(r *randx.Rand, width float64) *mesh.Mesh {
	m := mesh.New()
	depth := r.Uniform(6, 10)
	height := shopHeight

	m.Merge(mesh.Box(width, height, depth, shopWall), mesh.Offset(mesh.Vec3{0, height / 2, 0}))
	m.Merge(mesh.Box(width*0.7, height*0.6, plateDepth, shopGlass), mesh.Offset(mesh.Vec3{0, height * 0.4, depth/2 + 0.05}))

	awning := randx.Choose(r, AwningColors)
	m.Merge(mesh.Box(width*0.8, 0.3, 1.5, awning), mesh.Offset(mesh.Vec3{0, height * 0.75, depth/2 + 0.75}))
	m.Merge(mesh.Box(width*0.5, 0.8, 0.1, signLight), mesh.Offset(mesh.Vec3{0, height - 0.5, depth/2 + 0.1}))
	return m
}

// ShopSeeded builds a shop from its own seeded sub-stream.
func ShopSeeded(seed int64, width float64) *mesh.Mesh {
	return Shop(randx.Derive(seed, randx.StreamShop), width)
}

// Skyscraper is a glass tower standing on y=0 with a front window grid, a
// rooftop antenna and a beacon.
func Skyscraper(r *randx.Rand, floors int) *mesh.Mesh {
	m := mesh.New()
	width := r.Uniform(8, 15)
	depth := r.Uniform(8, 15)
	height := float64(floors) * skyscraperFloorHeight

	m.Merge(mesh.Box(width, height, depth, towerGlass), mesh.Offset(mesh.Vec3{0, height / 2, 0}))

	rows := min(floors, MaxSkyscraperRows)
	cols := max(3, int(width/2))
	if rows > 0 {
		w, h, d := width/2, height/2, depth/2
		rowH := height / float64(rows)
		winW := (width / float64(cols)) * 0.6
		winH := rowH * 0.5
		for row := 0; row < rows; row++ {
			y := -h + rowH*(float64(row)+0.5)
			for c := 0; c < cols; c++ {
				x := -w + (width/float64(cols))*(float64(c)+0.5)
				col := windowColor(r, skyscraperLitP, towerLit, towerUnlit)
				m.Merge(mesh.Box(winW, winH, plateDepth, col), mesh.Offset(mesh.Vec3{x, y + h, d + plateGap}))
			}
		}
	}

	m.Merge(mesh.Box(0.5, 8, 0.5, antennaGray), mesh.Offset(mesh.Vec3{0, height + 4, 0}))
	m.Merge(mesh.Box(0.8, 0.8, 0.8, beaconRed), mesh.Offset(mesh.Vec3{0, height + 8, 0}))
	return m
}

// SkyscraperSeeded builds a skyscraper from its own seeded sub-stream.
func SkyscraperSeeded(seed int64, floors int) *mesh.Mesh {
	return Skyscraper(randx.Derive(seed, randx.StreamSkyscraper), floors)
}

// windowColor is one independent Bernoulli roll per window cell.
func windowColor(r *randx.Rand, pLit float64, lit, unlit mesh.Color) mesh.Color {
	if r.Bernoulli(pLit) {
		return lit
	}
	return unlit
}
