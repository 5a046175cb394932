package structures

import "polycity.ai/internal/mesh"

var (
	WallColors = []mesh.Color{
		{0.8, 0.7, 0.6},
		{0.6, 0.5, 0.4},
		{0.7, 0.75, 0.8},
		{0.9, 0.85, 0.75},
	}
	AwningColors = []mesh.Color{
		{1.0, 0.3, 0.3},
		{0.3, 0.6, 1.0},
		{0.3, 0.8, 0.3},
		{1.0, 0.8, 0.2},
	}
	ShirtColors = []mesh.Color{
		{0.8, 0.2, 0.2},
		{0.2, 0.5, 0.8},
		{0.2, 0.7, 0.3},
		{0.9, 0.9, 0.2},
		{0.6, 0.3, 0.7},
		{0.1, 0.1, 0.1},
		{0.95, 0.95, 0.95},
	}
	PantsColors = []mesh.Color{
		{0.2, 0.2, 0.3},
		{0.1, 0.1, 0.1},
		{0.4, 0.35, 0.3},
		{0.3, 0.3, 0.35},
	}
)

// Fixed surface colors.
var (
	slate     = mesh.Color{0.2, 0.2, 0.25}
	litWarm   = mesh.Color{1.0, 0.9, 0.4}
	unlitGray = mesh.Color{0.1, 0.1, 0.1}

	roofBrown  = mesh.Color{0.4, 0.2, 0.15}
	doorBrown  = mesh.Color{0.3, 0.2, 0.1}
	houseGlass = mesh.Color{0.6, 0.8, 1.0}

	shopWall  = mesh.Color{0.85, 0.85, 0.8}
	shopGlass = mesh.Color{0.4, 0.6, 0.8}
	signLight = mesh.Color{1.0, 1.0, 0.8}

	towerGlass  = mesh.Color{0.3, 0.4, 0.5}
	towerLit    = mesh.Color{1.0, 0.95, 0.7}
	towerUnlit  = mesh.Color{0.1, 0.12, 0.15}
	antennaGray = mesh.Color{0.5, 0.5, 0.5}
	beaconRed   = mesh.Color{1.0, 0.2, 0.2}

	poleGray  = mesh.Color{0.3, 0.3, 0.35}
	bulbWarm  = mesh.Color{1.0, 0.95, 0.7}
	benchWood = mesh.Color{0.5, 0.35, 0.2}
	benchIron = mesh.Color{0.25, 0.25, 0.3}

	asphalt    = mesh.Color{0.15, 0.15, 0.18}
	laneYellow = mesh.Color{0.9, 0.8, 0.2}

	skin      = mesh.Color{0.9, 0.75, 0.65}
	shoeBrown = mesh.Color{0.15, 0.1, 0.1}
)
