package mesh

// boxFaces winds each side counter-clockwise seen from outside.
var boxFaces = [12]Face{
	{4, 5, 6}, {4, 6, 7}, // +z
	{1, 0, 3}, {1, 3, 2}, // -z
	{3, 7, 6}, {3, 6, 2}, // +y
	{0, 1, 5}, {0, 5, 4}, // -y
	{1, 2, 6}, {1, 6, 5}, // +x
	{0, 4, 7}, {0, 7, 3}, // -x
}

// Box returns an axis-aligned box centered on the origin.
func Box(width, height, depth float64, color Color) *Mesh {
	w, h, d := width/2, height/2, depth/2
	m := &Mesh{
		Vertices: []Vec3{
			{-w, -h, -d}, {w, -h, -d}, {w, h, -d}, {-w, h, -d},
			{-w, -h, d}, {w, -h, d}, {w, h, d}, {-w, h, d},
		},
		Faces:  make([]Face, len(boxFaces)),
		Colors: make([]Color, 8),
	}
	copy(m.Faces, boxFaces[:])
	for i := range m.Colors {
		m.Colors[i] = color
	}
	return m
}
