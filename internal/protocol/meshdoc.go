package protocol

import "polycity.ai/internal/mesh"

// MeshDoc is the interchange form of a mesh: three parallel-indexed arrays
// under the keys vertices, faces and colors.
type MeshDoc struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][3]int     `json:"faces"`
	Colors   [][3]float64 `json:"colors"`
}

func FromMesh(m *mesh.Mesh) MeshDoc {
	if m == nil {
		m = mesh.New()
	}
	doc := MeshDoc{
		Vertices: make([][3]float64, len(m.Vertices)),
		Faces:    make([][3]int, len(m.Faces)),
		Colors:   make([][3]float64, len(m.Colors)),
	}
	for i, v := range m.Vertices {
		doc.Vertices[i] = v
	}
	for i, f := range m.Faces {
		doc.Faces[i] = f
	}
	for i, c := range m.Colors {
		doc.Colors[i] = c
	}
	return doc
}

func (d MeshDoc) ToMesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: make([]mesh.Vec3, len(d.Vertices)),
		Faces:    make([]mesh.Face, len(d.Faces)),
		Colors:   make([]mesh.Color, len(d.Colors)),
	}
	for i, v := range d.Vertices {
		m.Vertices[i] = v
	}
	for i, f := range d.Faces {
		m.Faces[i] = f
	}
	for i, c := range d.Colors {
		m.Colors[i] = c
	}
	return m
}
