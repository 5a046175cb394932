// Package schemas embeds the JSON schemas of the interchange formats.
package schemas

import "embed"

//go:embed *.schema.json
var FS embed.FS

const (
	Mesh  = "mesh.schema.json"
	Scene = "scene.schema.json"
)
