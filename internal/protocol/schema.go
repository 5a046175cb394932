package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"polycity.ai/schemas"
)

const schemaBase = "https://polycity.ai/schemas/"

var (
	compileOnce sync.Once
	meshSchema  *jsonschema.Schema
	sceneSchema *jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range []string{schemas.Mesh, schemas.Scene} {
		b, err := schemas.FS.ReadFile(name)
		if err != nil {
			compileErr = err
			return
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("%s: %w", name, err)
			return
		}
	}
	if meshSchema, compileErr = c.Compile(schemaBase + schemas.Mesh); compileErr != nil {
		return
	}
	sceneSchema, compileErr = c.Compile(schemaBase + schemas.Scene)
}

// ValidateMesh checks doc against mesh.schema.json and then the invariants the
// schema cannot express: colors parallel to vertices and face indices in range.
func ValidateMesh(doc MeshDoc) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := validateJSON(b, func() *jsonschema.Schema { return meshSchema }); err != nil {
		return err
	}
	return doc.ToMesh().Validate()
}

// ValidateSceneJSON checks a raw SCENE message.
func ValidateSceneJSON(b []byte) error {
	if err := validateJSON(b, func() *jsonschema.Schema { return sceneSchema }); err != nil {
		return err
	}
	var msg SceneMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return err
	}
	return msg.Mesh.ToMesh().Validate()
}

func validateJSON(b []byte, schema func() *jsonschema.Schema) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return fmt.Errorf("compile schemas: %w", compileErr)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return schema().Validate(v)
}
