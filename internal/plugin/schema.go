// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the manifest schema.
const SchemaID = "https://holomush.dev/schemas/plughost/plugin.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	errSchema      error
)

// GenerateSchema generates a JSON Schema from the Manifest struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Manifest{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "plughost plugin manifest"
	schema.Description = "Schema for plugin.yaml manifest files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the manifest JSON Schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("MANIFEST_INVALID").Errorf("manifest data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("MANIFEST_INVALID").Wrapf(err, "invalid YAML")
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code("MANIFEST_INVALID").Wrapf(err, "schema validation failed")
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		var raw []byte
		raw, errSchema = GenerateSchema()
		if errSchema != nil {
			return
		}

		var schemaDoc any
		if errSchema = json.Unmarshal(raw, &schemaDoc); errSchema != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(errSchema)
			return
		}

		c := jschema.NewCompiler()
		if errSchema = c.AddResource("schema.json", schemaDoc); errSchema != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(errSchema)
			return
		}
		compiledSchema, errSchema = c.Compile("schema.json")
		if errSchema != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(errSchema)
		}
	})
	return compiledSchema, errSchema
}

// toJSONTypes rewrites yaml.v3 output into the types the validator accepts.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = toJSONTypes(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = toJSONTypes(v)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var out any
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		}
		return val
	}
}
