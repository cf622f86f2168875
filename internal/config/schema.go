// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the configuration schema.
const SchemaID = "https://holomush.dev/schemas/textbridge.schema.json"

var compiled = sync.OnceValues(compileSchema)

// Schema generates the JSON Schema of the configuration file.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		FieldNameTag:               "koanf",
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Config{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "textbridge configuration"
	schema.Description = "Schema for textbridge config.yaml files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("config").Wrapf(err, "marshalling schema")
	}
	return data, nil
}

// ValidateFile validates YAML configuration data against the schema.
// Empty data is a valid, empty configuration.
func ValidateFile(data []byte) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.In("config").Wrapf(err, "invalid YAML")
	}

	sch, err := compiled()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return oops.In("config").Wrapf(err, "schema validation failed")
	}
	return nil
}

func compileSchema() (*jschema.Schema, error) {
	raw, err := Schema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, oops.In("config").Wrapf(err, "parsing schema JSON")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("textbridge.schema.json", doc); err != nil {
		return nil, oops.In("config").Wrapf(err, "adding schema resource")
	}
	sch, err := c.Compile("textbridge.schema.json")
	if err != nil {
		return nil, oops.In("config").Wrapf(err, "compiling schema")
	}
	return sch, nil
}
