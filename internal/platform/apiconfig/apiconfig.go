// Package apiconfig builds the huma configuration shared by the server and
// handler tests.
package apiconfig

import (
	"github.com/danielgtaylor/huma/v2"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // registers application/cbor
)

// DocsPath is where the docs UI is mounted when docs are enabled.
const DocsPath = "/api-docs"

// New returns a huma config for the API.
//
// With docs disabled no OpenAPI, schema or docs routes are mounted, so the
// router only answers the registered operations. Response bodies never carry
// a $schema link either way: the schema link transformer is removed so
// payloads stay exactly as modelled.
func New(title, version string, docs bool) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	cfg.CreateHooks = nil
	cfg.Transformers = nil

	if docs {
		cfg.DocsPath = DocsPath
	} else {
		cfg.OpenAPIPath = ""
		cfg.DocsPath = ""
		cfg.SchemasPath = ""
	}

	cfg.OpenAPI.OnAddOperation = append(cfg.OpenAPI.OnAddOperation, addCBORContent)
	return cfg
}

// addCBORContent advertises application/cbor next to every JSON body in the
// OpenAPI document, since huma negotiates both formats at runtime.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
