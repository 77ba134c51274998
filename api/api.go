// Package api embeds the OpenAPI document of the host's HTTP surface.
package api

import (
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// Raw returns the embedded document as YAML.
func Raw() []byte {
	return spec
}

var load = sync.OnceValues(func() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromData(spec)
})

// Load parses the embedded document. The result is cached.
func Load() (*openapi3.T, error) {
	return load()
}
