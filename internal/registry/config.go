// Package registry implements import completion backed by per-origin,
// registry-supplied path templates. Origins publish a configuration document
// at a well-known URL describing how their module URLs are composed and where
// candidate values for each path segment can be fetched; this package matches
// partially typed specifiers against those templates and expands the matching
// segment into editor completion items.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/xeipuuv/gojsonschema"

	"github.com/importls/importls/internal/ierrors"
)

//go:embed schema.json
var configSchemaJSON string

// Variable declares the data source for one schema key.
type Variable struct {
	// Key is the name of the schema key.
	Key string `koanf:"key" json:"key"`
	// URL is the endpoint template, with ${key} and ${{key}} substitutions,
	// that provides completion values for the key.
	URL string `koanf:"url" json:"url"`
}

// Configuration describes one registry of an origin: a path template and the
// variable declarations for its keys.
type Configuration struct {
	// Schema is an Express-like path template describing how URLs are
	// composed for the registry.
	Schema string `koanf:"schema" json:"schema"`
	// Variables holds one entry per key denoted in Schema.
	Variables []Variable `koanf:"variables" json:"variables"`
}

// URLForKey returns the declared endpoint URL template for a key name.
func (c *Configuration) URLForKey(name string) (string, bool) {
	for _, v := range c.Variables {
		if v.Key == name {
			return v.URL, true
		}
	}
	return "", false
}

// configurationFile is the wire shape of the well-known configuration
// document.
type configurationFile struct {
	Version    int             `koanf:"version" json:"version"`
	Registries []Configuration `koanf:"registries" json:"registries"`
}

// decodeConfig decodes a fetched configuration document. The bytes are
// checked against the embedded JSON Schema before being unmarshalled, so
// shape problems surface as one decode error instead of piecemeal field
// failures.
func decodeConfig(configURL string, data []byte) (*configurationFile, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, ierrors.NewDecodeError(configURL,
			fmt.Sprintf("failed to parse response from %q", configURL), err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, ierrors.NewDecodeError(configURL,
			fmt.Sprintf("invalid registry configuration from %q: %s",
				configURL, strings.Join(details, "; ")), nil)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return nil, ierrors.NewDecodeError(configURL,
			fmt.Sprintf("failed to parse response from %q", configURL), err)
	}
	var cf configurationFile
	if err := k.Unmarshal("", &cf); err != nil {
		return nil, ierrors.NewDecodeError(configURL,
			fmt.Sprintf("failed to decode response from %q", configURL), err)
	}
	return &cf, nil
}
