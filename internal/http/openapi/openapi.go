// Package openapi embeds the OpenAPI description of the stock API.
package openapi

import _ "embed"

// YAML is served at /openapi.yaml and rendered by the /docs page.
//
//go:embed openapi.yaml
var YAML []byte
