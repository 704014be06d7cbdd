package config

import _ "embed"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultCatalogYAML returns the embedded achievement/question catalog.
func DefaultCatalogYAML() []byte {
	out := make([]byte, len(defaultCatalogYAML))
	copy(out, defaultCatalogYAML)
	return out
}
