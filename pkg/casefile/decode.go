package casefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses case content. Files named *.yaml or *.yml are read as YAML,
// anything else as JSON. Unknown fields are rejected in both formats so
// authoring typos surface early. A case id, when present, must equal the
// file name without its extension.
func Decode(name string, data []byte) (*Case, error) {
	var c Case
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode case yaml %s: %w", name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode case json %s: %w", name, err)
		}
	}
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if c.ID == "" {
		c.ID = stem
	}
	// cases are looked up by file name, so the two must agree
	if c.ID != stem {
		return nil, fmt.Errorf("%w: case id %q does not match file name %s", ErrInvalidCase, c.ID, filepath.Base(name))
	}
	return &c, nil
}

// IsCaseFile reports whether a filename has an extension Decode understands.
func IsCaseFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
