package layout

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ExportTOML encodes cfg as a TOML document for sharing.
func ExportTOML(cfg LayoutConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode layout %q: %w", cfg.ID, err)
	}
	return buf.Bytes(), nil
}

// DecodeTOML parses and validates a TOML layout document. Unknown keys are
// rejected.
func DecodeTOML(data []byte) (LayoutConfig, error) {
	var cfg LayoutConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return LayoutConfig{}, fmt.Errorf("decode layout: %w", err)
	}
	if cfg.ID == "" {
		// Imports get a fresh id anyway; a placeholder lets Validate check the rest.
		cfg.ID = "imported"
	}
	if err := Validate(cfg); err != nil {
		return LayoutConfig{}, err
	}
	return cfg, nil
}
