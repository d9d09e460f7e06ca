package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"adjudicator/internal/adjudication"
)

// LoadPolicy reads a YAML policy file over the default policy. An empty
// path returns the defaults.
func LoadPolicy(path string) (adjudication.Config, error) {
	if path == "" {
		return adjudication.DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return adjudication.Config{}, fmt.Errorf("read policy file: %w", err)
	}
	cfg, err := DecodePolicy(bytes.NewReader(raw))
	if err != nil {
		return adjudication.Config{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return cfg, nil
}

// DecodePolicy decodes YAML over adjudication.DefaultConfig. Keys absent
// from the document keep their default; lists given in the document replace
// the default list. Unknown keys are rejected.
func DecodePolicy(r io.Reader) (adjudication.Config, error) {
	cfg := adjudication.DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return adjudication.Config{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return adjudication.Config{}, fmt.Errorf("invalid policy: %w", err)
	}
	return cfg, nil
}
