// Package params reads and writes simulation parameter files. A file may name
// any subset of the parameters; the rest keep their defaults.
package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pandemica/internal/sim"
)

// Decode overlays the JSON parameters in r onto base. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Decode(r io.Reader, base sim.Config) (sim.Config, error) {
	cfg := base
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return sim.Config{}, fmt.Errorf("decode parameters: %w", err)
	}
	return cfg, nil
}

// Load reads the parameter file at path on top of sim.DefaultConfig.
func Load(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("read parameters: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data), sim.DefaultConfig())
	if err != nil {
		return sim.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON, creating parent directories.
func Save(path string, cfg sim.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parameters directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write parameters: %w", err)
	}
	return nil
}
