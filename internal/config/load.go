package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML options file, merging it over DefaultOptions so that
// unspecified keys keep their defaults, then validates the result.
func Load(path string) (EngineOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineOptions{}, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return EngineOptions{}, err
	}
	if err := opts.Validate(); err != nil {
		return EngineOptions{}, err
	}
	return opts, nil
}

// Save serializes opts to a YAML options file.
func Save(path string, opts EngineOptions) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
