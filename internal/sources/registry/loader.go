// Package registry reads the service registry file (services.yaml) and maps
// it to domain services.
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of services.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new registry loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the registry file path
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the registry. ${VAR} references are expanded from
// the environment so URLs can carry deployment-specific hosts.
func (l *Loader) Load() (Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read services file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse services yaml: %w", err)
	}

	return config, nil
}
