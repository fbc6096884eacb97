package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cloudraidfs/cloudraidfs/pkg/config"
)

// writeDefaultConfig marshals a starter configuration — three local
// backends, k=2/m=1, and every ambient section at its default — to
// outPath, creating its parent directory if needed. It refuses to
// overwrite an existing file unless force is set.
func writeDefaultConfig(outPath string, force bool) error {
	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default configuration: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}
