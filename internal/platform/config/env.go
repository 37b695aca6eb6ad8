// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DataDir is the directory used for local state when no explicit path is set.
const DataDir = "data"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DataPath returns value when set, otherwise a file named name under DataDir.
func DataPath(value, name string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return filepath.Join(DataDir, name)
}
