package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from tribunal.yml.
type ProjectConfig struct {
	RubricPath         string `yaml:"rubricPath,omitempty"`
	OutputDir          string `yaml:"outputDir,omitempty"`
	ArchivePath        string `yaml:"archivePath,omitempty"`
	TaskTimeoutSeconds int    `yaml:"taskTimeoutSeconds,omitempty"`
	MaxParallel        int    `yaml:"maxParallel,omitempty"`
	Verbose            bool   `yaml:"verbose,omitempty"`
}

// TaskTimeout returns the configured per-task budget, or zero when unset.
func (c *ProjectConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// Load attempts to read tribunal.yml or tribunal.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"tribunal.yml", "tribunal.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
