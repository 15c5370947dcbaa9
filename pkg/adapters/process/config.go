package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AgentConfig describes an external program that chooses doors.
type AgentConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile is the layout of an agents file.
type ConfigFile struct {
	Agents []AgentConfig `yaml:"agents" json:"agents"`
}

// LoadAgents reads an agents file (YAML, or JSON by extension) keyed by name.
// A missing file yields no agents.
func LoadAgents(path string) (map[string]AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]AgentConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read agents config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	agents := make(map[string]AgentConfig, len(cfg.Agents))
	for _, a := range cfg.Agents {
		if a.Name == "" || a.Command == "" {
			continue
		}
		agents[a.Name] = a
	}
	return agents, nil
}
