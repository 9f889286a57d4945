package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a game configuration from the given YAML file path.
// After parsing, it fills in defaults for optional fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a game config in standard locations and loads the
// first one found. Search order: ./game.yaml, ~/.mysteryforge/game.yaml
func LoadDefault() (*Config, error) {
	candidates := []string{"game.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".mysteryforge", "game.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no game config found (searched: %v)", candidates)
}

// applyDefaults fills optional fields that were omitted from the YAML.
func applyDefaults(cfg *Config) {
	g := &cfg.Game

	if g.Language == "" {
		g.Language = "en"
	}
	if g.Epoch == "" {
		g.Epoch = "modern"
	}
	if g.Theme == "" {
		g.Theme = "family_mansion"
	}
	if g.DurationMinutes == 0 {
		g.DurationMinutes = 90
	}
	if g.Difficulty == "" {
		g.Difficulty = "medium"
	}

	// An unspecified split defaults to as-even-as-possible.
	if g.Players.Total > 0 && g.Players.Male == 0 && g.Players.Female == 0 {
		g.Players.Male = g.Players.Total / 2
		g.Players.Female = g.Players.Total - g.Players.Male
	}
}
