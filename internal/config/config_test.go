package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
game:
  language: en
  country: England
  epoch: victorian
  theme: family_mansion
  players:
    total: 6
    male: 3
    female: 3
  host_gender: male
  duration_minutes: 90
  difficulty: medium
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Game.Language != "en" {
		t.Errorf("Language = %q, want %q", cfg.Game.Language, "en")
	}
	if cfg.Game.Country != "England" {
		t.Errorf("Country = %q, want %q", cfg.Game.Country, "England")
	}
	if cfg.Game.Players.Total != 6 {
		t.Errorf("Players.Total = %d, want 6", cfg.Game.Players.Total)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() with missing file: expected error, got nil")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "game: [not: valid")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() with invalid YAML: expected error, got nil")
	}
	if !strings.Contains(err.Error(), "parsing config YAML") {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestDefaults(t *testing.T) {
	path := writeTestConfig(t, `
game:
  country: Spain
  players:
    total: 5
  host_gender: female
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Game.Language != "en" {
		t.Errorf("default Language = %q, want en", cfg.Game.Language)
	}
	if cfg.Game.Epoch != "modern" {
		t.Errorf("default Epoch = %q, want modern", cfg.Game.Epoch)
	}
	if cfg.Game.Theme != "family_mansion" {
		t.Errorf("default Theme = %q, want family_mansion", cfg.Game.Theme)
	}
	if cfg.Game.DurationMinutes != 90 {
		t.Errorf("default DurationMinutes = %d, want 90", cfg.Game.DurationMinutes)
	}
	if cfg.Game.Difficulty != "medium" {
		t.Errorf("default Difficulty = %q, want medium", cfg.Game.Difficulty)
	}
	// Split defaults to as-even-as-possible with the remainder on female.
	if cfg.Game.Players.Male != 2 || cfg.Game.Players.Female != 3 {
		t.Errorf("default split = %d/%d, want 2/3", cfg.Game.Players.Male, cfg.Game.Players.Female)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	errs := Validate(cfg)

	wantFields := []string{"game.country", "game.players.total", "game.players", "game.host_gender"}
	for _, field := range wantFields {
		found := false
		for _, e := range errs {
			if e.Field == field {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Validate() missing error for %s (got %v)", field, errs)
		}
	}
}

func TestValidatePlayerSplit(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cfg.Game.Players.Male = 4 // 4 + 3 != 6
	errs := Validate(cfg)
	if len(errs) != 1 {
		t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Field != "game.players" {
		t.Errorf("error field = %q, want game.players", errs[0].Field)
	}
}

func TestValidatePlayerBounds(t *testing.T) {
	for _, total := range []int{3, 11} {
		path := writeTestConfig(t, validConfig)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		cfg.Game.Players.Total = total
		cfg.Game.Players.Male = total / 2
		cfg.Game.Players.Female = total - total/2

		errs := Validate(cfg)
		found := false
		for _, e := range errs {
			if e.Field == "game.players.total" {
				found = true
			}
		}
		if !found {
			t.Errorf("total=%d: expected game.players.total error, got %v", total, errs)
		}
	}
}

func TestValidateCustomEpochRequiresDescription(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg.Game.Epoch = "custom"

	errs := Validate(cfg)
	found := false
	for _, e := range errs {
		if e.Field == "game.custom_epoch" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected game.custom_epoch error, got %v", errs)
	}

	cfg.Game.CustomEpoch = "post-war Lisbon, 1946"
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("with custom_epoch set, Validate() = %v, want no errors", errs)
	}
	if desc := cfg.Game.EpochDescription(); desc != "post-war Lisbon, 1946" {
		t.Errorf("EpochDescription() = %q", desc)
	}
}

func TestValidateDurationBounds(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg.Game.DurationMinutes = 30

	errs := Validate(cfg)
	if len(errs) != 1 || errs[0].Field != "game.duration_minutes" {
		t.Errorf("Validate() = %v, want single game.duration_minutes error", errs)
	}
}
