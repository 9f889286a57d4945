package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sub := range []string{"generate", "config", "runs", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := executeCommand("nonexistent")
	if err == nil {
		t.Error("expected error for unknown command, got nil")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `game:
  language: en
  country: United Kingdom
  epoch: 1920s
  theme: family_mansion
  players:
    total: 6
    male: 3
    female: 3
  host_gender: male
  duration_minutes: 120
  difficulty: medium
`

func TestConfigValidate_Valid(t *testing.T) {
	path := writeConfig(t, validYAML)
	out, err := executeCommand("config", "validate", "-f", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration is valid.") {
		t.Errorf("output = %s", out)
	}
}

func TestConfigValidate_Invalid(t *testing.T) {
	path := writeConfig(t, `game:
  language: en
  country: United Kingdom
  epoch: 1920s
  theme: family_mansion
  players:
    total: 3
    male: 2
    female: 1
  host_gender: male
  duration_minutes: 120
  difficulty: medium
`)
	out, err := executeCommand("config", "validate", "-f", path)
	if err == nil {
		t.Fatalf("expected validation failure, got:\n%s", out)
	}
	if !strings.Contains(out, "Validation errors:") {
		t.Errorf("output = %s", out)
	}
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, validYAML)
	out, err := executeCommand("config", "show", "-f", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "family_mansion") {
		t.Errorf("resolved config missing theme:\n%s", out)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep the run ledger out of the real home
	cfgPath := writeConfig(t, validYAML)
	outDir := t.TempDir()

	out, err := executeCommand("generate", "-f", cfgPath, "-o", outDir, "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Party kit written to") {
		t.Errorf("output missing kit path:\n%s", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var haveGameDir, haveArchive bool
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "game_") && entry.IsDir() {
			haveGameDir = true
		}
		if strings.HasPrefix(entry.Name(), "mystery_game_") && strings.HasSuffix(entry.Name(), ".zip") {
			haveArchive = true
		}
		if strings.HasPrefix(entry.Name(), ".work_") {
			t.Error("work dir not cleaned up after a successful run")
		}
	}
	if !haveGameDir || !haveArchive {
		t.Errorf("output dir missing kit or archive: %v", entries)
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	cfgPath := writeConfig(t, validYAML)

	// Flag values persist on the package-level command between
	// executions, so the dry-run flag is reset explicitly.
	_, err := executeCommand("generate", "-f", cfgPath, "-o", t.TempDir(), "--dry-run=false")
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("err = %v, want missing API key error", err)
	}
}

func TestFormatStarted(t *testing.T) {
	lima := time.FixedZone("lima", -5*60*60)
	if got := formatStarted("2026-08-31 09:30:00", lima); got != "2026-08-31 04:30:00" {
		t.Errorf("formatStarted = %q, want shifted to -05:00", got)
	}
	if got := formatStarted("running", lima); got != "running" {
		t.Errorf("unparseable timestamp = %q, want passthrough", got)
	}
}
