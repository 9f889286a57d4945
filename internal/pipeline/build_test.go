package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caseworks/mysteryforge/internal/config"
	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/packaging"
)

// stubGenerator fails every call; dry runs must never reach it.
type stubGenerator struct {
	t *testing.T
}

func (s *stubGenerator) GenerateJSON(context.Context, gemini.Tier, string, string, map[string]interface{}) ([]byte, error) {
	s.t.Fatal("dry run called the generator")
	return nil, nil
}

func (s *stubGenerator) GenerateImage(context.Context, string) ([]byte, error) {
	s.t.Fatal("dry run called the image generator")
	return nil, nil
}

func TestBuild_DryRunEndToEnd(t *testing.T) {
	cfg := &config.Config{
		Game: config.Game{
			Language:        "en",
			Country:         "United Kingdom",
			Epoch:           "1920s",
			Theme:           "family_mansion",
			Players:         config.Players{Total: 6, Male: 3, Female: 3},
			HostGender:      "male",
			DurationMinutes: 120,
			Difficulty:      "medium",
		},
		DryRun: true,
	}
	st := game.NewState(cfg)

	store, err := NewStore(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	outputDir := t.TempDir()

	var progress bytes.Buffer
	stages, loops := Build(&stubGenerator{t: t}, store, packaging.New("en"), outputDir, &progress)

	e, err := NewExecutor(stages, loops)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	e.SetProgress(&progress)
	e.SetStore(store)

	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if st.Packaging == nil {
		t.Fatal("run finished without a packaging manifest")
	}
	if len(st.Characters) != 6 {
		t.Errorf("got %d characters, want 6", len(st.Characters))
	}
	if st.Killer == nil || st.CharacterByID(st.Killer.KillerID) == nil {
		t.Errorf("killer = %+v", st.Killer)
	}

	gameDir := filepath.Join(outputDir, "game_"+st.Meta.ShortID())
	for _, rel := range []string{
		"game/host_guide.md",
		"game/solution.md",
		"game/invitation.txt",
		"characters/player_6/character_sheet.md",
		"clues/clue_1.md",
	} {
		if _, err := os.Stat(filepath.Join(gameDir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(st.Packaging.ArchivePath); err != nil {
		t.Errorf("archive missing: %v", err)
	}

	names, err := store.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	// One snapshot per successful stage; the optional image stages no-op
	// but still complete.
	if len(names) != len(stages) {
		t.Errorf("got %d snapshots, want %d: %v", len(names), len(stages), names)
	}

	out := progress.String()
	if !strings.Contains(out, "[world] running") || !strings.Contains(out, "[packaging] done") {
		t.Errorf("progress output incomplete:\n%s", out)
	}
}
