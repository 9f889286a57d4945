package pipeline

import (
	"context"
	"io"

	"github.com/caseworks/mysteryforge/internal/agents"
	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/packaging"
)

// Stage IDs in execution order. Image stages are optional; a run without
// portraits is still a complete kit.
const (
	StageWorld          = "world"
	StageWorldValidate  = "world_validate"
	StageVisualStyle    = "visual_style"
	StageCharacters     = "characters"
	StageCharacterImage = "character_images"
	StageRelationships  = "relationships"
	StageCrime          = "crime"
	StageTimeline       = "timeline"
	StageKiller         = "killer"
	StageLogicValidate  = "logic_validate"
	StageContent        = "content"
	StageHostImages     = "host_images"
	StagePackaging      = "packaging"
)

// Build assembles the standard stage list and its two validation loops.
// outputDir receives the finished kit; the store's images directory is
// shared between the portrait stages and packaging.
func Build(gen agents.Generator, store *Store, pkg *packaging.Packager, outputDir string, progress io.Writer) ([]Stage, []Loop) {
	agent := func(fn func(context.Context, agents.Generator, *game.State) error) func(context.Context, *game.State) error {
		return func(ctx context.Context, st *game.State) error {
			return fn(ctx, gen, st)
		}
	}

	stages := []Stage{
		{ID: StageWorld, Run: agent(agents.World)},
		{ID: StageWorldValidate, Run: agent(agents.WorldCheck)},
		{ID: StageVisualStyle, Run: agent(agents.VisualStyle)},
		{ID: StageCharacters, Run: agent(agents.Characters)},
		{ID: StageCharacterImage, Optional: true, Run: func(ctx context.Context, st *game.State) error {
			return agents.Portraits(ctx, gen, st, store.ImagesDir(), progress)
		}},
		{ID: StageRelationships, Run: agent(agents.Relationships)},
		{ID: StageCrime, Run: agent(agents.Crime)},
		{ID: StageTimeline, Run: agent(agents.Timeline)},
		{ID: StageKiller, Run: agent(agents.Killer)},
		{ID: StageLogicValidate, Run: agent(agents.LogicCheck)},
		{ID: StageContent, Run: agent(agents.Content)},
		{ID: StageHostImages, Optional: true, Run: func(ctx context.Context, st *game.State) error {
			return agents.HostImages(ctx, gen, st, store.ImagesDir(), progress)
		}},
		{ID: StagePackaging, Run: func(ctx context.Context, st *game.State) error {
			return pkg.Package(ctx, st, store.ImagesDir(), outputDir)
		}},
	}

	loops := []Loop{
		{
			Entry:     StageWorld,
			Validator: StageWorldValidate,
			Verdict: func(st *game.State) (bool, []game.ValidationIssue, []string) {
				v := st.WorldValidation
				if v == nil {
					return false, nil, nil
				}
				issues := make([]game.ValidationIssue, len(v.Issues))
				for i, desc := range v.Issues {
					issues[i] = game.ValidationIssue{Type: "world_incoherent", Description: desc}
				}
				return v.IsCoherent, issues, v.Suggestions
			},
			Count:    func(st *game.State) int { return st.WorldRetryCount },
			SetCount: func(st *game.State, n int) { st.WorldRetryCount = n },
			Max:      func(st *game.State) int { return st.MaxWorldRetries },
		},
		{
			Entry:     StageTimeline,
			Validator: StageLogicValidate,
			Verdict: func(st *game.State) (bool, []game.ValidationIssue, []string) {
				v := st.Validation
				if v == nil {
					return false, nil, nil
				}
				return v.IsConsistent, v.Issues, v.SuggestedFixes
			},
			Count:    func(st *game.State) int { return st.LogicRetryCount },
			SetCount: func(st *game.State, n int) { st.LogicRetryCount = n },
			Max:      func(st *game.State) int { return st.MaxLogicRetries },
		},
	}

	return stages, loops
}
