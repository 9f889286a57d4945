package agents

import (
	"context"
	"fmt"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const logicCheckSystemPrompt = `You are a logic validation expert for murder mystery party games.

Validate the entire game design for logical consistency. Return a JSON
object: is_consistent (bool), issues (array of {type, description,
related_ids}), suggested_fixes (array of strings). Issue types:
"timeline_conflict", "logic_gap", "over_obvious", "too_ambiguous",
"character_unused". If is_consistent is true, issues must be empty.

Checks:
1. Timeline conflicts: do events contradict; are timings impossible?
2. Logic gaps: can the killer actually commit the crime; is it deducible?
3. Over-obvious: is the solution immediately apparent?
4. Too ambiguous: is there enough evidence to single out the killer?
5. Character unused: does every suspect have a role, motive, and actions?

Philosophy: be reasonable. Timeline events are claims and observations, not
absolute facts; the killer having a false alibi is expected and valid. Only
flag a contradiction when the timeline makes the murder physically
impossible, such as the killer witnessed by everyone elsewhere at the time
of death. Mark is_consistent=false only for critical issues that make the
game unplayable or unsolvable.`

func logicCheckSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"is_consistent": boolean(),
		"issues": arr(obj(map[string]interface{}{
			"type":        strEnum("timeline_conflict", "logic_gap", "over_obvious", "too_ambiguous", "character_unused"),
			"description": str(),
			"related_ids": strArr(),
		}, "type", "description")),
		"suggested_fixes": strArr(),
	}, "is_consistent", "issues", "suggested_fixes")
}

// LogicCheck validates the full design and fills the Validation slot.
// Verdict routing is the pipeline's job.
func LogicCheck(ctx context.Context, gen Generator, st *game.State) error {
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}
	crime, err := st.RequireCrime()
	if err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}
	timeline, err := st.RequireTimeline()
	if err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}
	killer, err := st.RequireKiller()
	if err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}
	if st.Config.DryRun {
		st.Validation = mockValidation()
		return nil
	}

	user, err := prompt.MustRender("logic_validate", prompt.Vars{
		"characters_json": mustJSON(characters),
		"crime_json":      mustJSON(crime),
		"timeline_json":   mustJSON(timeline),
		"killer_json":     mustJSON(killer),
	})
	if err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}

	var out game.ValidationReport
	if err := invokeJSON(ctx, gen, gemini.TierPro, logicCheckSystemPrompt, user, logicCheckSchema(), &out); err != nil {
		return fmt.Errorf("logic validator: %w", err)
	}
	// A consistent verdict carries no issues. The model sometimes pads the
	// arrays anyway; the flag wins.
	if out.IsConsistent {
		out.Issues = nil
		out.SuggestedFixes = nil
	}
	for i := range out.Issues {
		if out.Issues[i].ID == "" {
			out.Issues[i].ID = game.NewID("val")
		}
	}
	st.Validation = &out
	return nil
}
