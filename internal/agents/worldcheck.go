package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const worldCheckSystemPrompt = `You are a world consistency validator for murder mystery party games.

Validate the historical, geographical, and cultural coherence of a generated
world. Return a JSON object with exactly three fields: "is_coherent" (bool),
"issues" (array of strings), "suggestions" (array of strings).

Criteria:
1. Historical accuracy: technology, currency, transport, weapons, customs
   appropriate for the epoch.
2. Geographical consistency: the location is plausible for the country and
   region; routes and landmarks are real or realistic.
3. Cultural authenticity: architecture, food, drink, and customs reflect the
   country, respecting regional differences.
4. Internal consistency: location_type, location_name, epoch, and summary all
   align without contradiction.

Flag is_coherent=false ONLY for critical issues: major historical
impossibilities, significant geographical errors, severe cultural
misrepresentation. Minor creative liberties are acceptable. If is_coherent is
true, issues and suggestions must be empty arrays. If false, give 2-4
specific issues with an actionable suggestion for each.`

func worldCheckSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"is_coherent": boolean(),
		"issues":      strArr(),
		"suggestions": strArr(),
	}, "is_coherent", "issues", "suggestions")
}

// WorldCheck validates the world's coherence and fills the
// WorldValidation slot. Verdict routing is the pipeline's job.
func WorldCheck(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("world validator: %w", err)
	}
	if st.Config.DryRun {
		st.WorldValidation = mockWorldValidation()
		return nil
	}

	g := st.Config.Game
	var previousIssues string
	if st.WorldValidation != nil && !st.WorldValidation.IsCoherent {
		previousIssues = strings.Join(st.WorldValidation.Issues, "\n")
	}

	user, err := prompt.MustRender("world_validate", prompt.Vars{
		"country":         g.Country,
		"region":          g.Region,
		"epoch":           g.EpochDescription(),
		"theme":           g.ThemeDescription(),
		"world_json":      mustJSON(world),
		"previous_issues": previousIssues,
	})
	if err != nil {
		return fmt.Errorf("world validator: %w", err)
	}

	var out game.WorldValidation
	if err := invokeJSON(ctx, gen, gemini.TierPro, worldCheckSystemPrompt, user, worldCheckSchema(), &out); err != nil {
		return fmt.Errorf("world validator: %w", err)
	}
	// A coherent verdict carries no issues. The model sometimes pads the
	// arrays anyway; the flag wins.
	if out.IsCoherent {
		out.Issues = nil
		out.Suggestions = nil
	}
	st.WorldValidation = &out
	return nil
}
