package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/i18n"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const worldSystemPrompt = `You are a world-building expert for murder mystery party games.

Create a rich, culturally authentic game world. Return a JSON object with one
field "world": a WorldBible with epoch, location_type, location_name, summary
(2-3 sentences with cultural context), gathering_reason (why everyone is at
this location tonight), visual_keywords (array), constraints (array).

Rules:
1. The world must be rich in cultural details appropriate for the specified
   country and epoch: foods, drinks, clothing, customs, architecture.
2. Consider what weapons or items would be culturally and historically
   appropriate; later stages build on this.
3. All string fields must be non-empty; arrays may be empty [].
4. Tone: an elegant mystery with wit, classic Christie structure with modern
   cleverness.
5. Write all content in the requested language of play.`

func worldSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"world": obj(map[string]interface{}{
			"epoch":            str(),
			"location_type":    str(),
			"location_name":    str(),
			"summary":          str(),
			"gathering_reason": str(),
			"visual_keywords":  strArr(),
			"constraints":      strArr(),
		}, "epoch", "location_type", "location_name", "summary", "gathering_reason"),
	}, "world")
}

// World generates the game world from configuration. On a validation-loop
// retry the previous coherence issues are fed back into the prompt.
func World(ctx context.Context, gen Generator, st *game.State) error {
	if st.Config.DryRun {
		st.World = mockWorld()
		return nil
	}

	g := st.Config.Game
	var previousIssues string
	if st.WorldValidation != nil && !st.WorldValidation.IsCoherent {
		previousIssues = strings.Join(st.WorldValidation.Issues, "\n")
	}

	user, err := prompt.MustRender("world", prompt.Vars{
		"country":         g.Country,
		"region":          g.Region,
		"epoch":           g.EpochDescription(),
		"theme":           g.ThemeDescription(),
		"language":        i18n.LanguageName(g.Language),
		"players":         strconv.Itoa(g.Players.Total),
		"difficulty":      g.Difficulty,
		"previous_issues": previousIssues,
	})
	if err != nil {
		return fmt.Errorf("world agent: %w", err)
	}

	var out struct {
		World game.WorldBible `json:"world"`
	}
	if err := invokeJSON(ctx, gen, gemini.TierPro, worldSystemPrompt, user, worldSchema(), &out); err != nil {
		return fmt.Errorf("world agent: %w", err)
	}
	if out.World.LocationName == "" || out.World.Summary == "" {
		return fmt.Errorf("world agent: incomplete world in response")
	}
	st.World = &out.World
	return nil
}
