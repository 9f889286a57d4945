package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const charactersSystemPrompt = `You are a character designer for murder mystery party games.

Create the suspect characters (the players). Relationships are designed by a
separate agent; the victim is designed later. Return a JSON object with one
field "characters": an array of CharacterSpec objects with name, gender
("male"/"female"), age_range, role, public_description, personality_traits
(array, at least 3), relation_to_victim (how they would relate to a central
figure at this location), personal_secrets (array, 2-3), personal_goals
(array), act1_objectives (array, 2-3 specific conversational tasks involving
other characters), motive_for_crime, costume_suggestion.

Rules:
1. Create exactly the requested number of characters with the requested
   gender split.
2. Names must follow the specified country's naming conventions.
3. Every character gets a plausible motive; none may be an obvious villain.
4. Act 1 objectives must create social tension and be achievable through
   conversation (persuade, discover, confront).
5. Do not include relationships or ids; those are assigned elsewhere.`

func charactersSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"characters": arr(obj(map[string]interface{}{
			"name":               str(),
			"gender":             strEnum("male", "female"),
			"age_range":          str(),
			"role":               str(),
			"public_description": str(),
			"personality_traits": strArr(),
			"relation_to_victim": str(),
			"personal_secrets":   strArr(),
			"personal_goals":     strArr(),
			"act1_objectives":    strArr(),
			"motive_for_crime":   str(),
			"costume_suggestion": str(),
		}, "name", "gender", "age_range", "role", "public_description",
			"personality_traits", "relation_to_victim", "act1_objectives")),
	}, "characters")
}

// Characters generates the suspect cast and assigns stable ids.
func Characters(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("characters agent: %w", err)
	}

	g := st.Config.Game
	if st.Config.DryRun {
		st.Characters = mockCharacters(g.Players.Total, g.Players.Male)
		return nil
	}

	user, err := prompt.MustRender("characters", prompt.Vars{
		"players":    strconv.Itoa(g.Players.Total),
		"male":       strconv.Itoa(g.Players.Male),
		"female":     strconv.Itoa(g.Players.Female),
		"world_json": mustJSON(world),
		"country":    g.Country,
		"epoch":      g.EpochDescription(),
		"difficulty": g.Difficulty,
	})
	if err != nil {
		return fmt.Errorf("characters agent: %w", err)
	}

	var out struct {
		Characters []game.CharacterSpec `json:"characters"`
	}
	if err := invokeJSON(ctx, gen, gemini.TierPro, charactersSystemPrompt, user, charactersSchema(), &out); err != nil {
		return fmt.Errorf("characters agent: %w", err)
	}
	if got := len(out.Characters); got != g.Players.Total {
		return fmt.Errorf("characters agent: got %d characters, want %d", got, g.Players.Total)
	}
	for i := range out.Characters {
		out.Characters[i].ID = game.NewID("char")
		if len(out.Characters[i].PersonalityTraits) == 0 {
			return fmt.Errorf("characters agent: %s has no personality traits", out.Characters[i].Name)
		}
	}
	st.Characters = out.Characters
	return nil
}
