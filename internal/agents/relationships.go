package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const relationshipsSystemPrompt = `You are a relationship designer for murder mystery party games.

Create the web of relationships between existing characters. Return a JSON
object with one field "relationships": an array of objects with
from_character_id, to_character_id (both must match existing character ids
exactly), type ("family", "romantic", "professional", "rivalry",
"friendship", or "other"), description (specific and evocative, not generic),
tension_level (integer 1-3).

Rules:
1. Every character appears in at least 2-3 relationships; nobody is isolated.
2. At least half the relationships are high tension (level 2-3).
3. Where a character's Act 1 objectives reference other characters, create
   relationships that support those objectives.
4. Mix symmetric and one-sided dynamics; relationship types should vary.`

func relationshipsSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"relationships": arr(obj(map[string]interface{}{
			"from_character_id": str(),
			"to_character_id":   str(),
			"type":              strEnum("family", "romantic", "professional", "rivalry", "friendship", "other"),
			"description":       str(),
			"tension_level":     integer(),
		}, "from_character_id", "to_character_id", "type", "description", "tension_level")),
	}, "relationships")
}

// Relationships generates the relationship web and validates every
// reference against the cast.
func Relationships(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("relationships agent: %w", err)
	}
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("relationships agent: %w", err)
	}
	if st.Config.DryRun {
		st.Relationships = mockRelationships(characters)
		return nil
	}

	user, err := prompt.MustRender("relationships", prompt.Vars{
		"world_json":        mustJSON(world),
		"characters_json":   mustJSON(characters),
		"min_relationships": strconv.Itoa(len(characters) * 2),
	})
	if err != nil {
		return fmt.Errorf("relationships agent: %w", err)
	}

	var out struct {
		Relationships []game.RelationshipSpec `json:"relationships"`
	}
	if err := invokeJSON(ctx, gen, gemini.TierPro, relationshipsSystemPrompt, user, relationshipsSchema(), &out); err != nil {
		return fmt.Errorf("relationships agent: %w", err)
	}
	if len(out.Relationships) == 0 {
		return fmt.Errorf("relationships agent: empty relationship web")
	}
	for i := range out.Relationships {
		rel := &out.Relationships[i]
		rel.ID = game.NewID("rel")
		if st.CharacterByID(rel.FromCharacterID) == nil {
			return fmt.Errorf("relationships agent: unknown character id %q", rel.FromCharacterID)
		}
		if st.CharacterByID(rel.ToCharacterID) == nil {
			return fmt.Errorf("relationships agent: unknown character id %q", rel.ToCharacterID)
		}
		if rel.TensionLevel < 1 || rel.TensionLevel > 3 {
			rel.TensionLevel = 1
		}
	}
	st.Relationships = out.Relationships
	return nil
}
