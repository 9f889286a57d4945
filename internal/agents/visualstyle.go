package agents

import (
	"context"
	"fmt"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const visualStyleSystemPrompt = `You are an art director for murder mystery party games.

Define a visual style guide that keeps independently generated character
portraits looking like one consistent set. Return a JSON object with the
fields: style_description, art_direction, color_palette (array),
color_grading, lighting_setup, lighting_mood, background_aesthetic,
negative_prompts (array), period_references (array).

Be concrete: name a rendering style, a palette of 3-5 colors, one lighting
setup, and wardrobe-era cues that match the world's epoch and country. The
negative prompts always include text, captions, and watermarks.`

func visualStyleSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"style_description":    str(),
		"art_direction":        str(),
		"color_palette":        strArr(),
		"color_grading":        str(),
		"lighting_setup":       str(),
		"lighting_mood":        str(),
		"background_aesthetic": str(),
		"negative_prompts":     strArr(),
		"period_references":    strArr(),
	}, "style_description", "art_direction", "lighting_setup", "background_aesthetic")
}

// VisualStyle generates the portrait style guide for the world.
func VisualStyle(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("visual style agent: %w", err)
	}
	if st.Config.DryRun {
		st.VisualStyle = mockVisualStyle()
		return nil
	}

	user, err := prompt.MustRender("visual_style", prompt.Vars{
		"world_json": mustJSON(world),
	})
	if err != nil {
		return fmt.Errorf("visual style agent: %w", err)
	}

	var out game.VisualStyle
	if err := invokeJSON(ctx, gen, gemini.TierFlash, visualStyleSystemPrompt, user, visualStyleSchema(), &out); err != nil {
		return fmt.Errorf("visual style agent: %w", err)
	}
	st.VisualStyle = &out
	return nil
}
