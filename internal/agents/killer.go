package agents

import (
	"context"
	"fmt"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const killerSystemPrompt = `You are a mystery logic designer for murder mystery games.

Select the killer from the suspects and make the logic airtight. Return a
JSON object with: killer_id (must match a character id exactly), rationale,
modified_events (array of strings, may be empty), truth_narrative (the
complete solution for the host guide).

Rules:
1. The killer is one of the suspects, never the victim.
2. The killer must have motive, means, and opportunity; other suspects keep
   partial evidence against them as red herrings.
3. Work with the existing timeline: the truth narrative fills in the hidden
   details of gaps and ambiguous claims already present. Never invent events
   that do not exist in the timeline and never place the killer somewhere
   that contradicts it.
4. If the killer claims an alibi, explain when they slipped away and when
   they returned.
5. The solution must be deducible from clues but not obvious.`

func killerSchema() map[string]interface{} {
	return obj(map[string]interface{}{
		"killer_id":       str(),
		"rationale":       str(),
		"modified_events": strArr(),
		"truth_narrative": str(),
	}, "killer_id", "rationale", "truth_narrative")
}

// Killer selects which suspect committed the crime.
func Killer(ctx context.Context, gen Generator, st *game.State) error {
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("killer agent: %w", err)
	}
	crime, err := st.RequireCrime()
	if err != nil {
		return fmt.Errorf("killer agent: %w", err)
	}
	timeline, err := st.RequireTimeline()
	if err != nil {
		return fmt.Errorf("killer agent: %w", err)
	}
	if st.Config.DryRun {
		st.Killer = mockKiller(characters)
		return nil
	}

	user, err := prompt.MustRender("killer", prompt.Vars{
		"characters_json": mustJSON(characters),
		"crime_json":      mustJSON(crime),
		"timeline_json":   mustJSON(timeline),
	})
	if err != nil {
		return fmt.Errorf("killer agent: %w", err)
	}

	var out game.KillerSelection
	if err := invokeJSON(ctx, gen, gemini.TierPro, killerSystemPrompt, user, killerSchema(), &out); err != nil {
		return fmt.Errorf("killer agent: %w", err)
	}
	killer := st.CharacterByID(out.KillerID)
	if killer == nil {
		return fmt.Errorf("killer agent: killer_id %q does not match any suspect", out.KillerID)
	}
	if out.TruthNarrative == "" {
		return fmt.Errorf("killer agent: empty truth narrative")
	}
	killer.KillerNotes = out.Rationale
	st.Killer = &out
	return nil
}
