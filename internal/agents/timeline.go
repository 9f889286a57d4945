package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const timelineSystemPrompt = `You are a timeline architect for murder mystery party games.

Create the global Act 1 timeline. Return a JSON object with:
- "time_blocks": array of {start, end, events}; each event has time_approx
  (HH:MM), description, character_ids (array of existing character ids),
  room_id (snake_case).
- "murder_event": one event representing the live-action murder.

Rules:
1. All times in HH:MM format.
2. Create opportunity windows for at least 3-4 suspects: gaps in alibis near
   the time and place of death. Give the rest solid-looking alibis.
3. Write events as observations and claims ("seen in", "mentions stepping
   out", "claims to have been together") — never absolute facts. The killer
   will have a false alibi; soft language lets them lie without a logical
   contradiction.
4. Include believable movements and interactions, not static positions.
5. The timeline must leave more than one suspect viable as the killer.`

func timelineSchema() map[string]interface{} {
	event := obj(map[string]interface{}{
		"time_approx":   str(),
		"description":   str(),
		"character_ids": strArr(),
		"room_id":       str(),
	}, "time_approx", "description")
	return obj(map[string]interface{}{
		"time_blocks": arr(obj(map[string]interface{}{
			"start":  str(),
			"end":    str(),
			"events": arr(event),
		}, "start", "end", "events")),
		"murder_event": event,
	}, "time_blocks", "murder_event")
}

// Timeline generates the global timeline. On a logic-loop retry the
// previous validation issues are fed back into the prompt.
func Timeline(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("timeline agent: %w", err)
	}
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("timeline agent: %w", err)
	}
	crime, err := st.RequireCrime()
	if err != nil {
		return fmt.Errorf("timeline agent: %w", err)
	}
	if st.Config.DryRun {
		st.Timeline = mockTimeline(characters)
		return nil
	}

	var previousIssues, suggestedFixes string
	if st.Validation != nil && !st.Validation.IsConsistent {
		var lines []string
		for _, issue := range st.Validation.Issues {
			lines = append(lines, fmt.Sprintf("[%s] %s", issue.Type, issue.Description))
		}
		previousIssues = strings.Join(lines, "\n")
		suggestedFixes = strings.Join(st.Validation.SuggestedFixes, "\n")
	}

	user, err := prompt.MustRender("timeline", prompt.Vars{
		"world_json":      mustJSON(world),
		"characters_json": mustJSON(characters),
		"crime_json":      mustJSON(crime),
		"time_of_death":   crime.TimeOfDeathApprox,
		"previous_issues": previousIssues,
		"suggested_fixes": suggestedFixes,
	})
	if err != nil {
		return fmt.Errorf("timeline agent: %w", err)
	}

	var out game.GlobalTimeline
	if err := invokeJSON(ctx, gen, gemini.TierPro, timelineSystemPrompt, user, timelineSchema(), &out); err != nil {
		return fmt.Errorf("timeline agent: %w", err)
	}
	if len(out.TimeBlocks) == 0 {
		return fmt.Errorf("timeline agent: empty timeline")
	}
	for bi := range out.TimeBlocks {
		block := &out.TimeBlocks[bi]
		block.ID = game.NewID("tb")
		for ei := range block.Events {
			block.Events[ei].ID = game.NewID("gevt")
		}
	}
	if out.MurderEvent != nil {
		out.MurderEvent.ID = game.NewID("gevt")
	}
	st.Timeline = &out
	return nil
}
