package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/i18n"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

// MinClues is the floor on generated clues regardless of cast size.
const MinClues = 5

const contentSystemPrompt = `You are a content writer for murder mystery party games.

Write all playable materials, in the requested language. Return a JSON
object with four fields:
1. "personal_timelines": array of {character_id, narrative, events}; each
   event has global_time_block_id reference text, what_they_did (the truth),
   what_they_tell (their cover story), observed (array), hidden_actions.
   The killer's what_they_tell carries their false alibi; everyone else is
   truthful.
2. "clues": array of {type ("note", "object", "forensic_report",
   "map_snippet", "photo", "other"), title, description, incriminates
   (character ids), exonerates (character ids), is_red_herring}.
3. "host_guide": {spoiler_free_intro, act1_role_notes, setup_instructions
   (array), runtime_tips (array), murder_event_guide, act2_intro_script,
   detective: {character_name, public_description, personality_traits,
   clues_to_reveal (array of {clue_title, how_to_interpret}),
   guiding_questions, final_solution_script, costume_suggestion}}.
4. "invitation": a spoiler-free party invitation naming the location and
   dress code.

Rules: at least one clue per character; character ids must match exactly;
all strings non-empty; tone elegant and witty, classic mystery with modern
cleverness.`

func contentSchema() map[string]interface{} {
	personalEvent := obj(map[string]interface{}{
		"global_time_block_id": str(),
		"what_they_did":        str(),
		"what_they_tell":       str(),
		"observed":             strArr(),
		"hidden_actions":       str(),
	}, "what_they_did", "what_they_tell")
	clue := obj(map[string]interface{}{
		"type":           strEnum("note", "object", "forensic_report", "map_snippet", "photo", "other"),
		"title":          str(),
		"description":    str(),
		"incriminates":   strArr(),
		"exonerates":     strArr(),
		"is_red_herring": boolean(),
	}, "type", "title", "description", "is_red_herring")
	detective := obj(map[string]interface{}{
		"character_name":     str(),
		"public_description": str(),
		"personality_traits": strArr(),
		"clues_to_reveal": arr(obj(map[string]interface{}{
			"clue_title":       str(),
			"how_to_interpret": str(),
		}, "clue_title", "how_to_interpret")),
		"guiding_questions":     strArr(),
		"final_solution_script": str(),
		"costume_suggestion":    str(),
	}, "character_name", "public_description", "final_solution_script")
	return obj(map[string]interface{}{
		"personal_timelines": arr(obj(map[string]interface{}{
			"character_id": str(),
			"narrative":    str(),
			"events":       arr(personalEvent),
		}, "character_id", "narrative", "events")),
		"clues": arr(clue),
		"host_guide": obj(map[string]interface{}{
			"spoiler_free_intro": str(),
			"act1_role_notes":    str(),
			"setup_instructions": strArr(),
			"runtime_tips":       strArr(),
			"murder_event_guide": str(),
			"act2_intro_script":  str(),
			"detective":          detective,
		}, "spoiler_free_intro", "setup_instructions", "detective"),
		"invitation": str(),
	}, "personal_timelines", "clues", "host_guide", "invitation")
}

type contentOutput struct {
	PersonalTimelines []game.PersonalTimeline `json:"personal_timelines"`
	Clues             []game.ClueSpec         `json:"clues"`
	HostGuide         struct {
		SpoilerFreeIntro  string   `json:"spoiler_free_intro"`
		Act1RoleNotes     string   `json:"act1_role_notes"`
		SetupInstructions []string `json:"setup_instructions"`
		RuntimeTips       []string `json:"runtime_tips"`
		MurderEventGuide  string   `json:"murder_event_guide"`
		Act2IntroScript   string   `json:"act2_intro_script"`
		Detective         struct {
			CharacterName     string   `json:"character_name"`
			PublicDescription string   `json:"public_description"`
			PersonalityTraits []string `json:"personality_traits"`
			CluesToReveal     []struct {
				ClueTitle      string `json:"clue_title"`
				HowToInterpret string `json:"how_to_interpret"`
			} `json:"clues_to_reveal"`
			GuidingQuestions    []string `json:"guiding_questions"`
			FinalSolutionScript string   `json:"final_solution_script"`
			CostumeSuggestion   string   `json:"costume_suggestion"`
		} `json:"detective"`
	} `json:"host_guide"`
	Invitation string `json:"invitation"`
}

// Content generates every written material: personal timelines, clues,
// the host guide with the detective role, and the invitation.
func Content(ctx context.Context, gen Generator, st *game.State) error {
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}
	crime, err := st.RequireCrime()
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}
	timeline, err := st.RequireTimeline()
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}
	killer, err := st.RequireKiller()
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}

	if st.Config.DryRun {
		st.PersonalTimelines, st.Clues, st.HostGuide, st.Invitation = mockContent(st)
		return nil
	}

	minClues := len(characters)
	if minClues < MinClues {
		minClues = MinClues
	}
	user, err := prompt.MustRender("content", prompt.Vars{
		"language_name":   i18n.LanguageName(st.Config.Game.Language),
		"world_json":      mustJSON(world),
		"characters_json": mustJSON(characters),
		"crime_json":      mustJSON(crime),
		"timeline_json":   mustJSON(timeline),
		"killer_json":     mustJSON(killer),
		"min_clues":       strconv.Itoa(minClues),
	})
	if err != nil {
		return fmt.Errorf("content agent: %w", err)
	}

	var out contentOutput
	if err := invokeJSON(ctx, gen, gemini.TierFlash, contentSystemPrompt, user, contentSchema(), &out); err != nil {
		return fmt.Errorf("content agent: %w", err)
	}
	if len(out.Clues) < minClues {
		return fmt.Errorf("content agent: got %d clues, want at least %d", len(out.Clues), minClues)
	}
	if out.Invitation == "" {
		return fmt.Errorf("content agent: empty invitation")
	}

	timelines := make(map[string]game.PersonalTimeline, len(out.PersonalTimelines))
	for _, pt := range out.PersonalTimelines {
		if st.CharacterByID(pt.CharacterID) == nil {
			return fmt.Errorf("content agent: personal timeline for unknown character %q", pt.CharacterID)
		}
		for i := range pt.Events {
			pt.Events[i].ID = game.NewID("pevt")
		}
		timelines[pt.CharacterID] = pt
	}
	for _, c := range characters {
		if _, ok := timelines[c.ID]; !ok {
			return fmt.Errorf("content agent: no personal timeline for %s", c.Name)
		}
	}

	for i := range out.Clues {
		out.Clues[i].ID = game.NewID("clue")
	}

	clueIDByTitle := make(map[string]string, len(out.Clues))
	for _, c := range out.Clues {
		clueIDByTitle[c.Title] = c.ID
	}
	entries := make([]game.ClueSolutionEntry, 0, len(out.HostGuide.Detective.CluesToReveal))
	for _, e := range out.HostGuide.Detective.CluesToReveal {
		entries = append(entries, game.ClueSolutionEntry{
			ClueID:         clueIDByTitle[e.ClueTitle],
			HowToInterpret: e.HowToInterpret,
		})
	}

	d := out.HostGuide.Detective
	st.HostGuide = &game.HostGuide{
		SpoilerFreeIntro:  out.HostGuide.SpoilerFreeIntro,
		Act1RoleNotes:     out.HostGuide.Act1RoleNotes,
		SetupInstructions: out.HostGuide.SetupInstructions,
		RuntimeTips:       out.HostGuide.RuntimeTips,
		MurderEventGuide:  out.HostGuide.MurderEventGuide,
		Act2IntroScript:   out.HostGuide.Act2IntroScript,
		Detective: &game.DetectiveRole{
			CharacterName:       d.CharacterName,
			PublicDescription:   d.PublicDescription,
			PersonalityTraits:   d.PersonalityTraits,
			CluesToReveal:       entries,
			GuidingQuestions:    d.GuidingQuestions,
			FinalSolutionScript: d.FinalSolutionScript,
			CostumeSuggestion:   d.CostumeSuggestion,
		},
	}
	st.PersonalTimelines = timelines
	st.Clues = out.Clues
	st.Invitation = out.Invitation
	return nil
}
