package agents

import (
	"context"
	"fmt"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

const crimeSystemPrompt = `You are a crime design expert for murder mystery party games.

Design the crime for this world and cast. Return a JSON object with one field
"crime": a CrimeSpec with:
- victim: name, age, gender, role_in_setting, public_persona,
  personality_traits (array), secrets (array), costume_suggestion. The victim
  is played by the HOST in Act 1 and must be central to the setting.
- murder_method: type ("stabbing", "poison", "shooting", "blunt_force",
  "other"), description, weapon_used, live_action_notes (how the host stages
  the death at the party).
- crime_scene: room_id (snake_case, e.g. "study"), description,
  post_discovery_details.
- time_of_death_approx: HH:MM.
- possible_weapons: array of strings.
- opportunities: array of {character_id, can_be_alone_with_victim,
  time_window {start, end}, notes} referencing the provided character ids.

The victim's gender must match the requested host gender, the name must fit
the country, and the method and weapon must fit the country and epoch.`

func crimeSchema() map[string]interface{} {
	timeWindow := obj(map[string]interface{}{
		"start": str(),
		"end":   str(),
	}, "start", "end")
	return obj(map[string]interface{}{
		"crime": obj(map[string]interface{}{
			"victim": obj(map[string]interface{}{
				"name":               str(),
				"age":                integer(),
				"gender":             strEnum("male", "female"),
				"role_in_setting":    str(),
				"public_persona":     str(),
				"personality_traits": strArr(),
				"secrets":            strArr(),
				"costume_suggestion": str(),
			}, "name", "age", "gender", "role_in_setting", "public_persona"),
			"murder_method": obj(map[string]interface{}{
				"type":              strEnum("stabbing", "poison", "shooting", "blunt_force", "other"),
				"description":       str(),
				"weapon_used":       str(),
				"live_action_notes": str(),
			}, "type", "description", "weapon_used"),
			"crime_scene": obj(map[string]interface{}{
				"room_id":                str(),
				"description":            str(),
				"post_discovery_details": str(),
			}, "room_id", "description"),
			"time_of_death_approx": str(),
			"possible_weapons":     strArr(),
			"opportunities": arr(obj(map[string]interface{}{
				"character_id":             str(),
				"can_be_alone_with_victim": boolean(),
				"time_window":              timeWindow,
				"notes":                    str(),
			}, "character_id", "can_be_alone_with_victim", "time_window")),
		}, "victim", "murder_method", "crime_scene", "time_of_death_approx"),
	}, "crime")
}

// Crime designs the victim, method, scene, and opportunity windows.
func Crime(ctx context.Context, gen Generator, st *game.State) error {
	world, err := st.RequireWorld()
	if err != nil {
		return fmt.Errorf("crime agent: %w", err)
	}
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("crime agent: %w", err)
	}

	g := st.Config.Game
	if st.Config.DryRun {
		st.Crime = mockCrime(g.HostGender, characters)
		return nil
	}

	user, err := prompt.MustRender("crime", prompt.Vars{
		"world_json":         mustJSON(world),
		"characters_json":    mustJSON(characters),
		"relationships_json": mustJSON(st.Relationships),
		"host_gender":        g.HostGender,
		"country":            g.Country,
		"epoch":              g.EpochDescription(),
	})
	if err != nil {
		return fmt.Errorf("crime agent: %w", err)
	}

	var out struct {
		Crime game.CrimeSpec `json:"crime"`
	}
	if err := invokeJSON(ctx, gen, gemini.TierPro, crimeSystemPrompt, user, crimeSchema(), &out); err != nil {
		return fmt.Errorf("crime agent: %w", err)
	}
	if out.Crime.Victim.Gender != g.HostGender {
		return fmt.Errorf("crime agent: victim gender %q does not match host gender %q",
			out.Crime.Victim.Gender, g.HostGender)
	}
	out.Crime.Victim.ID = game.NewID("victim")
	for _, opp := range out.Crime.Opportunities {
		if st.CharacterByID(opp.CharacterID) == nil {
			return fmt.Errorf("crime agent: opportunity references unknown character %q", opp.CharacterID)
		}
	}
	st.Crime = &out.Crime
	return nil
}
