package agents

import (
	"fmt"

	"github.com/caseworks/mysteryforge/internal/game"
)

// Deterministic fixtures returned in dry-run mode. One fictional setting
// is enough: the point of a dry run is exercising the pipeline, renderers,
// and packaging without model calls.

const (
	mockLocationName  = "Thornfield Manor"
	mockVictimName    = "Lord Reginald Thornfield"
	mockDetectiveName = "Detective Inspector Morrison"
	mockMurderTime    = "22:30"
)

func mockWorld() *game.WorldBible {
	return &game.WorldBible{
		Epoch:           "Modern",
		LocationType:    "Mansion",
		LocationName:    mockLocationName,
		Summary:         "A grand family mansion in the countryside, hosting a reunion.",
		GatheringReason: "Annual family reunion to commemorate the patriarch's legacy",
		VisualKeywords:  []string{"gothic", "elegant", "mysterious", "candlelit"},
		Constraints:     []string{"Limited access to certain rooms", "No modern technology in some areas"},
	}
}

func mockWorldValidation() *game.WorldValidation {
	return &game.WorldValidation{IsCoherent: true}
}

func mockVisualStyle() *game.VisualStyle {
	return &game.VisualStyle{
		StyleDescription:    "Painterly realism with a classic mystery-novel cover feel",
		ArtDirection:        "Three-quarter portraits against dark wood-panelled interiors",
		ColorPalette:        []string{"deep burgundy", "aged gold", "midnight blue"},
		ColorGrading:        "Warm shadows, muted highlights",
		LightingSetup:       "Single candlelight key from the left",
		LightingMood:        "Intimate and slightly ominous",
		BackgroundAesthetic: "Blurred manor interiors, bookshelves, heavy drapes",
		NegativePrompts:     []string{"text", "watermarks", "modern clothing"},
		PeriodReferences:    []string{"country house portraiture"},
	}
}

func mockCharacters(total, male int) []game.CharacterSpec {
	characters := make([]game.CharacterSpec, total)
	for i := range characters {
		gender := "female"
		if i < male {
			gender = "male"
		}
		n := i + 1
		characters[i] = game.CharacterSpec{
			ID:                fmt.Sprintf("char-%04d", n),
			Name:              fmt.Sprintf("Character %d", n),
			Gender:            gender,
			AgeRange:          "30-40",
			Role:              fmt.Sprintf("Role %d", n),
			PublicDescription: "A mysterious figure with connections to the victim.",
			PersonalityTraits: []string{"clever", "suspicious", "charming"},
			RelationToVictim:  fmt.Sprintf("Relationship %d", n),
			PersonalSecrets:   []string{fmt.Sprintf("Secret %d", n)},
			PersonalGoals:     []string{fmt.Sprintf("Goal %d", n)},
			Act1Objectives:    []string{fmt.Sprintf("Objective %d", n), fmt.Sprintf("Objective %d", n+1)},
			MotiveForCrime:    fmt.Sprintf("Motive %d", n),
			CostumeSuggestion: fmt.Sprintf("Costume suggestion %d", n),
		}
	}
	return characters
}

func mockRelationships(characters []game.CharacterSpec) []game.RelationshipSpec {
	types := []string{"family", "rivalry", "professional", "romantic", "friendship"}
	var rels []game.RelationshipSpec
	for i := range characters {
		next := (i + 1) % len(characters)
		rels = append(rels, game.RelationshipSpec{
			ID:              fmt.Sprintf("rel-%04d", i+1),
			FromCharacterID: characters[i].ID,
			ToCharacterID:   characters[next].ID,
			Type:            types[i%len(types)],
			Description:     fmt.Sprintf("A long and complicated history between %s and %s.", characters[i].Name, characters[next].Name),
			TensionLevel:    1 + i%3,
		})
	}
	return rels
}

func mockCrime(hostGender string, characters []game.CharacterSpec) *game.CrimeSpec {
	victimName := mockVictimName
	if hostGender == "female" {
		victimName = "Lady Margaret Thornfield"
	}
	crime := &game.CrimeSpec{
		Victim: game.VictimSpec{
			ID:                "victim-0001",
			Name:              victimName,
			Age:               68,
			Gender:            hostGender,
			RoleInSetting:     "Owner of Thornfield Manor",
			PublicPersona:     "A commanding patriarch with a sharp tongue and sharper memory.",
			PersonalityTraits: []string{"imperious", "witty", "secretive"},
			Secrets:           []string{"Planned to rewrite the will tonight"},
			CostumeSuggestion: "Formal evening wear with a family signet ring",
		},
		MurderMethod: game.MurderMethod{
			Type:            "poison",
			Description:     "Poison slipped into the evening brandy.",
			WeaponUsed:      "Vial of aconite",
			LiveActionNotes: "The host dramatically collapses after a toast.",
		},
		CrimeScene: game.CrimeScene{
			RoomID:               "study",
			Description:          "The manor study, lined with ledgers and old portraits.",
			PostDiscoveryDetails: "A shattered brandy glass beside the desk.",
		},
		TimeOfDeathApprox: mockMurderTime,
		PossibleWeapons:   []string{"Vial of aconite", "Letter opener"},
	}
	if len(characters) > 0 {
		crime.Opportunities = []game.OpportunitySpec{
			{
				CharacterID:          characters[0].ID,
				CanBeAloneWithVictim: true,
				TimeWindow:           game.TimeWindow{Start: "22:15", End: "22:35"},
				Notes:                "Left the drawing room to fetch a shawl.",
			},
		}
	}
	return crime
}

func mockTimeline(characters []game.CharacterSpec) *game.GlobalTimeline {
	var everyone []string
	for _, c := range characters {
		everyone = append(everyone, c.ID)
	}
	firstID := ""
	if len(characters) > 0 {
		firstID = characters[0].ID
	}
	return &game.GlobalTimeline{
		TimeBlocks: []game.TimeBlock{
			{
				ID:    "tb-0001",
				Start: "20:00",
				End:   "21:00",
				Events: []game.GlobalEvent{
					{
						ID:           "gevt-0001",
						TimeApprox:   "20:00",
						Description:  "Guests arrive and are welcomed in the great hall.",
						CharacterIDs: everyone,
						RoomID:       "great_hall",
					},
				},
			},
			{
				ID:    "tb-0002",
				Start: "21:00",
				End:   "22:30",
				Events: []game.GlobalEvent{
					{
						ID:           "gevt-0002",
						TimeApprox:   "22:15",
						Description:  "One guest mentions stepping out for air; others are seen in the drawing room.",
						CharacterIDs: []string{firstID},
						RoomID:       "terrace",
					},
				},
			},
		},
		MurderEvent: &game.GlobalEvent{
			ID:          "gevt-murder",
			TimeApprox:  mockMurderTime,
			Description: "The host collapses after the evening toast.",
			RoomID:      "study",
		},
	}
}

func mockKiller(characters []game.CharacterSpec) *game.KillerSelection {
	killerID := "char-0001"
	if len(characters) > 0 {
		killerID = characters[0].ID
	}
	return &game.KillerSelection{
		KillerID:       killerID,
		Rationale:      "Motive, means, and an unaccounted gap at the time of death.",
		TruthNarrative: "While claiming to fetch a shawl, the killer slipped into the study, poisoned the brandy, and returned before the toast.",
	}
}

func mockValidation() *game.ValidationReport {
	return &game.ValidationReport{IsConsistent: true}
}

func mockContent(st *game.State) (map[string]game.PersonalTimeline, []game.ClueSpec, *game.HostGuide, string) {
	timelines := make(map[string]game.PersonalTimeline, len(st.Characters))
	for _, c := range st.Characters {
		timelines[c.ID] = game.PersonalTimeline{
			CharacterID: c.ID,
			Events: []game.PersonalEvent{
				{
					ID:                "pevt-" + c.ID,
					GlobalTimeBlockID: "tb-0001",
					WhatTheyDid:       "Mingled in the great hall.",
					WhatTheyTell:      "I was with the other guests all evening.",
				},
			},
			Narrative: fmt.Sprintf("%s spent the evening keeping up appearances.", c.Name),
		}
	}

	clueTypes := []string{"note", "object", "forensic_report", "map_snippet", "photo"}
	count := len(st.Characters)
	if count < 5 {
		count = 5
	}
	clues := make([]game.ClueSpec, count)
	for i := range clues {
		clue := game.ClueSpec{
			ID:          fmt.Sprintf("clue-%04d", i+1),
			Type:        clueTypes[i%len(clueTypes)],
			Title:       fmt.Sprintf("Clue %d", i+1),
			Description: "A detail that does not quite add up.",
		}
		if i < len(st.Characters) {
			if i%2 == 0 {
				clue.Incriminates = []string{st.Characters[i].ID}
			} else {
				clue.Exonerates = []string{st.Characters[i].ID}
				clue.IsRedHerring = true
			}
		}
		clues[i] = clue
	}

	entries := make([]game.ClueSolutionEntry, len(clues))
	for i, c := range clues {
		entries[i] = game.ClueSolutionEntry{
			ClueID:         c.ID,
			HowToInterpret: "Reveal after the players have discussed their alibis.",
		}
	}

	guide := &game.HostGuide{
		SpoilerFreeIntro:  "Welcome to an evening at " + mockLocationName + ". Someone in this room is not who they claim to be.",
		Act1RoleNotes:     "Play the victim as charming but needling; everyone has a reason to resent you.",
		SetupInstructions: []string{"Print character sheets", "Hide the clue cards", "Prepare the toast"},
		RuntimeTips:       []string{"Keep Act 1 to forty minutes", "Nudge quiet players with their objectives"},
		MurderEventGuide:  "At the toast, collapse dramatically and let a guest discover the body.",
		Act2IntroScript:   "Ladies and gentlemen, nobody leaves. A detective is on the way.",
		Detective: &game.DetectiveRole{
			CharacterName:       mockDetectiveName,
			PublicDescription:   "A methodical investigator with no patience for theatrics.",
			PersonalityTraits:   []string{"methodical", "dry", "observant"},
			CluesToReveal:       entries,
			GuidingQuestions:    []string{"Who saw the victim last?", "Who left the room before the toast?"},
			FinalSolutionScript: "The truth, as always, was hiding in the gaps between your stories.",
			CostumeSuggestion:   "A long coat and a well-worn notebook",
		},
	}

	invitation := "You are cordially invited to an evening at " + mockLocationName +
		". Formal dress requested. Some guests may not survive the toast."

	return timelines, clues, guide, invitation
}
