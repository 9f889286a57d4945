// Package render turns the generated game state into the documents that
// ship in the party kit. Markdown output is deterministic for a given
// state; labels come from the i18n tables so the fixed scaffolding
// matches the language the content was generated in.
package render

import (
	"fmt"
	"strings"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/i18n"
)

// Renderer produces the markdown documents for one game.
type Renderer struct {
	labels i18n.Table
}

// New creates a Renderer for a language code.
func New(lang string) *Renderer {
	return &Renderer{labels: i18n.Labels(lang)}
}

func (r *Renderer) label(key string) string {
	return r.labels.Get(key)
}

// characterName resolves a character id to its display name, falling back
// to the raw id for references the cast does not contain.
func characterName(st *game.State, id string) string {
	if c := st.CharacterByID(id); c != nil {
		return c.Name
	}
	if st.Crime != nil && st.Crime.Victim.ID == id {
		return st.Crime.Victim.Name
	}
	return id
}

func nameList(st *game.State, ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = characterName(st, id)
	}
	return strings.Join(names, ", ")
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	if len(items) > 0 {
		b.WriteString("\n")
	}
}

// HostGuide renders the full host document, spoilers included.
func (r *Renderer) HostGuide(st *game.State) string {
	var b strings.Builder
	guide := st.HostGuide

	fmt.Fprintf(&b, "# %s\n\n", r.label("host_guide"))
	if st.World != nil {
		fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("location"), st.World.LocationName)
	}
	fmt.Fprintf(&b, "**%s:** %d\n\n", r.label("players"), st.Config.Game.Players.Total)
	fmt.Fprintf(&b, "**%s:** %d %s\n\n", r.label("duration"), st.Config.Game.DurationMinutes, r.label("minutes"))

	if guide.SpoilerFreeIntro != "" {
		b.WriteString(guide.SpoilerFreeIntro + "\n\n")
	}

	if len(guide.SetupInstructions) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", r.label("setup"))
		writeBullets(&b, guide.SetupInstructions)
	}

	if guide.Act1RoleNotes != "" {
		b.WriteString(guide.Act1RoleNotes + "\n\n")
	}

	if guide.MurderEventGuide != "" {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", r.label("timeline"), guide.MurderEventGuide)
	}

	if guide.Act2IntroScript != "" {
		b.WriteString(guide.Act2IntroScript + "\n\n")
	}

	if d := guide.Detective; d != nil {
		fmt.Fprintf(&b, "## %s\n\n", r.label("detective_role"))
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", d.CharacterName, d.PublicDescription)
		if len(d.PersonalityTraits) > 0 {
			fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("personality"), strings.Join(d.PersonalityTraits, ", "))
		}
		if d.CostumeSuggestion != "" {
			fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("costume"), d.CostumeSuggestion)
		}
		if len(d.GuidingQuestions) > 0 {
			fmt.Fprintf(&b, "### %s\n\n", r.label("guiding_questions"))
			writeBullets(&b, d.GuidingQuestions)
		}
		if d.FinalSolutionScript != "" {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", r.label("final_script"), d.FinalSolutionScript)
		}
	}

	if len(guide.RuntimeTips) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", r.label("runtime_tips"))
		writeBullets(&b, guide.RuntimeTips)
	}

	return b.String()
}

// Solution renders the spoiler document: killer, truth, and how every
// clue reads once you know the answer.
func (r *Renderer) Solution(st *game.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.label("solution"))

	if st.Crime != nil {
		v := st.Crime.Victim
		fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("victim"), v.Name)
		fmt.Fprintf(&b, "%s %s\n\n", st.Crime.MurderMethod.Description, st.Crime.CrimeScene.Description)
	}

	if st.Killer != nil {
		fmt.Fprintf(&b, "## %s\n\n", r.label("the_killer"))
		fmt.Fprintf(&b, "**%s**\n\n", characterName(st, st.Killer.KillerID))
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", r.label("truth"), st.Killer.TruthNarrative)
	}

	if st.HostGuide != nil && st.HostGuide.Detective != nil && len(st.HostGuide.Detective.CluesToReveal) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", r.label("clue"))
		for _, entry := range st.HostGuide.Detective.CluesToReveal {
			title := entry.ClueID
			for i := range st.Clues {
				if st.Clues[i].ID == entry.ClueID {
					title = st.Clues[i].Title
					break
				}
			}
			fmt.Fprintf(&b, "- **%s** — %s\n", title, entry.HowToInterpret)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// CharacterSheet renders one player's private document: who they are in
// public, what they hide, and their account of the evening.
func (r *Renderer) CharacterSheet(st *game.State, c *game.CharacterSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", r.label("character_sheet"), c.Name)

	fmt.Fprintf(&b, "## %s\n\n", r.label("public_info"))
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("role"), c.Role)
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("age_range"), c.AgeRange)
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("relation_to_victim"), c.RelationToVictim)
	b.WriteString(c.PublicDescription + "\n\n")
	if len(c.PersonalityTraits) > 0 {
		fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("personality"), strings.Join(c.PersonalityTraits, ", "))
	}
	if c.CostumeSuggestion != "" {
		fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("costume"), c.CostumeSuggestion)
	}

	fmt.Fprintf(&b, "## %s\n\n", r.label("private_info"))
	if len(c.PersonalSecrets) > 0 {
		fmt.Fprintf(&b, "### %s\n\n", r.label("secrets"))
		writeBullets(&b, c.PersonalSecrets)
	}
	if len(c.PersonalGoals) > 0 {
		fmt.Fprintf(&b, "### %s\n\n", r.label("goals"))
		writeBullets(&b, c.PersonalGoals)
	}
	if len(c.Act1Objectives) > 0 {
		fmt.Fprintf(&b, "### %s\n\n", r.label("objectives"))
		writeBullets(&b, c.Act1Objectives)
	}

	if tl, ok := st.PersonalTimelines[c.ID]; ok {
		fmt.Fprintf(&b, "## %s\n\n", r.label("your_timeline"))
		if tl.Narrative != "" {
			b.WriteString(tl.Narrative + "\n\n")
		}
		for _, ev := range tl.Events {
			fmt.Fprintf(&b, "- %s\n", ev.WhatTheyTell)
			for _, seen := range ev.Observed {
				fmt.Fprintf(&b, "  - %s\n", seen)
			}
		}
		if len(tl.Events) > 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ClueCard renders one printable clue card.
func (r *Renderer) ClueCard(st *game.State, clue *game.ClueSpec, number int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %d: %s\n\n", r.label("clue"), number, clue.Title)
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("type"), clue.Type)
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", r.label("description"), clue.Description)

	fmt.Fprintf(&b, "## %s\n\n", r.label("metadata"))
	incriminates := r.label("none")
	if len(clue.Incriminates) > 0 {
		incriminates = nameList(st, clue.Incriminates)
	}
	exonerates := r.label("none")
	if len(clue.Exonerates) > 0 {
		exonerates = nameList(st, clue.Exonerates)
	}
	herring := r.label("no")
	if clue.IsRedHerring {
		herring = r.label("yes")
	}
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("incriminates"), incriminates)
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("exonerates"), exonerates)
	fmt.Fprintf(&b, "**%s:** %s\n\n", r.label("red_herring"), herring)

	return b.String()
}

// Invitation renders the plain-text invitation players receive before
// the party. No spoilers, no markdown.
func (r *Renderer) Invitation(st *game.State) string {
	var b strings.Builder
	if st.World != nil {
		fmt.Fprintf(&b, "%s: %s\n", r.label("location"), st.World.LocationName)
		fmt.Fprintf(&b, "%s: %d %s\n\n", r.label("duration"), st.Config.Game.DurationMinutes, r.label("minutes"))
	}
	b.WriteString(st.Invitation)
	if !strings.HasSuffix(st.Invitation, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
