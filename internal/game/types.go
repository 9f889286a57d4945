package game

import (
	"fmt"

	"github.com/google/uuid"
)

// WorldBible defines the setting the whole mystery plays out in.
type WorldBible struct {
	Epoch           string   `json:"epoch"`
	LocationType    string   `json:"location_type"`
	LocationName    string   `json:"location_name"`
	Summary         string   `json:"summary"`
	GatheringReason string   `json:"gathering_reason"`
	VisualKeywords  []string `json:"visual_keywords,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
}

// WorldValidation is the coherence report produced by the world validator.
type WorldValidation struct {
	IsCoherent  bool     `json:"is_coherent"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// VisualStyle pins down a consistent look for every generated portrait.
type VisualStyle struct {
	StyleDescription    string   `json:"style_description"`
	ArtDirection        string   `json:"art_direction"`
	ColorPalette        []string `json:"color_palette,omitempty"`
	ColorGrading        string   `json:"color_grading"`
	LightingSetup       string   `json:"lighting_setup"`
	LightingMood        string   `json:"lighting_mood"`
	BackgroundAesthetic string   `json:"background_aesthetic"`
	NegativePrompts     []string `json:"negative_prompts,omitempty"`
	PeriodReferences    []string `json:"period_references,omitempty"`
}

// CharacterSpec is one playable suspect.
type CharacterSpec struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Gender            string   `json:"gender"` // "male" or "female"
	AgeRange          string   `json:"age_range"`
	Role              string   `json:"role"`
	PublicDescription string   `json:"public_description"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	RelationToVictim  string   `json:"relation_to_victim"`
	PersonalSecrets   []string `json:"personal_secrets,omitempty"`
	PersonalGoals     []string `json:"personal_goals,omitempty"`
	Act1Objectives    []string `json:"act1_objectives,omitempty"`
	MotiveForCrime    string   `json:"motive_for_crime,omitempty"`
	CostumeSuggestion string   `json:"costume_suggestion,omitempty"`
	KillerNotes       string   `json:"killer_notes,omitempty"`
	ImagePath         string   `json:"image_path,omitempty"`
}

// RelationshipSpec links two suspects.
type RelationshipSpec struct {
	ID              string `json:"id"`
	FromCharacterID string `json:"from_character_id"`
	ToCharacterID   string `json:"to_character_id"`
	Type            string `json:"type"` // family, romantic, professional, rivalry, friendship, other
	Description     string `json:"description"`
	TensionLevel    int    `json:"tension_level"` // 1 (low) to 3 (high)
}

// TimeWindow is an interval in HH:MM clock time.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// VictimSpec describes the host's Act 1 character.
type VictimSpec struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	RoleInSetting     string   `json:"role_in_setting"`
	PublicPersona     string   `json:"public_persona"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	Secrets           []string `json:"secrets,omitempty"`
	CostumeSuggestion string   `json:"costume_suggestion,omitempty"`
	ImagePath         string   `json:"image_path,omitempty"`
}

// MurderMethod describes how the crime was committed.
type MurderMethod struct {
	Type            string `json:"type"` // stabbing, poison, shooting, blunt_force, other
	Description     string `json:"description"`
	WeaponUsed      string `json:"weapon_used"`
	LiveActionNotes string `json:"live_action_notes,omitempty"`
}

// CrimeScene locates the murder within the setting.
type CrimeScene struct {
	RoomID               string `json:"room_id"`
	Description          string `json:"description"`
	PostDiscoveryDetails string `json:"post_discovery_details,omitempty"`
}

// OpportunitySpec is a suspect's window to commit the crime.
type OpportunitySpec struct {
	CharacterID          string     `json:"character_id"`
	CanBeAloneWithVictim bool       `json:"can_be_alone_with_victim"`
	TimeWindow           TimeWindow `json:"time_window"`
	Notes                string     `json:"notes"`
}

// CrimeSpec is the complete crime design.
type CrimeSpec struct {
	Victim            VictimSpec        `json:"victim"`
	MurderMethod      MurderMethod      `json:"murder_method"`
	CrimeScene        CrimeScene        `json:"crime_scene"`
	TimeOfDeathApprox string            `json:"time_of_death_approx"`
	PossibleWeapons   []string          `json:"possible_weapons,omitempty"`
	Opportunities     []OpportunitySpec `json:"opportunities,omitempty"`
}

// GlobalEvent is one event on the party timeline.
type GlobalEvent struct {
	ID           string   `json:"id"`
	TimeApprox   string   `json:"time_approx"`
	Description  string   `json:"description"`
	CharacterIDs []string `json:"character_ids,omitempty"`
	RoomID       string   `json:"room_id,omitempty"`
}

// TimeBlock groups events into a contiguous time window.
type TimeBlock struct {
	ID     string        `json:"id"`
	Start  string        `json:"start"`
	End    string        `json:"end"`
	Events []GlobalEvent `json:"events,omitempty"`
}

// GlobalTimeline is the party's shared sequence of events.
type GlobalTimeline struct {
	TimeBlocks  []TimeBlock  `json:"time_blocks"`
	MurderEvent *GlobalEvent `json:"murder_event,omitempty"`
}

// KillerSelection records who did it and why that choice holds together.
type KillerSelection struct {
	KillerID       string   `json:"killer_id"`
	Rationale      string   `json:"rationale"`
	ModifiedEvents []string `json:"modified_events,omitempty"`
	TruthNarrative string   `json:"truth_narrative"`
}

// PersonalEvent is what one character did during a global time block,
// split into the truth and the cover story.
type PersonalEvent struct {
	ID                string   `json:"id"`
	GlobalTimeBlockID string   `json:"global_time_block_id"`
	WhatTheyDid       string   `json:"what_they_did"`
	WhatTheyTell      string   `json:"what_they_tell"`
	Observed          []string `json:"observed,omitempty"`
	HiddenActions     string   `json:"hidden_actions,omitempty"`
}

// PersonalTimeline is a character's private account of the evening.
type PersonalTimeline struct {
	CharacterID string          `json:"character_id"`
	Events      []PersonalEvent `json:"events"`
	Narrative   string          `json:"narrative"`
}

// ClueSpec is one discoverable clue.
type ClueSpec struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"` // note, object, forensic_report, map_snippet, photo, other
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Incriminates []string `json:"incriminates,omitempty"`
	Exonerates   []string `json:"exonerates,omitempty"`
	IsRedHerring bool     `json:"is_red_herring"`
	AssignedTo   string   `json:"assigned_to,omitempty"`
}

// ClueSolutionEntry tells the host how to read one clue.
type ClueSolutionEntry struct {
	ClueID         string `json:"clue_id"`
	HowToInterpret string `json:"how_to_interpret"`
}

// DetectiveRole is the host's Act 2 character.
type DetectiveRole struct {
	CharacterName       string              `json:"character_name"`
	PublicDescription   string              `json:"public_description"`
	PersonalityTraits   []string            `json:"personality_traits,omitempty"`
	CluesToReveal       []ClueSolutionEntry `json:"clues_to_reveal"`
	GuidingQuestions    []string            `json:"guiding_questions,omitempty"`
	FinalSolutionScript string              `json:"final_solution_script"`
	CostumeSuggestion   string              `json:"costume_suggestion,omitempty"`
	ImagePath           string              `json:"image_path,omitempty"`
}

// HostGuide is everything the host needs to run the party.
type HostGuide struct {
	SpoilerFreeIntro  string         `json:"spoiler_free_intro"`
	Act1RoleNotes     string         `json:"act1_role_notes,omitempty"`
	SetupInstructions []string       `json:"setup_instructions,omitempty"`
	RuntimeTips       []string       `json:"runtime_tips,omitempty"`
	MurderEventGuide  string         `json:"murder_event_guide,omitempty"`
	Act2IntroScript   string         `json:"act2_intro_script,omitempty"`
	Detective         *DetectiveRole `json:"detective,omitempty"`
}

// ValidationIssue is one structured problem found by the logic validator.
type ValidationIssue struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"` // timeline_conflict, logic_gap, over_obvious, too_ambiguous, character_unused
	Description string   `json:"description"`
	RelatedIDs  []string `json:"related_ids,omitempty"`
}

// ValidationReport is the full-design consistency verdict.
// Invariant: if IsConsistent is true, Issues is empty.
type ValidationReport struct {
	IsConsistent   bool              `json:"is_consistent"`
	Issues         []ValidationIssue `json:"issues,omitempty"`
	SuggestedFixes []string          `json:"suggested_fixes,omitempty"`
}

// FileDescriptor names one produced deliverable file.
type FileDescriptor struct {
	ID   string `json:"id"`
	Type string `json:"type"` // pdf, markdown, txt, image
	Name string `json:"name"`
	Path string `json:"path"`
}

// PackagingInfo is the manifest of everything written by packaging.
type PackagingInfo struct {
	GameDir        string           `json:"game_dir"`
	ArchivePath    string           `json:"archive_path"`
	HostFiles      []FileDescriptor `json:"host_files,omitempty"`
	PlayerPackages []FileDescriptor `json:"player_packages,omitempty"`
	ClueFiles      []FileDescriptor `json:"clue_files,omitempty"`
	IndexSummary   string           `json:"index_summary"`
}

// NewID returns a short unique identifier with the given prefix,
// e.g. "char-1f2e3d4c".
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%.8s", prefix, uuid.NewString())
}
