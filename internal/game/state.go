package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caseworks/mysteryforge/internal/config"
)

// Version is the game format version stamped into every package.
const Version = "v1"

// IDLength is how many characters of the run UUID are used in
// directory and archive names.
const IDLength = 8

// Meta identifies one generation run.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
}

// ShortID returns the truncated run id used in file names.
func (m Meta) ShortID() string {
	if len(m.ID) <= IDLength {
		return m.ID
	}
	return m.ID[:IDLength]
}

// State is the single mutable record threaded through every pipeline stage.
// A slot is populated only after its producing stage has run; downstream
// stages must treat a nil slot as "not yet available" and fail fast.
type State struct {
	Meta   Meta           `json:"meta"`
	Config *config.Config `json:"config"`

	World           *WorldBible      `json:"world,omitempty"`
	WorldValidation *WorldValidation `json:"world_validation,omitempty"`
	VisualStyle     *VisualStyle     `json:"visual_style,omitempty"`

	Characters    []CharacterSpec    `json:"characters,omitempty"`
	Relationships []RelationshipSpec `json:"relationships,omitempty"`

	Crime    *CrimeSpec       `json:"crime,omitempty"`
	Timeline *GlobalTimeline  `json:"timeline,omitempty"`
	Killer   *KillerSelection `json:"killer,omitempty"`

	Validation *ValidationReport `json:"validation,omitempty"`

	PersonalTimelines map[string]PersonalTimeline `json:"personal_timelines,omitempty"`
	Clues             []ClueSpec                  `json:"clues,omitempty"`
	HostGuide         *HostGuide                  `json:"host_guide,omitempty"`
	Invitation        string                      `json:"invitation,omitempty"`

	Packaging *PackagingInfo `json:"packaging,omitempty"`

	// Retry bookkeeping for the two validation loops. A counter is
	// incremented each time its validator runs and reset to zero on pass.
	WorldRetryCount int `json:"world_retry_count"`
	MaxWorldRetries int `json:"max_world_retries"`
	LogicRetryCount int `json:"logic_retry_count"`
	MaxLogicRetries int `json:"max_logic_retries"`
}

// DefaultMaxRetries bounds each validation loop unless overridden.
const DefaultMaxRetries = 2

// NewState creates a State with only configuration populated.
func NewState(cfg *config.Config) *State {
	return &State{
		Meta: Meta{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
			Version:   Version,
		},
		Config:          cfg,
		MaxWorldRetries: DefaultMaxRetries,
		MaxLogicRetries: DefaultMaxRetries,
	}
}

// RequireWorld returns the world slot or an error if it is unset.
func (s *State) RequireWorld() (*WorldBible, error) {
	if s.World == nil {
		return nil, fmt.Errorf("world not yet generated")
	}
	return s.World, nil
}

// RequireCharacters returns the cast or an error if it is empty.
func (s *State) RequireCharacters() ([]CharacterSpec, error) {
	if len(s.Characters) == 0 {
		return nil, fmt.Errorf("characters not yet generated")
	}
	return s.Characters, nil
}

// RequireCrime returns the crime slot or an error if it is unset.
func (s *State) RequireCrime() (*CrimeSpec, error) {
	if s.Crime == nil {
		return nil, fmt.Errorf("crime not yet generated")
	}
	return s.Crime, nil
}

// RequireTimeline returns the timeline slot or an error if it is unset.
func (s *State) RequireTimeline() (*GlobalTimeline, error) {
	if s.Timeline == nil {
		return nil, fmt.Errorf("timeline not yet generated")
	}
	return s.Timeline, nil
}

// RequireKiller returns the killer selection or an error if it is unset.
func (s *State) RequireKiller() (*KillerSelection, error) {
	if s.Killer == nil {
		return nil, fmt.Errorf("killer not yet selected")
	}
	return s.Killer, nil
}

// CharacterByID finds a suspect by id, or nil.
func (s *State) CharacterByID(id string) *CharacterSpec {
	for i := range s.Characters {
		if s.Characters[i].ID == id {
			return &s.Characters[i]
		}
	}
	return nil
}

// CharacterIDs returns the ids of all suspects in cast order.
func (s *State) CharacterIDs() []string {
	ids := make([]string, len(s.Characters))
	for i, c := range s.Characters {
		ids[i] = c.ID
	}
	return ids
}
