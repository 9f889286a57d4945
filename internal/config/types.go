package config

// Config is the top-level game configuration parsed from YAML.
type Config struct {
	Game Game `yaml:"game"`

	// Run-mode flags set by the CLI, never from YAML.
	OutputDir      string `yaml:"-" json:"output_dir"`
	DryRun         bool   `yaml:"-" json:"dry_run"`
	GenerateImages bool   `yaml:"-" json:"generate_images"`
	KeepWorkDir    bool   `yaml:"-" json:"keep_work_dir"`
	Debug          bool   `yaml:"-" json:"debug"`
}

// Game holds the player-facing game parameters.
type Game struct {
	Language        string  `yaml:"language" json:"language"` // "en" or "es"
	Country         string  `yaml:"country" json:"country"`
	Region          string  `yaml:"region" json:"region,omitempty"`
	Epoch           string  `yaml:"epoch" json:"epoch"` // modern, 1920s, victorian, custom
	CustomEpoch     string  `yaml:"custom_epoch" json:"custom_epoch,omitempty"`
	Theme           string  `yaml:"theme" json:"theme"` // family_mansion, corporate_retreat, cruise, train, custom
	CustomTheme     string  `yaml:"custom_theme" json:"custom_theme,omitempty"`
	Players         Players `yaml:"players" json:"players"`
	HostGender      string  `yaml:"host_gender" json:"host_gender"` // the victim's gender: "male" or "female"
	DurationMinutes int     `yaml:"duration_minutes" json:"duration_minutes"`
	Difficulty      string  `yaml:"difficulty" json:"difficulty"` // easy, medium, hard
}

// Players defines the suspect count and its gender split.
type Players struct {
	Total  int `yaml:"total" json:"total"`
	Male   int `yaml:"male" json:"male"`
	Female int `yaml:"female" json:"female"`
}

// EpochDescription returns the effective epoch text, resolving "custom".
func (g Game) EpochDescription() string {
	if g.Epoch == "custom" && g.CustomEpoch != "" {
		return g.CustomEpoch
	}
	return g.Epoch
}

// ThemeDescription returns the effective theme text, resolving "custom".
func (g Game) ThemeDescription() string {
	if g.Theme == "custom" && g.CustomTheme != "" {
		return g.CustomTheme
	}
	return g.Theme
}
