package config

import "fmt"

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Player count bounds. Below four suspects the mystery collapses; above
// ten the content volume outgrows a single evening.
const (
	MinPlayers  = 4
	MaxPlayers  = 10
	MinDuration = 60
	MaxDuration = 180
)

var recognizedLanguages = map[string]bool{
	"en": true,
	"es": true,
}

var recognizedEpochs = map[string]bool{
	"modern":    true,
	"1920s":     true,
	"victorian": true,
	"custom":    true,
}

var recognizedThemes = map[string]bool{
	"family_mansion":    true,
	"corporate_retreat": true,
	"cruise":            true,
	"train":             true,
	"custom":            true,
}

var recognizedDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

var recognizedGenders = map[string]bool{
	"male":   true,
	"female": true,
}

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	g := cfg.Game

	if g.Language == "" {
		errs = append(errs, ValidationError{Field: "game.language", Message: "is required"})
	} else if !recognizedLanguages[g.Language] {
		errs = append(errs, ValidationError{Field: "game.language", Message: fmt.Sprintf("unsupported language %q (supported: en, es)", g.Language)})
	}

	if g.Country == "" {
		errs = append(errs, ValidationError{Field: "game.country", Message: "is required"})
	}

	if !recognizedEpochs[g.Epoch] {
		errs = append(errs, ValidationError{Field: "game.epoch", Message: fmt.Sprintf("unrecognized epoch %q", g.Epoch)})
	}
	if g.Epoch == "custom" && g.CustomEpoch == "" {
		errs = append(errs, ValidationError{Field: "game.custom_epoch", Message: "is required when epoch is custom"})
	}

	if !recognizedThemes[g.Theme] {
		errs = append(errs, ValidationError{Field: "game.theme", Message: fmt.Sprintf("unrecognized theme %q", g.Theme)})
	}
	if g.Theme == "custom" && g.CustomTheme == "" {
		errs = append(errs, ValidationError{Field: "game.custom_theme", Message: "is required when theme is custom"})
	}

	p := g.Players
	if p.Total < MinPlayers || p.Total > MaxPlayers {
		errs = append(errs, ValidationError{
			Field:   "game.players.total",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinPlayers, MaxPlayers, p.Total),
		})
	}
	if p.Male < 0 || p.Female < 0 {
		errs = append(errs, ValidationError{Field: "game.players", Message: "male and female counts must not be negative"})
	} else if p.Male+p.Female != p.Total {
		errs = append(errs, ValidationError{
			Field:   "game.players",
			Message: fmt.Sprintf("male (%d) + female (%d) must equal total (%d)", p.Male, p.Female, p.Total),
		})
	}

	if g.HostGender == "" {
		errs = append(errs, ValidationError{Field: "game.host_gender", Message: "is required"})
	} else if !recognizedGenders[g.HostGender] {
		errs = append(errs, ValidationError{Field: "game.host_gender", Message: fmt.Sprintf("must be male or female, got %q", g.HostGender)})
	}

	if g.DurationMinutes < MinDuration || g.DurationMinutes > MaxDuration {
		errs = append(errs, ValidationError{
			Field:   "game.duration_minutes",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinDuration, MaxDuration, g.DurationMinutes),
		})
	}

	if !recognizedDifficulties[g.Difficulty] {
		errs = append(errs, ValidationError{Field: "game.difficulty", Message: fmt.Sprintf("unrecognized difficulty %q", g.Difficulty)})
	}

	return errs
}
