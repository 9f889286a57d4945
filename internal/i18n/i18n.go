// Package i18n holds the string tables for rendered documents. Game
// content comes out of the generator in the configured language; these
// are the fixed labels (section headings, clue metadata) the renderers
// wrap around it.
package i18n

// Table maps label keys to display strings for one language.
type Table map[string]string

var english = Table{
	"clue":               "Clue",
	"type":               "Type",
	"description":        "Description",
	"related_info":       "Related Information",
	"incriminates":       "Incriminates",
	"exonerates":         "Exonerates",
	"red_herring":        "Red Herring",
	"metadata":           "Metadata",
	"none":               "None",
	"yes":                "Yes",
	"no":                 "No",
	"character_sheet":    "Character Sheet",
	"public_info":        "Public Information",
	"private_info":       "Private Information",
	"role":               "Role",
	"age_range":          "Age Range",
	"relation_to_victim": "Relation to the Victim",
	"personality":        "Personality",
	"costume":            "Costume Suggestion",
	"secrets":            "Your Secrets",
	"goals":              "Your Goals",
	"objectives":         "Act 1 Objectives",
	"your_timeline":      "Your Timeline",
	"host_guide":         "Host Guide",
	"solution":           "Solution",
	"setup":              "Setup Instructions",
	"runtime_tips":       "Tips for Running the Game",
	"detective_role":     "Detective Role",
	"guiding_questions":  "Guiding Questions",
	"final_script":       "Final Solution Script",
	"the_killer":         "The Killer",
	"truth":              "What Really Happened",
	"timeline":           "Timeline",
	"invitation":         "Invitation",
	"victim":             "Victim",
	"location":           "Location",
	"players":            "Players",
	"duration":           "Duration",
	"minutes":            "minutes",
}

var spanish = Table{
	"clue":               "Pista",
	"type":               "Tipo",
	"description":        "Descripción",
	"related_info":       "Información Relacionada",
	"incriminates":       "Incrimina",
	"exonerates":         "Exonera",
	"red_herring":        "Pista Falsa",
	"metadata":           "Metadatos",
	"none":               "Ninguno",
	"yes":                "Sí",
	"no":                 "No",
	"character_sheet":    "Hoja de Personaje",
	"public_info":        "Información Pública",
	"private_info":       "Información Privada",
	"role":               "Papel",
	"age_range":          "Rango de Edad",
	"relation_to_victim": "Relación con la Víctima",
	"personality":        "Personalidad",
	"costume":            "Sugerencia de Vestuario",
	"secrets":            "Tus Secretos",
	"goals":              "Tus Objetivos",
	"objectives":         "Objetivos del Acto 1",
	"your_timeline":      "Tu Cronología",
	"host_guide":         "Guía del Anfitrión",
	"solution":           "Solución",
	"setup":              "Instrucciones de Preparación",
	"runtime_tips":       "Consejos para Dirigir el Juego",
	"detective_role":     "Papel del Detective",
	"guiding_questions":  "Preguntas Orientadoras",
	"final_script":       "Guion de la Solución Final",
	"the_killer":         "El Asesino",
	"truth":              "Lo Que Realmente Ocurrió",
	"timeline":           "Cronología",
	"invitation":         "Invitación",
	"victim":             "Víctima",
	"location":           "Ubicación",
	"players":            "Jugadores",
	"duration":           "Duración",
	"minutes":            "minutos",
}

var tables = map[string]Table{
	"en": english,
	"es": spanish,
}

// Labels returns the label table for a language code, falling back to
// English for unknown codes.
func Labels(lang string) Table {
	if t, ok := tables[lang]; ok {
		return t
	}
	return english
}

// Get returns one label, falling back to English, then to the key itself.
func (t Table) Get(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	if v, ok := english[key]; ok {
		return v
	}
	return key
}

// LanguageName returns the display name for a language code.
func LanguageName(code string) string {
	names := map[string]string{
		"en": "English",
		"es": "Spanish",
	}
	if n, ok := names[code]; ok {
		return n
	}
	return code
}
