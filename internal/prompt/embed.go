package prompt

import (
	"embed"
	"fmt"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Load returns the embedded template with the given name (without the
// .tmpl extension).
func Load(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("load template %q: %w", name, err)
	}
	return string(data), nil
}

// MustRender loads an embedded template and renders it, panicking on a
// missing template. Missing variables still return an error: template
// names are compile-time constants, variable values are not.
func MustRender(name string, vars Vars) (string, error) {
	tmpl, err := Load(name)
	if err != nil {
		panic(err)
	}
	return Render(tmpl, vars)
}
