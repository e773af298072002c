package util

import (
	"fmt"
	"strings"
	"text/template"
)

var promptFuncs = template.FuncMap{
	"join": func(sep string, items []string) string { return strings.Join(items, sep) },
}

// RenderTemplate fills the {{.key}} placeholders of a prompt from state.
// Missing keys render as nothing.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid prompt template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, state); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return strings.ReplaceAll(b.String(), "<no value>", ""), nil
}
