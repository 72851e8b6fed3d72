package driver

import "strings"

// TemplateSet holds the static prompt text: a base identity shared by
// every mode, and one template per mode.
type TemplateSet struct {
	Identity string
	ByMode   map[string]string
	Injected []string // additional blocks appended to every prompt, e.g. safety notices
}

// RenderPrompt concatenates the base identity, the mode template, the
// context's mode-specific block, any injected blocks, and a degradation
// notice (if non-empty), each separated by a blank line. It is plain
// concatenation, not a templating pass: the mode-specific block is
// already fully rendered by the context builder's Renderer.
func RenderPrompt(templates TemplateSet, mode string, modeSpecificBlock string, degradationNotice string) string {
	var parts []string
	if templates.Identity != "" {
		parts = append(parts, templates.Identity)
	}
	if t := templates.ByMode[mode]; t != "" {
		parts = append(parts, t)
	}
	if modeSpecificBlock != "" {
		parts = append(parts, modeSpecificBlock)
	}
	parts = append(parts, templates.Injected...)
	if degradationNotice != "" {
		parts = append(parts, degradationNotice)
	}
	return strings.Join(parts, "\n\n")
}
