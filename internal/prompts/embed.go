// Package prompts provides externalized prompt templates with override support.
package prompts

import "embed"

//go:embed course/*.md path/*.md guide/*.md
var embeddedFS embed.FS
