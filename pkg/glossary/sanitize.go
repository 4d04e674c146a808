package glossary

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element and attribute, leaving only text content
// with entities escaped. Clients may render definitions as rich text, so
// stored values must never carry markup.
var strict = bluemonday.StrictPolicy()

// CleanString removes HTML markup from s and trims surrounding whitespace.
func CleanString(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
