package pipeline

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer cleans converted HTML fragments.
type HTMLSanitizer interface {
	Sanitize(fragment string) string
}

// Sanitizer applies a bluemonday UGC policy that keeps the class attributes
// chroma and goldmark emit, plus <mark> for highlights.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowElements("mark", "input")
	return &Sanitizer{policy: p}
}

// Sanitize returns fragment with disallowed elements and attributes removed.
func (s *Sanitizer) Sanitize(fragment string) string {
	return s.policy.Sanitize(fragment)
}

// Compile-time interface check.
var _ HTMLSanitizer = (*Sanitizer)(nil)
