// Package topic derives filesystem-safe identifiers from free-form topics.
package topic

import (
	"strings"

	"ContentPipeline/internal/domain"
)

// ID lowercases the topic and collapses every run of characters outside
// [a-z0-9] into a single hyphen. Leading and trailing hyphens are dropped.
func ID(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return b.String()
}

// New builds a domain.Topic with its derived ID.
func New(name string) domain.Topic {
	return domain.Topic{Name: name, ID: ID(name)}
}
