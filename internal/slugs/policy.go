// Package slugs implements the post slug policy: derivation from titles,
// numeric-suffix collision handling, and the regeneration rule applied on
// edits.
package slugs

import (
	"regexp"
	"strings"
	"time"

	"github.com/freespaces/server/internal/identifier"
)

const (
	// MaxLen is the hard cap on a stored slug, matching the column size.
	MaxLen = 255
	// Bases are cut shorter to leave room for numeric suffixes.
	maxBaseLen  = 240
	maxAttempts = 1000
)

// Pattern matches the canonical slug form; manual overrides must satisfy it.
var Pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Policy struct {
	now func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{now: time.Now}
}

// NewPolicyWithClock pins the timestamp fallback for tests.
func NewPolicyWithClock(now func() time.Time) *Policy {
	return &Policy{now: now}
}

// Generate derives a unique slug from title. Empty or unslugifiable titles
// fall back to post-YYYYMMDDHHMMSS. The caller's exists probe must already
// exclude the post being updated, if any.
func (p *Policy) Generate(title string, exists identifier.ExistsFunc) (string, error) {
	base := identifier.Slugify(title)
	if base == "" {
		base = "post-" + p.now().Format("20060102150405")
	}
	if len(base) > maxBaseLen {
		base = strings.TrimRight(base[:maxBaseLen], "-")
	}
	return identifier.Resolve(base, exists, identifier.NumericSuffix{MaxLen: MaxLen}, maxAttempts)
}

// ShouldRegenerate reports whether saving a post under newTitle warrants a
// fresh slug. New records and records without a slug always get one;
// otherwise the slug is regenerated only when the canonical form of the
// title actually changed, and never into an empty slug, so manual slugs
// survive cosmetic title edits.
func (p *Policy) ShouldRegenerate(oldTitle, newTitle string, hasSlug, isNew bool) bool {
	if isNew || !hasSlug {
		return true
	}
	newCanon := identifier.Slugify(newTitle)
	return newCanon != identifier.Slugify(oldTitle) && newCanon != ""
}
