package identifier

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrExhausted is returned when a collision strategy runs out of attempts
// without finding a free identifier. Callers either escalate to a fallback
// generator or surface it as a retryable service error.
var ErrExhausted = errors.New("identifier resolution exhausted")

// ExistsFunc reports whether a candidate identifier is already taken. It is
// supplied by the caller and usually wraps a store lookup, optionally
// excluding the row being edited.
type ExistsFunc func(candidate string) (bool, error)

// CollisionStrategy produces the candidate to try after `attempt` collisions
// on the original base. attempt starts at 1.
type CollisionStrategy interface {
	Candidate(base string, attempt int) string
}

// Resolve probes exists starting with the candidate itself and walks the
// strategy's candidates until one is free. If the first probe misses, the
// candidate is returned unchanged. maxAttempts bounds the loop; past it the
// caller gets ErrExhausted. Resolve never mutates anything: uniqueness
// under concurrent writers is still enforced by the store's unique index,
// and the persistence layer maps that violation back into the same
// already-taken error path.
func Resolve(candidate string, exists ExistsFunc, strategy CollisionStrategy, maxAttempts int) (string, error) {
	name := candidate
	for attempt := 1; ; attempt++ {
		taken, err := exists(name)
		if err != nil {
			return "", fmt.Errorf("existence probe for %q: %w", name, err)
		}
		if !taken {
			return name, nil
		}
		if attempt >= maxAttempts {
			return "", ErrExhausted
		}
		name = strategy.Candidate(candidate, attempt)
	}
}

// NumericSuffix appends -2, -3, … to the base, truncating it so the result
// never exceeds MaxLen. Trailing hyphens left by the truncation are trimmed
// before the suffix goes on.
type NumericSuffix struct {
	MaxLen int
}

func (s NumericSuffix) Candidate(base string, attempt int) string {
	suffix := fmt.Sprintf("-%d", attempt+1)
	if len(base)+len(suffix) > s.MaxLen {
		base = strings.TrimRight(base[:s.MaxLen-len(suffix)], "-")
	}
	return base + suffix
}

// RandomSuffix appends _{attempt}{two random digits} so colliding usernames
// don't come out guessable. The base is re-truncated per candidate to
// respect MaxLen. Rand is injected so tests can pin the digits.
type RandomSuffix struct {
	MaxLen int
	Rand   *rand.Rand
}

func (s RandomSuffix) Candidate(base string, attempt int) string {
	suffix := fmt.Sprintf("_%d%d", attempt, 10+s.Rand.Intn(90))
	if len(base)+len(suffix) > s.MaxLen {
		base = base[:s.MaxLen-len(suffix)]
	}
	return base + suffix
}
