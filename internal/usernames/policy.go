// Package usernames implements the username policy: validation against the
// length/character/denylist rules, and unique handle generation from the
// signals available at sign-in.
package usernames

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"

	"github.com/freespaces/server/internal/identifier"
)

const (
	MinLen = 3
	MaxLen = 20

	// Generation truncates bases to leave room for collision suffixes.
	generationBaseLen = 15
	collisionAttempts = 100
	fallbackAttempts  = 1000
	randomPartLen     = 8
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var (
	ErrTooShort     = errors.New("username must be at least 3 characters long")
	ErrTooLong      = errors.New("username must be at most 20 characters long")
	ErrInvalidChars = errors.New("username can only contain letters, numbers, and underscores")
	ErrReserved     = errors.New("this username is not allowed")
)

// DefaultReserved is the stock denylist. Deployments override it through
// RESERVED_USERNAMES in config; the policy itself takes whatever list it is
// built with.
var DefaultReserved = []string{
	"admin", "root", "system", "support", "api", "www", "mail", "ftp",
	"help", "info", "news", "test", "user", "guest", "demo", "null",
	"undefined", "freespaces", "moderator", "staff",
}

type Policy struct {
	reserved map[string]struct{}
	rand     *rand.Rand
}

// NewPolicy builds a policy from the injected denylist and random source.
// The denylist match is case-insensitive regardless of the casing it was
// configured with.
func NewPolicy(reserved []string, rnd *rand.Rand) *Policy {
	m := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		m[strings.ToLower(r)] = struct{}{}
	}
	return &Policy{reserved: m, rand: rnd}
}

// Validate cleans raw (leading @ stripped, surrounding whitespace trimmed)
// and checks it against the username rules. The cleaned form keeps its case;
// only the denylist comparison folds.
func (p *Policy) Validate(raw string) (string, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if len(clean) < MinLen {
		return "", ErrTooShort
	}
	if len(clean) > MaxLen {
		return "", ErrTooLong
	}
	if !usernamePattern.MatchString(clean) {
		return "", ErrInvalidChars
	}
	if _, ok := p.reserved[strings.ToLower(clean)]; ok {
		return "", ErrReserved
	}
	return clean, nil
}

// Generate produces a unique username from the signals available at signup,
// in order of preference: the given name, then the local part of the email,
// then a fully random handle. The first base that survives normalization
// with at least MinLen characters is resolved against exists; if its
// collision budget runs out the random fallback takes over.
func (p *Policy) Generate(givenName, email string, exists identifier.ExistsFunc) (string, error) {
	for _, base := range []string{
		identifier.UsernameBase(givenName),
		identifier.UsernameBase(localPart(email)),
	} {
		if len(base) < MinLen {
			continue
		}
		if len(base) > generationBaseLen {
			base = base[:generationBaseLen]
		}
		name, err := identifier.Resolve(base, exists,
			identifier.RandomSuffix{MaxLen: MaxLen, Rand: p.rand}, collisionAttempts)
		if errors.Is(err, identifier.ErrExhausted) {
			break
		}
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return p.Random(exists)
}

const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Random generates user_ plus eight random lowercase alphanumerics, retrying
// until the handle is free. The loop is capped so a pathological exists
// check can't spin forever; hitting the cap surfaces ErrExhausted.
func (p *Policy) Random(exists identifier.ExistsFunc) (string, error) {
	for i := 0; i < fallbackAttempts; i++ {
		b := make([]byte, randomPartLen)
		for j := range b {
			b[j] = randomAlphabet[p.rand.Intn(len(randomAlphabet))]
		}
		name := "user_" + string(b)

		taken, err := exists(name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", identifier.ErrExhausted
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
