package usernames

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/freespaces/server/internal/identifier"
)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	return NewPolicy(DefaultReserved, rand.New(rand.NewSource(42)))
}

func noneTaken(string) (bool, error) { return false, nil }

func takenSet(names ...string) identifier.ExistsFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestValidate(t *testing.T) {
	p := newTestPolicy(t)

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"valid", "valid_Name1", "valid_Name1", nil},
		{"strips leading at", "@valid_Name1", "valid_Name1", nil},
		{"trims whitespace", "  alice  ", "alice", nil},
		{"too short", "ab", "", ErrTooShort},
		{"too short after at strip", "@ab", "", ErrTooShort},
		{"too long", strings.Repeat("a", 21), "", ErrTooLong},
		{"exactly max", strings.Repeat("a", 20), strings.Repeat("a", 20), nil},
		{"invalid characters", "bad name!", "", ErrInvalidChars},
		{"hyphen rejected", "bad-name", "", ErrInvalidChars},
		{"reserved", "admin", "", ErrReserved},
		{"reserved is case-insensitive", "AdMiN", "", ErrReserved},
		{"reserved platform name", "freespaces", "", ErrReserved},
		{"empty", "", "", ErrTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Validate(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateKeepsCase(t *testing.T) {
	p := newTestPolicy(t)
	got, err := p.Validate("Valid_Name1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Valid_Name1" {
		t.Errorf("Validate lowercased the handle: got %q", got)
	}
}

func TestCustomDenylist(t *testing.T) {
	p := NewPolicy([]string{"CEO"}, rand.New(rand.NewSource(1)))
	if _, err := p.Validate("ceo"); !errors.Is(err, ErrReserved) {
		t.Errorf("custom denylist not applied: %v", err)
	}
	// The stock list no longer applies when a custom one is injected.
	if _, err := p.Validate("admin"); err != nil {
		t.Errorf("stock denylist leaked into custom policy: %v", err)
	}
}

func TestGenerateFromGivenName(t *testing.T) {
	p := newTestPolicy(t)
	got, err := p.Generate("Alice", "alice@example.com", noneTaken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice" {
		t.Errorf("got %q, want %q", got, "alice")
	}
}

func TestGenerateCollisionGetsRandomSuffix(t *testing.T) {
	p := newTestPolicy(t)
	got, err := p.Generate("Alice", "alice@example.com", takenSet("alice"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^alice_1\d\d$`).MatchString(got) {
		t.Errorf("got %q, want alice_1 plus two random digits", got)
	}
}

func TestGenerateFallsThroughToEmail(t *testing.T) {
	p := newTestPolicy(t)
	// Given name normalizes to "jo" (< 3 chars), so the email local part wins.
	got, err := p.Generate("Jo", "johnny@example.com", noneTaken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "johnny" {
		t.Errorf("got %q, want %q", got, "johnny")
	}
}

func TestGenerateFallsThroughToRandom(t *testing.T) {
	p := newTestPolicy(t)
	// Both the name and the email local part are too short after cleaning.
	got, err := p.Generate("Jo", "jo@x.com", noneTaken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^user_[a-z0-9]{8}$`).MatchString(got) {
		t.Errorf("got %q, want user_ plus eight lowercase alphanumerics", got)
	}
}

func TestGenerateTruncatesLongBase(t *testing.T) {
	p := newTestPolicy(t)
	got, err := p.Generate("Maximiliana Wolfeschlegelstein", "max@example.com", noneTaken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > MaxLen {
		t.Errorf("generated username %q exceeds %d chars", got, MaxLen)
	}
}

func TestGenerateEscalatesToRandomAfterExhaustion(t *testing.T) {
	p := newTestPolicy(t)
	// Everything derived from "alice" is taken; only random user_ handles are free.
	exists := func(c string) (bool, error) {
		return strings.HasPrefix(c, "alice"), nil
	}
	got, err := p.Generate("Alice", "alice@example.com", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "user_") {
		t.Errorf("got %q, want a random user_ fallback", got)
	}
}

func TestRandomExhaustionBounded(t *testing.T) {
	p := newTestPolicy(t)
	calls := 0
	everything := func(string) (bool, error) {
		calls++
		return true, nil
	}
	_, err := p.Random(everything)
	if !errors.Is(err, identifier.ErrExhausted) {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
	if calls != fallbackAttempts {
		t.Errorf("made %d probes, want exactly %d", calls, fallbackAttempts)
	}
}

func TestGeneratePropagatesProbeError(t *testing.T) {
	p := newTestPolicy(t)
	probeErr := errors.New("db down")
	failing := func(string) (bool, error) { return false, probeErr }
	if _, err := p.Generate("Alice", "alice@example.com", failing); !errors.Is(err, probeErr) {
		t.Errorf("got %v, want the probe error", err)
	}
}
