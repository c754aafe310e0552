package identifier

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

// takenSet builds an ExistsFunc over a fixed set of taken identifiers.
func takenSet(names ...string) ExistsFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestResolveFreeCandidateReturnedUnchanged(t *testing.T) {
	got, err := Resolve("hello-world", takenSet(), NumericSuffix{MaxLen: 255}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello-world" {
		t.Errorf("got %q, want the untouched candidate", got)
	}
}

func TestResolveNumericSuffix(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{"first collision", []string{"hello-world"}, "hello-world-2"},
		{"second collision", []string{"hello-world", "hello-world-2"}, "hello-world-3"},
		{"gap is taken", []string{"hello-world", "hello-world-2", "hello-world-3"}, "hello-world-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve("hello-world", takenSet(tt.taken...), NumericSuffix{MaxLen: 255}, 1000)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumericSuffixTruncatesLongBase(t *testing.T) {
	base := strings.Repeat("a", 240)
	got, err := Resolve(base, takenSet(base), NumericSuffix{MaxLen: 241}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 241 {
		t.Errorf("resolved slug is %d chars, cap is 241", len(got))
	}
	if !strings.HasSuffix(got, "-2") {
		t.Errorf("got %q, want a -2 suffix", got)
	}
}

func TestNumericSuffixTrimsHyphensAfterTruncation(t *testing.T) {
	// Truncation lands right after a hyphen; the suffix must not produce "--".
	base := strings.Repeat("a", 8) + "-" + strings.Repeat("b", 8)
	s := NumericSuffix{MaxLen: 11}
	if got := s.Candidate(base, 1); strings.Contains(got, "--") {
		t.Errorf("candidate %q contains a double hyphen", got)
	}
}

func TestRandomSuffixShape(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	s := RandomSuffix{MaxLen: 20, Rand: rnd}

	got := s.Candidate("alice", 1)
	if !strings.HasPrefix(got, "alice_1") {
		t.Errorf("got %q, want alice_1 followed by two digits", got)
	}
	if len(got) != len("alice_1")+2 {
		t.Errorf("got %q, want exactly two random digits after the counter", got)
	}
}

func TestRandomSuffixRespectsMaxLen(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	s := RandomSuffix{MaxLen: 20, Rand: rnd}

	base := strings.Repeat("x", 20)
	for attempt := 1; attempt <= 150; attempt++ {
		if got := s.Candidate(base, attempt); len(got) > 20 {
			t.Fatalf("attempt %d: candidate %q exceeds 20 chars", attempt, got)
		}
	}
}

func TestResolveExhausted(t *testing.T) {
	everything := func(string) (bool, error) { return true, nil }
	_, err := Resolve("alice", everything, RandomSuffix{MaxLen: 20, Rand: rand.New(rand.NewSource(1))}, 100)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("got %v, want ErrExhausted", err)
	}
}

func TestResolvePropagatesProbeError(t *testing.T) {
	probeErr := errors.New("connection refused")
	failing := func(string) (bool, error) { return false, probeErr }
	_, err := Resolve("alice", failing, NumericSuffix{MaxLen: 255}, 100)
	if !errors.Is(err, probeErr) {
		t.Errorf("got %v, want the probe error wrapped", err)
	}
}

// The resolver's core guarantee: whatever comes back is free per the probe.
func TestResolveReturnsFreeIdentifier(t *testing.T) {
	taken := map[string]bool{}
	for _, n := range []string{"post", "post-2", "post-3", "post-4", "post-5"} {
		taken[n] = true
	}
	exists := func(c string) (bool, error) { return taken[c], nil }

	got, err := Resolve("post", exists, NumericSuffix{MaxLen: 255}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taken[got] {
		t.Errorf("resolver returned taken identifier %q", got)
	}
}
