package identifier

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple title", "Hello, World!", "hello-world"},
		{"already canonical", "hello-world", "hello-world"},
		{"collapses whitespace runs", "Hello    there \t friend", "hello-there-friend"},
		{"trims surrounding space", "  Spaced Out  ", "spaced-out"},
		{"strips diacritics", "Café Déjà Vu", "cafe-deja-vu"},
		{"digits survive", "Top 10 Tips", "top-10-tips"},
		{"punctuation only", "!!! ???", ""},
		{"empty", "", ""},
		{"no leading or trailing hyphens", "--hello--", "hello"},
		{"underscores become hyphens", "snake_case_title", "snake-case-title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips at sign", "@alice", "alice"},
		{"lowercases", "Alice", "alice"},
		{"drops spaces", "Jo hn!", "john"},
		{"keeps underscores", "cool_name_1", "cool_name_1"},
		{"strips diacritics", "José", "jose"},
		{"drops hyphens", "mary-jane", "maryjane"},
		{"empty", "", ""},
		{"symbols only", "@!#$", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsernameBase(tt.in); got != tt.want {
				t.Errorf("UsernameBase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Both normalizers must be idempotent: running them over their own output
// changes nothing.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, World!", "Café Déjà Vu", "  Spaced Out  ", "already-canonical",
		"@User_Name", "", "!!!", "post-20250101120000",
	}
	for _, in := range inputs {
		if once, twice := Slugify(in), Slugify(Slugify(in)); once != twice {
			t.Errorf("Slugify not idempotent for %q: %q != %q", in, once, twice)
		}
		if once, twice := UsernameBase(in), UsernameBase(UsernameBase(in)); once != twice {
			t.Errorf("UsernameBase not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
