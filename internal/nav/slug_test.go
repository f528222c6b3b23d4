package nav

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Encapsulation", "encapsulation"},
		{"Resource Drift", "resource-drift"},
		{"What is OOP?", "what-is-oop"},
		{"C++ & Go: a comparison", "c-go-a-comparison"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", "section"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlug_Idempotent(t *testing.T) {
	inputs := []string{
		"Encapsulation",
		"Resource Drift 2024",
		"weird -- punctuation!!",
		"",
		"§¶•",
	}
	for _, in := range inputs {
		once := Slug(in)
		twice := Slug(once)
		if once != twice {
			t.Errorf("Slug not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSlugger_CollisionSuffix(t *testing.T) {
	s := newSlugger()
	first := s.assign("Overview")
	second := s.assign("Overview")
	third := s.assign("Overview")

	if first != "overview" {
		t.Errorf("first assignment: got %q", first)
	}
	if second != "overview-2" {
		t.Errorf("second assignment: got %q", second)
	}
	if third != "overview-3" {
		t.Errorf("third assignment: got %q", third)
	}
}
