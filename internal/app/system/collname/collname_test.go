package collname

import (
	"errors"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "two words", input: "Acme Corp", want: "orgAcmeCorp"},
		{name: "lowercase words", input: "hello world", want: "orgHelloWorld"},
		{name: "single word", input: "Globex", want: "orgGlobex"},
		{name: "first word lowered", input: "ACME corp", want: "orgAcmeCorp"},
		{name: "later words keep their tail", input: "acme iOS team", want: "orgAcmeIOSTeam"},
		{name: "punctuation removed", input: "Hello, World!", want: "orgHelloWorld"},
		{name: "hyphen joins words", input: "hello-world", want: "orgHelloworld"},
		{name: "extra whitespace", input: "  Acme \t  Corp\n", want: "orgAcmeCorp"},
		{name: "leading digits", input: "42 labs", want: "org42Labs"},
		{name: "non-ascii letters dropped", input: "École Française", want: "orgColeFranaise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.input)
			if err != nil {
				t.Fatalf("Derive(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Derive(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDerive_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "!!!", "-- ** --", "日本"} {
		if _, err := Derive(input); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Derive(%q): expected ErrInvalidName, got %v", input, err)
		}
	}
}

func TestDerive_Deterministic(t *testing.T) {
	inputs := []string{"Acme Corp", "hello world", "Some  Org  42"}
	for _, in := range inputs {
		a, errA := Derive(in)
		b, errB := Derive(in)
		if errA != nil || errB != nil {
			t.Fatalf("Derive(%q) errors: %v, %v", in, errA, errB)
		}
		if a != b {
			t.Errorf("Derive(%q) not stable: %q vs %q", in, a, b)
		}
	}
}

func TestDerive_KnownCollision(t *testing.T) {
	a, _ := Derive("Hello World")
	b, _ := Derive("hello world!")
	if a != b {
		t.Errorf("expected %q and %q to collide", a, b)
	}
}

func TestIsDerived(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"orgAcmeCorp", true},
		{"org42Labs", true},
		{"organizations", false},
		{"org", false},
		{"orgAcme_Corp", false},
		{"system.views", false},
		{"AcmeCorp", false},
	}
	for _, tt := range tests {
		if got := IsDerived(tt.name); got != tt.want {
			t.Errorf("IsDerived(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	derived, err := Derive("Round Trip Org")
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	if !IsDerived(derived) {
		t.Errorf("IsDerived(%q) = false for a derived name", derived)
	}
}
