package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/orgmanager/internal/app/system/htmlsanitize"
)

func TestStripTags_Empty(t *testing.T) {
	if got := htmlsanitize.StripTags(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStripTags_PlainText(t *testing.T) {
	if got := htmlsanitize.StripTags("Acme Corp"); got != "Acme Corp" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStripTags_RemovesElements(t *testing.T) {
	if got := htmlsanitize.StripTags("<b>Acme</b> Corp"); got != "Acme Corp" {
		t.Errorf("expected tags removed, got %q", got)
	}
}

func TestStripTags_RemovesScript(t *testing.T) {
	got := htmlsanitize.StripTags("Acme<script>alert('xss')</script>")
	if got != "Acme" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestStripTags_KeepsAmpersand(t *testing.T) {
	if got := htmlsanitize.StripTags("Smith & Sons"); got != "Smith & Sons" {
		t.Errorf("expected ampersand kept, got %q", got)
	}
}

func TestIsPlainText_Empty(t *testing.T) {
	if !htmlsanitize.IsPlainText("") {
		t.Error("expected empty string to be plain text")
	}
}

func TestIsPlainText_NoTags(t *testing.T) {
	if !htmlsanitize.IsPlainText("Hello, World!") {
		t.Error("expected string without tags to be plain text")
	}
}

func TestIsPlainText_WithTags(t *testing.T) {
	if htmlsanitize.IsPlainText("<p>Hello</p>") {
		t.Error("expected string with tags to NOT be plain text")
	}
}

func TestIsPlainText_PartialTag(t *testing.T) {
	if !htmlsanitize.IsPlainText("5 < 10") {
		t.Error("expected string with only < to be plain text")
	}
}

func TestIsPlainText_OnlyGreaterThan(t *testing.T) {
	if !htmlsanitize.IsPlainText("5 > 3") {
		t.Error("expected string with only > to be plain text")
	}
}
