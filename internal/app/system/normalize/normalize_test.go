package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"admin@acme.test":        "admin@acme.test",
		"Admin@ACME.test":        "admin@acme.test",
		"\t admin@acme.test \n":  "admin@acme.test",
		"":                       "",
		"   ":                    "",
		"First.Last@Sub.Acme.IO": "first.last@sub.acme.io",
	}
	for in, want := range cases {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":      "Acme Corp",
		"  Acme Corp\t":  "Acme Corp",
		"Acme  Corp":     "Acme  Corp", // inner spacing kept; collname strips it
		"ACME corp":      "ACME corp",
		"":               "",
		"\n":             "",
		"Café Ünïcode 9": "Café Ünïcode 9",
	}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQueryParam(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":   "Acme Corp",
		" Acme Corp ": "Acme Corp",
		"":            "",
		"  ":          "",
	}
	for in, want := range cases {
		if got := QueryParam(in); got != want {
			t.Errorf("QueryParam(%q) = %q, want %q", in, got, want)
		}
	}
}
