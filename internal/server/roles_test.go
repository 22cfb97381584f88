package server

import "testing"

func TestRoleLabelKnownCodes(t *testing.T) {
	cases := map[string]string{
		"pareja":   "Pareja actual",
		"esposo":   "Esposo/a",
		"amigo":    "Amigo/a",
		"familiar": "Familiar",
		"crush":    "Crush / Casi algo",
		"ex":       "Ex-pareja",
	}
	for code, want := range cases {
		if got := roleLabel(code); got != want {
			t.Fatalf("roleLabel(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestRoleLabelUnknownCodePassesThrough(t *testing.T) {
	for _, code := range []string{"jefe", "", "CRUSH"} {
		if got := roleLabel(code); got != code {
			t.Fatalf("roleLabel(%q) = %q, want the code unchanged", code, got)
		}
	}
}
