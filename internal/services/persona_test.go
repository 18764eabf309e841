package services

import (
	"strings"
	"testing"
)

func TestPersonaSet_SystemPrompt(t *testing.T) {
	ps := NewPersonaSet()

	standard, err := ps.SystemPrompt(ModeStandard, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(standard, "You are NLVX Ai, a powerful and helpful AI assistant") {
		t.Errorf("unexpected standard prompt start: %q", standard[:60])
	}
	if !strings.Contains(standard, `"I was created by NLVX."`) {
		t.Errorf("standard prompt missing identity rule")
	}
	if !strings.Contains(standard, "same language as the user's most recent message") {
		t.Errorf("standard prompt without language should mirror the user")
	}
	if !strings.Contains(standard, "Never translate your own answer") {
		t.Errorf("standard prompt should forbid translating the answer")
	}
	if strings.Contains(standard, UnchainedSignOff) {
		t.Errorf("standard prompt must not contain the sign-off")
	}

	unchained, err := ps.SystemPrompt(ModeUnchained, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(unchained, "Unchained mode") {
		t.Errorf("unchained prompt missing mode description")
	}
	if !strings.HasSuffix(unchained, UnchainedSignOff) {
		t.Errorf("unchained prompt should end with the sign-off instruction, got %q", unchained[len(unchained)-60:])
	}
}

func TestPersonaSet_DeclaredLanguage(t *testing.T) {
	ps := NewPersonaSet()

	prompt, err := ps.SystemPrompt(ModeStandard, "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "You MUST respond only in Arabic (ar)") {
		t.Errorf("expected explicit language instruction, got %q", prompt)
	}
	if strings.Contains(prompt, "most recent message") {
		t.Errorf("declared language should replace the mirror instruction")
	}
}

func TestPersonaSet_Deterministic(t *testing.T) {
	a, _ := NewPersonaSet().SystemPrompt(ModeUnchained, "es")
	b, _ := NewPersonaSet().SystemPrompt(ModeUnchained, "es")
	if a != b {
		t.Fatalf("same inputs produced different prompts")
	}
}

func TestPersonaSet_RegisterAndUse(t *testing.T) {
	ps := NewPersonaSet()

	if err := ps.Use(ModeStandard, "standard/v2"); err == nil {
		t.Fatalf("expected error for unknown persona")
	}
	if err := ps.Register("standard/v2", "v2 {{ .LanguageName }}"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ps.Use(ModeStandard, "standard/v2"); err != nil {
		t.Fatalf("use: %v", err)
	}

	got, err := ps.SystemPrompt(ModeStandard, "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v2 French (fr)" {
		t.Errorf("expected %q, got %q", "v2 French (fr)", got)
	}

	if err := ps.Register("broken", "{{ .Nope"); err == nil {
		t.Errorf("expected parse error")
	}
	if _, err := ps.Render("missing", ""); err == nil {
		t.Errorf("expected error for unknown key")
	}
}

func TestPersonaSet_UnknownModeUsesStandard(t *testing.T) {
	ps := NewPersonaSet()
	want, _ := ps.SystemPrompt(ModeStandard, "")
	got, err := ps.SystemPrompt(Mode("other"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("unknown mode should fall back to the standard persona")
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"ar", "Arabic (ar)"},
		{"es", "Spanish (es)"},
		{"not a tag!", "not a tag!"},
	}
	for _, tc := range tests {
		if got := LanguageName(tc.in); got != tc.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
