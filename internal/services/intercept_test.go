package services

import (
	"testing"

	"nlvx-chat/internal/models"
)

func TestInterceptor_Check(t *testing.T) {
	ic := NewInterceptor()

	tests := []struct {
		name  string
		turns []models.ChatMessage
		want  string
		hit   bool
	}{
		{
			name:  "trigger asks for the name",
			turns: []models.ChatMessage{{Role: "user", Content: "Does Nasser love me?"}},
			want:  NameQuestionReply,
			hit:   true,
		},
		{
			name:  "trigger is case insensitive",
			turns: []models.ChatMessage{{Role: "user", Content: "does NASSER have a crush on sofia"}},
			want:  NameQuestionReply,
			hit:   true,
		},
		{
			name: "name answer after question",
			turns: []models.ChatMessage{
				{Role: "user", Content: "Does Nasser love me?"},
				{Role: "assistant", Content: NameQuestionReply},
				{Role: "user", Content: "I'm Fatima"},
			},
			want: NameGatedReply,
			hit:  true,
		},
		{
			name: "other name after question",
			turns: []models.ChatMessage{
				{Role: "user", Content: "Does Nasser love me?"},
				{Role: "assistant", Content: NameQuestionReply},
				{Role: "user", Content: "I'm Layla"},
			},
		},
		{
			name: "trigger again after the name was asked",
			turns: []models.ChatMessage{
				{Role: "user", Content: "Does Nasser love me?"},
				{Role: "assistant", Content: "First, WHAT IS YOUR NAME?"},
				{Role: "user", Content: "Does Nasser love me?"},
			},
		},
		{
			name: "name answer that also matches the trigger",
			turns: []models.ChatMessage{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: NameQuestionReply},
				{Role: "user", Content: "Sofia. Does nasser like me?"},
			},
			want: NameGatedReply,
			hit:  true,
		},
		{
			name:  "ordinary message",
			turns: []models.ChatMessage{{Role: "user", Content: "What is the capital of France?"}},
		},
		{
			name:  "name without question",
			turns: []models.ChatMessage{{Role: "user", Content: "My name is Fatima"}},
		},
		{
			name: "question not in previous turn",
			turns: []models.ChatMessage{
				{Role: "assistant", Content: NameQuestionReply},
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "Hi!"},
				{Role: "user", Content: "Fatima"},
			},
		},
		{
			name:  "empty",
			turns: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, hit := ic.Check(tc.turns)
			if hit != tc.hit {
				t.Fatalf("expected hit=%v, got %v (%q)", tc.hit, hit, got)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestInterceptor_NameGateTakesPrecedence(t *testing.T) {
	ic := NewInterceptor()

	// Matches the trigger and a name token at once; with no name question
	// asked yet only the name gate applies.
	turns := []models.ChatMessage{
		{Role: "user", Content: "Nasser loves Fatima?"},
	}
	got, hit := ic.Check(turns)
	if !hit || got != NameQuestionReply {
		t.Fatalf("expected name question, got %q (hit=%v)", got, hit)
	}
}
