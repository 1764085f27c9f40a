package writer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stosh99/olympics_tv/internal/llm"
)

type mockGenerator struct {
	lastSystem string
	lastUser   string
	lastMax    int
	resp       *llm.Completion
	err        error
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string, maxTokens int) (*llm.Completion, error) {
	m.lastSystem, m.lastUser, m.lastMax = system, user, maxTokens
	return m.resp, m.err
}

func (m *mockGenerator) ModelName() string { return "mock-model" }

func TestWrite_Commentary(t *testing.T) {
	gen := &mockGenerator{resp: &llm.Completion{
		Text: "The commentary.", InputTokens: 500, OutputTokens: 300, Cost: 0.006,
	}}
	w := NewCommentary(gen)

	draft, err := w.Write(context.Background(), "=== EVENT CONTEXT ===\n...")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if draft.Content != "The commentary." {
		t.Errorf("Content = %q", draft.Content)
	}
	if draft.Model != "mock-model" {
		t.Errorf("Model = %q, want mock-model", draft.Model)
	}
	if draft.PromptVersion != "v3" {
		t.Errorf("PromptVersion = %q, want v3", draft.PromptVersion)
	}
	if draft.InputTokens != 500 || draft.OutputTokens != 300 {
		t.Errorf("tokens = %d/%d, want 500/300", draft.InputTokens, draft.OutputTokens)
	}
	if gen.lastMax != 2048 {
		t.Errorf("maxTokens = %d, want 2048", gen.lastMax)
	}
	if !strings.Contains(gen.lastUser, "=== EVENT CONTEXT ===") {
		t.Errorf("user prompt missing consolidated document")
	}
}

func TestWrite_Intro(t *testing.T) {
	gen := &mockGenerator{resp: &llm.Completion{Text: "The preview."}}
	w := NewIntro(gen)

	draft, err := w.Write(context.Background(), "doc")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if draft.PromptVersion != "v1" {
		t.Errorf("PromptVersion = %q, want v1", draft.PromptVersion)
	}
	if gen.lastMax != 1536 {
		t.Errorf("maxTokens = %d, want 1536", gen.lastMax)
	}
	if !strings.Contains(gen.lastSystem, "pre-event preview") {
		t.Errorf("wrong system prompt for intro writer")
	}
}

func TestWrite_GeneratorError(t *testing.T) {
	w := NewCommentary(&mockGenerator{err: errors.New("provider down")})
	if _, err := w.Write(context.Background(), "doc"); err == nil {
		t.Errorf("Write() error = nil, want error")
	}
}

func TestWrite_NilGenerator(t *testing.T) {
	w := NewCommentary(nil)
	if _, err := w.Write(context.Background(), "doc"); err == nil {
		t.Errorf("Write() error = nil, want error")
	}
}
