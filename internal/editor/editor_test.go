package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stosh99/olympics_tv/internal/llm"
)

// mockGenerator answers each call from a scripted sequence.
type mockGenerator struct {
	responses []mockResponse
	calls     []string // system prompts, in order
}

type mockResponse struct {
	text string
	in   int
	out  int
	cost float64
	err  error
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string, maxTokens int) (*llm.Completion, error) {
	m.calls = append(m.calls, system)
	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Completion{Text: r.text, InputTokens: r.in, OutputTokens: r.out, Cost: r.cost}, nil
}

func (m *mockGenerator) ModelName() string { return "mock-model" }

func TestSplitIssues(t *testing.T) {
	issues, text := SplitIssues("ISSUES FOUND:\n- wrong time\n---\nCorrected draft here.")
	if issues != "ISSUES FOUND:\n- wrong time" {
		t.Errorf("SplitIssues() issues = %q", issues)
	}
	if text != "Corrected draft here." {
		t.Errorf("SplitIssues() text = %q", text)
	}
}

func TestSplitIssues_NoSeparator(t *testing.T) {
	issues, text := SplitIssues("  Just the corrected text.  ")
	if issues != "" {
		t.Errorf("SplitIssues() issues = %q, want empty", issues)
	}
	if text != "Just the corrected text." {
		t.Errorf("SplitIssues() text = %q", text)
	}
}

func TestEdit_BothPassesSucceed(t *testing.T) {
	gen := &mockGenerator{responses: []mockResponse{
		{text: "- fixed one claim\n---\nverified text", in: 100, out: 50, cost: 0.001},
		{text: "polished text", in: 80, out: 40, cost: 0.0008},
	}}
	e := NewCommentary(gen)

	res, err := e.Edit(context.Background(), "draft", "results", "consolidated")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if res.ProofedContent != "polished text" {
		t.Errorf("ProofedContent = %q, want polished text", res.ProofedContent)
	}
	if res.Corrections != "- fixed one claim" {
		t.Errorf("Corrections = %q", res.Corrections)
	}
	if res.InputTokens != 180 || res.OutputTokens != 90 {
		t.Errorf("tokens = %d/%d, want 180/90", res.InputTokens, res.OutputTokens)
	}
	if diff := res.Cost - 0.0018; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("Cost = %v, want 0.0018", res.Cost)
	}
	if len(gen.calls) != 2 {
		t.Errorf("generator called %d times, want 2", len(gen.calls))
	}
}

func TestEdit_VerifierFailure(t *testing.T) {
	gen := &mockGenerator{responses: []mockResponse{
		{err: errors.New("rate limited")},
	}}
	e := NewCommentary(gen)

	res, err := e.Edit(context.Background(), "original draft", "results", "consolidated")
	if err != nil {
		t.Fatalf("Edit() error = %v, want graceful fallback", err)
	}
	if res.ProofedContent != "original draft" {
		t.Errorf("ProofedContent = %q, want original draft", res.ProofedContent)
	}
	if res.Corrections != "Fact-checker failed" {
		t.Errorf("Corrections = %q, want Fact-checker failed", res.Corrections)
	}
	if res.InputTokens != 0 || res.OutputTokens != 0 || res.Cost != 0 {
		t.Errorf("usage = %d/%d/$%v, want zero", res.InputTokens, res.OutputTokens, res.Cost)
	}
	// No prose pass after a verifier failure.
	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times, want 1", len(gen.calls))
	}
}

func TestEdit_ProseFailureKeepsVerifierOutput(t *testing.T) {
	gen := &mockGenerator{responses: []mockResponse{
		{text: "- issue\n---\nverified text", in: 100, out: 50, cost: 0.002},
		{err: errors.New("timeout")},
	}}
	e := NewCommentary(gen)

	res, err := e.Edit(context.Background(), "draft", "results", "consolidated")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if res.ProofedContent != "verified text" {
		t.Errorf("ProofedContent = %q, want verified text", res.ProofedContent)
	}
	if res.Corrections != "- issue" {
		t.Errorf("Corrections = %q", res.Corrections)
	}
	if res.Cost != 0.002 {
		t.Errorf("Cost = %v, want verifier cost only", res.Cost)
	}
}

func TestEdit_NilGenerator(t *testing.T) {
	e := NewCommentary(nil)
	if _, err := e.Edit(context.Background(), "draft", "", ""); err == nil {
		t.Errorf("Edit() error = nil, want error")
	}
}

func TestEdit_IntroUsesSourceChecker(t *testing.T) {
	gen := &mockGenerator{responses: []mockResponse{
		{err: errors.New("down")},
	}}
	e := NewIntro(gen)

	res, err := e.Edit(context.Background(), "preview draft", "", "consolidated")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if res.Corrections != "Source-checker failed" {
		t.Errorf("Corrections = %q, want Source-checker failed", res.Corrections)
	}
	if !strings.Contains(gen.calls[0], "SOURCED") {
		t.Errorf("wrong system prompt for intro editor")
	}
}
