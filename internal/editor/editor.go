package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/stosh99/olympics_tv/internal/llm"
	"github.com/stosh99/olympics_tv/internal/logger"
)

// Result is the editor pipeline's output. Whatever happens inside the
// two passes, a usable proofed text comes back as long as the pipeline
// itself could be entered.
type Result struct {
	ProofedContent string
	Corrections    string
	InputTokens    int
	OutputTokens   int
	Cost           float64
}

const factcheckSystem = `You are a sports fact-checker for Olympic coverage. Your ONLY job is factual accuracy. Do not touch prose style, tone, or structure.

You will receive:
- RESULTS: verified data from the official Olympics database (ground truth)
- SOURCES: the articles the writer used
- COMMENTARY: the written piece to check

For EVERY factual claim in the commentary, classify it:

1. VERIFIED — matches the results data exactly. No action needed.
2. SOURCED — not in the results data, but explicitly stated in one of the source articles. KEEP these. They add valuable context (historical facts, quotes, background, records from prior Games, etc.)
3. CONTRADICTS — conflicts with the results data. FIX these. The results data is always correct.
4. UNSOURCED — not in results data AND not in any source article. REMOVE these. The writer hallucinated.

CRITICAL RULES:
- A claim does NOT need to be in the results data to be valid. If a credible source article states it, KEEP it.
- Only flag CONTRADICTS when the claim directly conflicts with a number, name, position, or medal in the results.
- Quotes must appear in the source articles. Any quote not in the sources is UNSOURCED.
- Do not flag reasonable inferences (e.g., "powered through" is color, not a factual claim).
- Historical context from source articles (e.g., "first Dutch gold since 2014") is SOURCED, not UNSOURCED.

OUTPUT FORMAT:
List each factual issue found, then output the corrected commentary.

ISSUES:
- [CONTRADICTS] "Kok finished in 36.50" → Results show 36.49. Fixed.
- [UNSOURCED] "This was her childhood dream" → Not in any source. Removed.
- [SOURCED-OK] "first Dutch medals in the event since 2014" → Confirmed in Source 2 (Olympics.com). Kept.

If no issues: "ISSUES: None found"

Then:
---
[Full commentary with only CONTRADICTS and UNSOURCED items fixed. SOURCED items preserved.]`

const sourcecheckSystem = `You are a fact-checker for Olympic preview articles. Your ONLY job is verifying that claims are grounded in the source articles provided.

You will receive:
- SOURCES: the articles the writer used for context
- PREVIEW: the written piece to check

For EVERY factual claim in the preview, classify it:

1. SOURCED — explicitly stated in one of the source articles. KEEP.
2. COMMON KNOWLEDGE — widely known Olympic facts (e.g., event format, venue location). KEEP.
3. UNSOURCED — not in any source article and not common knowledge. REMOVE.

CRITICAL RULES:
- Rankings, world records, and season results MUST be sourced. Don't assume they're common knowledge.
- Quotes must appear in the source articles verbatim. Any quote not in sources is UNSOURCED.
- Do not flag reasonable preview language (e.g., "will be looking to" is framing, not a factual claim).
- Predictions framed as opinions or expectations are fine if sourced (e.g., "widely considered the favorite").

OUTPUT FORMAT:
List each issue, then output corrected preview.

ISSUES:
- [UNSOURCED] "Smith holds the world record at 1:23.45" → Not in any source. Removed.
- [SOURCED-OK] "defending champion from 2022 Beijing" → Confirmed in Source 1. Kept.

If no issues: "ISSUES: None found"

Then:
---
[Full preview with only UNSOURCED items fixed.]`

const proseSystem = `You are a prose editor for Olympic sports journalism. Your ONLY job is improving the writing quality. Do not change any facts, names, times, or claims.

YOUR TASKS:
- Fix awkward phrasing or clunky sentences
- Improve transitions between paragraphs
- Eliminate repetitive sentence structures (e.g., too many sentences starting with "The...")
- Tighten wordy passages
- Ensure consistent tone (engaged, professional sports journalism)
- Fix grammar and punctuation

CRITICAL — FIRST PARAGRAPH RULE:
- The first paragraph is a standalone card summary shown on the website before users click "read more"
- It MUST make complete sense on its own, without any following text
- Keep it self-contained: WHO won, key storyline, WHY it matters (3-5 sentences)
- Do not add references to "below" or "as we'll see" — it must stand alone

DO NOT:
- Add or remove factual claims
- Change any names, times, scores, or positions
- Alter quotes in any way
- Significantly change the length (stay within ~10% of original)
- Restructure the piece (keep the same paragraph order and flow)

OUTPUT:
Just output the polished commentary. No commentary about your edits.
If the prose is already clean, output it unchanged.`

// Editor runs the two sequential generator passes: a verification pass with
// a narrow factual mandate, then a prose pass that never touches facts.
// They are never combined into one call.
type Editor struct {
	gen          llm.Generator
	verifySystem string
	verifyLabel  string
	failNote     string
	maxTokens    int
}

// NewCommentary builds the post-event editor, whose verification pass
// checks claims against both ground-truth results and the source articles.
func NewCommentary(gen llm.Generator) *Editor {
	return &Editor{
		gen:          gen,
		verifySystem: factcheckSystem,
		verifyLabel:  "Fact-checker",
		failNote:     "Fact-checker failed",
		maxTokens:    2048,
	}
}

// NewIntro builds the pre-event editor. There are no results to check
// against, so the verification pass validates claims against sources only.
func NewIntro(gen llm.Generator) *Editor {
	return &Editor{
		gen:          gen,
		verifySystem: sourcecheckSystem,
		verifyLabel:  "Source-checker",
		failNote:     "Source-checker failed",
		maxTokens:    1536,
	}
}

// Edit runs verification then prose polish with graceful degradation:
// verifier failure returns the original draft at zero cost, prose failure
// returns the verifier's output with its issues preserved, and only a
// missing generator makes the pipeline itself unreachable.
func (e *Editor) Edit(ctx context.Context, draft, resultsText, consolidated string) (*Result, error) {
	if e.gen == nil {
		return nil, fmt.Errorf("generator not configured")
	}

	logger.Log.Info("Starting two-agent edit pipeline...")

	verified, verr := e.verify(ctx, draft, resultsText, consolidated)
	if verr != nil {
		logger.Log.Warnf("%s failed, falling back to original: %v", e.verifyLabel, verr)
		return &Result{
			ProofedContent: draft,
			Corrections:    e.failNote,
		}, nil
	}

	polished, perr := e.prose(ctx, verified.text)
	if perr != nil {
		logger.Log.Warnf("Prose editor failed, using %s output: %v", strings.ToLower(e.verifyLabel), perr)
		return &Result{
			ProofedContent: verified.text,
			Corrections:    verified.issues,
			InputTokens:    verified.usage.InputTokens,
			OutputTokens:   verified.usage.OutputTokens,
			Cost:           verified.usage.Cost,
		}, nil
	}

	total := &Result{
		ProofedContent: polished.Text,
		Corrections:    verified.issues,
		InputTokens:    verified.usage.InputTokens + polished.InputTokens,
		OutputTokens:   verified.usage.OutputTokens + polished.OutputTokens,
		Cost:           verified.usage.Cost + polished.Cost,
	}

	logger.Log.Infof("  Edit pipeline complete. Total edit cost: $%.4f", total.Cost)
	if verified.issues != "" {
		logger.Log.Infof("  %s issues: %.200s", e.verifyLabel, verified.issues)
	}
	return total, nil
}

type verifyOutput struct {
	text   string
	issues string
	usage  *llm.Completion
}

func (e *Editor) verify(ctx context.Context, draft, resultsText, consolidated string) (*verifyOutput, error) {
	var prompt string
	if e.verifySystem == sourcecheckSystem {
		prompt = fmt.Sprintf(`Check this Olympic preview against its source articles.

=== SOURCE ARTICLES THE WRITER USED ===
%s

=== PREVIEW TO CHECK ===
%s

Check every factual claim now. Classify each as SOURCED, COMMON KNOWLEDGE, or UNSOURCED.`, consolidated, draft)
	} else {
		prompt = fmt.Sprintf(`Fact-check this Olympic commentary.

=== RESULTS (ground truth from official database) ===
%s

=== SOURCE ARTICLES THE WRITER USED ===
%s

=== COMMENTARY TO FACT-CHECK ===
%s

Check every factual claim now. Classify each as VERIFIED, SOURCED, CONTRADICTS, or UNSOURCED.`, resultsText, consolidated, draft)
	}

	logger.Log.Infof("  Running %s...", strings.ToLower(e.verifyLabel))
	comp, err := e.gen.Generate(ctx, e.verifySystem, prompt, e.maxTokens)
	if err != nil {
		return nil, err
	}

	issues, text := SplitIssues(comp.Text)
	return &verifyOutput{text: text, issues: issues, usage: comp}, nil
}

func (e *Editor) prose(ctx context.Context, text string) (*llm.Completion, error) {
	prompt := fmt.Sprintf(`Polish the prose of this Olympic commentary. Do not change any facts.

%s`, text)

	logger.Log.Info("  Running prose editor...")
	return e.gen.Generate(ctx, proseSystem, prompt, e.maxTokens)
}

// SplitIssues recovers the two-part verification output: an issues list,
// a literal "---" separator, then the corrected text. When the separator
// is absent the whole output is treated as the corrected text with no
// issues, rather than failing the pass.
func SplitIssues(output string) (issues, text string) {
	parts := strings.SplitN(output, "---", 2)
	if len(parts) < 2 {
		return "", strings.TrimSpace(output)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
