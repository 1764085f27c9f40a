package writer

import (
	"context"
	"fmt"

	"github.com/stosh99/olympics_tv/internal/llm"
	"github.com/stosh99/olympics_tv/internal/logger"
)

// Draft is the writer's output: the raw generated text plus the usage
// metadata that gets persisted with the record.
type Draft struct {
	Content       string
	Model         string
	PromptVersion string
	InputTokens   int
	OutputTokens  int
	Cost          float64
}

const commentaryPromptVersion = "v3"

const commentarySystem = `You are a sports journalist writing post-event commentary for the 2026 Milan-Cortina Winter Olympics. Your audience is English-speaking fans, primarily American but with international appeal.

WRITING STYLE:
- Engaging, narrative-driven sports journalism
- Lead with the story, not just the results
- Weave in human interest angles from the source material
- Include relevant context (records broken, rivalries, comebacks)
- Mention how the event affects medal standings or national narratives when relevant
- Reference specific details from sources to add color and depth
- Keep a neutral but enthusiastic tone - celebrate great performances from all nations
- If US athletes competed, include their performance naturally (don't force it if irrelevant)

STRUCTURE:
- FIRST PARAGRAPH IS CRITICAL: Write a self-contained 3-5 sentence summary paragraph that works on its own as a card preview. It should capture WHO won, the key storyline/drama, and WHY it matters - compelling enough to make someone click "read more". Include the winner's name, country, and the core narrative hook. This paragraph must make sense without any of the text that follows it.
- Main narrative (3-5 paragraphs covering the key storylines in depth)
- Brief context section if relevant (what this means for the Games, upcoming events)
- Length: 400-700 words total

CRITICAL RULES:
- The RESULTS section is GROUND TRUTH. Never contradict it. If a source conflicts with the results, trust the results.
- Only state facts that are supported by the results data or the source articles
- Do not invent quotes - only use quotes that appear in source articles
- If sources are thin, write a shorter but accurate piece rather than padding with speculation
- Attribute notable claims to their source (e.g., "according to NBC Sports...")`

const commentaryUserTemplate = `Write post-event commentary for the following Olympic event. Use the results as ground truth and the source articles for narrative color and context.

%s

Write the commentary now. Output ONLY the commentary text, no headers or metadata.`

const introPromptVersion = "v1"

const introSystem = `You are a sports journalist writing a pre-event preview for the 2026 Milan-Cortina Winter Olympics. Your audience is English-speaking fans, primarily American but with international appeal.

WRITING STYLE:
- Build anticipation and excitement for the upcoming event
- Focus on storylines, rivalries, and athletes to watch
- Include relevant context: defending champions, world rankings, recent form, records at stake
- If US athletes are competing, mention their prospects naturally
- Keep a neutral but enthusiastic tone
- Ground claims in the source material — don't invent storylines

STRUCTURE:
- FIRST PARAGRAPH IS CRITICAL: Write a self-contained 3-5 sentence preview that works on its own as a card teaser. It should capture WHAT event is happening, the KEY storyline/rivalry to watch, and WHY fans should tune in. This paragraph must make sense without any of the text that follows it.
- Key athletes/teams to watch (2-3 paragraphs covering favorites, dark horses, US angle)
- What makes this event interesting (format, history, venue, weather factors)
- Length: 300-500 words total (shorter than post-event — previews should be punchy)

CRITICAL RULES:
- Only state facts supported by the source articles
- Do not predict winners — frame as "favored" or "contender" based on sources
- Do not invent quotes — only use quotes from source articles
- If sources are thin, write a shorter but accurate piece rather than speculating
- Include the scheduled date/time if available in the event context
- Attribute notable claims to their source`

const introUserTemplate = `Write a pre-event preview for the following upcoming Olympic event. Use the source articles for storylines and context.

%s

Write the preview now. Output ONLY the preview text, no headers or metadata.`

// Writer is a single-shot draft generator. There are two configurations:
// post-event commentary and pre-event preview.
type Writer struct {
	gen           llm.Generator
	system        string
	userTemplate  string
	promptVersion string
	maxTokens     int
}

// NewCommentary builds the post-event commentary writer.
func NewCommentary(gen llm.Generator) *Writer {
	return &Writer{
		gen:           gen,
		system:        commentarySystem,
		userTemplate:  commentaryUserTemplate,
		promptVersion: commentaryPromptVersion,
		maxTokens:     2048,
	}
}

// NewIntro builds the pre-event preview writer.
func NewIntro(gen llm.Generator) *Writer {
	return &Writer{
		gen:           gen,
		system:        introSystem,
		userTemplate:  introUserTemplate,
		promptVersion: introPromptVersion,
		maxTokens:     1536,
	}
}

// PromptVersion identifies the prompt revision persisted with each record.
func (w *Writer) PromptVersion() string { return w.promptVersion }

// Write sends the consolidated source document to the generator once. No
// retries: a provider failure is the stage's failure.
func (w *Writer) Write(ctx context.Context, consolidated string) (*Draft, error) {
	if w.gen == nil {
		return nil, fmt.Errorf("generator not configured")
	}

	logger.Log.Infof("Sending to %s (~%d input tokens)", w.gen.ModelName(), len(consolidated)/4)

	comp, err := w.gen.Generate(ctx, w.system, fmt.Sprintf(w.userTemplate, consolidated), w.maxTokens)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("  Response: %d tokens, ~$%.4f", comp.OutputTokens, comp.Cost)

	return &Draft{
		Content:       comp.Text,
		Model:         w.gen.ModelName(),
		PromptVersion: w.promptVersion,
		InputTokens:   comp.InputTokens,
		OutputTokens:  comp.OutputTokens,
		Cost:          comp.Cost,
	}, nil
}
