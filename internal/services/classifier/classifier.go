// Package classifier assigns a category and descriptive tags to ingested
// media using the Gemini API. Classification is best-effort by contract:
// callers substitute defaults on any error, so nothing in this package may
// fail an ingestion.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ashok9315-cmyk/profolia.art/internal/jsonutil"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

// DefaultCategory is the category applied when classification is skipped or
// fails.
const DefaultCategory = "Uncategorized"

// ErrClassification wraps every model and parse failure so callers can treat
// them uniformly.
var ErrClassification = errors.New("classification failed")

// Item summarizes one media file for the model.
type Item struct {
	FileName    string
	Kind        media.Kind
	Description string
}

// Result is the model's verdict for a single item.
type Result struct {
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// Classifier produces one Result per input item, in input order.
type Classifier interface {
	Classify(ctx context.Context, items []Item, domainHint string) ([]Result, error)
}

const systemPrompt = `You are a media curator for professional portfolio websites.
You receive metadata about files an artist has uploaded and assign each one a
portfolio category and a short set of descriptive tags. You always answer with
valid JSON and nothing else.`

type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Classify sends one batch of items to the model and parses its JSON reply.
// The reply is expected to hold one result per item, in order; callers handle
// short replies by falling back to defaults for the missing positions.
func (g *Gemini) Classify(ctx context.Context, items []Item, domainHint string) ([]Result, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// MaxOutputTokens must cover the whole batch. Each item produces roughly
	// 60-80 tokens of JSON, and a truncated reply fails the parse below.
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		MaxOutputTokens: 8192,
	}

	prompt := buildPrompt(items, domainHint)
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrClassification)
	}

	results, err := jsonutil.Parse[[]Result](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	return results, nil
}

// buildPrompt lists every item with its metadata and states the output
// contract. Items are numbered so the model keeps them in order.
func buildPrompt(items []Item, domainHint string) string {
	var sb strings.Builder

	sb.WriteString("## Portfolio Classification Task\n\n")
	sb.WriteString(fmt.Sprintf("Classify %d media files for a portfolio site.\n", len(items)))
	if domainHint != "" {
		sb.WriteString(fmt.Sprintf("The owner's profession is: %s. Prefer categories that fit this field.\n", domainHint))
	}
	sb.WriteString("\n### Files\n\n")

	for i, item := range items {
		sb.WriteString(fmt.Sprintf("**File %d: %s** [%s]\n", i+1, item.FileName, item.Kind))
		if item.Description != "" {
			sb.WriteString(fmt.Sprintf("- Uploader's description: %s\n", item.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Required Output\n\n")
	sb.WriteString("Respond with ONLY a valid JSON array. One entry per file, in order.\n")
	sb.WriteString("Each entry: {\"category\": \"short category name\", \"tags\": [\"tag\", ...], \"description\": \"one sentence\"}\n")
	sb.WriteString("Use 2 to 5 lowercase tags per file. Keep the uploader's description when one was given, improving grammar only.\n")

	return sb.String()
}
