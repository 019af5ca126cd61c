// Package analyzer turns raw article content into an English headline,
// summary/takeaway, category tags, and a 1-5 relevance score. Articles are
// translated before analysis; low-scoring articles get no further treatment.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/presswatch/presswatch/internal/shared/types"
)

// Model generates a completion for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer scores and summarizes press releases.
type Analyzer struct {
	model        Model
	minRelevance int
}

// New creates an analyzer over a model. minRelevance gates the full
// analysis: articles scoring below it are reported as not relevant.
func New(model Model, minRelevance int) *Analyzer {
	if minRelevance < 1 || minRelevance > 5 {
		minRelevance = 4
	}
	return &Analyzer{model: model, minRelevance: minRelevance}
}

const promptTemplate = `You are analyzing a government press release.
First translate the article into English, then assess it.

Respond with ONLY a JSON object with these fields:
- "relevance": integer 1-5 likert score of how newsworthy this release is for foreign-policy and economic observers
- "headline": a catching 2-sentence news headline in English
- "summary": a 2-paragraph English summary and takeaway
- "categories": array of short category tags

Title: %s
Document number: %s
Published: %s

Article content:
%s`

// Analyze scores a release and, when it clears the relevance bar, returns
// the full analysis. The boolean reports whether the bar was cleared.
func (a *Analyzer) Analyze(ctx context.Context, r types.PressRelease) (types.Analysis, bool, error) {
	prompt := fmt.Sprintf(promptTemplate, r.Title, r.DocNumber, r.PublishDate, r.Content)

	raw, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return types.Analysis{}, false, fmt.Errorf("analyze %q: %w", r.Title, err)
	}

	var analysis types.Analysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &analysis); err != nil {
		return types.Analysis{}, false, fmt.Errorf("parse analysis for %q: %w", r.Title, err)
	}

	if analysis.Relevance < a.minRelevance {
		return types.Analysis{Relevance: analysis.Relevance}, false, nil
	}
	return analysis, true, nil
}

// extractJSON strips markdown fences the model may wrap around its output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

// GeminiModel is the production model backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed model.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Generate runs a single-turn completion.
func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}
