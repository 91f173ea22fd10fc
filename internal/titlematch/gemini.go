package titlematch

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sells-group/crunchy-cli/pkg/gemini"
)

var bestTitleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"bestTitle": {Type: genai.TypeString},
	},
	Required: []string{"bestTitle"},
}

// Gemini matches titles with a Gemini model using a response schema.
type Gemini struct {
	client gemini.Client
	model  string
}

// NewGemini creates a matcher backed by generateContent.
func NewGemini(client gemini.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// BestTitle implements enrich.TitleMatcher.
func (g *Gemini) BestTitle(ctx context.Context, candidates, priorities []string) (string, error) {
	var zero float32
	resp, err := g.client.GenerateJSON(ctx, gemini.Request{
		Model:       g.model,
		System:      SystemPrompt,
		Prompt:      UserPrompt(candidates, priorities),
		Schema:      bestTitleSchema,
		Temperature: &zero,
	})
	if err != nil {
		return "", err
	}

	zap.L().Debug("titlematch: gemini reply",
		zap.String("model", g.model),
		zap.Int32("input_tokens", resp.InputTokens),
		zap.Int32("output_tokens", resp.OutputTokens),
	)
	return parseBestTitle(resp.Text)
}
