package titlematch

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/pkg/anthropic"
)

// Anthropic matches titles with a Claude model.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates a matcher backed by the Messages API.
func NewAnthropic(client anthropic.Client, model string, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Anthropic{client: client, model: model, maxTokens: maxTokens}
}

// BestTitle implements enrich.TitleMatcher.
func (a *Anthropic) BestTitle(ctx context.Context, candidates, priorities []string) (string, error) {
	zero := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      SystemPrompt + jsonInstruction,
		Messages:    []anthropic.Message{{Role: "user", Content: UserPrompt(candidates, priorities)}},
		Temperature: &zero,
	})
	if err != nil {
		return "", err
	}

	zap.L().Debug("titlematch: anthropic reply",
		zap.String("model", resp.Model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return parseBestTitle(resp.Text())
}
