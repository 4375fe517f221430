package validator

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// AnthropicLLM implements LLM against a small Claude model, grounded on the
// same client setup as the chat orchestrator's provider but limited to a
// single non-streaming call with a small max-tokens budget — the validator
// only ever needs one short JSON object back.
type AnthropicLLM struct {
	client anthropic.Client
	model  string
	log    zerolog.Logger
}

// NewAnthropicLLM builds a validator LLM client. model should name a small,
// fast model (e.g. a Haiku-class model) since this runs on every tool call.
func NewAnthropicLLM(apiKey, model string, log zerolog.Logger) *AnthropicLLM {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicLLM{client: client, model: model, log: log.With().Str("component", "validator_llm").Logger()}
}

// Ask sends system/user as a single-turn message and returns the
// concatenated text content of the reply.
func (a *AnthropicLLM) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 256,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("validator llm: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}
