package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

const defaultModel = "claude-sonnet-4-20250514"
const defaultMaxTokens = 4096

// AnthropicProvider implements ChatProvider against the Claude Messages API
// in streaming mode.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	log    zerolog.Logger
}

// NewAnthropicProvider builds a provider using apiKey. model defaults to
// claude-sonnet-4-20250514 when empty, matching the reference's hardcoded
// model choice.
func NewAnthropicProvider(apiKey, model string, log zerolog.Logger) *AnthropicProvider {
	if model == "" {
		model = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client, model: model, log: log.With().Str("provider", "anthropic").Logger()}
}

// StreamChat starts one Messages.NewStreaming call and translates
// Anthropic's content-block events into llm.StreamEvent as they arrive.
func (p *AnthropicProvider) StreamChat(ctx context.Context, systemPrompt string, history []Turn, tools []ToolSpec) (<-chan StreamEvent, error) {
	events := make(chan StreamEvent, 32)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: defaultMaxTokens,
		Messages:  toAnthropicMessages(history),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		params.Tools = toAnthropicTools(tools)
	}

	go func() {
		defer close(events)

		stream := p.client.Messages.NewStreaming(ctx, params)

		var currentTool *ToolCall
		var currentToolInput strings.Builder

		for stream.Next() {
			event := stream.Current()
			switch evt := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if block, ok := evt.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
					currentTool = &ToolCall{ID: block.ID, Name: block.Name}
					currentToolInput.Reset()
				}
			case anthropic.ContentBlockDeltaEvent:
				switch delta := evt.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					select {
					case events <- StreamEvent{Type: EventText, Text: delta.Text}:
					case <-ctx.Done():
						return
					}
				case anthropic.InputJSONDelta:
					if currentTool != nil {
						currentToolInput.WriteString(delta.PartialJSON)
					}
				}
			case anthropic.ContentBlockStopEvent:
				if currentTool != nil {
					currentTool.Arguments = currentToolInput.String()
					if currentTool.Arguments == "" {
						currentTool.Arguments = "{}"
					}
					select {
					case events <- StreamEvent{Type: EventToolCall, ToolCall: currentTool}:
					case <-ctx.Done():
						return
					}
					currentTool = nil
				}
			}
		}

		if err := stream.Err(); err != nil {
			events <- StreamEvent{Type: EventError, Err: err}
			return
		}
		events <- StreamEvent{Type: EventDone}
	}()

	return events, nil
}

func toAnthropicMessages(history []Turn) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			var blocks []anthropic.ContentBlockParamUnion
			if turn.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
			}
			for _, tr := range turn.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if turn.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
			}
			for _, tc := range turn.ToolCalls {
				var input any
				_ = json.Unmarshal([]byte(tc.Arguments), &input)
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	return out
}

func toAnthropicTools(tools []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: convertSchema(t.InputSchema),
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return out
}

func convertSchema(params map[string]interface{}) anthropic.ToolInputSchemaParam {
	schema := anthropic.ToolInputSchemaParam{}
	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = props
	}
	switch required := params["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		for _, r := range required {
			if rs, ok := r.(string); ok {
				schema.Required = append(schema.Required, rs)
			}
		}
	}
	return schema
}

var errNoAPIKey = fmt.Errorf("ANTHROPIC_API_KEY not configured")

// ErrNoAPIKey is returned by the chat orchestrator when no provider is
// configured, mirroring the reference's "chat will not work" warning path
// turned into an explicit error instead of a silently disabled feature.
func ErrNoAPIKey() error { return errNoAPIKey }
