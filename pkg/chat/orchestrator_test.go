package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/llm"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// scriptedProvider replays a fixed sequence of responses, one per
// StreamChat call, so a test can drive the tool-calling loop
// deterministically without a real LLM.
type scriptedProvider struct {
	responses [][]llm.StreamEvent
	calls     int
}

func (p *scriptedProvider) StreamChat(ctx context.Context, systemPrompt string, history []llm.Turn, tools []llm.ToolSpec) (<-chan llm.StreamEvent, error) {
	idx := p.calls
	p.calls++
	ch := make(chan llm.StreamEvent, len(p.responses[idx])+1)
	for _, ev := range p.responses[idx] {
		ch <- ev
	}
	ch <- llm.StreamEvent{Type: llm.EventDone}
	close(ch)
	return ch, nil
}

func newTestManager(t *testing.T) *instance.Manager {
	t.Helper()
	m, err := instance.NewManager(t.TempDir(), t.TempDir(), []string{"personal"},
		func(string) vectorindex.Index { return vectorindex.NewMemory() }, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestStreamTerminatesWithoutToolCalls(t *testing.T) {
	provider := &scriptedProvider{responses: [][]llm.StreamEvent{
		{{Type: llm.EventText, Text: "hello there"}},
	}}
	orch := NewOrchestrator(NewStore(), provider, newTestManager(t), t.TempDir(), zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", false)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "hi")

	body := rec.Body.String()
	assert.Contains(t, body, "event: session")
	assert.Contains(t, body, "event: text")
	assert.Contains(t, body, "event: done")
	assert.Equal(t, 1, provider.calls)
}

func TestStreamExecutesToolCallAndContinues(t *testing.T) {
	provider := &scriptedProvider{responses: [][]llm.StreamEvent{
		{{Type: llm.EventToolCall, ToolCall: &llm.ToolCall{ID: "t1", Name: "get-stats", Arguments: "{}"}}},
		{{Type: llm.EventText, Text: "done analyzing"}},
	}}
	orch := NewOrchestrator(NewStore(), provider, newTestManager(t), t.TempDir(), zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", false)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "how am I doing")

	body := rec.Body.String()
	assert.Contains(t, body, "event: tool_call")
	assert.Contains(t, body, "event: tool_result")
	assert.Contains(t, body, "event: done")
	assert.Equal(t, 2, provider.calls)
}

func TestStreamGeneratePageEmitsPageCreated(t *testing.T) {
	pagesDir := t.TempDir()
	provider := &scriptedProvider{responses: [][]llm.StreamEvent{
		{{Type: llm.EventToolCall, ToolCall: &llm.ToolCall{
			ID: "t1", Name: "generate_page",
			Arguments: `{"title":"Notes","content_markdown":"hi"}`,
		}}},
		{{Type: llm.EventText, Text: "made the page"}},
	}}
	orch := NewOrchestrator(NewStore(), provider, newTestManager(t), pagesDir, zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", false)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "write this up")

	body := rec.Body.String()
	assert.Contains(t, body, "event: page_created")
	assert.Contains(t, body, `"url":"/pages/notes"`)
}

func TestStreamCrossInstanceRoutesPrefixedTool(t *testing.T) {
	provider := &scriptedProvider{responses: [][]llm.StreamEvent{
		{{Type: llm.EventToolCall, ToolCall: &llm.ToolCall{ID: "t1", Name: "personal__get-stats", Arguments: "{}"}}},
		{{Type: llm.EventText, Text: "synthesized"}},
	}}
	orch := NewOrchestrator(NewStore(), provider, newTestManager(t), t.TempDir(), zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", true)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "cross instance query")

	body := rec.Body.String()
	assert.Contains(t, body, "event: tool_result")
	assert.NotContains(t, body, `"error"`, "a valid cross-instance prefixed tool call must not error")
}

func TestStreamUnknownInstanceInCrossModeErrorsInToolResult(t *testing.T) {
	provider := &scriptedProvider{responses: [][]llm.StreamEvent{
		{{Type: llm.EventToolCall, ToolCall: &llm.ToolCall{ID: "t1", Name: "ghost__get-stats", Arguments: "{}"}}},
		{{Type: llm.EventText, Text: "done"}},
	}}
	orch := NewOrchestrator(NewStore(), provider, newTestManager(t), t.TempDir(), zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", true)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "query")

	assert.True(t, strings.Contains(rec.Body.String(), "unknown instance"))
}

func TestStreamWithoutProviderEmitsError(t *testing.T) {
	orch := NewOrchestrator(NewStore(), nil, newTestManager(t), t.TempDir(), zerolog.Nop())
	session := orch.Store.GetOrCreate("", "personal", false)

	rec := httptest.NewRecorder()
	orch.Stream(context.Background(), rec, session, "hi")

	assert.Contains(t, rec.Body.String(), "event: error")
}
