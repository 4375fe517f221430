// Package chat implements C10: the LLM tool-calling loop, its SSE framing,
// and the generate_page side-effect tool, for both single-instance and
// cross-instance chat.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/llm"
)

// maxIterations bounds the tool-calling loop, per spec.md 4.10.
const maxIterations = 10

// toolResultPreviewLen caps the tool_result event's result_preview field.
const toolResultPreviewLen = 200

// crossInstanceSeparator joins an instance name and tool name in
// cross-instance mode, e.g. "walmart__get-stats".
const crossInstanceSeparator = "__"

// Orchestrator drives one chat turn: builds the system prompt and tool
// set for the session's mode, runs the provider's streaming tool-call
// loop, executes requested tools by routing them to the right instance
// (or the shared generate_page side effect), and emits SSE events as it
// goes.
type Orchestrator struct {
	Store     *Store
	Provider  llm.ChatProvider
	Instances *instance.Manager
	PagesDir  string
	log       zerolog.Logger
}

// NewOrchestrator builds an orchestrator. provider may be nil, in which
// case every chat turn immediately emits an error event — mirroring the
// reference's "ANTHROPIC_API_KEY not configured" degraded path instead of
// refusing to start.
func NewOrchestrator(store *Store, provider llm.ChatProvider, instances *instance.Manager, pagesDir string, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{Store: store, Provider: provider, Instances: instances, PagesDir: pagesDir, log: log}
}

// Stream runs userMessage against session, writing SSE events to w until
// the turn completes, the iteration cap is hit, or ctx is cancelled (the
// client disconnected).
func (o *Orchestrator) Stream(ctx context.Context, w http.ResponseWriter, session *Session, userMessage string) {
	sw, ok := newSSEWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	_ = sw.send("session", map[string]string{"session_id": session.ID})

	if o.Provider == nil {
		_ = sw.send("error", map[string]string{"error": llm.ErrNoAPIKey().Error()})
		return
	}

	o.Store.AppendTurn(session.ID, llm.Turn{Role: llm.RoleUser, Text: userMessage})

	systemPrompt := o.systemPrompt(session)
	toolSpecs := o.toolSpecs(session)

	for iteration := 0; iteration < maxIterations; iteration++ {
		if ctx.Err() != nil {
			return
		}

		history := o.Store.History(session.ID)
		events, err := o.Provider.StreamChat(ctx, systemPrompt, history, toolSpecs)
		if err != nil {
			_ = sw.send("error", map[string]string{"error": err.Error()})
			return
		}

		var text strings.Builder
		var toolCalls []llm.ToolCall
		var streamErr error

		for ev := range events {
			switch ev.Type {
			case llm.EventText:
				text.WriteString(ev.Text)
				if err := sw.send("text", map[string]string{"text": ev.Text}); err != nil {
					return
				}
			case llm.EventToolCall:
				toolCalls = append(toolCalls, *ev.ToolCall)
				_ = sw.send("tool_call", map[string]string{"id": ev.ToolCall.ID, "name": ev.ToolCall.Name})
			case llm.EventError:
				streamErr = ev.Err
			case llm.EventDone:
			}
		}
		if streamErr != nil {
			_ = sw.send("error", map[string]string{"error": streamErr.Error()})
			return
		}

		o.Store.AppendTurn(session.ID, llm.Turn{Role: llm.RoleAssistant, Text: text.String(), ToolCalls: toolCalls})

		if len(toolCalls) == 0 {
			_ = sw.send("done", map[string]interface{}{})
			return
		}

		results := o.executeToolCalls(ctx, sw, session, toolCalls)
		o.Store.AppendTurn(session.ID, llm.Turn{Role: llm.RoleUser, ToolResults: results})
	}

	_ = sw.send("done", map[string]interface{}{})
}

func (o *Orchestrator) executeToolCalls(ctx context.Context, sw *sseWriter, session *Session, toolCalls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, 0, len(toolCalls))
	for _, tc := range toolCalls {
		content, isError := o.executeTool(ctx, session, tc)

		preview := content
		if len(preview) > toolResultPreviewLen {
			preview = preview[:toolResultPreviewLen]
		}
		_ = sw.send("tool_result", map[string]interface{}{"id": tc.ID, "name": tc.Name, "result_preview": preview})

		if tc.Name == generatePageToolName && !isError {
			var parsed map[string]interface{}
			if json.Unmarshal([]byte(content), &parsed) == nil {
				_ = sw.send("page_created", map[string]interface{}{"url": parsed["url"], "title": parsed["title"]})
			}
		}

		results = append(results, llm.ToolResult{ToolCallID: tc.ID, Content: content, IsError: isError})
	}
	return results
}

// executeTool routes one tool call: generate_page is a shared side
// effect scoped to the session's home instance; every other tool is
// dispatched to the instance named by the call (its own name in
// single-instance mode, the <instance>__ prefix stripped in
// cross-instance mode).
func (o *Orchestrator) executeTool(ctx context.Context, session *Session, tc llm.ToolCall) (string, bool) {
	args := map[string]interface{}{}
	if tc.Arguments != "" {
		_ = json.Unmarshal([]byte(tc.Arguments), &args)
	}

	if tc.Name == generatePageToolName {
		result, err := generatePage(o.PagesDir, session.Instance, args)
		return encodeToolResult(result, err)
	}

	targetInstance := session.Instance
	toolName := tc.Name
	if session.CrossInstance {
		prefix, rest, ok := splitPrefixedTool(tc.Name)
		if !ok {
			return encodeToolResult(nil, fmt.Errorf("unrecognized cross-instance tool: %s", tc.Name))
		}
		targetInstance, toolName = prefix, rest
	}

	inst, ok := o.Instances.Get(targetInstance)
	if !ok {
		return encodeToolResult(nil, fmt.Errorf("unknown instance: %s", targetInstance))
	}
	result, err := inst.CallTool(ctx, toolName, args)
	return encodeToolResult(map[string]interface{}(result), err)
}

func splitPrefixedTool(name string) (instanceName, tool string, ok bool) {
	idx := strings.Index(name, crossInstanceSeparator)
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+len(crossInstanceSeparator):], true
}

func encodeToolResult(result map[string]interface{}, err error) (string, bool) {
	if err != nil {
		b, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(b), true
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error()), true
	}
	return string(b), false
}

func (o *Orchestrator) systemPrompt(session *Session) string {
	if session.CrossInstance {
		return fmt.Sprintf(
			"You are Memex, an AI assistant with access to screen capture history across multiple instances: %s. "+
				"You can search OCR text from screenshots, view activity patterns, generate summaries, and create "+
				"standalone web pages. Each tool is prefixed with the instance it operates on. When asked about "+
				"activity across instances, query each relevant instance separately and synthesize. When "+
				"referencing screenshots, include the screenshot path if available in results.",
			strings.Join(o.Instances.List(), ", "))
	}
	return fmt.Sprintf(
		"You are Memex, an AI assistant with access to screen capture history for the '%s' instance. "+
			"You can search OCR text from screenshots, view activity patterns, generate daily summaries, and "+
			"create standalone web pages. When you find relevant results, mention timestamps and screen names "+
			"to help the user understand context.",
		session.Instance)
}

func (o *Orchestrator) toolSpecs(session *Session) []llm.ToolSpec {
	var specs []llm.ToolSpec
	if session.CrossInstance {
		for _, name := range o.Instances.List() {
			inst, ok := o.Instances.Get(name)
			if !ok {
				continue
			}
			for _, t := range inst.GetToolDefinitions() {
				specs = append(specs, llm.ToolSpec{
					Name:        name + crossInstanceSeparator + t.Name,
					Description: t.Description,
					InputSchema: t.InputSchema,
				})
			}
		}
	} else if inst, ok := o.Instances.Get(session.Instance); ok {
		for _, t := range inst.GetToolDefinitions() {
			specs = append(specs, llm.ToolSpec{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
		}
	}
	specs = append(specs, generatePageToolSpec())
	return specs
}
