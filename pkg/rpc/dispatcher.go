package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memexlabs/prometheus/pkg/audit"
	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/validator"
)

// Dispatcher handles the JSON-RPC method set for one already-resolved
// instance. Auth, rate-limiting, and the request-size check are the HTTP
// layer's responsibility (pkg/api) — by the time Handle runs, the caller
// has already resolved instanceName to an *instance.Instance and decided
// the request is allowed through.
type Dispatcher struct {
	validator *validator.Validator
	audit     *audit.Logger

	mu       sync.Mutex
	sessions map[string]string // session id -> instance name
}

// NewDispatcher builds a dispatcher. validator may be nil to skip AI
// policy validation entirely (e.g. in tests), in which case every
// tools/call is allowed.
func NewDispatcher(v *validator.Validator, auditLog *audit.Logger) *Dispatcher {
	return &Dispatcher{validator: v, audit: auditLog, sessions: make(map[string]string)}
}

// Handle parses body as a JSON-RPC request and dispatches it against inst.
// Returns nil for notifications (no id) — the caller responds 202. A parse
// failure still returns a Response (id null, Parse error), since the
// transport layer should reflect that as a JSON-RPC error body, not a bare
// HTTP error.
func (d *Dispatcher) Handle(ctx context.Context, inst *instance.Instance, clientIP string, body []byte) *Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		resp := errorResponse(nil, CodeParseError, "Parse error")
		return &resp
	}

	d.audit.Event("REQUEST",
		audit.F("instance", inst.Name), audit.F("ip", clientIP),
		audit.F("method", req.Method), audit.F("id", string(req.ID)))

	if req.IsNotification() {
		return nil
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req, inst)
	case "tools/list":
		return d.handleToolsList(req, inst)
	case "tools/call":
		return d.handleToolsCall(ctx, req, inst, clientIP)
	case "ping":
		resp := resultResponse(req.ID, map[string]interface{}{})
		return &resp
	default:
		resp := errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
		return &resp
	}
}

// initializeResult is result.{protocolVersion,capabilities,serverInfo} for
// a successful initialize response.
type initializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      map[string]interface{} `json:"serverInfo"`
}

func (d *Dispatcher) handleInitialize(req Request, inst *instance.Instance) *Response {
	sessionID := uuid.New().String()
	d.mu.Lock()
	d.sessions[sessionID] = inst.Name
	d.mu.Unlock()

	result := initializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]interface{}{"tools": map[string]interface{}{"listChanged": false}},
		ServerInfo: map[string]interface{}{
			"name":    fmt.Sprintf("%s-%s", ServerName, inst.Name),
			"version": ServerVersion,
		},
	}
	resp := resultResponse(req.ID, result)
	resp.SessionID = sessionID
	return &resp
}

func (d *Dispatcher) handleToolsList(req Request, inst *instance.Instance) *Response {
	resp := resultResponse(req.ID, map[string]interface{}{"tools": inst.GetToolDefinitions()})
	return &resp
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req Request, inst *instance.Instance, clientIP string) *Response {
	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp := errorResponse(req.ID, CodeInvalidParams, "Invalid params")
			return &resp
		}
	}
	if params.Name == "" {
		resp := errorResponse(req.ID, CodeInvalidParams, "Missing tool name")
		return &resp
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	if d.validator != nil {
		decision := d.validator.Validate(ctx, params.Name, inst.Name, params.Arguments)
		if !decision.Allow {
			d.audit.Event("AI_DENY",
				audit.F("instance", inst.Name), audit.F("ip", clientIP),
				audit.F("tool", params.Name), audit.F("reason", decision.Reason))
			resp := resultResponse(req.ID, toolErrorResult(map[string]interface{}{
				"error":  "Request denied by security policy",
				"reason": decision.Reason,
				"tool":   params.Name,
			}))
			return &resp
		}
	}

	start := time.Now()
	result, err := inst.CallTool(ctx, params.Name, params.Arguments)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		resp := resultResponse(req.ID, toolErrorResult(map[string]interface{}{"error": err.Error()}))
		return &resp
	}

	d.audit.Event("TOOL_OK",
		audit.F("instance", inst.Name), audit.F("ip", clientIP),
		audit.F("tool", params.Name), audit.F("duration_ms", durationMs))

	argsJSON, _ := json.Marshal(params.Arguments)
	_ = d.audit.Usage(time.Now(), inst.Name, params.Name, len(argsJSON), resultCount(result), durationMs)

	body, _ := json.MarshalIndent(result, "", "  ")
	resp := resultResponse(req.ID, toolCallResult{
		Content: []contentBlock{{Type: "text", Text: string(body)}},
		IsError: false,
	})
	return &resp
}

func toolErrorResult(payload map[string]interface{}) toolCallResult {
	body, _ := json.Marshal(payload)
	return toolCallResult{Content: []contentBlock{{Type: "text", Text: string(body)}}, IsError: true}
}

// resultCount mirrors the reference's result-count heuristic for the usage
// log: prefer an explicit total_results/count field, else the length of a
// results slice, else 0.
func resultCount(result map[string]interface{}) int {
	if v, ok := result["total_results"].(int); ok {
		return v
	}
	if v, ok := result["count"].(int); ok {
		return v
	}
	if v, ok := result["results"]; ok {
		switch slice := v.(type) {
		case []interface{}:
			return len(slice)
		}
	}
	return 0
}
