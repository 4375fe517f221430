// Package tools implements the fixed Tool Registry (C4): a closed set of
// pure functions over the record store (C1) and vector index (C2), each
// described by a JSON schema and dispatched by name. The dispatch table is
// closed by design — spec.md's Design Notes call for a tagged variant /
// dispatch table in place of dynamic method lookup on tool names.
package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/store"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// Deps is what every tool needs: the instance's record store and vector
// index (the index may be nil, meaning "unavailable" — tools that can
// degrade gracefully must check for this, per spec.md 4.4's fallback
// requirement for search-screenshots).
type Deps struct {
	Store *store.Store
	Index vectorindex.Index
	Log   zerolog.Logger
}

// Result is the structured, JSON-marshalable output of a tool call. Every
// tool echoes its input per spec.md 4.4 ("self-describing for chat
// rendering") under the "query" key alongside its own result fields.
type Result map[string]interface{}

// Tool is one entry in the fixed registry: a JSON-schema-described function
// over Deps. Execute never panics; internal failures are converted into an
// error which Instance.CallTool returns as-is and the JSON-RPC dispatcher
// turns into a structured isError result, per the Design Note replacing exceptions-as-control-flow.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Execute     func(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error)
}

// Registry is the closed, fixed set of tools exposed per instance.
type Registry struct {
	tools map[string]*Tool
	order []string
}

// NewRegistry builds the registry containing exactly the 8 tools named in
// spec.md 4.4. This is a closed set; there is no Register method exposed
// for runtime extension.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]*Tool)}
	for _, t := range []*Tool{
		searchScreenshotsTool(),
		getStatsTool(),
		activityGraphTool(),
		timeRangeSummaryTool(),
		sampleTimeRangeTool(),
		vectorSearchWindowedTool(),
		searchRecentRelevantTool(),
		dailySummaryTool(),
	} {
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Get resolves a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns tools in registration order (stable for tools/list output).
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Call dispatches by name against the fixed table, returning a structured
// error result rather than propagating a panic for unknown tools — the
// JSON-RPC layer maps this to result.isError=true, not an RPC error.
func (r *Registry) Call(ctx context.Context, deps Deps, name string, args map[string]interface{}) (Result, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t.Execute(ctx, deps, args)
}
