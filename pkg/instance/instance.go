// Package instance implements C3: a single Memex instance binds one edge
// machine's record store and vector index to the fixed tool registry (C4)
// and exposes them as MCP tool definitions plus a dispatch entrypoint.
package instance

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/store"
	"github.com/memexlabs/prometheus/pkg/tools"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// ToolDefinition is the MCP-shaped tool descriptor returned by
// tools/list, one per registry entry, prefixed with this instance's name so
// a chat client browsing several instances can tell tools apart.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Config describes one instance's backing storage, set once at server
// startup from the INSTANCES env var (see pkg/config).
type Config struct {
	Name           string
	RecordDir      string
	PagesDir       string
	CollectionName string
}

// Instance is a single edge machine's data, tools, and generated pages.
type Instance struct {
	Name     string
	PagesDir string

	Store    *store.Store
	Index    vectorindex.Index
	registry *tools.Registry
	log      zerolog.Logger
}

// New builds an instance, opening its record store eagerly (cheap: just a
// directory) but taking the vector index as a dependency rather than
// constructing it here — the index may be the in-memory fake in tests, a
// live HTTP client in production, or nil when the backend is unreachable at
// startup, per spec.md 4.2's "index unavailable" degraded mode.
func New(cfg Config, index vectorindex.Index, log zerolog.Logger) (*Instance, error) {
	s, err := store.New(cfg.RecordDir, log.With().Str("instance", cfg.Name).Logger())
	if err != nil {
		return nil, fmt.Errorf("instance %q: open store: %w", cfg.Name, err)
	}
	return &Instance{
		Name:     cfg.Name,
		PagesDir: cfg.PagesDir,
		Store:    s,
		Index:    index,
		registry: tools.NewRegistry(),
		log:      log.With().Str("instance", cfg.Name).Logger(),
	}, nil
}

// GetToolDefinitions returns this instance's tool set for tools/list,
// labelling each description with the instance name the way the reference
// implementation prefixes "[NAME] ..." in its tool descriptions.
func (i *Instance) GetToolDefinitions() []ToolDefinition {
	list := i.registry.List()
	out := make([]ToolDefinition, 0, len(list))
	for _, t := range list {
		out = append(out, ToolDefinition{
			Name:        t.Name,
			Description: fmt.Sprintf("[%s] %s", strings.ToUpper(i.Name), t.Description),
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// CallTool dispatches a tool call against this instance's store and index.
// Unknown tool names and per-tool argument errors are both returned as plain
// errors; the JSON-RPC layer (C9) is responsible for turning those into
// result.isError=true rather than a transport-level error.
func (i *Instance) CallTool(ctx context.Context, name string, args map[string]interface{}) (tools.Result, error) {
	deps := tools.Deps{Store: i.Store, Index: i.Index, Log: i.log}
	return i.registry.Call(ctx, deps, name, args)
}

// HasTool reports whether name is one of this instance's registered tools.
func (i *Instance) HasTool(name string) bool {
	_, ok := i.registry.Get(name)
	return ok
}
