// Package instanceconfig implements C14: the single JSON file an edge
// machine keeps at ~/.memex/instance.json, declaring which hosting mode it
// runs in and the host/port/tunnel coordinates that go with that mode.
// C13 (pkg/edgesync) consults a loaded Config to decide between a direct
// and a tunneled transport and to resolve that transport's target.
package instanceconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// HostingMode selects how an edge machine reaches its vector index: a
// local Chroma process on the same box, a Jetson appliance on the LAN, or
// a remote central server reached directly or through a tunnel.
type HostingMode string

const (
	HostingLocal  HostingMode = "local"
	HostingJetson HostingMode = "jetson"
	HostingRemote HostingMode = "remote"
)

var validate = validator.New()

// Config is the parsed contents of instance.json. Only the fields for the
// active HostingMode are consulted; the others are carried so a machine can
// be reconfigured between modes without losing its other settings.
type Config struct {
	InstanceName string      `json:"instance_name" validate:"required"`
	HostingMode  HostingMode `json:"hosting_mode" validate:"required,oneof=local jetson remote"`

	LocalChromaHost string `json:"local_chroma_host,omitempty"`
	LocalChromaPort int    `json:"local_chroma_port,omitempty"`
	LocalMCPPort    int    `json:"local_mcp_port,omitempty"`

	JetsonHost       string `json:"jetson_host,omitempty"`
	JetsonChromaPort int    `json:"jetson_chroma_port,omitempty"`
	JetsonMCPPort    int    `json:"jetson_mcp_port,omitempty"`
	JetsonTunnelURL  string `json:"jetson_tunnel_url,omitempty"`

	RemoteHost       string `json:"remote_host,omitempty"`
	RemoteChromaPort int    `json:"remote_chroma_port,omitempty"`
	RemoteMCPPort    int    `json:"remote_mcp_port,omitempty"`
	RemoteTunnelURL  string `json:"remote_tunnel_url,omitempty"`
}

// defaults mirrors settings.py's Settings field defaults, applied before
// overrides from the file are read.
func defaults() Config {
	return Config{
		HostingMode:      HostingJetson,
		InstanceName:     "personal",
		LocalChromaHost:  "localhost",
		LocalChromaPort:  8000,
		JetsonChromaPort: 8000,
		RemoteChromaPort: 8000,
	}
}

// Load reads and validates instance.json at path. A missing file is not an
// error: it returns the same built-in defaults settings.py falls back to
// when ~/.memex/instance.json doesn't exist yet.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read instance config: %w", err)
	}

	// A file must name its instance: the "personal" default applies only
	// when no file exists.
	cfg.InstanceName = ""
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse instance config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate instance config: %w", err)
	}
	return cfg, nil
}

// Endpoint is the resolved chroma_host:chroma_port pair and optional MCP
// port for the config's active hosting mode.
type Endpoint struct {
	ChromaHost string
	ChromaPort int
	MCPPort    int
}

// ResolveEndpoint picks the host/port fields matching c.HostingMode.
func (c Config) ResolveEndpoint() Endpoint {
	switch c.HostingMode {
	case HostingLocal:
		host := c.LocalChromaHost
		if host == "" {
			host = "localhost"
		}
		return Endpoint{ChromaHost: host, ChromaPort: c.LocalChromaPort, MCPPort: c.LocalMCPPort}
	case HostingRemote:
		return Endpoint{ChromaHost: c.RemoteHost, ChromaPort: c.RemoteChromaPort, MCPPort: c.RemoteMCPPort}
	default: // jetson
		return Endpoint{ChromaHost: c.JetsonHost, ChromaPort: c.JetsonChromaPort, MCPPort: c.JetsonMCPPort}
	}
}

// TunnelURL returns the tunnel URL for the active hosting mode, or "" if
// none is configured — local mode never has one.
func (c Config) TunnelURL() string {
	switch c.HostingMode {
	case HostingJetson:
		return c.JetsonTunnelURL
	case HostingRemote:
		return c.RemoteTunnelURL
	default:
		return ""
	}
}

// UseTunnel reports whether C13 should pick the tunneled HTTP transport
// over a direct connection to the vector index.
func (c Config) UseTunnel() bool {
	return c.TunnelURL() != ""
}
