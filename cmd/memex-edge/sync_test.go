package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/edgesync"
	"github.com/memexlabs/prometheus/pkg/instanceconfig"
)

func withCfgAndToken(t *testing.T, c instanceconfig.Config, token string) {
	t.Helper()
	originalCfg, originalToken := cfg, apiToken
	cfg, apiToken = c, token
	t.Cleanup(func() { cfg, apiToken = originalCfg, originalToken })
}

func TestBuildTransportDirectWhenNoTunnel(t *testing.T) {
	withCfgAndToken(t, instanceconfig.Config{
		InstanceName:    "personal",
		HostingMode:     instanceconfig.HostingLocal,
		LocalChromaHost: "localhost",
		LocalChromaPort: 8000,
	}, "")

	transport, err := buildTransport()
	require.NoError(t, err)
	_, ok := transport.(*edgesync.DirectTransport)
	assert.True(t, ok)
}

func TestBuildTransportTunneledRequiresToken(t *testing.T) {
	withCfgAndToken(t, instanceconfig.Config{
		InstanceName:    "personal",
		HostingMode:     instanceconfig.HostingRemote,
		RemoteTunnelURL: "https://example.ngrok.io",
	}, "")

	_, err := buildTransport()
	assert.Error(t, err)
}

func TestBuildTransportTunneledWithToken(t *testing.T) {
	withCfgAndToken(t, instanceconfig.Config{
		InstanceName:    "personal",
		HostingMode:     instanceconfig.HostingRemote,
		RemoteTunnelURL: "https://example.ngrok.io",
	}, "secret")

	transport, err := buildTransport()
	require.NoError(t, err)
	_, ok := transport.(*edgesync.TunneledTransport)
	assert.True(t, ok)
}
