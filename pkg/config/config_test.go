package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndParsesInstances(t *testing.T) {
	t.Setenv("INSTANCES", "personal, work ,garage")
	t.Setenv("CHROMA_PORT", "8000")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"personal", "work", "garage"}, cfg.Instances)
	assert.Equal(t, "localhost", cfg.ChromaHost)
	assert.Equal(t, "http://localhost:8000", cfg.ChromaBaseURL())
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("INSTANCES", "personal")
	t.Setenv("CHROMA_PORT", "not-a-number")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRequiresAtLeastOneInstance(t *testing.T) {
	t.Setenv("INSTANCES", "")

	_, err := Load("")
	assert.Error(t, err)
}
