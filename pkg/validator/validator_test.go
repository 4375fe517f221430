package validator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	delay    time.Duration
}

func (f *fakeLLM) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func writePolicy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Deny anything that deletes data."), 0o600))
	return path
}

func TestValidateAllows(t *testing.T) {
	llm := &fakeLLM{response: `{"allow": true, "reason": "read-only tool"}`}
	v, err := New(llm, writePolicy(t), 0, zerolog.Nop())
	require.NoError(t, err)

	d := v.Validate(context.Background(), "get-stats", "personal", map[string]interface{}{})
	assert.True(t, d.Allow)
	assert.Equal(t, "read-only tool", d.Reason)
}

func TestValidateDeniesOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream down")}
	v, err := New(llm, writePolicy(t), 0, zerolog.Nop())
	require.NoError(t, err)

	d := v.Validate(context.Background(), "get-stats", "personal", nil)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonTimeout, d.Reason)
}

func TestValidateDeniesOnTimeout(t *testing.T) {
	llm := &fakeLLM{response: `{"allow": true}`, delay: 50 * time.Millisecond}
	v, err := New(llm, writePolicy(t), 10*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	d := v.Validate(context.Background(), "get-stats", "personal", nil)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonTimeout, d.Reason)
}

func TestValidateDeniesOnMalformedResponse(t *testing.T) {
	llm := &fakeLLM{response: "sure, go ahead!"}
	v, err := New(llm, writePolicy(t), 0, zerolog.Nop())
	require.NoError(t, err)

	d := v.Validate(context.Background(), "get-stats", "personal", nil)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonMalformed, d.Reason)
}

func TestValidateToleratesSurroundingProse(t *testing.T) {
	llm := &fakeLLM{response: "Here is my answer:\n{\"allow\": false, \"reason\": \"policy violation\"}\nThanks."}
	v, err := New(llm, writePolicy(t), 0, zerolog.Nop())
	require.NoError(t, err)

	d := v.Validate(context.Background(), "delete-everything", "personal", nil)
	assert.False(t, d.Allow)
	assert.Equal(t, "policy violation", d.Reason)
}
