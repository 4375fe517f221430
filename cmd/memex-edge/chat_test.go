package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatEndpointSingleInstance(t *testing.T) {
	chatServerURL = "http://localhost:8080/"
	chatCross = false
	cfg.InstanceName = "personal"
	assert.Equal(t, "http://localhost:8080/personal/chat", chatEndpoint())
}

func TestChatEndpointCrossInstance(t *testing.T) {
	chatServerURL = "http://localhost:8080"
	chatCross = true
	assert.Equal(t, "http://localhost:8080/chat", chatEndpoint())
}

func TestPrintSSEFrameCapturesSessionID(t *testing.T) {
	chatSessionID = ""
	printSSEFrame("session", `{"session_id":"abc123"}`)
	assert.Equal(t, "abc123", chatSessionID)
}

func TestStreamSSEParsesMultipleFrames(t *testing.T) {
	chatSessionID = ""
	body := "event: session\ndata: {\"session_id\":\"s1\"}\n\n" +
		"event: text\ndata: {\"text\":\"hi\"}\n\n" +
		"event: done\ndata: {}\n\n"

	err := streamSSE(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "s1", chatSessionID)
}
