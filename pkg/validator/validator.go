// Package validator implements C7: before a tools/call is dispatched, ask a
// small local LLM whether the request is permitted under a natural-language
// policy. Fails closed on timeout and on any response the LLM returns that
// doesn't parse as the expected allow/reason shape.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Decision is the validator's allow/deny verdict.
type Decision struct {
	Allow  bool
	Reason string
}

// Deny reasons that don't come from the LLM's own stated reason.
const (
	ReasonTimeout   = "validator_timeout"
	ReasonMalformed = "validator_malformed_response"
)

// LLM is the minimal surface the validator needs: ask a question, get text
// back. Kept separate from any concrete provider so tests can supply a
// fake without a network dependency.
type LLM interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DefaultTimeout is the validator's fail-closed deadline per spec.md 4.7.
const DefaultTimeout = 2 * time.Second

// Validator is stateless beyond its loaded policy text, safe for
// concurrent use across every instance's tool calls.
type Validator struct {
	llm     LLM
	policy  string
	timeout time.Duration
	log     zerolog.Logger
}

// New builds a validator, loading policy text from policyPath at startup.
func New(llm LLM, policyPath string, timeout time.Duration, log zerolog.Logger) (*Validator, error) {
	policyBytes, err := os.ReadFile(policyPath)
	if err != nil {
		return nil, fmt.Errorf("validator: read policy %s: %w", policyPath, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Validator{llm: llm, policy: string(policyBytes), timeout: timeout, log: log}, nil
}

// ReloadPolicy re-reads the policy file, per spec.md 4.7's optional
// SIGHUP-reload contract. The caller owns wiring this to a signal handler.
func (v *Validator) ReloadPolicy(policyPath string) error {
	policyBytes, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("validator: reload policy %s: %w", policyPath, err)
	}
	v.policy = string(policyBytes)
	return nil
}

type llmResponse struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

// Validate asks the backing LLM whether toolName/arguments is permitted for
// instance under the loaded policy. Any failure to get a well-formed
// allow/reason answer within the timeout resolves to deny — this is a
// security gate, erring open is not an option.
func (v *Validator) Validate(ctx context.Context, toolName, instance string, arguments map[string]interface{}) Decision {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	argsJSON, err := json.Marshal(arguments)
	if err != nil {
		argsJSON = []byte("{}")
	}

	system := v.policy + "\n\nRespond with a single JSON object: {\"allow\": boolean, \"reason\": string}. No other text."
	user := fmt.Sprintf("instance=%s tool=%s arguments=%s", instance, toolName, string(argsJSON))

	raw, err := v.llm.Ask(ctx, system, user)
	if err != nil {
		v.log.Warn().Err(err).Str("tool", toolName).Str("instance", instance).Msg("validator call failed")
		return Decision{Allow: false, Reason: ReasonTimeout}
	}

	decision, ok := parseDecision(raw)
	if !ok {
		v.log.Warn().Str("tool", toolName).Str("instance", instance).Str("raw", raw).Msg("validator returned malformed output")
		return Decision{Allow: false, Reason: ReasonMalformed}
	}
	return decision
}

// parseDecision extracts the {"allow","reason"} object from raw, tolerating
// surrounding prose by locating the first '{' and last '}'.
func parseDecision(raw string) (Decision, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return Decision{}, false
	}
	var resp llmResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return Decision{}, false
	}
	return Decision{Allow: resp.Allow, Reason: resp.Reason}, true
}
