// Package apierr defines the error kinds shared across the server's HTTP,
// JSON-RPC, and sync surfaces so handlers can map them to status codes by
// their Kind instead of string matching.
package apierr

import "fmt"

// Kind is one of the error kinds from the error handling design.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindUnauthorized    Kind = "unauthorized"
	KindRateLimited     Kind = "rate_limited"
	KindPolicyDenied    Kind = "policy_denied"
	KindNotFound        Kind = "not_found"
	KindUpstreamFailure Kind = "upstream_failure"
	KindPartialFailure  Kind = "partial_failure"
	KindInternal        Kind = "internal"
)

// Error wraps a Kind with a human-readable, client-safe message.
type Error struct {
	Kind    Kind
	Message string
	// RetryAfter is only meaningful for KindRateLimited.
	RetryAfter int
	// Cause is the underlying error, if any; not exposed to clients.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Internal(cause error) *Error        { return Wrap(KindInternal, "internal error", cause) }

func RateLimited(retryAfter int, limitKind string) *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded: " + limitKind, RetryAfter: retryAfter}
}

func PolicyDenied(reason string) *Error {
	return New(KindPolicyDenied, reason)
}
