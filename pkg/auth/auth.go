// Package auth implements C5: bearer-token lookup and per-instance
// authorization. Tokens map to an allowed set of instance names plus a
// scope (read/sync/admin), loaded once at startup from a key-value file.
package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Scope is the permission level a token carries.
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeSync  Scope = "sync"
	ScopeAdmin Scope = "admin"
)

// Allows reports whether this scope permits the requested scope's action.
// admin allows everything; sync allows sync and read; read allows only read.
func (s Scope) Allows(requested Scope) bool {
	if s == ScopeAdmin {
		return true
	}
	if s == requested {
		return true
	}
	if s == ScopeSync && requested == ScopeRead {
		return true
	}
	return false
}

// tokenEntry is one line of the loaded key file.
type tokenEntry struct {
	scope        Scope
	instances    map[string]bool
	allInstances bool
}

// Store holds every loaded token, keyed by its literal bearer value.
// Lookups are read-only after Load, so no locking is needed.
type Store struct {
	tokens map[string]tokenEntry
}

// Load reads a key-value file at path. Each non-blank, non-comment line has
// the form:
//
//	<token>|<scope>|<instances>
//
// where <instances> is a comma-separated list of instance names, or "*" for
// every instance. Lines starting with "#" are comments. The reserved token
// "prometheus" conventionally carries scope=sync across every edge instance
// and is loaded the same way as any other entry — there is no special-cased
// token string in code, only convention over what operators put in the file.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auth: open %s: %w", path, err)
	}
	defer f.Close()

	tokens := make(map[string]tokenEntry)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("auth: %s:%d: expected token|scope|instances", path, lineNo)
		}
		token := strings.TrimSpace(parts[0])
		scope := Scope(strings.TrimSpace(parts[1]))
		if scope != ScopeRead && scope != ScopeSync && scope != ScopeAdmin {
			return nil, fmt.Errorf("auth: %s:%d: unknown scope %q", path, lineNo, scope)
		}
		instancesRaw := strings.TrimSpace(parts[2])
		entry := tokenEntry{scope: scope, instances: make(map[string]bool)}
		if instancesRaw == "*" {
			entry.allInstances = true
		} else {
			for _, name := range strings.Split(instancesRaw, ",") {
				name = strings.TrimSpace(name)
				if name != "" {
					entry.instances[name] = true
				}
			}
		}
		if token == "" {
			return nil, fmt.Errorf("auth: %s:%d: empty token", path, lineNo)
		}
		tokens[token] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("auth: reading %s: %w", path, err)
	}
	return &Store{tokens: tokens}, nil
}

// Authenticate checks whether token grants at least the requested scope on
// instance. Returns a machine-readable reason on failure, per spec.md 4.5.
func (s *Store) Authenticate(token, instance string, requested Scope) (ok bool, reason string) {
	if token == "" {
		return false, "missing_token"
	}
	entry, found := s.tokens[token]
	if !found {
		return false, "invalid_token"
	}
	if !entry.allInstances && !entry.instances[instance] {
		return false, "instance_not_allowed"
	}
	if !entry.scope.Allows(requested) {
		return false, "insufficient_scope"
	}
	return true, ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. Returns "" if the header doesn't match that shape.
func BearerToken(authorizationHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorizationHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authorizationHeader, prefix))
}

// ClientIP resolves the caller's IP per spec.md 6: CF-Connecting-IP, then
// X-Forwarded-For (first entry), then the given socket peer address.
func ClientIP(cfConnectingIP, xForwardedFor, remoteAddr string) string {
	if cfConnectingIP != "" {
		return cfConnectingIP
	}
	if xForwardedFor != "" {
		first := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	return remoteAddr
}
