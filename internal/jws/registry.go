package jws

// registry.go resolves algorithm identifiers to implementations
//
// the built-in identifiers are a closed set dispatched by a static switch, so
// the hot path never compiles or evaluates a pattern. custom algorithms are
// an explicit extension point: callers register a regex with named capture
// groups and a factory that builds an implementation from the captures.
//
// resolution order is built-ins first, then custom bindings in registration
// order - the first match wins, and overlapping patterns are resolved by that
// order rather than being rejected. Accepting only explicitly bound
// identifiers is what keeps an attacker-chosen header from downgrading the
// algorithm: an identifier without a binding always fails resolution.

import (
	"crypto"
	"crypto/elliptic"
	"fmt"
	"regexp"
	"sync"
)

// Factory builds a custom algorithm implementation from the named capture
// groups extracted from the matched identifier.
type Factory func(captures map[string]string) (Algorithm, error)

// binding pairs a compiled identifier pattern with the factory invoked when
// the pattern matches. Immutable after registration.
type binding struct {
	pattern *regexp.Regexp
	factory Factory
}

// Registry maps algorithm identifiers to implementations.
//
// Register is expected to be called during initialization, before concurrent
// sign/verify traffic. A RWMutex guards the custom binding list regardless,
// so late registration is safe (single writer, many readers).
type Registry struct {
	mu     sync.RWMutex
	custom []binding
}

// NewRegistry creates a registry containing only the built-in algorithms.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a custom binding, ordered after the built-ins and after any
// earlier custom registrations.
//
// The pattern is a regular expression matched against the start of the
// identifier; named capture groups are passed to the factory. Patterns are
// not checked for overlap - first match wins.
func (r *Registry) Register(pattern string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("factory is required")
	}

	// anchor at the start so a pattern cannot match mid-identifier
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return fmt.Errorf("invalid algorithm pattern %q: %w", pattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = append(r.custom, binding{pattern: re, factory: factory})

	return nil
}

// Resolve returns the implementation bound to the identifier.
//
// Built-ins are checked first, then custom bindings in registration order.
// When nothing matches the returned error has code
// ErrCodeAlgorithmNotImplemented and carries the exact identifier.
func (r *Registry) Resolve(identifier string) (Algorithm, error) {
	if alg, ok := resolveBuiltin(identifier); ok {
		return alg, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.custom {
		match := b.pattern.FindStringSubmatch(identifier)
		if match == nil {
			continue
		}

		captures := make(map[string]string)
		for i, name := range b.pattern.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			captures[name] = match[i]
		}

		alg, err := b.factory(captures)
		if err != nil {
			return nil, fmt.Errorf("algorithm factory for %q failed: %w", identifier, err)
		}
		return alg, nil
	}

	return nil, NewAlgorithmNotImplementedError(identifier)
}

// resolveBuiltin dispatches the closed set of built-in identifiers.
//
// Implementations are constructed per call: they are cheap (a hash binding
// and, for ECDSA, a curve reference) and constructing fresh instances keeps
// the built-in path free of shared state.
func resolveBuiltin(identifier string) (Algorithm, bool) {
	switch identifier {
	case AlgHS256:
		return NewHMACAlgorithm(crypto.SHA256), true
	case AlgHS384:
		return NewHMACAlgorithm(crypto.SHA384), true
	case AlgHS512:
		return NewHMACAlgorithm(crypto.SHA512), true
	case AlgRS256:
		return NewRSAAlgorithm(crypto.SHA256), true
	case AlgRS384:
		return NewRSAAlgorithm(crypto.SHA384), true
	case AlgRS512:
		return NewRSAAlgorithm(crypto.SHA512), true
	case AlgES256:
		return NewECDSAAlgorithm(crypto.SHA256, elliptic.P256()), true
	case AlgES384:
		return NewECDSAAlgorithm(crypto.SHA384, elliptic.P384()), true
	case AlgES512:
		return NewECDSAAlgorithm(crypto.SHA512, elliptic.P521()), true
	}
	return nil, false
}

// BuiltinAlgorithms returns the identifiers resolvable without registration.
func BuiltinAlgorithms() []string {
	return []string{
		AlgHS256, AlgHS384, AlgHS512,
		AlgRS256, AlgRS384, AlgRS512,
		AlgES256, AlgES384, AlgES512,
	}
}
