package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindRateLimited   Kind = "rate-limited"
	KindModelNotFound Kind = "model-not-found"
	KindInvalidKey    Kind = "invalid-api-key"
	KindSafetyBlocked Kind = "safety-blocked"
	KindCanceled      Kind = "canceled"
	KindUnknown       Kind = "unknown"
)

type ProviderError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider call failed (%s, model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func IsKind(err error, k Kind) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == k
	}
	return false
}

// Classify wraps a raw SDK error into a ProviderError. The provider does not
// expose a stable error taxonomy, so classification is substring matching on
// the message; keeping it in one place means one function to fix when the
// upstream wording changes.
func Classify(model string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: KindCanceled, Model: model, Err: err}
	}

	msg := strings.ToLower(err.Error())
	kind := KindUnknown
	switch {
	case strings.Contains(msg, "context canceled"):
		kind = KindCanceled
	case strings.Contains(msg, "not found") || strings.Contains(msg, "is not supported"):
		kind = KindModelNotFound
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource has been exhausted") ||
		strings.Contains(msg, "resource_exhausted"):
		kind = KindRateLimited
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "permission denied"):
		kind = KindInvalidKey
	case strings.Contains(msg, "safety") || strings.Contains(msg, "blocked"):
		kind = KindSafetyBlocked
	}
	return &ProviderError{Kind: kind, Model: model, Err: err}
}
