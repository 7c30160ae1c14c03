package agent

import (
	"context"
	"errors"
	"fmt"
)

// CompletionClient is the boundary to the external text-completion
// capability. Implementations never guarantee schema compliance of the
// returned text; structured extraction is the caller's concern.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error)
}

// Provider failure classes surfaced after retries are exhausted.
var (
	ErrProviderTimeout     = errors.New("completion provider timed out")
	ErrProviderUnavailable = errors.New("completion provider unavailable")
)

// ProviderError wraps a provider failure class with the attempt count so the
// caller can report how hard the gateway tried.
type ProviderError struct {
	Attempts int
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
