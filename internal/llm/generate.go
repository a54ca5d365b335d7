package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generate calls the generator and, on an authentication failure, refreshes
// the credential through creds and retries exactly once. A second rejection,
// or a missing refreshed credential, is surfaced as a TransportError so the
// caller does not loop.
func Generate(ctx context.Context, gen TextGenerator, creds Refresher, prompt string, jsonOnly bool) (ContentResponse, error) {
	resp, err := gen.GenerateContent(ctx, prompt, jsonOnly)

	var authErr *AuthenticationError
	if err == nil || !errors.As(err, &authErr) {
		return resp, err
	}

	setter, ok := gen.(APIKeySetter)
	if creds == nil || !ok {
		return ContentResponse{}, &TransportError{Message: "credential rejected and no refresh available", Err: err}
	}

	key, refreshErr := creds.Refresh()
	if refreshErr != nil {
		return ContentResponse{}, &TransportError{Message: "credential refresh failed", Err: refreshErr}
	}
	if key == "" {
		return ContentResponse{}, &TransportError{Message: "credential refresh returned no key", Err: err}
	}
	setter.SetAPIKey(key)

	resp, err = gen.GenerateContent(ctx, prompt, jsonOnly)
	if err != nil && errors.As(err, &authErr) {
		return ContentResponse{}, &TransportError{Message: fmt.Sprintf("refreshed credential also rejected (status %d)", authErr.Status), Err: err}
	}
	return resp, err
}
