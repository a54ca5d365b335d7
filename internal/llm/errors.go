package llm

import "fmt"

// AuthenticationError indicates the provider rejected the credential.
// Callers may refresh the credential and retry once; see Generate.
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

// RateLimitError indicates the provider refused the request because the
// account is over quota. It is a transport failure with specific user
// guidance attached.
type RateLimitError struct {
	Status  int
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d): check your quota and billing details: %s", e.Status, e.Message)
}

// TransportError indicates a network or provider failure that is not an
// authentication or quota problem. It is not retried automatically.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
