package menu

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the caller cancels a generation run.
// No partial menu is exposed on cancellation.
var ErrCancelled = errors.New("menu generation cancelled")

// ErrGenerationInFlight is returned when Generate is called while
// another run owned by the same Generator has not finished.
var ErrGenerationInFlight = errors.New("a menu generation run is already in flight")

// ValidationError reports constraints that were rejected before any
// network call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid planning constraints: " + e.Message
}

// GenerationError reports which day of a run failed and why. A failed
// day aborts the whole run; partial results are discarded.
type GenerationError struct {
	Day string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("menu generation failed on %s: %v", e.Day, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
