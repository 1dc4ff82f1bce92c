package director

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing is returned when planning or generation is attempted without a credential.
var ErrCredentialMissing = errors.New("no API key configured: set GEMINI_API_KEY or provide a key")

// PlanningFailure wraps any failure of the planning call or of its output.
type PlanningFailure struct {
	Err error
}

func (e *PlanningFailure) Error() string {
	return fmt.Sprintf("planning failed: %v", e.Err)
}

func (e *PlanningFailure) Unwrap() error { return e.Err }

// GenerationFailure is returned when image generation fails, after the fallback retry if one was made.
type GenerationFailure struct {
	Model             string
	FallbackAttempted bool
	Err               error
}

func (e *GenerationFailure) Error() string {
	if e.FallbackAttempted {
		return fmt.Sprintf("generation failed with fallback %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("generation failed with %s: %v", e.Model, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// ContentBlocked is returned when a BLOCKED plan is submitted for generation.
type ContentBlocked struct {
	Reason string
}

func (e *ContentBlocked) Error() string {
	if e.Reason == "" {
		return "request blocked by the director"
	}
	return "request blocked by the director: " + e.Reason
}
