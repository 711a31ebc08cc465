package survey

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the traversal distinguishes.
// Callers match with errors.Is.
var (
	// ErrStructuralNotFound means the survey root, navigation region or
	// another structurally expected element is absent. Fatal when it blocks
	// forward progress, a skip when it only blocks an optional capture.
	ErrStructuralNotFound = errors.New("survey structure not found")

	// ErrValidationBlocked means the platform rejected navigation because of
	// unmet field requirements, and the dismiss-refill-retry cycle did not
	// clear it.
	ErrValidationBlocked = errors.New("navigation blocked by validation")

	// ErrTransitionStuck means page content did not change after navigation.
	// Always fatal; pages gathered so far are preserved.
	ErrTransitionStuck = errors.New("page transition stuck")
)

// FillError records the failure of a single field fill after all fallback
// strategies were exhausted. It is logged and recorded per field; it never
// aborts the page-level fill loop.
type FillError struct {
	QuestionNumber string
	Kind           InputKind
	Strategy       string
	Err            error
}

func (e *FillError) Error() string {
	return fmt.Sprintf("fill failed for question %q (%s, last strategy %s): %v",
		e.QuestionNumber, e.Kind, e.Strategy, e.Err)
}

func (e *FillError) Unwrap() error { return e.Err }
