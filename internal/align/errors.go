package align

import (
	"errors"
	"fmt"
)

// ErrNoCandidates marks a run in which every configured backend failed.
var ErrNoCandidates = errors.New("no backend produced a usable candidate")

// BackendError wraps a single backend failure. It is recoverable: the
// generator drops the backend and records a warning.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// JudgeError is fatal: silently promoting an unjudged candidate would be a
// correctness regression, so there is no fallback.
type JudgeError struct {
	Backend string
	Err     error
}

func (e *JudgeError) Error() string {
	return fmt.Sprintf("judge %s: %v", e.Backend, e.Err)
}

func (e *JudgeError) Unwrap() error { return e.Err }
