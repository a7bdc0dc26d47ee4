package tabular

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a load attempt against a missing input file.
var ErrNotFound = errors.New("input file not found")

// FormatError reports unparseable tabular content with its position.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed tabular file %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed tabular file %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
