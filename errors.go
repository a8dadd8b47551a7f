package devtools

import (
	"errors"
	"fmt"
)

var (
	ErrMissingStateSource = errors.New("devtools: store does not expose its state")
	ErrUnknownMethod      = errors.New("devtools: unknown method")
	ErrNilStore           = errors.New("devtools: store is nil")
)

// AttachError reports why a store could not be bridged.
type AttachError struct {
	Store string
	Err   error
}

func (e *AttachError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("devtools: attach %q: %v", e.Store, e.Err)
}

func (e *AttachError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// panicError converts a recovered value into an error.
func panicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("devtools: recovered panic: %w", err)
	}
	return fmt.Errorf("devtools: recovered panic: %v", recovered)
}
