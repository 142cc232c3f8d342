package detection

import (
	"errors"
	"fmt"
)

// ErrMalformedTensor is matched by every DecodeError via errors.Is.
var ErrMalformedTensor = errors.New("detection: malformed tensor")

// DecodeError reports a model output that does not have the expected layout.
type DecodeError struct {
	Shape  []int
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if len(e.Shape) == 0 {
		return fmt.Sprintf("detection: decode: %s", e.Reason)
	}
	return fmt.Sprintf("detection: decode %v: %s", e.Shape, e.Reason)
}

// Is reports whether target is ErrMalformedTensor.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedTensor
}
