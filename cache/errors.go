package cache

import (
	"errors"
	"fmt"
)

// ErrCompute matches every error produced by a failed compute function.
var ErrCompute = errors.New("cache computation failed")

// ComputeError wraps the failure of a compute function. The same error value
// is delivered to every caller waiting on the key.
type ComputeError struct {
	Key Key
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCompute, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

func (e *ComputeError) Is(target error) bool { return target == ErrCompute }
