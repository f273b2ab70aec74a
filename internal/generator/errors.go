package generator

import (
	"errors"
	"fmt"
)

// GeneratorError wraps any failure at the generator boundary. Every
// error produced by this package is recoverable: the caller degrades
// to the deterministic correlation-engine scripts and flags the
// response as a fallback instead of failing the request.
type GeneratorError struct {
	Op          string
	Err         error
	Recoverable bool
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %s: %v", e.Op, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the caller may fall back instead of
// failing.
func IsRecoverable(err error) bool {
	var ge *GeneratorError
	if errors.As(err, &ge) {
		return ge.Recoverable
	}
	return false
}

func recoverable(op string, err error) *GeneratorError {
	return &GeneratorError{Op: op, Err: err, Recoverable: true}
}
