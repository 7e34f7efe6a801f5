package compress

import (
	"errors"
	"fmt"
)

// ErrConverterFailed is matched by every *ConverterError.
var ErrConverterFailed = errors.New("geometry converter failed")

// ConverterError describes one failed converter invocation. The asset's
// artifacts have been rolled back by the time it is returned.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConverterError struct {
	ID          string
	ExitCode    int // -1 when the process did not exit normally
	Diagnostics string
	cause       error
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("convert %s: exit code %d: %v", e.ID, e.ExitCode, e.cause)
}

func (e *ConverterError) Unwrap() error { return e.cause }

func (e *ConverterError) Is(target error) bool { return target == ErrConverterFailed }
