// SPDX-License-Identifier: MIT

package lines

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFailed is returned by Next on every call after a *ReadError has been returned.
	ErrFailed = errors.New("lines: reader failed")

	errNegativeRead = errors.New("lines: reader returned invalid count from Read")
)

// ReadError reports that the underlying stream failed.  Pending is the number of bytes of an
// incomplete line that had been read before the failure; they are dropped, not returned as a
// line.
type ReadError struct {
	Err     error
	Pending int
}

func newReadError(cause error, pending int) *ReadError {
	return &ReadError{Err: errors.WithStack(cause), Pending: pending}
}

func (e *ReadError) Error() string {
	if e.Pending > 0 {
		return fmt.Sprintf("lines: read failed with %d bytes pending: %v", e.Pending, e.Err)
	}
	return "lines: read failed: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Cause returns the stream's own error, for use with errors.Cause.
func (e *ReadError) Cause() error {
	return errors.Cause(e.Err)
}

// Format prints the stack of the original failure with %+v.
func (e *ReadError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v", e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}
