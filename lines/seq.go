// SPDX-License-Identifier: MIT

package lines

import (
	"io"
	"iter"
)

// All returns the remaining lines of r as a single-pass sequence.  A read failure is yielded
// once as the final element with an empty Line; end-of-stream just ends the sequence, as does
// ranging over a reader whose failure was already reported.
func (r *Reader) All() iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		for {
			l, err := r.Next()
			if err == io.EOF || err == ErrFailed {
				return
			}
			if err != nil {
				yield(Line{}, err)
				return
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}

// Strings is All over a new Reader on input, with line content converted to strings.
func Strings(input io.Reader, opts ...Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for l, err := range NewReader(input, opts...).All() {
			if !yield(string(l.Text), err) {
				return
			}
		}
	}
}

// Count consumes input and returns the number of lines in it.  On a read failure it returns the
// lines counted so far along with the error.
func Count(input io.Reader, opts ...Option) (int, error) {
	n := 0
	for _, err := range NewReader(input, opts...).All() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
