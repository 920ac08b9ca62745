// SPDX-License-Identifier: MIT

/*
Package lines splits a byte stream into lines, pulling from the stream only as far as needed to
produce the next line.

A Reader never closes the stream it reads from and never buffers more than the current partial
line plus one read chunk, so it is suitable for consuming a pipe on standard input:

	rd := lines.NewReader(os.Stdin)
	for {
		l, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", l.Text)
	}

Lines have no length limit; the accumulation buffer grows as needed, unlike bufio.Scanner which
fails on tokens longer than its maximum buffer size.  Line content is treated as opaque bytes.
*/
package lines

import (
	"bytes"
	"io"

	"github.com/vmihailenco/bufpool"
)

const (
	// DefaultChunkSize is the number of bytes requested per Read unless WithChunkSize is given.
	DefaultChunkSize = 4096

	// A stream that keeps returning (0, nil) is assumed broken after this many reads, the same
	// limit bufio uses.
	maxConsecutiveEmptyReads = 100
)

// Mode selects whether the terminator is kept in line content.
type Mode int

const (
	// Trimmed strips the terminator from line content.
	Trimmed Mode = iota
	// Raw keeps the terminator as the last byte of a terminated line.
	Raw
)

func (m Mode) String() string {
	switch m {
	case Trimmed:
		return "trimmed"
	case Raw:
		return "raw"
	}
	return "unknown"
}

// State is the position of a Reader in its life cycle.  Exhausted and Failed are terminal.
type State int

const (
	// Reading is the initial state; more lines may follow.
	Reading State = iota
	// Exhausted means end-of-stream was seen and every line has been returned.
	Exhausted
	// Failed means a read on the stream failed and the failure has been returned.
	Failed
)

func (s State) String() string {
	switch s {
	case Reading:
		return "reading"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Line is one line of input.  Text belongs to the caller and is not reused by the Reader.
// Terminated is false only for a final line that ended at end-of-stream without a terminator.
type Line struct {
	Text       []byte
	Terminated bool
}

func (l Line) String() string {
	return string(l.Text)
}

var linePool bufpool.Pool

// Reader splits a stream into Lines.  It is not safe for concurrent use.
type Reader struct {
	rd     io.Reader
	term   byte
	mode   Mode
	dropCR bool

	chunk      []byte
	start, end int
	rerr       error // deferred until chunk[start:end] is used up

	acc   *bufpool.Buffer
	state State
}

// Option configures a Reader in NewReader.
type Option func(*Reader)

// WithTerminator sets the byte ending each line.  The default is '\n'.
func WithTerminator(b byte) Option {
	return func(r *Reader) { r.term = b }
}

// WithMode selects Trimmed (the default) or Raw line content.
func WithMode(m Mode) Option {
	return func(r *Reader) { r.mode = m }
}

// WithDropCR makes Trimmed mode also remove a single '\r' preceding a '\n' terminator.
func WithDropCR() Option {
	return func(r *Reader) { r.dropCR = true }
}

// WithChunkSize sets how many bytes are requested per Read on the stream.  It does not limit
// line length.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.chunk = make([]byte, n)
		}
	}
}

// NewReader returns a Reader on rd.  The Reader never closes rd.
func NewReader(rd io.Reader, opts ...Option) *Reader {
	r := &Reader{
		rd:   rd,
		term: '\n',
		mode: Trimmed,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.chunk == nil {
		r.chunk = make([]byte, DefaultChunkSize)
	}
	return r
}

// State returns the current state of r.
func (r *Reader) State() State {
	return r.state
}

// Next returns the next line.  At end-of-stream it returns io.EOF, and keeps returning io.EOF on
// every later call.  A failing Read on the stream is returned once as a *ReadError; every call
// after that returns ErrFailed.  Next does not retry failed reads.
func (r *Reader) Next() (Line, error) {
	switch r.state {
	case Exhausted:
		return Line{}, io.EOF
	case Failed:
		return Line{}, ErrFailed
	}

	if r.acc == nil {
		r.acc = linePool.Get()
	}

	empty := 0
	for {
		if r.start < r.end {
			seg := r.chunk[r.start:r.end]
			if i := bytes.IndexByte(seg, r.term); i >= 0 {
				r.acc.Write(seg[:i+1])
				r.start += i + 1
				return r.take(true), nil
			}
			r.acc.Write(seg)
			r.start = r.end
		}

		if r.rerr != nil {
			return r.finish()
		}

		n, err := r.rd.Read(r.chunk)
		if n < 0 || n > len(r.chunk) {
			n, err = 0, errNegativeRead
		}
		r.start, r.end = 0, n
		switch {
		case err != nil:
			r.rerr = err
		case n == 0:
			empty++
			if empty >= maxConsecutiveEmptyReads {
				r.rerr = io.ErrNoProgress
			}
		default:
			empty = 0
		}
	}
}

// finish handles the stream's terminal condition once no buffered bytes remain.
func (r *Reader) finish() (Line, error) {
	if r.rerr == io.EOF {
		if r.acc.Len() > 0 {
			l := r.take(false)
			r.terminate(Exhausted)
			return l, nil
		}
		r.terminate(Exhausted)
		return Line{}, io.EOF
	}

	err := newReadError(r.rerr, r.acc.Len())
	r.terminate(Failed)
	return Line{}, err
}

func (r *Reader) take(terminated bool) Line {
	b := r.acc.Bytes()
	if terminated && r.mode == Trimmed {
		b = b[:len(b)-1]
		if r.dropCR && r.term == '\n' && len(b) > 0 && b[len(b)-1] == '\r' {
			b = b[:len(b)-1]
		}
	}
	text := make([]byte, len(b))
	copy(text, b)
	r.acc.Reset()
	return Line{Text: text, Terminated: terminated}
}

func (r *Reader) terminate(s State) {
	r.state = s
	r.rerr = nil
	r.start, r.end = 0, 0
	r.chunk = nil
	if r.acc != nil {
		linePool.Put(r.acc)
		r.acc = nil
	}
}
