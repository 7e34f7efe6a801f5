package metadata

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// FieldSep separates the fields of a table line.
const FieldSep = "|"

// LookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "shift_jis" or "windows-1252".
func LookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown table encoding %q: %w", label, err)
	}
	return enc, nil
}

// Reader reads one pipe-delimited table, decoding it to UTF-8 on the fly.
type Reader struct {
	s    *bufio.Scanner
	name string
	line int
}

// NewReader wraps r. A nil enc means the input is already UTF-8.
func NewReader(r io.Reader, name string, enc encoding.Encoding) *Reader {
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{s: s, name: name}
}

// Next returns the fields of the next non-blank line, or io.EOF.
func (r *Reader) Next() ([]string, error) {
	for r.s.Scan() {
		r.line++
		text := r.s.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		return strings.Split(text, FieldSep), nil
	}
	if err := r.s.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.name, err)
	}
	return nil, io.EOF
}

// Line is the 1-based number of the line last returned by Next.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) malformed(reason string) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformedLine, r.name, r.line, reason)
}
