// Package scanner splits a character stream into raw records.
//
// A record ends at a CR, LF, or CRLF terminator occurring outside a quoted
// span; terminators inside quoted spans are ordinary content and are
// preserved verbatim. The scanner tracks quoting as a bare parity flip on
// every quote rune — it does not interpret escaping, which is the field
// tokenizer's job. The two layers agree because doubled quotes flip the
// parity twice.
package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrTooLarge is returned by Scan when a single record grows past the
// configured byte cap.
var ErrTooLarge = errors.New("record exceeds maximum size")

// Scanner reads raw records from an input stream. It never closes the
// underlying reader.
type Scanner struct {
	r     *bufio.Reader
	quote rune
	buf   bytes.Buffer

	// MaxRecordBytes caps the accumulated size of a single record.
	// Zero, the default, means no limit: a record is bounded only by
	// the input itself.
	MaxRecordBytes int
}

// New creates a Scanner reading from r. Quote spans are delimited by the
// quote rune.
func New(r io.Reader, quote rune) *Scanner {
	return &Scanner{
		r:     bufio.NewReader(r),
		quote: quote,
	}
}

// Scan returns the next raw record without its terminator. At the end of
// the stream any accumulated content becomes the final record, terminator
// or not; the call after that returns io.EOF. Read errors other than
// io.EOF are returned as-is.
func (s *Scanner) Scan() (string, error) {
	s.buf.Reset()
	inQuote := false
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			if err == io.EOF {
				if s.buf.Len() > 0 {
					return s.buf.String(), nil
				}
				return "", io.EOF
			}
			return "", err
		}

		if r == s.quote {
			inQuote = !inQuote
		}

		if !inQuote {
			switch r {
			case '\n':
				return s.buf.String(), nil
			case '\r':
				// CRLF is one terminator; the peek works across
				// buffer refills because the reader buffers ahead.
				if s.peekRune() == '\n' {
					if _, _, err := s.r.ReadRune(); err != nil && err != io.EOF {
						return "", err
					}
				}
				return s.buf.String(), nil
			}
		}

		s.buf.WriteRune(r)
		if s.MaxRecordBytes > 0 && s.buf.Len() > s.MaxRecordBytes {
			return "", ErrTooLarge
		}
	}
}

func (s *Scanner) peekRune() rune {
	// Prioritize the returned slice, as Peek can return both bytes and an error
	bytes, _ := s.r.Peek(utf8.UTFMax)
	if len(bytes) == 0 {
		return 0
	}
	r, _ := utf8.DecodeRune(bytes)
	return r
}
