package dsv

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/KimNorgaard/go-dsv/internal/scanner"
)

// Reader reads DSV records from an input stream as a single forward-only
// cursor: pull rows with Read until io.EOF. The Reader adds no
// concurrency and no blocking beyond the underlying stream's own reads,
// and it never closes the stream; the caller owns its lifetime.
type Reader struct {
	opts options
	sc   *scanner.Scanner

	header      *Header
	initialized bool
	line        int
	err         error
}

// NewReader returns a Reader consuming r with the given options.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	sc := scanner.New(r, o.quote)
	sc.MaxRecordBytes = o.maxRecord
	return &Reader{opts: o, sc: sc}, nil
}

// Line returns the number of physical records consumed so far, counting
// skipped, blank, comment, and invalid ones. Records with embedded
// newlines count once.
func (r *Reader) Line() int { return r.line }

// Header returns the header, consuming it from the input first if
// needed. It is idempotent and returns nil when the Reader was not
// configured with UseHeader.
func (r *Reader) Header() (*Header, error) {
	if err := r.init(); err != nil {
		return nil, err
	}
	return r.header, nil
}

// Read returns the next data row. At the end of the input it returns
// io.EOF. After any other error the Reader halts: every subsequent call
// returns that same error. The only recovery mechanism is the
// SkipInvalidRows policy, applied before an error surfaces.
func (r *Reader) Read() (Row, error) {
	if err := r.init(); err != nil {
		return Row{}, err
	}
	for {
		rec, err := r.next()
		if err != nil {
			if err == io.EOF {
				return Row{}, io.EOF
			}
			r.err = err
			return Row{}, err
		}

		if rec == "" {
			if r.opts.errorOnBlank {
				perr := &ParseError{Line: r.line, Err: ErrBlankLine}
				r.err = perr
				return Row{}, perr
			}
			continue
		}
		if r.isComment(rec) {
			continue
		}

		fields, perr := tokenize(rec, &r.opts)
		if perr != nil {
			perr.Line = r.line
			if r.skip(perr) {
				continue
			}
			r.err = perr
			return Row{}, perr
		}

		if r.header != nil && len(fields) != r.header.Len() {
			perr := &ParseError{Line: r.line, Err: ErrFieldCount}
			if r.skip(perr) {
				continue
			}
			r.err = perr
			return Row{}, perr
		}

		return Row{fields: fields, header: r.header, line: r.line}, nil
	}
}

// ReadAll reads every remaining row. A final io.EOF is not reported as
// an error.
func (r *Reader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// init runs the lazy one-time startup: skip the configured leading
// records, then locate and validate the header when one is expected.
// Failures here, header errors included, are never skippable.
func (r *Reader) init() error {
	if r.err != nil {
		return r.err
	}
	if r.initialized {
		return nil
	}
	r.initialized = true
	if err := r.doInit(); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *Reader) doInit() error {
	for i := 0; i < r.opts.skipRows; i++ {
		if _, err := r.next(); err != nil {
			return err
		}
	}
	if !r.opts.useHeader {
		return nil
	}
	for {
		rec, err := r.next()
		if err != nil {
			return err
		}
		if rec == "" {
			if r.opts.errorOnBlank {
				return &ParseError{Line: r.line, Err: ErrBlankLine}
			}
			continue
		}
		if r.isComment(rec) {
			continue
		}

		fields, perr := tokenize(rec, &r.opts)
		if perr != nil {
			perr.Line = r.line
			return perr
		}
		names := make([]string, len(fields))
		for i, f := range fields {
			if !f.Valid {
				return &ParseError{Line: r.line, Err: fmt.Errorf("column %d: %w", i+1, ErrBlankName)}
			}
			names[i] = f.String
		}
		h, err := newHeader(names)
		if err != nil {
			return &ParseError{Line: r.line, Err: err}
		}
		r.header = h
		return nil
	}
}

// next fetches one raw record and advances the line counter. io.EOF and
// read errors pass through unchanged; an oversized record becomes a
// ParseError carrying its ordinal.
func (r *Reader) next() (string, error) {
	rec, err := r.sc.Scan()
	if err != nil {
		if errors.Is(err, scanner.ErrTooLarge) {
			r.line++
			return "", &ParseError{Line: r.line, Err: ErrRecordTooLarge}
		}
		return "", err
	}
	r.line++
	return rec, nil
}

func (r *Reader) isComment(rec string) bool {
	if r.opts.comment == 0 || rec == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(rec)
	return first == r.opts.comment
}

// skip reports whether perr is discarded under the skip-invalid policy,
// invoking the callback when one is installed.
func (r *Reader) skip(perr *ParseError) bool {
	if !r.opts.skipInvalid {
		return false
	}
	if r.opts.onSkipped != nil {
		r.opts.onSkipped(perr.Line, perr)
	}
	return true
}
