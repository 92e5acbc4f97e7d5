package dsv

import (
	"bufio"
	"fmt"
	"io"
)

// Writer writes DSV records to an output stream. Output is buffered;
// call Flush when done (WriteAll does). I/O errors are sticky: once one
// occurs every later call returns it, and Error reports it. The Writer
// never closes the underlying stream.
type Writer struct {
	opts options
	w    *bufio.Writer
	sep  string
	buf  []byte

	header   *Header
	wroteRow bool
	err      error
}

// NewWriter returns a Writer emitting to w with the given options.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Writer{
		opts: o,
		w:    bufio.NewWriter(w),
		sep:  o.lineBreak.sequence(),
	}, nil
}

// WriteHeader writes the header record and fixes the arity and column
// names for all subsequent rows. It may be called at most once, and only
// before any row; violating either is a usage error, as are blank or
// duplicate names.
func (w *Writer) WriteHeader(names ...string) error {
	if w.err != nil {
		return w.err
	}
	if w.header != nil {
		return ErrHeaderWritten
	}
	if w.wroteRow {
		return ErrHeaderAfterRows
	}
	h, err := newHeader(names)
	if err != nil {
		return fmt.Errorf("dsv: invalid header: %w", err)
	}
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = NewField(name)
	}
	if err := w.writeRecord(fields); err != nil {
		return err
	}
	w.header = h
	return nil
}

// WriteFields writes one record from cells in positional order. With a
// written header, short records are padded with null cells up to the
// header arity and over-long records are rejected.
func (w *Writer) WriteFields(fields ...Field) error {
	if w.err != nil {
		return w.err
	}
	if w.header != nil {
		n := w.header.Len()
		if len(fields) > n {
			return fmt.Errorf("dsv: record has %d fields, header has %d: %w", len(fields), n, ErrFieldCount)
		}
		if len(fields) < n {
			padded := make([]Field, n)
			copy(padded, fields)
			fields = padded
		}
	}
	if err := w.writeRecord(fields); err != nil {
		return err
	}
	w.wroteRow = true
	return nil
}

// WriteRow writes one row. When both the Writer and the row carry a
// header, cells are realigned by column name: each of the Writer's
// columns is looked up in the row, and columns the row does not have get
// the null token. Unbound rows are written positionally.
func (w *Writer) WriteRow(row Row) error {
	if w.err != nil {
		return w.err
	}
	if w.header != nil && row.Header() != nil {
		fields := make([]Field, w.header.Len())
		for i, name := range w.header.names {
			if f, ok := row.Lookup(name); ok {
				fields[i] = f
			}
		}
		if err := w.writeRecord(fields); err != nil {
			return err
		}
		w.wroteRow = true
		return nil
	}
	return w.WriteFields(row.fields...)
}

// WriteMap writes one record from named cells. A header must have been
// written; header columns absent from m get the null token and keys not
// in the header are ignored.
func (w *Writer) WriteMap(m map[string]Field) error {
	if w.err != nil {
		return w.err
	}
	if w.header == nil {
		return fmt.Errorf("dsv: WriteMap requires a header")
	}
	fields := make([]Field, w.header.Len())
	for i, name := range w.header.names {
		fields[i] = m[name]
	}
	if err := w.writeRecord(fields); err != nil {
		return err
	}
	w.wroteRow = true
	return nil
}

// WriteAll writes every row, then flushes.
func (w *Writer) WriteAll(rows []Row) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered output to the underlying stream.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error returns the first I/O error seen by the Writer, if any.
func (w *Writer) Error() error { return w.err }

func (w *Writer) writeRecord(fields []Field) error {
	w.buf = appendRecord(w.buf[:0], fields, &w.opts)
	w.buf = append(w.buf, w.sep...)
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
		return err
	}
	return nil
}
