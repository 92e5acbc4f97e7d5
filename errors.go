package dsv

import (
	"errors"
	"fmt"
	"reflect"
)

// Errors reported through ParseError. Use errors.Is to distinguish them.
var (
	// ErrBareQuote means a quote character appeared inside an unquoted
	// field.
	ErrBareQuote = errors.New(`bare " in non-quoted field`)

	// ErrUnterminatedQuote means a quoted field was still open at the
	// end of the record.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")

	// ErrTrailingContent means a character other than the delimiter
	// followed a closing quote.
	ErrTrailingContent = errors.New(`unexpected character after closing "`)

	// ErrFieldCount means a record's field count does not match the
	// header arity.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrBlankLine means a zero-length record was found while the
	// blank-line policy is set to error.
	ErrBlankLine = errors.New("blank line")

	// ErrBlankName means a header cell was null, empty, or whitespace.
	ErrBlankName = errors.New("blank header name")

	// ErrDuplicateName means two header cells carry the same name.
	ErrDuplicateName = errors.New("duplicate header name")

	// ErrRecordTooLarge means a single record exceeded the opt-in
	// MaxRecordSize cap. The stream position inside the oversized
	// record is undefined, so this error is never skippable.
	ErrRecordTooLarge = errors.New("record exceeds configured size limit")
)

// Writer usage errors. These report API misuse, not bad data.
var (
	// ErrHeaderWritten is returned by a second WriteHeader call.
	ErrHeaderWritten = errors.New("dsv: header already written")

	// ErrHeaderAfterRows is returned when WriteHeader follows a row.
	ErrHeaderAfterRows = errors.New("dsv: header must be written before any rows")
)

// ParseError describes an error found in the input. Line is the 1-based
// ordinal of the physical record it occurred on; Column, when non-zero,
// is the 1-based character offset within that record.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("dsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("dsv: parse error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// A MarshalerError represents an error from calling a MarshalField or
// MarshalText method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "dsv: error calling marshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// An UnmarshalerError represents an error from calling an UnmarshalField
// or UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "dsv: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
