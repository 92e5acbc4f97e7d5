package dsv

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"
)

// LineBreak selects the record terminator a Writer emits.
type LineBreak int

const (
	// LF terminates records with "\n". The default.
	LF LineBreak = iota
	// CRLF terminates records with "\r\n".
	CRLF
	// CR terminates records with "\r".
	CR
	// Platform picks CRLF on Windows and LF everywhere else.
	Platform
)

func (lb LineBreak) String() string {
	switch lb {
	case LF:
		return "LF"
	case CRLF:
		return "CRLF"
	case CR:
		return "CR"
	case Platform:
		return "Platform"
	default:
		return fmt.Sprintf("LineBreak(%d)", int(lb))
	}
}

// sequence returns the terminator bytes for the selection.
func (lb LineBreak) sequence() string {
	switch lb {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	case Platform:
		if runtime.GOOS == "windows" {
			return "\r\n"
		}
		return "\n"
	default:
		return "\n"
	}
}

// options holds the configuration shared by Readers, Writers, Encoders,
// and Decoders.
type options struct {
	delimiter rune
	quote     rune
	nullValue string

	// reader side
	skipRows     int
	useHeader    bool
	skipInvalid  bool
	errorOnBlank bool
	trimSpace    bool
	comment      rune
	maxRecord    int
	onSkipped    func(line int, err error)

	// writer side
	lineBreak LineBreak
}

func defaultOptions() options {
	return options{
		delimiter: ',',
		quote:     '"',
		lineBreak: LF,
	}
}

// buildOptions applies opts over the defaults and validates the
// cross-field invariants.
func buildOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	if o.delimiter == o.quote {
		return options{}, fmt.Errorf("dsv: delimiter and quote must differ")
	}
	if o.comment != 0 && (o.comment == o.delimiter || o.comment == o.quote) {
		return options{}, fmt.Errorf("dsv: comment rune must differ from delimiter and quote")
	}
	if strings.ContainsRune(o.nullValue, o.delimiter) ||
		strings.ContainsRune(o.nullValue, o.quote) ||
		strings.ContainsAny(o.nullValue, "\r\n") {
		return options{}, fmt.Errorf("dsv: null token %q may not contain the delimiter, the quote, or line breaks", o.nullValue)
	}
	return o, nil
}

// validRune reports whether r can serve as a delimiter, quote, or
// comment rune.
func validRune(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}

// Option configures a Reader, Writer, Encoder, or Decoder.
type Option func(*options) error

// Delimiter sets the field separator rune. The default is ','. Use '\t'
// for TSV input or output.
func Delimiter(r rune) Option {
	return func(o *options) error {
		if !validRune(r) {
			return fmt.Errorf("dsv: invalid delimiter %q", r)
		}
		o.delimiter = r
		return nil
	}
}

// Quote sets the quote rune. The default is '"'.
func Quote(r rune) Option {
	return func(o *options) error {
		if !validRune(r) {
			return fmt.Errorf("dsv: invalid quote %q", r)
		}
		o.quote = r
		return nil
	}
}

// NullValue sets the null token: the unquoted text that reads as a null
// field and that the writer emits for null fields. The default is the
// empty string. The token may not contain the delimiter, the quote, or
// line breaks.
func NullValue(s string) Option {
	return func(o *options) error {
		o.nullValue = s
		return nil
	}
}

// SkipRows makes a Reader discard the first n physical records before
// looking for a header or data. Reader option.
func SkipRows(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("dsv: skip row count must not be negative")
		}
		o.skipRows = n
		return nil
	}
}

// UseHeader makes a Reader treat the first remaining record as the
// header. Header names must be unique and non-blank, and every data row
// must then match the header arity. Reader option.
func UseHeader() Option {
	return func(o *options) error {
		o.useHeader = true
		return nil
	}
}

// SkipInvalidRows makes a Reader discard data rows with structural or
// arity errors instead of failing, continue with the next record, and
// report each discard through the OnSkippedRow callback when one is set.
// Header errors are never skipped. Reader option.
func SkipInvalidRows() Option {
	return func(o *options) error {
		o.skipInvalid = true
		return nil
	}
}

// ErrorOnBlankLines makes a Reader fail on zero-length records instead
// of ignoring them. Blank-line errors are not subject to
// SkipInvalidRows. Reader option.
func ErrorOnBlankLines() Option {
	return func(o *options) error {
		o.errorOnBlank = true
		return nil
	}
}

// TrimSpace makes the tokenizer strip leading and trailing spaces and
// tabs from unquoted fields before the null rule applies. Quoted fields
// are never trimmed. Reader option.
func TrimSpace() Option {
	return func(o *options) error {
		o.trimSpace = true
		return nil
	}
}

// Comment sets a comment rune: records whose first character is r are
// skipped. Comments are disabled by default. Reader option.
func Comment(r rune) Option {
	return func(o *options) error {
		if !validRune(r) {
			return fmt.Errorf("dsv: invalid comment rune %q", r)
		}
		o.comment = r
		return nil
	}
}

// MaxRecordSize caps the byte size of a single record; a record growing
// past the cap fails with ErrRecordTooLarge. Zero, the default, means
// unlimited: a record is bounded only by the input itself, which is the
// documented behavior for pathological inputs such as an unterminated
// quote over an arbitrarily large stream. Reader option.
func MaxRecordSize(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("dsv: max record size must not be negative")
		}
		o.maxRecord = n
		return nil
	}
}

// OnSkippedRow installs a callback invoked for every row discarded under
// SkipInvalidRows, with the 1-based line number and the error that
// caused the discard. Reader option.
func OnSkippedRow(fn func(line int, err error)) Option {
	return func(o *options) error {
		if fn == nil {
			return fmt.Errorf("dsv: nil OnSkippedRow callback")
		}
		o.onSkipped = fn
		return nil
	}
}

// Newline selects the record terminator. The default is LF. Writer
// option.
func Newline(lb LineBreak) Option {
	return func(o *options) error {
		switch lb {
		case LF, CRLF, CR, Platform:
			o.lineBreak = lb
			return nil
		default:
			return fmt.Errorf("dsv: unknown line break %d", int(lb))
		}
	}
}
