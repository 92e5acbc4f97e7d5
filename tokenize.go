package dsv

import "strings"

// Tokenizer states. The machine is a plain switch over this enum; one
// pass over the record, no per-state objects.
type tokenizeState int

const (
	stateStart tokenizeState = iota
	stateInField
	stateQuoted
	stateAfterQuote
)

// tokenize splits one raw record into fields.
//
// Null rule: an unquoted field whose (possibly trimmed) text is empty or
// equals the null token becomes null; a quoted field is always present,
// even when empty. With the default token "" the rule is exactly
// "unquoted and zero characters".
//
// Errors come back as *ParseError with a 1-based rune offset in Column
// and Line left at zero; the caller owns the line number.
func tokenize(record string, o *options) ([]Field, *ParseError) {
	var (
		fields []Field
		buf    strings.Builder
		state  = stateStart
		col    int
	)

	emitUnquoted := func() {
		s := buf.String()
		if o.trimSpace {
			s = strings.Trim(s, " \t")
		}
		if s == "" || s == o.nullValue {
			fields = append(fields, Field{})
		} else {
			fields = append(fields, NewField(s))
		}
		buf.Reset()
	}
	emitQuoted := func() {
		fields = append(fields, NewField(buf.String()))
		buf.Reset()
	}

	for _, r := range record {
		col++
		switch state {
		case stateStart:
			switch r {
			case o.delimiter:
				emitUnquoted()
			case o.quote:
				state = stateQuoted
			default:
				buf.WriteRune(r)
				state = stateInField
			}

		case stateInField:
			switch r {
			case o.delimiter:
				emitUnquoted()
				state = stateStart
			case o.quote:
				return nil, &ParseError{Column: col, Err: ErrBareQuote}
			default:
				buf.WriteRune(r)
			}

		case stateQuoted:
			if r == o.quote {
				state = stateAfterQuote
			} else {
				// Delimiters and line breaks are content here.
				buf.WriteRune(r)
			}

		case stateAfterQuote:
			switch r {
			case o.quote:
				// Doubled quote: one literal quote character.
				buf.WriteRune(o.quote)
				state = stateQuoted
			case o.delimiter:
				emitQuoted()
				state = stateStart
			default:
				return nil, &ParseError{Column: col, Err: ErrTrailingContent}
			}
		}
	}

	switch state {
	case stateQuoted:
		return nil, &ParseError{Column: col + 1, Err: ErrUnterminatedQuote}
	case stateAfterQuote:
		emitQuoted()
	default:
		emitUnquoted()
	}
	return fields, nil
}
