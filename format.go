package dsv

import (
	"strings"
	"unicode/utf8"
)

// needsQuoting reports whether a value must be wrapped in quotes: it
// contains the delimiter, the quote, CR, or LF.
func needsQuoting(s string, o *options) bool {
	if strings.ContainsAny(s, "\r\n") {
		return true
	}
	return strings.ContainsRune(s, o.delimiter) || strings.ContainsRune(s, o.quote)
}

// appendField appends the encoded form of one field to dst.
//
// Null becomes the null token, verbatim and unquoted. A present empty
// string becomes a quoted empty pair, keeping it distinct from null. A
// present value equal to the null token is also written verbatim and
// reads back as null; that collision is the documented limit of the
// round-trip property, and cannot occur with the default "" token.
func appendField(dst []byte, f Field, o *options) []byte {
	if !f.Valid {
		return append(dst, o.nullValue...)
	}
	if f.String == "" {
		dst = utf8.AppendRune(dst, o.quote)
		return utf8.AppendRune(dst, o.quote)
	}
	if !needsQuoting(f.String, o) {
		return append(dst, f.String...)
	}
	dst = utf8.AppendRune(dst, o.quote)
	for _, r := range f.String {
		if r == o.quote {
			dst = utf8.AppendRune(dst, o.quote)
		}
		dst = utf8.AppendRune(dst, r)
	}
	return utf8.AppendRune(dst, o.quote)
}

// appendRecord appends one encoded record to dst, without a terminator.
func appendRecord(dst []byte, fields []Field, o *options) []byte {
	for i, f := range fields {
		if i > 0 {
			dst = utf8.AppendRune(dst, o.delimiter)
		}
		dst = appendField(dst, f, o)
	}
	return dst
}

// formatRecord is the string form of appendRecord, the inverse of
// tokenize.
func formatRecord(fields []Field, o *options) string {
	return string(appendRecord(nil, fields, o))
}
