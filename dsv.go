package dsv

import "bytes"

// FieldMarshaler is the interface implemented by types that can encode
// themselves into a single cell. Returning a null Field writes the null
// token. It takes precedence over encoding.TextMarshaler.
type FieldMarshaler interface {
	MarshalField() (Field, error)
}

// FieldUnmarshaler is the interface implemented by types that can decode
// themselves from a single cell, null cells included. It takes
// precedence over encoding.TextUnmarshaler.
type FieldUnmarshaler interface {
	UnmarshalField(Field) error
}

// Marshal returns the DSV encoding of v, which must be a slice or array
// of structs or struct pointers. The first record is a header named
// after the struct fields or their `dsv` tags.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the DSV-encoded data and stores the rows in the slice
// pointed to by v. The first record is read as the header; columns are
// matched to struct fields by `dsv` tag or field name, falling back to a
// case-insensitive match.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return NewDecoder(bytes.NewReader(data), opts...).Decode(v)
}
