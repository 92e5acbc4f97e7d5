package dsv

// Field is one cell of a record: an optional string. A null Field is an
// unquoted cell with no characters (or one equal to the configured null
// token); a Field holding "" comes from a quoted empty cell. The two are
// never interchangeable anywhere in this package.
//
// The zero value is null.
type Field struct {
	String string
	Valid  bool // Valid is false when the cell is null
}

// NewField returns a present Field holding s.
func NewField(s string) Field {
	return Field{String: s, Valid: true}
}

// NullField returns the null Field. It equals the zero value.
func NullField() Field {
	return Field{}
}

// IsNull reports whether the field is null.
func (f Field) IsNull() bool { return !f.Valid }

// Or returns the field's value, or def when the field is null.
func (f Field) Or(def string) string {
	if !f.Valid {
		return def
	}
	return f.String
}
