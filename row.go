package dsv

// Row is one decoded record: an immutable ordered list of optional-string
// cells, optionally bound to a Header for name lookups. Rows are created
// fresh per record and share no mutable state with the Reader, so they
// may be held for as long as the caller likes.
type Row struct {
	fields []Field
	header *Header
	line   int
}

// NewRow builds an unbound Row from cells, for hand-constructed writes.
func NewRow(fields ...Field) Row {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Row{fields: cp}
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.fields) }

// Line returns the 1-based ordinal of the physical record this row came
// from, or 0 for hand-built rows.
func (r Row) Line() int { return r.line }

// Field returns the cell at position i, or the null Field when i is out
// of range.
func (r Row) Field(i int) Field {
	if i < 0 || i >= len(r.fields) {
		return Field{}
	}
	return r.fields[i]
}

// Fields returns a copy of the cells in order.
func (r Row) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Header returns the Header the row is bound to, or nil.
func (r Row) Header() *Header { return r.header }

// Lookup returns the cell under the named column. It reports false when
// the row is unbound or the column does not exist.
func (r Row) Lookup(name string) (Field, bool) {
	if r.header == nil {
		return Field{}, false
	}
	i, ok := r.header.Index(name)
	if !ok || i >= len(r.fields) {
		return Field{}, false
	}
	return r.fields[i], true
}

// Strings returns the cells as plain strings. The conversion is lossy:
// null cells come back as "", indistinguishable from present empty
// strings.
func (r Row) Strings() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.String
	}
	return out
}
