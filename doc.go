/*
Package dsv reads and writes delimiter-separated values (CSV, TSV and
friends) with streaming parsing, explicit null handling, and an API
closely mirroring the standard `encoding/csv` and `encoding/json`
packages.

The package offers two primary workflows depending on the use case:

1. Struct-Oriented Decoding and Encoding

For the common task of converting tabular data into Go structs (and vice
versa), the Marshal and Unmarshal functions provide a simple and direct
API. Column names come from the document's header row and are matched
against struct field tags.

Example of unmarshaling into a slice of structs:

	var data = []byte("name,age\nalice,30\nbob,25\n")

	type Person struct {
		Name string `dsv:"name"`
		Age  int    `dsv:"age"`
	}

	var people []Person
	if err := dsv.Unmarshal(data, &people); err != nil {
		// handle error
	}
	// people is now []Person{{"alice", 30}, {"bob", 25}}

2. Record-Level Streaming

For large documents, heterogeneous rows, or cell-level control over
nulls, Reader and Writer stream one record at a time. Cells are Field
values, which distinguish an absent (null) cell from an empty string:
an unquoted empty cell is null, while a quoted empty cell ("") is an
empty string.

	r, err := dsv.NewReader(file, dsv.UseHeader())
	if err != nil {
		// handle error
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// handle error
		}
		if age, ok := row.Lookup("age"); ok && !age.IsNull() {
			// use age.String
		}
	}

Both workflows accept the same functional options: Delimiter and Quote
select the dialect, NullValue changes the token written for (and read
as) null, and Reader-side policies such as SkipRows, Comment,
SkipInvalidRows and ErrorOnBlankLines control how malformed or
decorative lines are handled.

Customization is available via struct field tags (e.g. `dsv:"name,omitempty"`)
and by implementing the dsv.FieldMarshaler and dsv.FieldUnmarshaler
interfaces.
*/
package dsv
