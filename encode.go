package dsv

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Encoder writes Go struct slices to an output stream as DSV.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes v as a DSV document: one header record named after the
// struct fields, then one record per element. v must be a slice or
// array of structs or struct pointers; nil pointer elements become
// all-null records.
func (e *Encoder) Encode(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("dsv: Encode(nil %T)", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("dsv: Encode expects a slice or array of structs, got %T", v)
	}
	structType := rv.Type().Elem()
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("dsv: Encode expects struct elements, got %s", rv.Type().Elem())
	}

	cols := typeColumns(structType)
	if len(cols) == 0 {
		return fmt.Errorf("dsv: type %s has no encodable fields", structType)
	}

	w, err := NewWriter(e.w, e.opts...)
	if err != nil {
		return err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	if err := w.WriteHeader(names...); err != nil {
		return err
	}

	fields := make([]Field, len(cols))
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		for elem.Kind() == reflect.Pointer && !elem.IsNil() {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Pointer {
			for j := range fields {
				fields[j] = Field{}
			}
		} else {
			for j, c := range cols {
				f, err := encodeColumn(elem, c)
				if err != nil {
					return err
				}
				fields[j] = f
			}
		}
		if err := w.WriteFields(fields...); err != nil {
			return err
		}
	}
	return w.Flush()
}

// encodeColumn renders one bound struct field of elem as a cell.
func encodeColumn(elem reflect.Value, c column) (Field, error) {
	fv, ok := fieldByIndexRead(elem, c.idx)
	if !ok {
		// A nil embedded pointer on the path: the whole column is null.
		return Field{}, nil
	}
	if c.omitempty && isEmptyValue(fv) {
		return Field{}, nil
	}
	return encodeField(fv)
}

// encodeField renders one Go value as a cell.
func encodeField(v reflect.Value) (Field, error) {
	if f, ok, err := tryCustomMarshal(v); ok || err != nil {
		return f, err
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Field{}, nil
		}
		v = v.Elem()
		if f, ok, err := tryCustomMarshal(v); ok || err != nil {
			return f, err
		}
	}

	switch v.Kind() {
	case reflect.String:
		return NewField(v.String()), nil
	case reflect.Bool:
		return NewField(strconv.FormatBool(v.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewField(strconv.FormatInt(v.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NewField(strconv.FormatUint(v.Uint(), 10)), nil
	case reflect.Float32:
		return NewField(strconv.FormatFloat(v.Float(), 'g', -1, 32)), nil
	case reflect.Float64:
		return NewField(strconv.FormatFloat(v.Float(), 'g', -1, 64)), nil
	default:
		return Field{}, fmt.Errorf("dsv: unsupported type for marshaling: %s", v.Type())
	}
}

// tryCustomMarshal checks v, and a pointer to v for value receivers, for
// the FieldMarshaler and encoding.TextMarshaler interfaces.
func tryCustomMarshal(v reflect.Value) (Field, bool, error) {
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return Field{}, false, nil
	}
	if v.CanInterface() {
		if f, ok, err := callMarshaler(v); ok || err != nil {
			return f, ok, err
		}
	}
	if v.Kind() != reflect.Pointer {
		var pv reflect.Value
		if v.CanAddr() {
			pv = v.Addr()
		} else {
			// For non-addressable values, marshal a copy through a
			// pointer so pointer-receiver methods are reachable.
			pv = reflect.New(v.Type())
			pv.Elem().Set(v)
		}
		if pv.CanInterface() {
			if f, ok, err := callMarshaler(pv); ok || err != nil {
				return f, ok, err
			}
		}
	}
	return Field{}, false, nil
}

func callMarshaler(v reflect.Value) (Field, bool, error) {
	switch m := v.Interface().(type) {
	case FieldMarshaler:
		f, err := m.MarshalField()
		if err != nil {
			return Field{}, true, &MarshalerError{Type: v.Type(), Err: err}
		}
		return f, true, nil
	case encoding.TextMarshaler:
		b, err := m.MarshalText()
		if err != nil {
			return Field{}, true, &MarshalerError{Type: v.Type(), Err: err}
		}
		return NewField(string(b)), true, nil
	}
	return Field{}, false, nil
}

// parseTag splits a dsv struct tag into its name and options.
func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	name := parts[0]
	options := make(map[string]bool)
	for _, part := range parts[1:] {
		options[strings.TrimSpace(part)] = true
	}
	return name, options
}

// isEmptyValue reports whether the value v is empty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
