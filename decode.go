package dsv

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Decoder reads a DSV document from an input stream and maps its rows
// onto Go structs.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// The decoder may buffer data from r as necessary. It is the caller's
// responsibility to close r if required.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the whole input and stores it in the value pointed to by
// v, which must be a pointer to a slice of structs or struct pointers.
//
// The first record is always read as the header (struct decoding is
// name-driven, so UseHeader is implied). Each column is matched to a
// struct field by its `dsv` tag or name, case-sensitively first and
// case-insensitively as a fallback; unmatched columns are ignored and
// unmatched fields keep their zero values. Empty input decodes to an
// empty slice.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("dsv: Decode(nil reader)")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dsv: Unmarshal(non-pointer %T or nil)", v)
	}
	sliceVal := rv.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return fmt.Errorf("dsv: Unmarshal target must point to a slice, got %s", sliceVal.Type())
	}
	elemType := sliceVal.Type().Elem()
	structType := elemType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("dsv: Unmarshal element type must be a struct, got %s", elemType)
	}

	r, err := NewReader(d.r, append(d.opts, UseHeader())...)
	if err != nil {
		return err
	}
	header, err := r.Header()
	if err != nil {
		if err == io.EOF {
			sliceVal.Set(reflect.MakeSlice(sliceVal.Type(), 0, 0))
			return nil
		}
		return err
	}

	bindings := bindColumns(structType, header)
	out := reflect.MakeSlice(sliceVal.Type(), 0, 0)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		elem := reflect.New(structType).Elem()
		for _, b := range bindings {
			target := fieldByIndex(elem, b.idx)
			if err := decodeField(row.Field(b.col), target); err != nil {
				return fmt.Errorf("dsv: line %d, column %q: %w", row.Line(), b.name, err)
			}
		}
		if elemType.Kind() == reflect.Pointer {
			p := reflect.New(structType)
			p.Elem().Set(elem)
			out = reflect.Append(out, p)
		} else {
			out = reflect.Append(out, elem)
		}
	}
	sliceVal.Set(out)
	return nil
}

// decodeField stores one cell into rv. A null cell stores the zero
// value — nil for pointer fields.
func decodeField(f Field, rv reflect.Value) error {
	if ok, err := tryCustomUnmarshal(f, rv); ok || err != nil {
		return err
	}
	if !f.Valid {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
		if ok, err := tryCustomUnmarshal(f, rv); ok || err != nil {
			return err
		}
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(f.String)
	case reflect.Bool:
		b, err := strconv.ParseBool(f.String)
		if err != nil {
			return fmt.Errorf("cannot unmarshal %q into Go value of type %s", f.String, rv.Type())
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(f.String, 10, 64)
		if err != nil || rv.OverflowInt(n) {
			return fmt.Errorf("cannot unmarshal %q into Go value of type %s", f.String, rv.Type())
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(f.String, 10, 64)
		if err != nil || rv.OverflowUint(n) {
			return fmt.Errorf("cannot unmarshal %q into Go value of type %s", f.String, rv.Type())
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(f.String, rv.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot unmarshal %q into Go value of type %s", f.String, rv.Type())
		}
		rv.SetFloat(x)
	default:
		return fmt.Errorf("cannot unmarshal into Go value of type %s", rv.Type())
	}
	return nil
}

// tryCustomUnmarshal attempts a custom unmarshaler (FieldUnmarshaler or
// encoding.TextUnmarshaler) on the given reflect.Value. It returns true
// if one was found and used, in which case the caller should not proceed
// with default unmarshaling.
func tryCustomUnmarshal(f Field, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if u, ok := pv.Interface().(FieldUnmarshaler); ok {
		if err := u.UnmarshalField(f); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		if !f.Valid {
			// TextUnmarshaler never sees nulls; the zero value stands.
			return true, nil
		}
		if err := u.UnmarshalText([]byte(f.String)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	return false, nil
}

// A column is one struct field bound to a DSV column name.
type column struct {
	name      string
	idx       []int
	omitempty bool
}

// A binding ties a struct column to a header position.
type binding struct {
	column
	col int
}

// bindColumns matches struct columns to header positions: exact name
// first, then case-insensitive. Unmatched struct fields are dropped from
// the result and keep their zero values during decoding.
func bindColumns(t reflect.Type, h *Header) []binding {
	lower := make(map[string]int, h.Len())
	for i, name := range h.names {
		l := strings.ToLower(name)
		if _, ok := lower[l]; !ok {
			lower[l] = i
		}
	}
	var out []binding
	for _, c := range typeColumns(t) {
		if i, ok := h.Index(c.name); ok {
			out = append(out, binding{column: c, col: i})
			continue
		}
		if i, ok := lower[strings.ToLower(c.name)]; ok {
			out = append(out, binding{column: c, col: i})
		}
	}
	return out
}

// columnCache caches the column layout per struct type.
var columnCache sync.Map // map[reflect.Type][]column

// typeColumns returns the ordered DSV columns for a struct type:
// exported fields, exported embedded structs flattened, `dsv:"-"`
// skipped. When
// flattening produces two columns with the same name, the shallower one
// wins; at equal depth the first declared wins. The result is cached to
// avoid repeated reflection work.
func typeColumns(t reflect.Type) []column {
	if c, ok := columnCache.Load(t); ok {
		if cols, ok := c.([]column); ok {
			return cols
		}
	}

	var all []column
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			fidx := append(append([]int(nil), idx...), i)

			if sf.Anonymous {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct && sf.Tag.Get("dsv") == "" {
					// Flatten embedded structs into the parent's columns.
					walk(ft, fidx)
					continue
				}
			}

			tag := sf.Tag.Get("dsv")
			if tag == "-" {
				continue
			}
			name, tagOpts := parseTag(tag)
			if name == "" {
				name = sf.Name
			}
			all = append(all, column{
				name:      name,
				idx:       fidx,
				omitempty: tagOpts["omitempty"],
			})
		}
	}
	walk(t, nil)

	// Resolve name collisions from flattening. A winner keeps the list
	// position where its name first appeared.
	byName := make(map[string]int, len(all))
	cols := make([]column, 0, len(all))
	for _, c := range all {
		j, ok := byName[c.name]
		if !ok {
			byName[c.name] = len(cols)
			cols = append(cols, c)
			continue
		}
		if len(c.idx) < len(cols[j].idx) {
			cols[j] = c
		}
	}

	columnCache.Store(t, cols)
	return cols
}

// fieldByIndex walks an index path, allocating nil embedded pointers on
// the way. For decoding targets.
func fieldByIndex(v reflect.Value, idx []int) reflect.Value {
	for n, i := range idx {
		if n > 0 {
			for v.Kind() == reflect.Pointer {
				if v.IsNil() {
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
		v = v.Field(i)
	}
	return v
}

// fieldByIndexRead walks an index path without allocating; it reports
// false when a nil embedded pointer blocks the path. For encoding
// sources.
func fieldByIndexRead(v reflect.Value, idx []int) (reflect.Value, bool) {
	for n, i := range idx {
		if n > 0 {
			for v.Kind() == reflect.Pointer {
				if v.IsNil() {
					return reflect.Value{}, false
				}
				v = v.Elem()
			}
		}
		v = v.Field(i)
	}
	return v, true
}
