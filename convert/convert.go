// Package convert maps DSV cells to and from typed Go values, one
// logical column at a time.
//
// A Converter handles a single column: Deserialize turns an
// optional-string cell into a typed value and Serialize does the
// reverse. The core codec exchanges only dsv.Field values with this
// layer and has no knowledge of the concrete types. A null cell
// deserializes to nil, and serializing nil yields a null cell.
package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KimNorgaard/go-dsv"
	"github.com/google/uuid"
)

// Converter converts between one column's cells and typed values.
type Converter interface {
	Deserialize(f dsv.Field) (any, error)
	Serialize(v any) (dsv.Field, error)
}

// String passes cell text through unchanged.
type String struct{}

func (String) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	return f.String, nil
}

func (String) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	s, ok := v.(string)
	if !ok {
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as string", v)
	}
	return dsv.NewField(s), nil
}

// Int parses integer cells. Values deserialize as int64.
type Int struct {
	// Base is passed to strconv.ParseInt; zero means base 10.
	Base int
}

func (c Int) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	base := c.Base
	if base == 0 {
		base = 10
	}
	n, err := strconv.ParseInt(f.String, base, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %q as int: %w", f.String, err)
	}
	return n, nil
}

func (c Int) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	default:
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as int", v)
	}
	base := c.Base
	if base == 0 {
		base = 10
	}
	return dsv.NewField(strconv.FormatInt(n, base)), nil
}

// Float parses floating-point cells. Values deserialize as float64.
type Float struct{}

func (Float) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	x, err := strconv.ParseFloat(f.String, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %q as float: %w", f.String, err)
	}
	return x, nil
}

func (Float) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	switch x := v.(type) {
	case float64:
		return dsv.NewField(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case float32:
		return dsv.NewField(strconv.FormatFloat(float64(x), 'g', -1, 32)), nil
	default:
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as float", v)
	}
}

// Bool parses boolean cells against configurable token sets, compared
// case-insensitively.
type Bool struct {
	// TrueValues and FalseValues replace the default token sets when
	// non-empty. Serialize emits the first token of each set.
	TrueValues  []string
	FalseValues []string
}

var (
	defaultTrueValues  = []string{"true", "t", "1", "yes", "y"}
	defaultFalseValues = []string{"false", "f", "0", "no", "n"}
)

func (c Bool) sets() ([]string, []string) {
	tv, fv := c.TrueValues, c.FalseValues
	if len(tv) == 0 {
		tv = defaultTrueValues
	}
	if len(fv) == 0 {
		fv = defaultFalseValues
	}
	return tv, fv
}

func (c Bool) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	tv, fv := c.sets()
	for _, t := range tv {
		if strings.EqualFold(f.String, t) {
			return true, nil
		}
	}
	for _, t := range fv {
		if strings.EqualFold(f.String, t) {
			return false, nil
		}
	}
	return nil, fmt.Errorf("parsing %q as bool: unrecognized token", f.String)
}

func (c Bool) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	b, ok := v.(bool)
	if !ok {
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as bool", v)
	}
	tv, fv := c.sets()
	if b {
		return dsv.NewField(tv[0]), nil
	}
	return dsv.NewField(fv[0]), nil
}

// Time parses timestamp cells against an ordered list of layouts,
// trying each in turn. Values deserialize as time.Time.
type Time struct {
	// Layouts replaces the default layout list when non-empty.
	// Serialize emits the first layout.
	Layouts []string
	// Location resolves layouts without a zone; nil means UTC.
	Location *time.Location
}

var defaultLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

func (c Time) layouts() []string {
	if len(c.Layouts) > 0 {
		return c.Layouts
	}
	return defaultLayouts
}

func (c Time) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.UTC
}

func (c Time) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	for _, layout := range c.layouts() {
		if t, err := time.ParseInLocation(layout, f.String, c.location()); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("parsing %q as time: no layout matched", f.String)
}

func (c Time) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as time", v)
	}
	return dsv.NewField(t.Format(c.layouts()[0])), nil
}

// UUID parses RFC 4122 cells. Values deserialize as uuid.UUID.
type UUID struct{}

func (UUID) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	id, err := uuid.Parse(f.String)
	if err != nil {
		return nil, fmt.Errorf("parsing %q as uuid: %w", f.String, err)
	}
	return id, nil
}

func (UUID) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return dsv.Field{}, fmt.Errorf("cannot serialize %T as uuid", v)
	}
	return dsv.NewField(id.String()), nil
}

// DefaultNullValues are the cell texts Nullable treats as null when no
// explicit tokens are given.
var DefaultNullValues = []string{"", "NULL", "null", "NA", "N/A", "nil"}

// Nullable wraps a converter so that cells matching one of the given
// tokens (or DefaultNullValues when none are given) deserialize to nil
// instead of reaching the wrapped converter.
func Nullable(c Converter, tokens ...string) Converter {
	if len(tokens) == 0 {
		tokens = DefaultNullValues
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return nullable{c: c, tokens: set}
}

type nullable struct {
	c      Converter
	tokens map[string]struct{}
}

func (n nullable) Deserialize(f dsv.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	if _, ok := n.tokens[f.String]; ok {
		return nil, nil
	}
	return n.c.Deserialize(f)
}

func (n nullable) Serialize(v any) (dsv.Field, error) {
	if v == nil {
		return dsv.NullField(), nil
	}
	return n.c.Serialize(v)
}

// Registry maps column names to converters.
type Registry struct {
	converters map[string]Converter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[string]Converter)}
}

// Register binds a converter to a column name, replacing any previous
// binding. It returns the Registry for chaining.
func (r *Registry) Register(column string, c Converter) *Registry {
	r.converters[column] = c
	return r
}

// Apply converts every registered column of row and returns the typed
// values keyed by column name. A registered column missing from the row
// is an error.
func (r *Registry) Apply(row dsv.Row) (map[string]any, error) {
	out := make(map[string]any, len(r.converters))
	for name, c := range r.converters {
		f, ok := row.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("convert: column %q not present in row", name)
		}
		v, err := c.Deserialize(f)
		if err != nil {
			return nil, fmt.Errorf("convert: column %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
