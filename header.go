package dsv

import (
	"fmt"
	"strings"
)

// Header is an ordered set of unique, non-blank column names. It is
// established at most once per Reader or Writer lifetime and immutable
// afterward; the name→index map is built exactly once here and never
// touched again.
type Header struct {
	names []string
	index map[string]int
}

// newHeader validates names and builds the lookup index. Errors are
// unprefixed so callers can add line or usage context.
func newHeader(names []string) (*Header, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("empty header")
	}
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(h.names, names)
	for i, name := range h.names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d: %w", i+1, ErrBlankName)
		}
		if _, ok := h.index[name]; ok {
			return nil, fmt.Errorf("column %d: %w: %q", i+1, ErrDuplicateName, name)
		}
		h.index[name] = i
	}
	return h, nil
}

// Len returns the number of columns.
func (h *Header) Len() int { return len(h.names) }

// Names returns a copy of the column names in order.
func (h *Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Index returns the position of the named column.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}
