package csvcodec

import "fmt"

// headerTable maps case-sensitive field names to zero-based column indexes.
// Built once, immutable afterwards.
type headerTable struct {
	names []string
	index map[string]int
}

// newHeaderTable builds the table. Empty or duplicate names make name-based
// addressing ambiguous and are rejected.
func newHeaderTable(names []string) (*headerTable, error) {
	h := &headerTable{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(h.names, names)
	for i, name := range h.names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty header name at column %d", ErrInvalidDialect, i)
		}
		if _, dup := h.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate header name %q", ErrInvalidDialect, name)
		}
		h.index[name] = i
	}
	return h, nil
}

func (h *headerTable) lookup(name string) (int, error) {
	if h == nil {
		return 0, fmt.Errorf("%w: %q (no header configured)", ErrUnknownField, name)
	}
	col, ok := h.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return col, nil
}

// columns returns a copy of the header names in column order.
func (h *headerTable) columns() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}
