package csvcodec

import "io"

// Marshaler is the serialization contract an application value implements
// to drive the encoder as the whole-file container root.
type Marshaler interface {
	MarshalCSV(*Encoder) error
}

// focus is the addressing level of the container bridge. It is carried
// explicitly by each Encoder/Decoder rather than derived from call depth.
type focus uint8

const (
	focusFile focus = iota // one serialization call per row
	focusRow               // one serialization call per field
)

// Encoder is the structured container state machine, write side. The root
// encoder has file focus; Row hands a row-focus encoder to its callback.
// CSV has exactly those two levels, so a row-focus encoder refuses further
// containers with ErrExcessNesting.
//
// The Encoder never tracks coordinates itself; the RowWriter owns them.
type Encoder struct {
	w     *RowWriter
	focus focus
}

// NewEncoder opens a file-focus encoder writing to w.
func NewEncoder(w io.Writer, d *Dialect) (*Encoder, error) {
	rw, err := NewRowWriter(w, d)
	if err != nil {
		return nil, err
	}
	return &Encoder{w: rw}, nil
}

// Row opens the next row and runs fn with a row-focus encoder, then commits
// the row. Calling Row at row focus is a depth-3 container request.
func (e *Encoder) Row(fn func(*Encoder) error) error {
	if e.focus != focusFile {
		return ErrExcessNesting
	}
	if _, err := e.w.BeginRow(); err != nil {
		return err
	}
	if err := fn(&Encoder{w: e.w, focus: focusRow}); err != nil {
		return err
	}
	return e.w.EndRow()
}

// Value encodes one leaf value. At row focus it fills the next field. At
// file focus it is only legal for single-column files: each call emits one
// whole row, and the first call freezes the width to 1; a wider file needs
// an explicit Row container.
func (e *Encoder) Value(v any) error {
	if e.focus == focusRow {
		text, err := formatField(v, e.w.st)
		if err != nil {
			return err
		}
		return e.w.WriteField(text)
	}

	if w := e.w.Width(); w > 1 {
		return ErrNestedContainerRequired
	}
	text, err := formatField(v, e.w.st)
	if err != nil {
		return err
	}
	if _, err := e.w.BeginRow(); err != nil {
		return err
	}
	if err := e.w.WriteField(text); err != nil {
		return err
	}
	return e.w.EndRow()
}

// ValueAt encodes a leaf value at an explicit column of the open row.
func (e *Encoder) ValueAt(col int, v any) error {
	if e.focus != focusRow {
		return ErrNestedContainerRequired
	}
	text, err := formatField(v, e.w.st)
	if err != nil {
		return err
	}
	return e.w.WriteFieldAt(col, text)
}

// Named encodes a leaf value at the column the header table maps name to.
func (e *Encoder) Named(name string, v any) error {
	if e.focus != focusRow {
		return ErrNestedContainerRequired
	}
	text, err := formatField(v, e.w.st)
	if err != nil {
		return err
	}
	return e.w.WriteFieldNamed(name, text)
}

// Super returns a container at the same focus for layering a base type's
// fields under a derived one. It is an alias, not a new row or column.
func (e *Encoder) Super() *Encoder { return e }

// FieldIndex resolves a header name to its column.
func (e *Encoder) FieldIndex(name string) (int, error) {
	return e.w.FieldIndex(name)
}

// Close finalizes the file. Safe to call more than once.
func (e *Encoder) Close() error { return e.w.EndFile() }
