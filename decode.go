package csvcodec

import (
	"fmt"
	"io"
)

// Unmarshaler is the deserialization contract an application value
// implements to drive the decoder as the whole-file container root.
type Unmarshaler interface {
	UnmarshalCSV(*Decoder) error
}

// Decoder is the structured container state machine, read side. It mirrors
// Encoder: file focus consumes one row per call, row focus one field.
type Decoder struct {
	r     *RowReader
	focus focus

	fields []string // current row at row focus
	cur    int      // next sequential field
}

// NewDecoder opens a file-focus decoder over r.
func NewDecoder(r io.Reader, d *Dialect) (*Decoder, error) {
	rr, err := NewRowReader(r, d)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: rr}, nil
}

// NewDecoderSource opens a decoder over an external token source.
func NewDecoderSource(src TokenSource, d *Dialect) (*Decoder, error) {
	rr, err := NewRowReaderSource(src, d)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: rr}, nil
}

// Row reads the next data row and runs fn with a row-focus decoder.
// It returns io.EOF after the last row.
func (d *Decoder) Row(fn func(*Decoder) error) error {
	if d.focus != focusFile {
		return ErrExcessNesting
	}
	fields, err := d.r.ReadRow()
	if err != nil {
		return err
	}
	return fn(&Decoder{r: d.r, focus: focusRow, fields: fields})
}

// Rows runs fn once per remaining data row, stopping cleanly at io.EOF.
func (d *Decoder) Rows(fn func(*Decoder) error) error {
	for {
		err := d.Row(fn)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Value decodes the next field into the pointed-to leaf value. At file
// focus it is only legal for single-column files, mirroring Encoder.Value:
// each call consumes one whole row.
func (d *Decoder) Value(v any) error {
	if d.focus == focusRow {
		if d.cur >= len(d.fields) {
			return &FieldError{Row: d.r.row, Col: d.cur,
				Err: fmt.Errorf("%w: column %d, width %d", ErrOutOfOrder, d.cur, len(d.fields))}
		}
		text := d.fields[d.cur]
		d.cur++
		return scanField(text, v, d.r.st)
	}

	if w := d.r.Width(); w > 1 {
		return ErrNestedContainerRequired
	}
	fields, err := d.r.ReadRow()
	if err != nil {
		return err
	}
	if len(fields) != 1 {
		return ErrNestedContainerRequired
	}
	return scanField(fields[0], v, d.r.st)
}

// ValueAt decodes the field at an explicit column of the current row.
func (d *Decoder) ValueAt(col int, v any) error {
	if d.focus != focusRow {
		return ErrNestedContainerRequired
	}
	if col < 0 || col >= len(d.fields) {
		return &FieldError{Row: d.r.row, Col: col,
			Err: fmt.Errorf("%w: column %d, width %d", ErrOutOfOrder, col, len(d.fields))}
	}
	d.cur = col + 1
	return scanField(d.fields[col], v, d.r.st)
}

// Named decodes the field at the column the header table maps name to.
func (d *Decoder) Named(name string, v any) error {
	if d.focus != focusRow {
		return ErrNestedContainerRequired
	}
	col, err := d.r.FieldIndex(name)
	if err != nil {
		return &FieldError{Row: d.r.row, Name: name, Err: err}
	}
	if col >= len(d.fields) {
		return &FieldError{Row: d.r.row, Name: name, Err: ErrOutOfOrder}
	}
	d.cur = col + 1
	return scanField(d.fields[col], v, d.r.st)
}

// Super returns a container at the same focus for layered base types.
func (d *Decoder) Super() *Decoder { return d }

// FieldIndex resolves a header name to its column.
func (d *Decoder) FieldIndex(name string) (int, error) {
	return d.r.FieldIndex(name)
}

// Header returns the captured header names, or nil.
func (d *Decoder) Header() []string { return d.r.Header() }
