package csvcodec

import (
	"fmt"
	"io"
)

// RowReader is the read-side addressing layer: it owns the row cursor, the
// frozen expected field count, and the header table over any TokenSource.
type RowReader struct {
	st     *settings
	src    TokenSource
	header *headerTable

	row   int // index of the row most recently read; -1 before the first
	width int // frozen expected field count; 0 until frozen
	err   error
}

// NewRowReader wraps r with the built-in Scanner tokenizer.
func NewRowReader(r io.Reader, d *Dialect) (*RowReader, error) {
	sc, err := NewScanner(r, d)
	if err != nil {
		return nil, err
	}
	return newRowReader(sc, sc.st)
}

// NewRowReaderSource accepts an external token source that already yields
// raw field strings per row.
func NewRowReaderSource(src TokenSource, d *Dialect) (*RowReader, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil token source", ErrStream)
	}
	st, err := d.readSettings()
	if err != nil {
		return nil, err
	}
	return newRowReader(src, st)
}

func newRowReader(src TokenSource, st *settings) (*RowReader, error) {
	r := &RowReader{st: st, src: src, row: -1, width: st.width}
	if st.header == HeaderColumns {
		table, err := newHeaderTable(st.columns)
		if err != nil {
			return nil, err
		}
		r.header = table
	}
	return r, nil
}

// ReadRow returns the next data row, or io.EOF after the last one. Under
// HeaderFirstRow the first physical row is captured as the header table and
// not returned. The first row freezes the expected width; later rows with a
// different count fail with ErrFieldCountMismatch.
func (r *RowReader) ReadRow() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		fields, err := r.src.ReadRow()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			r.err = err
			return nil, err
		}
		r.row++

		if r.width == 0 {
			r.width = len(fields)
		} else if len(fields) != r.width {
			err := &FieldError{Row: r.row, Col: len(fields),
				Err: fmt.Errorf("%w: got %d, want %d", ErrFieldCountMismatch, len(fields), r.width)}
			r.err = err
			return nil, err
		}

		if r.header == nil && r.st.header == HeaderFirstRow && r.row == 0 {
			table, err := newHeaderTable(fields)
			if err != nil {
				r.err = err
				return nil, err
			}
			r.header = table
			continue // the header row is not a data row
		}
		return fields, nil
	}
}

// ReadAllRows collects the remaining data rows.
func (r *RowReader) ReadAllRows() ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// FieldIndex resolves a header name to its column.
func (r *RowReader) FieldIndex(name string) (int, error) {
	return r.header.lookup(name)
}

// Header returns the header names in column order, or nil before a header
// has been captured (or when none is configured).
func (r *RowReader) Header() []string {
	return r.header.columns()
}

// Row returns the index of the row most recently read, or -1.
func (r *RowReader) Row() int { return r.row }

// Width returns the frozen expected field count, or 0 while unset.
func (r *RowReader) Width() int { return r.width }
