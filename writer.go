package csvcodec

import (
	"fmt"
	"io"
)

// RowWriter is the row/field addressing sink: the single owner of the
// logical row/column position, the expected row width, and the header table
// for a CSV file being written incrementally.
//
// Fields within the open row are buffered, so WriteFieldAt and
// WriteFieldNamed may target columns in any order; the row is escaped and
// committed to the byte sink as a whole by EndRow. Rows themselves are
// strictly sequential and never revisited.
type RowWriter struct {
	st     *settings
	sink   *sink
	header *headerTable

	row    int // index of the row most recently begun; -1 before the first
	open   bool
	fields []string
	set    []bool
	filled int
	cur    int // next column for sequential WriteField

	width int // frozen expected field count; 0 until frozen
	rows  int // committed rows

	rowBuf []byte
	err    error // sticky, first failure wins
}

// NewRowWriter validates the dialect and opens an addressing sink over w,
// emitting the BOM the dialect calls for. When the dialect carries explicit
// Columns, the header row is committed immediately as row 0.
func NewRowWriter(w io.Writer, d *Dialect) (*RowWriter, error) {
	st, err := d.writeSettings()
	if err != nil {
		return nil, err
	}
	sk, err := newSink(w, st, true)
	if err != nil {
		return nil, err
	}
	return newRowWriter(sk, st)
}

// NewRowWriterPath opens (or creates) the file at path. With appendTo set,
// existing content is preserved and no BOM is emitted into a non-empty file.
func NewRowWriterPath(path string, appendTo bool, d *Dialect) (*RowWriter, error) {
	st, err := d.writeSettings()
	if err != nil {
		return nil, err
	}
	sk, err := openPath(path, appendTo, st)
	if err != nil {
		return nil, err
	}
	return newRowWriter(sk, st)
}

func newRowWriter(sk *sink, st *settings) (*RowWriter, error) {
	w := &RowWriter{st: st, sink: sk, row: -1, width: st.width}
	if st.header == HeaderColumns {
		table, err := newHeaderTable(st.columns)
		if err != nil {
			sk.Close()
			return nil, err
		}
		w.header = table
		w.row = 0
		if err := w.commitRow(st.columns); err != nil {
			sk.Close()
			return nil, err
		}
	}
	return w, nil
}

// BeginRow advances to the next row and returns its index. The previous row
// must have been ended (or the writer aborted) first.
func (w *RowWriter) BeginRow() (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.sink.closed {
		return 0, w.fail(ErrClosed)
	}
	if w.open {
		return 0, w.fail(fmt.Errorf("%w: row %d not ended", ErrSequence, w.row))
	}
	w.open = true
	w.row++
	w.fields = w.fields[:0]
	w.set = w.set[:0]
	w.filled = 0
	w.cur = 0
	return w.row, nil
}

// WriteField appends v at the sequential cursor position.
func (w *RowWriter) WriteField(v string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.setField(w.cur, v); err != nil {
		return err
	}
	w.cur++
	return nil
}

// WriteFieldAt places v at column col of the open row. Any order is
// accepted; col must fall inside the frozen width once one exists.
func (w *RowWriter) WriteFieldAt(col int, v string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if col < 0 {
		return w.fail(&FieldError{Row: w.row, Col: col, Err: ErrOutOfOrder})
	}
	if err := w.setField(col, v); err != nil {
		return err
	}
	w.cur = col + 1
	return nil
}

// WriteFieldNamed resolves name through the header table and places v there.
func (w *RowWriter) WriteFieldNamed(name, v string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	col, err := w.header.lookup(name)
	if err != nil {
		return w.fail(&FieldError{Row: w.row, Name: name, Err: err})
	}
	if err := w.setField(col, v); err != nil {
		return err
	}
	w.cur = col + 1
	return nil
}

func (w *RowWriter) setField(col int, v string) error {
	if w.width != 0 && col >= w.width {
		return w.fail(&FieldError{Row: w.row, Col: col,
			Err: fmt.Errorf("%w: column %d, width %d", ErrOutOfOrder, col, w.width)})
	}
	for len(w.fields) <= col {
		w.fields = append(w.fields, "")
		w.set = append(w.set, false)
	}
	if !w.set[col] {
		w.set[col] = true
		w.filled++
	}
	w.fields[col] = v
	return nil
}

// EndRow escapes the buffered fields and commits the row followed by the
// terminator. The first completed row freezes the expected width; every
// later row must match it exactly or the row is dropped with
// ErrFieldCountMismatch, leaving the output truncated at the last committed
// row boundary.
func (w *RowWriter) EndRow() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.open = false

	if w.width == 0 {
		// A zero-field row has no byte representation: a bare terminator
		// reads back as one empty field. Reject it rather than freeze the
		// width to a value no later row could ever match.
		if len(w.fields) == 0 {
			return w.fail(fmt.Errorf("%w: row %d has no fields", ErrSequence, w.row))
		}
		if w.filled != len(w.fields) {
			return w.fail(fmt.Errorf("%w: row %d has unset columns", ErrSequence, w.row))
		}
		w.width = w.filled
	} else if w.filled != w.width {
		return w.fail(&FieldError{Row: w.row, Col: w.filled,
			Err: fmt.Errorf("%w: got %d, want %d", ErrFieldCountMismatch, w.filled, w.width)})
	}

	// Validate the header names before anything reaches the sink, so an
	// invalid header row is never part of the output.
	if w.header == nil && w.st.header == HeaderFirstRow && w.row == 0 {
		table, err := newHeaderTable(w.fields)
		if err != nil {
			return w.fail(err)
		}
		w.header = table
	}
	return w.commitRow(w.fields)
}

func (w *RowWriter) commitRow(fields []string) error {
	buf := w.rowBuf[:0]
	var err error
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, w.st.comma)
		}
		if buf, err = appendEscaped(buf, f, w.st); err != nil {
			return w.fail(&FieldError{Row: w.row, Col: i, Err: err})
		}
	}
	buf = append(buf, w.st.terminator...)
	w.rowBuf = buf

	if err := w.sink.write(buf); err != nil {
		return w.fail(err)
	}
	w.rows++
	return nil
}

// EndFile flushes and closes the byte sink. It runs on every exit path of
// the one-shot entry points and is safe to call more than once; an open,
// uncommitted row is discarded. An empty file (at most a BOM) is valid.
func (w *RowWriter) EndFile() error {
	if w.sink.closed {
		return nil
	}
	if w.open {
		w.st.logger.Debug("csv writer finalized with open row discarded",
			"row", w.row, "fields", w.filled)
		w.open = false
	}
	err := w.sink.Close()
	w.st.logger.Debug("csv writer closed", "rows", w.rows, "clean", err == nil)
	return err
}

// Abort discards any open row and releases the destination. It distinguishes
// "dropped with pending data" from a clean EndFile in the debug log.
func (w *RowWriter) Abort() error {
	if w.sink.closed {
		return nil
	}
	if w.open {
		w.st.logger.Debug("csv writer aborted, pending row discarded",
			"row", w.row, "fields", w.filled)
		w.open = false
	}
	if w.err == nil {
		w.err = ErrClosed
	}
	return w.sink.Close()
}

// WriteRow writes one complete row: BeginRow, each field in order, EndRow.
func (w *RowWriter) WriteRow(fields []string) error {
	if _, err := w.BeginRow(); err != nil {
		return err
	}
	for _, f := range fields {
		if err := w.WriteField(f); err != nil {
			return err
		}
	}
	return w.EndRow()
}

// FieldIndex resolves a header name to its column.
func (w *RowWriter) FieldIndex(name string) (int, error) {
	return w.header.lookup(name)
}

// Row returns the index of the row most recently begun, or -1.
func (w *RowWriter) Row() int { return w.row }

// Width returns the frozen expected field count, or 0 while unset.
func (w *RowWriter) Width() int { return w.width }

// Err reports the first failure encountered by the writer.
func (w *RowWriter) Err() error { return w.err }

func (w *RowWriter) checkOpen() error {
	if w.err != nil {
		return w.err
	}
	if w.sink.closed {
		return w.fail(ErrClosed)
	}
	if !w.open {
		return w.fail(fmt.Errorf("%w: no open row", ErrSequence))
	}
	return nil
}

func (w *RowWriter) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return err
}
