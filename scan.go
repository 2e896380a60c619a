package csvcodec

import (
	"fmt"
	"io"
	"strings"
)

// TokenSource yields the raw field strings of one row per call. The
// built-in implementation is Scanner; RowReader accepts any TokenSource.
type TokenSource interface {
	// ReadRow returns the next row's fields, or io.EOF after the last row.
	ReadRow() ([]string, error)
}

// Scanner is the streaming tokenizer: it scans raw bytes into per-row field
// strings, handling quoted fields with doubled-quote escapes, LF/CRLF/CR
// terminators, BOM detection, and decoding of non-UTF-8 input.
type Scanner struct {
	st  *settings
	src io.Reader

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	data     []byte // accumulated field bytes for the current row
	bounds   []int  // start/end offset pairs into data
	isQuoted []bool // whether each completed field was quoted

	line     int
	finished bool
}

// NewScanner wraps r with the decoder the dialect calls for and returns a
// tokenizer positioned after any BOM.
func NewScanner(r io.Reader, d *Dialect) (*Scanner, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil source", ErrStream)
	}
	st, err := d.readSettings()
	if err != nil {
		return nil, err
	}
	src, _ := decodeReader(r, st)
	return &Scanner{
		st:   st,
		src:  src,
		buf:  make([]byte, defaultBufferSize),
		line: 1,
	}, nil
}

// Line returns the current one-based physical line, counting embedded
// newlines inside quoted fields.
func (s *Scanner) Line() int { return s.line }

// ReadRow scans the next row. Unquoted fields are trimmed when the dialect
// asks for it; quoted fields are returned verbatim.
func (s *Scanner) ReadRow() ([]string, error) {
	if s == nil || s.finished {
		return nil, io.EOF
	}

	comma := s.st.comma
	quote := s.st.quote

	s.data = s.data[:0]
	s.bounds = s.bounds[:0]
	s.isQuoted = s.isQuoted[:0]

	inQuotes := false
	fieldQuoted := false
	fieldStart := 0
	column := 1
	sawAny := false

	endField := func() {
		s.bounds = append(s.bounds, fieldStart, len(s.data))
		s.isQuoted = append(s.isQuoted, fieldQuoted)
		fieldStart = len(s.data)
		fieldQuoted = false
	}

	for {
		b, err := s.nextByte()
		if err == io.EOF {
			s.finished = true
			if inQuotes {
				return nil, &ParseError{Line: s.line, Column: column, Err: ErrUnterminatedQuote}
			}
			// Flush a trailing field if data ended without a newline.
			if sawAny {
				endField()
				return s.buildRow(), nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read: %w", ErrStream, err)
		}
		sawAny = true

		if inQuotes {
			switch b {
			case quote:
				next, perr := s.peekByte()
				if perr != nil && perr != io.EOF {
					return nil, fmt.Errorf("%w: read: %w", ErrStream, perr)
				}
				if perr == nil && next == quote {
					// Doubled quote inside a quoted field is a literal quote.
					s.bufPos++
					s.data = append(s.data, quote)
					column += 2
					continue
				}
				inQuotes = false
				column++
			case '\n':
				s.data = append(s.data, b)
				s.line++
				column = 1
			default:
				s.data = append(s.data, b)
				column++
			}
			continue
		}

		switch b {
		case comma:
			endField()
			column++
		case '\n':
			endField()
			s.line++
			return s.buildRow(), nil
		case '\r':
			next, perr := s.peekByte()
			if perr != nil && perr != io.EOF {
				return nil, fmt.Errorf("%w: read: %w", ErrStream, perr)
			}
			if perr == nil && next == '\n' {
				s.bufPos++
			}
			endField()
			s.line++
			return s.buildRow(), nil
		case quote:
			// A quote opens a quoted field only at the start of the field.
			if len(s.data) != fieldStart || fieldQuoted {
				return nil, &ParseError{Line: s.line, Column: column, Err: ErrBareQuote}
			}
			inQuotes = true
			fieldQuoted = true
			column++
		default:
			s.data = append(s.data, b)
			column++
		}
	}
}

// ReadAllRows exhausts the scanner, collecting rows until io.EOF.
func (s *Scanner) ReadAllRows() ([][]string, error) {
	var rows [][]string
	for {
		row, err := s.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// buildRow materialises the accumulated bounds into field strings.
func (s *Scanner) buildRow() []string {
	n := len(s.bounds) / 2
	row := make([]string, n)
	for i := 0; i < n; i++ {
		f := string(s.data[s.bounds[2*i]:s.bounds[2*i+1]])
		if s.st.trim && !s.isQuoted[i] {
			f = strings.TrimSpace(f)
		}
		row[i] = f
	}
	return row
}

// nextByte returns the next byte, refilling the working buffer from src.
func (s *Scanner) nextByte() (byte, error) {
	for s.bufPos >= s.bufLen {
		if s.bufErr != nil {
			err := s.bufErr
			s.bufErr = nil
			return 0, err
		}
		n, err := s.src.Read(s.buf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			continue
		}
		s.bufPos = 0
		s.bufLen = n
		s.bufErr = err
	}
	b := s.buf[s.bufPos]
	s.bufPos++
	return b, nil
}

// peekByte returns the next byte without consuming it.
func (s *Scanner) peekByte() (byte, error) {
	for s.bufPos >= s.bufLen {
		if s.bufErr != nil {
			return 0, s.bufErr
		}
		n, err := s.src.Read(s.buf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			continue
		}
		s.bufPos = 0
		s.bufLen = n
		s.bufErr = err
	}
	return s.buf[s.bufPos], nil
}
