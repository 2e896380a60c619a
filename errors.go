package csvcodec

import (
	"errors"
	"fmt"
)

// Configuration errors
var (
	// ErrInvalidDialect is returned when dialect construction detects
	// contradictory or unusable settings. Nothing is opened in that case.
	ErrInvalidDialect = errors.New("csvcodec: invalid dialect")
)

// Stream errors
var (
	// ErrStream is returned when the destination could not be opened or a
	// byte-level write/flush failed.
	ErrStream = errors.New("csvcodec: stream failure")
	// ErrClosed is returned when an operation is attempted on a finalized sink.
	ErrClosed = errors.New("csvcodec: sink is closed")
)

// Addressing errors
var (
	// ErrFieldCountMismatch is returned when a row's field count differs from
	// the frozen expected width. The offending row is not committed.
	ErrFieldCountMismatch = errors.New("csvcodec: row field count does not match expected width")
	// ErrUnknownField is returned when a field name has no column in the
	// header table, or no header table exists.
	ErrUnknownField = errors.New("csvcodec: unknown field name")
	// ErrSequence is returned when rows or fields are driven out of the
	// required order, e.g. beginning a row while one is still open.
	ErrSequence = errors.New("csvcodec: operation out of sequence")
	// ErrOutOfOrder is returned when a column index falls outside the frozen
	// row width.
	ErrOutOfOrder = errors.New("csvcodec: column outside row width")
)

// Container errors
var (
	// ErrNestedContainerRequired is returned when a multi-field value is
	// encoded at file focus without requesting a row container.
	ErrNestedContainerRequired = errors.New("csvcodec: value requires a row container")
	// ErrExcessNesting is returned when a container is requested at row
	// focus; CSV has no third level.
	ErrExcessNesting = errors.New("csvcodec: container nesting deeper than file/row")
	// ErrUnsupportedType is returned when a value is outside the recognized
	// leaf kinds and implements no field marshaling interface.
	ErrUnsupportedType = errors.New("csvcodec: unsupported value type")
)

// Escaping errors
var (
	// ErrQuoteRequired is returned when a field needs quoting but the dialect
	// forbids quotes.
	ErrQuoteRequired = errors.New("csvcodec: field requires quoting but quoting is disabled")
)

// Tokenizer errors
var (
	// ErrBareQuote is returned when an unexpected quote is found in an unquoted field.
	ErrBareQuote = errors.New("csvcodec: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is not closed before EOF.
	ErrUnterminatedQuote = errors.New("csvcodec: unterminated quoted field")
)

// ParseError contains location information for read-side tokenizing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvcodec: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldError carries row/column context for addressing and conversion
// failures on the write and decode paths. Name is set when the field was
// addressed through the header table.
type FieldError struct {
	Row  int
	Col  int
	Name string
	Err  error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return fmt.Sprintf("csvcodec: row %d, field %q: %v", e.Row, e.Name, e.Err)
	}
	return fmt.Sprintf("csvcodec: row %d, column %d: %v", e.Row, e.Col, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
