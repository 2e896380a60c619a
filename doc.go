// # csvcodec: a structured CSV codec for Go
//
// csvcodec serializes arbitrarily structured application values to CSV and
// reads them back, bridging a nested visitor-style encode/decode contract
// onto CSV's strictly two-level file → row → field shape.
//
// # Layers
//
//   - Dialect: validated-once policy for delimiters, quoting, text encoding,
//     byte-order marks, headers, trimming, and leaf-value formats; loadable
//     from YAML via DialectFromYAML.
//   - RowWriter / RowReader: the row/field addressing layer. Sole owner of
//     the row cursor, the frozen expected field count, and the header table;
//     fields are addressable by position or by header name, in any order
//     within the open row.
//   - Encoder / Decoder: the container state machine driven by values
//     implementing Marshaler/Unmarshaler. File focus handles one row per
//     call, row focus one field per call; a third level always fails with
//     ErrExcessNesting. Recognized leaf kinds are text, bool, the integer
//     and float families, byte slices, time.Time, decimal.Decimal, and
//     uuid.UUID; composites may collapse into a single field through
//     FieldMarshaler or encoding.TextMarshaler.
//   - Scanner: the streaming tokenizer, with BOM sniffing and decoding of
//     UTF-16 and single-byte codepages through golang.org/x/text.
//
// One-shot entry points (WriteAll, ReadAll, Marshal, Unmarshal, and their
// io.Writer/io.Reader and file-path variants) open a fresh sink, drive it to
// completion, and always finalize it, attaching any finalization failure as
// secondary context to the primary error.
//
// # Errors
//
// Every failure is a typed, returned error classified by the sentinel
// taxonomy in errors.go and matchable with errors.Is; positional context
// travels in ParseError and FieldError.
package csvcodec
