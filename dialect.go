package csvcodec

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

// QuotePolicy controls when fields are wrapped in quote characters.
type QuotePolicy int

const (
	// QuoteMinimal quotes a field only when it contains the field delimiter,
	// the quote character, or a line break.
	QuoteMinimal QuotePolicy = iota
	// QuoteAlways quotes every field.
	QuoteAlways
	// QuoteNever forbids quoting; an unquotable field fails with ErrQuoteRequired.
	QuoteNever
)

// Encoding selects the byte encoding of the CSV stream.
type Encoding int

const (
	// EncodingUTF8 is the default.
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingLatin1
	EncodingWindows1252
	// EncodingAuto sniffs the encoding from a leading BOM when reading.
	// It is not valid for writing.
	EncodingAuto
)

// BOMPolicy controls emission and detection of a byte-order mark.
type BOMPolicy int

const (
	// BOMAuto writes a BOM only for UTF-16 encodings, and sniffs one when reading.
	BOMAuto BOMPolicy = iota
	// BOMAlways writes a BOM whenever the encoding defines one.
	BOMAlways
	// BOMNever writes no BOM and skips none.
	BOMNever
)

// HeaderPolicy controls how the header table is built.
type HeaderPolicy int

const (
	// HeaderNone disables name-based field addressing.
	HeaderNone HeaderPolicy = iota
	// HeaderFirstRow treats the first row written or read as the header.
	HeaderFirstRow
	// HeaderColumns uses the explicit Dialect.Columns names. On write the
	// header row is emitted automatically as row 0.
	HeaderColumns
)

// Dialect is the user-supplied, construction-time policy for a CSV stream.
// The zero value (and a nil *Dialect) means RFC 4180 defaults: comma
// delimiter, double-quote, LF terminator, minimal quoting, UTF-8, no header.
//
// A Dialect is validated once when a writer, scanner, or codec entry point
// is constructed and is never mutated afterwards.
type Dialect struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Terminator is the row terminator, one of "\n", "\r\n", or "\r".
	// Default is "\n". Readers accept all three regardless.
	Terminator string

	Quoting  QuotePolicy
	Encoding Encoding
	BOM      BOMPolicy

	Header HeaderPolicy
	// Columns holds the explicit header names for HeaderColumns.
	Columns []string

	// TrimSpace trims surrounding whitespace from unquoted fields when reading.
	TrimSpace bool

	// FieldsPerRecord fixes the expected row width. Zero freezes the width
	// to that of the first completed row.
	FieldsPerRecord int

	// TimeLayout formats and parses time.Time leaf values. Default is time.RFC3339.
	TimeLayout string
	// FloatPrecision is the digit count passed to strconv.FormatFloat.
	// Values <= 0 select the shortest exact representation.
	FloatPrecision int
	// FloatFormat is the strconv.FormatFloat verb. Default is 'g'.
	FloatFormat byte
	// BinaryHex encodes []byte leaf values as hex instead of base64.
	BinaryHex bool

	// Logger receives debug diagnostics (rows committed, aborted finalization).
	// Nil disables logging.
	Logger *slog.Logger
}

// settings is the validated, immutable snapshot derived from a Dialect.
// It is owned by the component that created it for that component's lifetime.
type settings struct {
	comma      byte
	quote      byte
	terminator string
	quoting    QuotePolicy
	encoding   Encoding
	bomPolicy  BOMPolicy
	header     HeaderPolicy
	columns    []string
	trim       bool
	width      int
	timeLayout string
	floatPrec  int
	floatFmt   byte
	binaryHex  bool
	logger     *slog.Logger
}

// Validate reports whether the dialect is internally consistent. It is run
// automatically at construction; nothing is opened when it fails.
func (d *Dialect) Validate() error {
	_, err := d.settings(false)
	return err
}

func (d *Dialect) writeSettings() (*settings, error) { return d.settings(true) }
func (d *Dialect) readSettings() (*settings, error)  { return d.settings(false) }

func (d *Dialect) settings(forWrite bool) (*settings, error) {
	if d == nil {
		d = &Dialect{}
	}

	st := &settings{
		comma:      d.Comma,
		quote:      d.Quote,
		terminator: d.Terminator,
		quoting:    d.Quoting,
		encoding:   d.Encoding,
		bomPolicy:  d.BOM,
		header:     d.Header,
		trim:       d.TrimSpace,
		width:      d.FieldsPerRecord,
		timeLayout: d.TimeLayout,
		floatPrec:  d.FloatPrecision,
		floatFmt:   d.FloatFormat,
		binaryHex:  d.BinaryHex,
		logger:     d.Logger,
	}
	if st.comma == 0 {
		st.comma = ','
	}
	if st.quote == 0 {
		st.quote = '"'
	}
	if st.terminator == "" {
		st.terminator = "\n"
	}
	if st.timeLayout == "" {
		st.timeLayout = time.RFC3339
	}
	if st.floatPrec <= 0 {
		st.floatPrec = -1
	}
	if st.floatFmt == 0 {
		st.floatFmt = 'g'
	}
	if st.logger == nil {
		st.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if st.comma == st.quote {
		return nil, fmt.Errorf("%w: field delimiter and quote are identical", ErrInvalidDialect)
	}
	if st.comma == '\n' || st.comma == '\r' {
		return nil, fmt.Errorf("%w: field delimiter collides with row terminator", ErrInvalidDialect)
	}
	if st.quote == '\n' || st.quote == '\r' {
		return nil, fmt.Errorf("%w: quote collides with row terminator", ErrInvalidDialect)
	}
	switch st.terminator {
	case "\n", "\r\n", "\r":
	default:
		return nil, fmt.Errorf("%w: terminator %q is not one of \\n, \\r\\n, \\r", ErrInvalidDialect, st.terminator)
	}
	switch st.quoting {
	case QuoteMinimal, QuoteAlways, QuoteNever:
	default:
		return nil, fmt.Errorf("%w: unknown quoting policy %d", ErrInvalidDialect, st.quoting)
	}
	switch st.encoding {
	case EncodingUTF8, EncodingUTF16LE, EncodingUTF16BE, EncodingLatin1, EncodingWindows1252:
	case EncodingAuto:
		if forWrite {
			return nil, fmt.Errorf("%w: encoding auto-detection is read-only", ErrInvalidDialect)
		}
	default:
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrInvalidDialect, st.encoding)
	}
	switch st.bomPolicy {
	case BOMAuto, BOMAlways, BOMNever:
	default:
		return nil, fmt.Errorf("%w: unknown BOM policy %d", ErrInvalidDialect, st.bomPolicy)
	}
	if st.width < 0 {
		return nil, fmt.Errorf("%w: negative FieldsPerRecord", ErrInvalidDialect)
	}
	switch st.floatFmt {
	case 'b', 'e', 'E', 'f', 'g', 'G', 'x', 'X':
	default:
		return nil, fmt.Errorf("%w: unknown float format %q", ErrInvalidDialect, st.floatFmt)
	}

	switch st.header {
	case HeaderNone, HeaderFirstRow:
		if len(d.Columns) > 0 {
			return nil, fmt.Errorf("%w: Columns set without HeaderColumns policy", ErrInvalidDialect)
		}
	case HeaderColumns:
		if len(d.Columns) == 0 {
			return nil, fmt.Errorf("%w: HeaderColumns with no column names", ErrInvalidDialect)
		}
		st.columns = make([]string, len(d.Columns))
		copy(st.columns, d.Columns)
		seen := make(map[string]struct{}, len(st.columns))
		for _, name := range st.columns {
			if name == "" {
				return nil, fmt.Errorf("%w: empty column name", ErrInvalidDialect)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: duplicate column name %q", ErrInvalidDialect, name)
			}
			seen[name] = struct{}{}
		}
		if st.width != 0 && st.width != len(st.columns) {
			return nil, fmt.Errorf("%w: FieldsPerRecord %d conflicts with %d columns",
				ErrInvalidDialect, st.width, len(st.columns))
		}
		st.width = len(st.columns)
	default:
		return nil, fmt.Errorf("%w: unknown header policy %d", ErrInvalidDialect, st.header)
	}

	return st, nil
}

// yamlDialect mirrors Dialect with string-valued enums for dialect files.
type yamlDialect struct {
	Comma           string   `yaml:"comma"`
	Quote           string   `yaml:"quote"`
	Terminator      string   `yaml:"terminator"` // lf | crlf | cr
	Quoting         string   `yaml:"quoting"`    // minimal | always | never
	Encoding        string   `yaml:"encoding"`   // utf-8 | utf-16le | utf-16be | latin-1 | windows-1252 | auto
	BOM             string   `yaml:"bom"`        // auto | always | never
	Header          string   `yaml:"header"`     // none | first-row | columns
	Columns         []string `yaml:"columns"`
	TrimSpace       bool     `yaml:"trim_space"`
	FieldsPerRecord int      `yaml:"fields_per_record"`
	TimeLayout      string   `yaml:"time_layout"`
	FloatPrecision  int      `yaml:"float_precision"`
	FloatFormat     string   `yaml:"float_format"`
	BinaryHex       bool     `yaml:"binary_hex"`
}

// DialectFromYAML builds a validated Dialect from a YAML dialect file.
func DialectFromYAML(data []byte) (*Dialect, error) {
	var y yamlDialect
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDialect, err)
	}

	d := &Dialect{
		Columns:         y.Columns,
		TrimSpace:       y.TrimSpace,
		FieldsPerRecord: y.FieldsPerRecord,
		TimeLayout:      y.TimeLayout,
		FloatPrecision:  y.FloatPrecision,
		BinaryHex:       y.BinaryHex,
	}

	byteOf := func(field, s string) (byte, error) {
		if len(s) != 1 {
			return 0, fmt.Errorf("%w: %s must be a single character, got %q", ErrInvalidDialect, field, s)
		}
		return s[0], nil
	}
	var err error
	if y.Comma != "" {
		if d.Comma, err = byteOf("comma", y.Comma); err != nil {
			return nil, err
		}
	}
	if y.Quote != "" {
		if d.Quote, err = byteOf("quote", y.Quote); err != nil {
			return nil, err
		}
	}
	if y.FloatFormat != "" {
		if d.FloatFormat, err = byteOf("float_format", y.FloatFormat); err != nil {
			return nil, err
		}
	}

	switch y.Terminator {
	case "", "lf":
		d.Terminator = "\n"
	case "crlf":
		d.Terminator = "\r\n"
	case "cr":
		d.Terminator = "\r"
	default:
		return nil, fmt.Errorf("%w: unknown terminator %q", ErrInvalidDialect, y.Terminator)
	}
	switch y.Quoting {
	case "", "minimal":
		d.Quoting = QuoteMinimal
	case "always":
		d.Quoting = QuoteAlways
	case "never":
		d.Quoting = QuoteNever
	default:
		return nil, fmt.Errorf("%w: unknown quoting policy %q", ErrInvalidDialect, y.Quoting)
	}
	switch y.Encoding {
	case "", "utf-8":
		d.Encoding = EncodingUTF8
	case "utf-16le":
		d.Encoding = EncodingUTF16LE
	case "utf-16be":
		d.Encoding = EncodingUTF16BE
	case "latin-1":
		d.Encoding = EncodingLatin1
	case "windows-1252":
		d.Encoding = EncodingWindows1252
	case "auto":
		d.Encoding = EncodingAuto
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidDialect, y.Encoding)
	}
	switch y.BOM {
	case "", "auto":
		d.BOM = BOMAuto
	case "always":
		d.BOM = BOMAlways
	case "never":
		d.BOM = BOMNever
	default:
		return nil, fmt.Errorf("%w: unknown BOM policy %q", ErrInvalidDialect, y.BOM)
	}
	switch y.Header {
	case "", "none":
		d.Header = HeaderNone
	case "first-row":
		d.Header = HeaderFirstRow
	case "columns":
		d.Header = HeaderColumns
	default:
		return nil, fmt.Errorf("%w: unknown header policy %q", ErrInvalidDialect, y.Header)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
