package csvcodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectDefaults(t *testing.T) {
	t.Parallel()

	st, err := (*Dialect)(nil).writeSettings()
	require.NoError(t, err)

	assert.Equal(t, byte(','), st.comma)
	assert.Equal(t, byte('"'), st.quote)
	assert.Equal(t, "\n", st.terminator)
	assert.Equal(t, QuoteMinimal, st.quoting)
	assert.Equal(t, EncodingUTF8, st.encoding)
	assert.Equal(t, time.RFC3339, st.timeLayout)
	assert.Equal(t, -1, st.floatPrec)
	assert.Equal(t, byte('g'), st.floatFmt)
	assert.NotNil(t, st.logger)
}

func TestDialectValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
	}{
		{name: "commaEqualsQuote", dialect: Dialect{Comma: '"'}},
		{name: "commaIsNewline", dialect: Dialect{Comma: '\n'}},
		{name: "quoteIsCarriageReturn", dialect: Dialect{Quote: '\r'}},
		{name: "badTerminator", dialect: Dialect{Terminator: "|"}},
		{name: "negativeWidth", dialect: Dialect{FieldsPerRecord: -1}},
		{name: "columnsWithoutPolicy", dialect: Dialect{Columns: []string{"a"}}},
		{name: "headerColumnsEmpty", dialect: Dialect{Header: HeaderColumns}},
		{name: "duplicateColumn", dialect: Dialect{Header: HeaderColumns, Columns: []string{"a", "a"}}},
		{name: "emptyColumnName", dialect: Dialect{Header: HeaderColumns, Columns: []string{"a", ""}}},
		{name: "widthConflictsColumns", dialect: Dialect{Header: HeaderColumns, Columns: []string{"a", "b"}, FieldsPerRecord: 3}},
		{name: "badFloatFormat", dialect: Dialect{FloatFormat: 'q'}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.dialect.Validate()
			require.ErrorIs(t, err, ErrInvalidDialect)
		})
	}
}

func TestDialectAutoEncodingIsReadOnly(t *testing.T) {
	t.Parallel()

	d := &Dialect{Encoding: EncodingAuto}
	require.NoError(t, d.Validate())

	_, err := d.writeSettings()
	require.ErrorIs(t, err, ErrInvalidDialect)
}

func TestDialectFromYAML(t *testing.T) {
	t.Parallel()

	data := []byte(`
comma: ";"
quote: "'"
terminator: crlf
quoting: always
encoding: utf-16le
bom: always
header: columns
columns: [id, name, email]
trim_space: true
time_layout: "2006-01-02"
`)
	d, err := DialectFromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, byte(';'), d.Comma)
	assert.Equal(t, byte('\''), d.Quote)
	assert.Equal(t, "\r\n", d.Terminator)
	assert.Equal(t, QuoteAlways, d.Quoting)
	assert.Equal(t, EncodingUTF16LE, d.Encoding)
	assert.Equal(t, BOMAlways, d.BOM)
	assert.Equal(t, HeaderColumns, d.Header)
	assert.Equal(t, []string{"id", "name", "email"}, d.Columns)
	assert.True(t, d.TrimSpace)
	assert.Equal(t, "2006-01-02", d.TimeLayout)
}

func TestDialectFromYAMLRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "notYAML", yaml: "{"},
		{name: "multiByteComma", yaml: `comma: "ab"`},
		{name: "unknownQuoting", yaml: `quoting: sometimes`},
		{name: "unknownEncoding", yaml: `encoding: ebcdic`},
		{name: "unknownTerminator", yaml: `terminator: nul`},
		{name: "unknownHeader", yaml: `header: maybe`},
		{name: "unknownBOM", yaml: `bom: twice`},
		{name: "invalidCombination", yaml: "comma: \"'\"\nquote: \"'\""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DialectFromYAML([]byte(tc.yaml))
			require.ErrorIs(t, err, ErrInvalidDialect)
		})
	}
}
