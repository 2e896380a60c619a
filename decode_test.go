package csvcodec

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type peopleDoc struct {
	people []person
}

func (d *peopleDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Rows(func(row *Decoder) error {
		var p person
		if err := row.Value(&p.ID); err != nil {
			return err
		}
		if err := row.Value(&p.Name); err != nil {
			return err
		}
		d.people = append(d.people, p)
		return nil
	})
}

func TestDecoderRows(t *testing.T) {
	t.Parallel()

	var doc peopleDoc
	err := Unmarshal([]byte("1,Ann\n2,\"O'Hara, Jr\"\n"), &doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []person{{1, "Ann"}, {2, "O'Hara, Jr"}}, doc.people)
}

type namedDoc struct {
	names []string
}

func (d *namedDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Rows(func(row *Decoder) error {
		var name string
		if err := row.Named("name", &name); err != nil {
			return err
		}
		d.names = append(d.names, name)
		return nil
	})
}

func TestDecoderNamed(t *testing.T) {
	t.Parallel()

	var doc namedDoc
	err := Unmarshal([]byte("id,name\n1,Ann\n2,Bob\n"), &doc, &Dialect{Header: HeaderFirstRow})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, doc.names)
}

type unknownFieldDoc struct{}

func (unknownFieldDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Rows(func(row *Decoder) error {
		var s string
		return row.Named("email", &s)
	})
}

func TestDecoderUnknownField(t *testing.T) {
	t.Parallel()

	err := Unmarshal([]byte("id,name\n1,Ann\n"), unknownFieldDoc{}, &Dialect{Header: HeaderFirstRow})
	require.ErrorIs(t, err, ErrUnknownField)
}

type scalarDoc struct{ values []int }

func (d *scalarDoc) UnmarshalCSV(dec *Decoder) error {
	for {
		var v int
		err := dec.Value(&v)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		d.values = append(d.values, v)
	}
}

func TestDecoderScalarAtFileFocus(t *testing.T) {
	t.Parallel()

	t.Run("singleColumn", func(t *testing.T) {
		t.Parallel()
		var doc scalarDoc
		require.NoError(t, Unmarshal([]byte("1\n2\n3\n"), &doc, nil))
		assert.Equal(t, []int{1, 2, 3}, doc.values)
	})

	t.Run("widthTwoRejected", func(t *testing.T) {
		t.Parallel()
		var doc scalarDoc
		err := Unmarshal([]byte("1,2\n"), &doc, &Dialect{FieldsPerRecord: 2})
		require.ErrorIs(t, err, ErrNestedContainerRequired)
	})
}

type tooDeepDoc struct{}

func (tooDeepDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		return row.Row(func(*Decoder) error { return nil })
	})
}

func TestDecoderExcessNesting(t *testing.T) {
	t.Parallel()

	err := Unmarshal([]byte("a\n"), tooDeepDoc{}, nil)
	require.ErrorIs(t, err, ErrExcessNesting)
}

type leafDoc struct {
	s   string
	b   bool
	i   int64
	f   float64
	bin []byte
	ts  time.Time
	dec decimal.Decimal
	id  uuid.UUID
}

func (d *leafDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		for _, p := range []any{&d.s, &d.b, &d.i, &d.f, &d.bin, &d.ts, &d.dec, &d.id} {
			if err := row.Value(p); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestDecoderLeafKinds(t *testing.T) {
	t.Parallel()

	input := "text,true,-42,3.5,3q0=,2024-05-01T12:00:00Z,12.34,6ba7b810-9dad-11d1-80b4-00c04fd430c8\n"
	var doc leafDoc
	require.NoError(t, Unmarshal([]byte(input), &doc, nil))

	assert.Equal(t, "text", doc.s)
	assert.True(t, doc.b)
	assert.Equal(t, int64(-42), doc.i)
	assert.Equal(t, 3.5, doc.f)
	assert.Equal(t, []byte{0xde, 0xad}, doc.bin)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), doc.ts.UTC())
	assert.True(t, doc.dec.Equal(decimal.New(1234, -2)))
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), doc.id)
}

type badIntDoc struct{}

func (badIntDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		var n int
		return row.Value(&n)
	})
}

func TestDecoderParseFailure(t *testing.T) {
	t.Parallel()

	err := Unmarshal([]byte("not-a-number\n"), badIntDoc{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-number")
}

type overrunDoc struct{}

func (overrunDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		var a, b string
		if err := row.Value(&a); err != nil {
			return err
		}
		return row.Value(&b)
	})
}

func TestDecoderFieldOverrun(t *testing.T) {
	t.Parallel()

	err := Unmarshal([]byte("only\n"), overrunDoc{}, nil)
	require.ErrorIs(t, err, ErrOutOfOrder)
}

type valueAtDoc struct {
	first, third string
}

func (d *valueAtDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		if err := row.ValueAt(2, &d.third); err != nil {
			return err
		}
		return row.ValueAt(0, &d.first)
	})
}

func TestDecoderValueAt(t *testing.T) {
	t.Parallel()

	var doc valueAtDoc
	require.NoError(t, Unmarshal([]byte("a,b,c\n"), &doc, nil))
	assert.Equal(t, "a", doc.first)
	assert.Equal(t, "c", doc.third)

	err := Unmarshal([]byte("a\n"), &valueAtDoc{}, nil)
	require.ErrorIs(t, err, ErrOutOfOrder)
}

type fieldUnmarshalerDoc struct {
	total money2
}

type money2 struct{ cents int64 }

func (m *money2) UnmarshalCSVField(text string) error {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return err
	}
	m.cents = d.Shift(2).IntPart()
	return nil
}

func (d *fieldUnmarshalerDoc) UnmarshalCSV(dec *Decoder) error {
	return dec.Row(func(row *Decoder) error {
		return row.Value(&d.total)
	})
}

func TestDecoderFieldUnmarshaler(t *testing.T) {
	t.Parallel()

	var doc fieldUnmarshalerDoc
	require.NoError(t, Unmarshal([]byte("19.99\n"), &doc, nil))
	assert.Equal(t, int64(1999), doc.total.cents)
}

func TestDecoderHeaderAccess(t *testing.T) {
	t.Parallel()

	dec, err := NewDecoder(strings.NewReader("id,name\n1,Ann\n"), &Dialect{Header: HeaderFirstRow})
	require.NoError(t, err)

	require.NoError(t, dec.Row(func(row *Decoder) error {
		var id string
		return row.Value(&id)
	}))
	assert.Equal(t, []string{"id", "name"}, dec.Header())

	col, err := dec.FieldIndex("id")
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}
