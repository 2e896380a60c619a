package csvcodec

import (
	"encoding"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldMarshaler lets a composite value serialize itself into a single
// field. This is the only recursion the bridge permits below row focus.
type FieldMarshaler interface {
	MarshalCSVField() (string, error)
}

// FieldUnmarshaler is the read-side counterpart of FieldMarshaler.
type FieldUnmarshaler interface {
	UnmarshalCSVField(text string) error
}

// formatField converts a recognized leaf value to its field text. The kind
// set is a closed union; a Marshaler here means a container was requested
// one level too deep.
func formatField(v any, st *settings) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		if st.binaryHex {
			return hex.EncodeToString(x), nil
		}
		return base64.StdEncoding.EncodeToString(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), st.floatFmt, st.floatPrec, 32), nil
	case float64:
		return strconv.FormatFloat(x, st.floatFmt, st.floatPrec, 64), nil
	case time.Time:
		return x.Format(st.timeLayout), nil
	case decimal.Decimal:
		return x.String(), nil
	case uuid.UUID:
		return x.String(), nil
	}

	if m, ok := v.(FieldMarshaler); ok {
		return m.MarshalCSVField()
	}
	if m, ok := v.(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		return string(b), err
	}
	if _, ok := v.(Marshaler); ok {
		// A whole-container value cannot fit in one field.
		return "", ErrExcessNesting
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// scanField parses field text into the pointed-to leaf value.
func scanField(text string, v any, st *settings) error {
	switch p := v.(type) {
	case *string:
		*p = text
		return nil
	case *[]byte:
		var (
			b   []byte
			err error
		)
		if st.binaryHex {
			b, err = hex.DecodeString(text)
		} else {
			b, err = base64.StdEncoding.DecodeString(text)
		}
		if err != nil {
			return scanError(text, err)
		}
		*p = b
		return nil
	case *bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return scanError(text, err)
		}
		*p = b
		return nil
	case *int:
		n, err := strconv.ParseInt(text, 10, 0)
		if err != nil {
			return scanError(text, err)
		}
		*p = int(n)
		return nil
	case *int8:
		n, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return scanError(text, err)
		}
		*p = int8(n)
		return nil
	case *int16:
		n, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return scanError(text, err)
		}
		*p = int16(n)
		return nil
	case *int32:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return scanError(text, err)
		}
		*p = int32(n)
		return nil
	case *int64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return scanError(text, err)
		}
		*p = n
		return nil
	case *uint:
		n, err := strconv.ParseUint(text, 10, 0)
		if err != nil {
			return scanError(text, err)
		}
		*p = uint(n)
		return nil
	case *uint8:
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return scanError(text, err)
		}
		*p = uint8(n)
		return nil
	case *uint16:
		n, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return scanError(text, err)
		}
		*p = uint16(n)
		return nil
	case *uint32:
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return scanError(text, err)
		}
		*p = uint32(n)
		return nil
	case *uint64:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return scanError(text, err)
		}
		*p = n
		return nil
	case *float32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return scanError(text, err)
		}
		*p = float32(f)
		return nil
	case *float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return scanError(text, err)
		}
		*p = f
		return nil
	case *time.Time:
		t, err := time.Parse(st.timeLayout, text)
		if err != nil {
			return scanError(text, err)
		}
		*p = t
		return nil
	case *decimal.Decimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return scanError(text, err)
		}
		*p = d
		return nil
	case *uuid.UUID:
		u, err := uuid.Parse(text)
		if err != nil {
			return scanError(text, err)
		}
		*p = u
		return nil
	}

	if u, ok := v.(FieldUnmarshaler); ok {
		return u.UnmarshalCSVField(text)
	}
	if u, ok := v.(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(text))
	}
	if _, ok := v.(Unmarshaler); ok {
		return ErrExcessNesting
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func scanError(text string, err error) error {
	return fmt.Errorf("csvcodec: field %q: %w", text, err)
}
