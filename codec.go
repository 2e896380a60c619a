package csvcodec

import (
	"bytes"
	"errors"
	"io"
)

// finalize attaches a finalization failure to the primary error without
// replacing it. The destination is always closed, best-effort, even when
// serialization already failed mid-stream.
func finalize(primary error, closeErr error) error {
	if closeErr == nil {
		return primary
	}
	if primary == nil {
		return closeErr
	}
	return errors.Join(primary, closeErr)
}

// WriteAllTo serializes rows to w, stopping at the first failure and always
// finalizing the sink.
func WriteAllTo(w io.Writer, rows [][]string, d *Dialect) error {
	rw, err := NewRowWriter(w, d)
	if err != nil {
		return err
	}
	return finalize(writeRows(rw, rows), rw.EndFile())
}

// WriteAll serializes rows to a byte slice.
func WriteAll(rows [][]string, d *Dialect) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAllTo(&buf, rows, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serializes rows to the file at path, overwriting or appending.
func WriteFile(path string, rows [][]string, appendTo bool, d *Dialect) error {
	rw, err := NewRowWriterPath(path, appendTo, d)
	if err != nil {
		return err
	}
	return finalize(writeRows(rw, rows), rw.EndFile())
}

func writeRows(rw *RowWriter, rows [][]string) error {
	for _, row := range rows {
		if err := rw.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Encode drives v as the whole-file container root, writing to w.
func Encode(w io.Writer, v Marshaler, d *Dialect) error {
	enc, err := NewEncoder(w, d)
	if err != nil {
		return err
	}
	return finalize(v.MarshalCSV(enc), enc.Close())
}

// Marshal drives v as the whole-file container root and returns the bytes.
func Marshal(v Marshaler, d *Dialect) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadAllFrom reads every data row from r.
func ReadAllFrom(r io.Reader, d *Dialect) ([][]string, error) {
	rr, err := NewRowReader(r, d)
	if err != nil {
		return nil, err
	}
	return rr.ReadAllRows()
}

// ReadAll reads every data row from data.
func ReadAll(data []byte, d *Dialect) ([][]string, error) {
	return ReadAllFrom(bytes.NewReader(data), d)
}

// DecodeFrom drives v as the whole-file container root over r.
func DecodeFrom(r io.Reader, v Unmarshaler, d *Dialect) error {
	dec, err := NewDecoder(r, d)
	if err != nil {
		return err
	}
	return v.UnmarshalCSV(dec)
}

// Unmarshal drives v as the whole-file container root over data.
func Unmarshal(data []byte, v Unmarshaler, d *Dialect) error {
	return DecodeFrom(bytes.NewReader(data), v, d)
}
