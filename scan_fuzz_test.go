package csvcodec

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func FuzzScannerConsistency(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n",
		"a,\"b,b\",c\n",
		"a,\"b\nc\",d\n",
		"\"unterminated\n",
		"a\"b,c\n",
		"one\r\ntwo\r\n",
		"trailing,newline\n",
		"\xEF\xBB\xBFid,name\n1,Ann\n",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1<<12 {
			t.Skip()
		}

		rowsManual, errManual := scanRowsSequential(input)
		rowsAll, errAll := scanRowsAll(input)

		if !sameScanError(errManual, errAll) {
			t.Fatalf("ReadAllRows mismatch: manual=%v all=%v input=%q", errManual, errAll, truncateForMessage(input))
		}
		if errManual != nil {
			return
		}
		if !rowsEqual(rowsManual, rowsAll) {
			t.Fatalf("rows mismatch:\nmanual=%v\nall=%v\ninput=%q", rowsManual, rowsAll, truncateForMessage(input))
		}

		// Rectangular tables must survive a write/re-scan round trip.
		if !rectangular(rowsManual) {
			return
		}
		data, err := WriteAll(rowsManual, nil)
		if err != nil {
			t.Fatalf("WriteAll(%v): %v", rowsManual, err)
		}
		back, err := ReadAll(data, nil)
		if err != nil {
			t.Fatalf("ReadAll after WriteAll: %v data=%q", err, data)
		}
		if !rowsEqual(rowsManual, back) {
			t.Fatalf("round trip mismatch:\nin=%v\nout=%v\nencoded=%q", rowsManual, back, data)
		}
	})
}

func scanRowsSequential(input string) ([][]string, error) {
	s, err := NewScanner(strings.NewReader(input), nil)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for {
		row, err := s.ReadRow()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
}

func scanRowsAll(input string) ([][]string, error) {
	s, err := NewScanner(strings.NewReader(input), nil)
	if err != nil {
		return nil, err
	}
	return s.ReadAllRows()
}

func sameScanError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	sigA, lineA, colA := scanErrorSignature(a)
	sigB, lineB, colB := scanErrorSignature(b)
	return sigA == sigB && lineA == lineB && colA == colB
}

func scanErrorSignature(err error) (sig string, line int, column int) {
	var perr *ParseError
	if errors.As(err, &perr) {
		switch {
		case errors.Is(perr.Err, ErrBareQuote):
			return "bare_quote", perr.Line, perr.Column
		case errors.Is(perr.Err, ErrUnterminatedQuote):
			return "unterminated_quote", perr.Line, perr.Column
		default:
			return perr.Err.Error(), perr.Line, perr.Column
		}
	}
	return err.Error(), 0, 0
}

func rowsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func rectangular(rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	w := len(rows[0])
	if w == 0 {
		return false
	}
	for _, row := range rows {
		if len(row) != w {
			return false
		}
	}
	return true
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
