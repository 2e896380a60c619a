package csvcodec

// fieldNeedsQuote reports whether field must be quoted to survive a round
// trip: it contains the delimiter, the quote character, or a line break.
func fieldNeedsQuote(field string, comma, quote byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, comma, '\n', '\r':
			return true
		}
	}
	return false
}

// appendEscaped appends the escaped form of field to dst per the quoting
// policy, doubling embedded quote characters inside quoted regions.
func appendEscaped(dst []byte, field string, st *settings) ([]byte, error) {
	needsQuote := false
	switch st.quoting {
	case QuoteAlways:
		needsQuote = true
	case QuoteMinimal:
		needsQuote = fieldNeedsQuote(field, st.comma, st.quote)
	case QuoteNever:
		if fieldNeedsQuote(field, st.comma, st.quote) {
			return dst, ErrQuoteRequired
		}
	}
	if !needsQuote {
		return append(dst, field...), nil
	}

	dst = append(dst, st.quote)
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == st.quote {
			dst = append(dst, field[start:i+1]...)
			dst = append(dst, st.quote)
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)
	return append(dst, st.quote), nil
}

// unescapeField decodes one field from the start of raw, returning the field
// text and the number of bytes consumed (excluding any delimiter). It is the
// single-field inverse of appendEscaped; the streaming Scanner applies the
// same rules inline.
func unescapeField(raw []byte, st *settings) (string, int, error) {
	if len(raw) == 0 {
		return "", 0, nil
	}
	if raw[0] != st.quote {
		end := 0
		for end < len(raw) {
			b := raw[end]
			if b == st.comma || b == '\n' || b == '\r' {
				break
			}
			if b == st.quote {
				return "", end, &ParseError{Line: 1, Column: end + 1, Err: ErrBareQuote}
			}
			end++
		}
		return string(raw[:end]), end, nil
	}

	var out []byte
	i := 1
	for i < len(raw) {
		b := raw[i]
		if b != st.quote {
			out = append(out, b)
			i++
			continue
		}
		if i+1 < len(raw) && raw[i+1] == st.quote {
			out = append(out, st.quote)
			i += 2
			continue
		}
		return string(out), i + 1, nil
	}
	return "", i, &ParseError{Line: 1, Column: i, Err: ErrUnterminatedQuote}
}
