package csvcodec

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// textEncoding resolves the x/text encoding, or nil for UTF-8 passthrough.
func (e Encoding) textEncoding() encoding.Encoding {
	switch e {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case EncodingLatin1:
		return charmap.ISO8859_1
	case EncodingWindows1252:
		return charmap.Windows1252
	default:
		return nil
	}
}

// bom returns the leading bytes defined for the encoding, already in the
// target encoding. Single-byte codepages have no BOM.
func (e Encoding) bom() []byte {
	switch e {
	case EncodingUTF8:
		return bomUTF8
	case EncodingUTF16LE:
		return bomUTF16LE
	case EncodingUTF16BE:
		return bomUTF16BE
	default:
		return nil
	}
}

// bomBytes computes the BOM to emit on a fresh destination. BOMAuto emits
// one only for UTF-16, where a missing BOM is routinely misread.
func (st *settings) bomBytes() []byte {
	switch st.bomPolicy {
	case BOMNever:
		return nil
	case BOMAlways:
		return st.encoding.bom()
	default:
		if st.encoding == EncodingUTF16LE || st.encoding == EncodingUTF16BE {
			return st.encoding.bom()
		}
		return nil
	}
}

// decodeReader wraps r with the decoder the dialect calls for, consuming a
// leading BOM when the policy allows it. With EncodingAuto the BOM decides
// the decoder; without a BOM the stream is taken as UTF-8.
func decodeReader(r io.Reader, st *settings) (io.Reader, Encoding) {
	br := bufio.NewReaderSize(r, defaultBufferSize)
	enc := st.encoding

	if enc == EncodingAuto || st.bomPolicy != BOMNever {
		head, _ := br.Peek(3)
		switch {
		case len(head) >= 3 && bytes.Equal(head[:3], bomUTF8):
			if enc == EncodingAuto || enc == EncodingUTF8 {
				br.Discard(len(bomUTF8))
				enc = EncodingUTF8
			}
		case len(head) >= 2 && bytes.Equal(head[:2], bomUTF16LE):
			if enc == EncodingAuto || enc == EncodingUTF16LE {
				br.Discard(len(bomUTF16LE))
				enc = EncodingUTF16LE
			}
		case len(head) >= 2 && bytes.Equal(head[:2], bomUTF16BE):
			if enc == EncodingAuto || enc == EncodingUTF16BE {
				br.Discard(len(bomUTF16BE))
				enc = EncodingUTF16BE
			}
		}
	}
	if enc == EncodingAuto {
		enc = EncodingUTF8
	}

	if te := enc.textEncoding(); te != nil {
		return transform.NewReader(br, te.NewDecoder()), enc
	}
	return br, enc
}
