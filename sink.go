package csvcodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/transform"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

// sink owns an open, append-only destination for the lifetime of one CSV
// file: buffered, optionally routed through a text encoder, BOM already
// emitted. It never seeks and never reads back what it wrote.
type sink struct {
	name   string
	closer io.Closer // non-nil when the sink owns the destination handle
	buf    *bufio.Writer
	out    io.Writer         // buf, or a transform writer in front of it
	tw     *transform.Writer // non-nil for non-UTF-8 output
	closed bool
}

// newSink wraps w per the settings. The BOM, when called for, is the first
// write and bypasses the encoder since it is already in the target encoding.
func newSink(w io.Writer, st *settings, emitBOM bool) (*sink, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil destination", ErrStream)
	}
	s := &sink{name: "writer", buf: bufio.NewWriterSize(w, defaultBufferSize)}
	if emitBOM {
		if bom := st.bomBytes(); len(bom) > 0 {
			if _, err := s.buf.Write(bom); err != nil {
				return nil, s.failure(err)
			}
		}
	}
	if te := st.encoding.textEncoding(); te != nil {
		s.tw = transform.NewWriter(s.buf, te.NewEncoder())
		s.out = s.tw
	} else {
		s.out = s.buf
	}
	return s, nil
}

// openPath opens (or creates) the file at path and wraps it as a sink the
// sink then owns. Appending to a non-empty file suppresses the BOM.
func openPath(path string, appendTo bool, st *settings) (*sink, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStream, path, err)
	}

	emitBOM := true
	if appendTo {
		if info, err := f.Stat(); err == nil && info.Size() > 0 {
			emitBOM = false
		}
	}
	s, err := newSink(f, st, emitBOM)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.name = path
	s.closer = f
	return s, nil
}

// write delivers p in order, buffered. Failures are fatal to the sink.
func (s *sink) write(p []byte) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.out.Write(p); err != nil {
		return s.failure(err)
	}
	return nil
}

// Close flushes the encoder and buffer and releases an owned destination.
// Closing twice is a no-op.
func (s *sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.tw != nil {
		if err := s.tw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s.failure(errors.Join(errs...))
	}
	return nil
}

func (s *sink) failure(err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStream, s.name, err)
}
