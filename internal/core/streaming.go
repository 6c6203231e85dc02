package core

// streaming.go provides reader wrappers applied to uploaded CSVs before
// parsing:
//
//   - BOMSkippingReader removes a leading UTF-8 BOM (0xEF 0xBB 0xBF),
//     commonly added by Excel on Windows
//   - UTF8SanitizingReader replaces invalid UTF-8 bytes with '?'
//
// Both operate on the stream, so memory stays bounded by the read buffer
// regardless of file size. Use WrapReader to apply them in order.

import (
	"io"
	"unicode/utf8"
)

// BOMSkippingReader wraps an io.Reader and skips a UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	bufData    []byte
	bufOffset  int
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call checks for and discards the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if n == 0 {
			return 0, err
		}

		if n >= 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			r.bufData = nil
		} else {
			r.bufData = r.buf[:n]
			r.bufOffset = 0
		}

		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	// Drain bytes held back from the BOM check before touching the
	// underlying reader again.
	if len(r.bufData) > r.bufOffset {
		copied := copy(p, r.bufData[r.bufOffset:])
		r.bufOffset += copied
		if r.bufOffset >= len(r.bufData) {
			r.bufData = nil
		}
		return copied, nil
	}

	return r.reader.Read(p)
}

// UTF8SanitizingReader wraps an io.Reader and replaces invalid UTF-8
// bytes with '?' on the fly. Multi-byte sequences split across Read
// calls are held back until completed.
type UTF8SanitizingReader struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8SanitizingReader creates a streaming UTF-8 sanitizer.
func NewUTF8SanitizingReader(r io.Reader) *UTF8SanitizingReader {
	return &UTF8SanitizingReader{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}

	// Fast path: most CSV data is pure ASCII.
	if isAllASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place, replacing invalid bytes with '?'.
// Returns the number of bytes to surface. A possibly-incomplete trailing
// sequence is moved to pending unless atEOF.
func (s *UTF8SanitizingReader) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		// A truncated multi-byte sequence at the tail may have any
		// number of its bytes present, so the hold-back check must run
		// before DecodeRune reports it as invalid.
		if !atEOF && len(data)-read < utf8.UTFMax && isIncompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])

		if r == utf8.RuneError && size == 1 {
			// Single replacement byte keeps the output no longer
			// than the input, which in-place rewriting requires.
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}
	return write
}

func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// isIncompleteRune reports whether data starts a multi-byte sequence
// that needs more bytes than data contains.
func isIncompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := data[0]
	var expected int
	switch {
	case b < 0x80:
		expected = 1
	case b < 0xC0:
		return false // continuation byte, invalid as a start
	case b < 0xE0:
		expected = 2
	case b < 0xF0:
		expected = 3
	default:
		expected = 4
	}
	return expected > len(data)
}

// WrapReader prepares an uploaded CSV stream for parsing: BOM first,
// then UTF-8 sanitization.
func WrapReader(r io.Reader) io.Reader {
	return NewUTF8SanitizingReader(NewBOMSkippingReader(r))
}
