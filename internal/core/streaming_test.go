package core

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader_StripsBOM(t *testing.T) {
	r := NewBOMSkippingReader(strings.NewReader("\xEF\xBB\xBFhello"))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want %q", data, "hello")
	}
}

func TestBOMSkippingReader_PreservesNonBOMPrefix(t *testing.T) {
	tests := []string{"hello", "ab", "a", ""}
	for _, in := range tests {
		r := NewBOMSkippingReader(strings.NewReader(in))
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll(%q) error = %v", in, err)
		}
		if string(data) != in {
			t.Errorf("data = %q, want %q", data, in)
		}
	}
}

func TestBOMSkippingReader_OneBytePerRead(t *testing.T) {
	r := NewBOMSkippingReader(iotest.OneByteReader(strings.NewReader("\xEF\xBB\xBFcsv,data")))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "csv,data" {
		t.Errorf("data = %q, want %q", data, "csv,data")
	}
}

func TestUTF8SanitizingReader_PassesValidUTF8(t *testing.T) {
	in := "Kruder & Dorfmeister — K&D Sessions™"
	r := NewUTF8SanitizingReader(strings.NewReader(in))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != in {
		t.Errorf("data = %q, want %q", data, in)
	}
}

func TestUTF8SanitizingReader_ReplacesInvalidBytes(t *testing.T) {
	r := NewUTF8SanitizingReader(strings.NewReader("a\xFFb\xFE"))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "a?b?" {
		t.Errorf("data = %q, want %q", data, "a?b?")
	}
}

func TestUTF8SanitizingReader_MultiByteAcrossReads(t *testing.T) {
	// One byte at a time forces the é (2 bytes) to split across reads.
	r := NewUTF8SanitizingReader(iotest.OneByteReader(strings.NewReader("café au lait")))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "café au lait" {
		t.Errorf("data = %q, want %q", data, "café au lait")
	}
}

// chunkReader serves one predefined chunk per Read call, so tests can
// control exactly where a rune splits.
type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func TestUTF8SanitizingReader_RuneSplitMidSequence(t *testing.T) {
	// ™ is \xE2\x84\xA2 and the treble clef is \xF0\x9F\x8E\xB5; each
	// split leaves more than one byte of the rune in the first chunk.
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"two of three bytes", []string{"caf\xE2\x84", "\xA2,x"}, "caf™,x"},
		{"three of four bytes", []string{"a\xF0\x9F\x8E", "\xB5b"}, "a\U0001F3B5b"},
		{"one of three bytes", []string{"x\xE2", "\x84\xA2"}, "x™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewUTF8SanitizingReader(&chunkReader{chunks: tt.chunks})
			data, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestUTF8SanitizingReader_TruncatedRuneAtEOF(t *testing.T) {
	// A sequence cut off by end of input is replaced, not held forever.
	r := NewUTF8SanitizingReader(&chunkReader{chunks: []string{"ab\xE2\x84"}})
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "ab??" {
		t.Errorf("data = %q, want %q", data, "ab??")
	}
}

func TestWrapReader_BOMAndInvalidBytes(t *testing.T) {
	r := WrapReader(strings.NewReader("\xEF\xBB\xBFcol\xFF1,col2"))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "col?1,col2" {
		t.Errorf("data = %q, want %q", data, "col?1,col2")
	}
}
