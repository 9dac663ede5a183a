package charset

import (
	"errors"
	"testing"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/pkg/bytebuf"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"UTF-8", "UTF-8"},
		{" utf8 ", "UTF-8"},
		{"utf-16le", "UTF-16LE"},
		{"UTF-16", "UTF-16"},
		{"utf-32be", "UTF-32BE"},
		{"ISO-8859-1", "ISO-8859-1"},
		{"latin1", "ISO-8859-1"},
		{"windows-1252", "windows-1252"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			cs, err := Lookup(tt.label)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.label, err)
			}
			if cs.Name() != tt.want {
				t.Fatalf("Lookup(%q) = %q, want %q", tt.label, cs.Name(), tt.want)
			}
		})
	}
}

func TestLookupNotSupported(t *testing.T) {
	for _, label := range []string{"", "utf-7", "UTF-7", "no-such-charset"} {
		_, err := Lookup(label)
		if !errors.Is(err, xmlerrors.NotSupported) {
			t.Fatalf("Lookup(%q) error = %v, want NotSupported", label, err)
		}
		// cached failures stay failures
		_, err = Lookup(label)
		if !errors.Is(err, xmlerrors.NotSupported) {
			t.Fatalf("cached Lookup(%q) error = %v, want NotSupported", label, err)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Charset
		bomLen int
	}{
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, '<'}, UTF8, 3},
		{"utf16le bom", []byte{0xFF, 0xFE, '<', 0}, UTF16LE, 2},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, '<'}, UTF16BE, 2},
		{"utf32le bom", []byte{0xFF, 0xFE, 0, 0}, UTF32LE, 4},
		{"utf32be bom", []byte{0, 0, 0xFE, 0xFF}, UTF32BE, 4},
		{"utf16le decl", []byte{'<', 0, '?', 0}, UTF16LE, 0},
		{"utf16be decl", []byte{0, '<', 0, '?'}, UTF16BE, 0},
		{"utf32le decl", []byte{'<', 0, 0, 0}, UTF32LE, 0},
		{"plain", []byte("<?xm"), Charset{}, 0},
		{"short", []byte{0xEF}, Charset{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Detect(tt.prefix)
			if !got.Equal(tt.want) || n != tt.bomLen {
				t.Fatalf("Detect = %s, %d, want %s, %d", got, n, tt.want, tt.bomLen)
			}
		})
	}
}

func TestDeclaredEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<?xml version="1.0" encoding="ISO-8859-1"?><a/>`, "ISO-8859-1"},
		{`<?xml version='1.0' encoding = 'latin1' standalone="yes"?>`, "latin1"},
		{`<?xml version="1.0"?>`, ""},
		{`<?xml version="1.0" encoding="x"`, ""},
		{`<a encoding="x"/>`, ""},
	}
	for _, tt := range tests {
		if got := DeclaredEncoding([]byte(tt.in)); got != tt.want {
			t.Fatalf("DeclaredEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenRejectsPairs(t *testing.T) {
	latin1, err := Lookup("latin1")
	if err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	pairs := [][2]Charset{
		{UTF8, UTF8},
		{latin1, UTF16LE},
		{Charset{}, UTF8},
	}
	for _, pair := range pairs {
		if _, err := Open(pair[0], pair[1]); !errors.Is(err, xmlerrors.NotSupported) {
			t.Fatalf("Open(%s, %s) error = %v, want NotSupported", pair[0], pair[1], err)
		}
	}
}

func TestConvertGrowsDestination(t *testing.T) {
	conv, err := Open(UTF16LE, UTF8)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	src := []byte{'<', 0, 'a', 0, '>', 0, 0xE9, 0x00, '<', 0, '/', 0, 'a', 0, '>', 0}
	dst := bytebuf.New(0)
	n, err := conv.Convert(dst, src, true)
	if err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if got := string(dst.Bytes()); got != "<a>é</a>" {
		t.Fatalf("Convert = %q, want <a>é</a>", got)
	}
	if n != len(src) {
		t.Fatalf("Convert consumed %d, want %d", n, len(src))
	}
}

func TestConvertLimit(t *testing.T) {
	conv, err := Open(UTF8, UTF16BE)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	dst := bytebuf.New(4)
	dst.SetLimit(8)
	_, err = conv.Convert(dst, []byte("abcdefgh"), true)
	if !errors.Is(err, xmlerrors.OutOfMemory) {
		t.Fatalf("Convert error = %v, want OutOfMemory", err)
	}
}

func TestConvertCarriesPartialInput(t *testing.T) {
	conv, err := Open(UTF16BE, UTF8)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	dst := bytebuf.New(8)
	// "a€" split inside the second code unit.
	first := []byte{0x00, 'a', 0x20}
	n, err := conv.Convert(dst, first, false)
	if err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Convert consumed %d, want 2", n)
	}
	rest := append(first[n:], 0xAC)
	if _, err := conv.Convert(dst, rest, true); err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if got := string(dst.Bytes()); got != "a€" {
		t.Fatalf("Convert = %q, want a€", got)
	}
}

func TestConvertReplacesMalformedInput(t *testing.T) {
	conv, err := Open(UTF16LE, UTF8)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	dst := bytebuf.New(8)
	// unpaired high surrogate
	if _, err := conv.Convert(dst, []byte{0x00, 0xD8, 'x', 0x00}, true); err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if got := string(dst.Bytes()); got != "\uFFFDx" {
		t.Fatalf("Convert = %q, want replacement then x", got)
	}
}

func TestConverterNames(t *testing.T) {
	latin1, err := Lookup("ISO-8859-1")
	if err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	conv, err := Open(latin1, UTF8)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	if !conv.From().Equal(latin1) || !conv.To().IsUTF8() {
		t.Fatalf("Converter = %s to %s, want ISO-8859-1 to UTF-8", conv.From(), conv.To())
	}
	dst := bytebuf.New(0)
	if _, err := conv.Convert(dst, []byte("caf\xe9"), true); err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if string(dst.Bytes()) != "café" {
		t.Fatalf("decoded = %q, want café", dst.Bytes())
	}
}
