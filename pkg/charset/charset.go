// Package charset resolves character set labels and converts between them
// and UTF-8.
package charset

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
)

// Charset identifies a character set. The zero value means unknown.
type Charset struct {
	enc  encoding.Encoding
	name string
}

var (
	// UTF8 is the parser's internal charset.
	UTF8 = Charset{name: "UTF-8"}
	// UTF16LE is little-endian UTF-16.
	UTF16LE = Charset{name: "UTF-16LE", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}
	// UTF16BE is big-endian UTF-16.
	UTF16BE = Charset{name: "UTF-16BE", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	// UTF16 is UTF-16 that honors a byte-order mark and defaults to big-endian.
	UTF16 = Charset{name: "UTF-16", enc: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)}
	// UTF32LE is little-endian UTF-32.
	UTF32LE = Charset{name: "UTF-32LE", enc: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)}
	// UTF32BE is big-endian UTF-32.
	UTF32BE = Charset{name: "UTF-32BE", enc: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)}
	// UTF32 is UTF-32 that honors a byte-order mark and defaults to big-endian.
	UTF32 = Charset{name: "UTF-32", enc: utf32.UTF32(utf32.BigEndian, utf32.UseBOM)}
)

// Name returns the canonical name, or "" for the zero value.
func (c Charset) Name() string {
	return c.name
}

// String implements fmt.Stringer.
func (c Charset) String() string {
	if c.name == "" {
		return "unknown"
	}
	return c.name
}

// IsZero reports whether c is the unknown charset.
func (c Charset) IsZero() bool {
	return c.name == ""
}

// IsUTF8 reports whether c is UTF-8.
func (c Charset) IsUTF8() bool {
	return c.name == UTF8.name
}

// Equal reports whether c and other name the same charset.
func (c Charset) Equal(other Charset) bool {
	return c.name == other.name
}

// Encoding returns the x/text encoding backing c. UTF-8 and the zero value
// have none.
func (c Charset) Encoding() encoding.Encoding {
	return c.enc
}

const cacheSize = 64

type lookupResult struct {
	err     error
	charset Charset
}

// lookups is shared by every parser in the process.
var lookups = newCache(cacheSize)

func newCache(size int) *lru.Cache {
	cache, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return cache
}

var builtin = map[string]Charset{
	"utf-8":    UTF8,
	"utf8":     UTF8,
	"utf-16":   UTF16,
	"utf16":    UTF16,
	"utf-16le": UTF16LE,
	"utf-16be": UTF16BE,
	"utf-32":   UTF32,
	"utf32":    UTF32,
	"utf-32le": UTF32LE,
	"utf-32be": UTF32BE,
}

// Lookup resolves a charset label such as "ISO-8859-1" or "utf-16le".
// Labels naming UTF-7, charsets without an implementation, and unknown labels
// fail with errors.NotSupported. Lookup is safe for concurrent use.
func Lookup(label string) (Charset, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if cached, ok := lookups.Get(key); ok {
		res := cached.(lookupResult)
		return res.charset, res.err
	}
	cs, err := lookup(key)
	lookups.Add(key, lookupResult{charset: cs, err: err})
	return cs, err
}

func lookup(key string) (Charset, error) {
	if key == "" {
		return Charset{}, fmt.Errorf("charset: empty label: %w", xmlerrors.NotSupported)
	}
	if cs, ok := builtin[key]; ok {
		return cs, nil
	}
	if key == "utf-7" || key == "utf7" || key == "unicode-1-1-utf-7" {
		return Charset{}, fmt.Errorf("charset %q: %w", key, xmlerrors.NotSupported)
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return Charset{}, fmt.Errorf("charset %q: unknown label: %w", key, xmlerrors.NotSupported)
	}
	if enc == nil {
		return Charset{}, fmt.Errorf("charset %q: no implementation: %w", key, xmlerrors.NotSupported)
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil || name == "" {
		name = strings.ToUpper(key)
	}
	if cs, ok := builtin[strings.ToLower(name)]; ok {
		return cs, nil
	}
	return Charset{name: name, enc: enc}, nil
}
