// Package xmlsource turns a raw byte stream into a position-tracked UTF-8
// stream with normalized line endings.
//
// Non-UTF-8 input is transcoded transparently through package charset and a
// leading byte-order mark is dropped. Each call to ReadByte returns one UTF-8
// code unit. "\r\n" and a lone "\r" are both delivered as "\n". Every
// character must be a well-formed UTF-8 sequence of an allowed document
// character; anything else is an errors.IllegalChars failure.
package xmlsource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/pbnjay/memory"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/internal/xmlchars"
	"github.com/jacoelho/xmlpull/pkg/bytebuf"
	"github.com/jacoelho/xmlpull/pkg/charset"
)

// DefaultMaxBufferSize is the default ceiling of the read window.
const DefaultMaxBufferSize = 0x300000

const (
	maxDeclScan  = 1024
	maxEmptyRead = 100
	// room for the longest incomplete sequence a transcoder carries over
	minTranscodeWindow = 4
	// the window never takes more than this fraction of physical memory
	memoryFraction = 64
)

// Config configures a Source.
type Config struct {
	// Logger receives debug records about window growth. Nil disables logging.
	Logger *slog.Logger
	// Charset forces the input charset. The zero value detects it from a
	// byte-order mark or the document declaration.
	Charset charset.Charset
	// InitialBufferSize is the first read window size. Zero means the page size.
	InitialBufferSize int
	// MaxBufferSize caps window growth. Zero means DefaultMaxBufferSize,
	// clamped on hosts with little memory.
	MaxBufferSize int
}

// Source is a decoding cursor over an io.Reader.
// A Source is not safe for concurrent use.
type Source struct {
	r        io.Reader
	logger   *slog.Logger
	err      error
	deferred error
	conv     *charset.Converter
	decoded  *bytebuf.Buffer
	charset  charset.Charset
	buf      []byte
	win      []byte
	carry    int
	pos      int
	end      int
	ceiling  int
	row      int
	col      int
	refills  int
	pending  int
	lead     byte
	char     rune
	pendingL bool
	bomDone  bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// New prepares r for decoding. It peeks at the first bytes to select the
// charset and fails with errors.NotSupported when the charset cannot be
// decoded.
func New(r io.Reader, cfg Config) (*Source, error) {
	if r == nil {
		return nil, xmlerrors.New(xmlerrors.IoError, 0, 0, errors.New("nil reader"))
	}
	initial, ceiling := windowSizes(cfg)
	br := bufio.NewReaderSize(r, maxDeclScan*4)
	cs, err := resolveCharset(br, cfg.Charset)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Source{
		r:       br,
		logger:  logger,
		charset: cs,
		row:     1,
		col:     1,
	}
	if cs.IsUTF8() {
		if err := discardUTF8BOM(br); err != nil {
			return nil, xmlerrors.New(xmlerrors.IoError, 0, 0, err)
		}
		s.bomDone = true
	} else {
		conv, err := charset.Open(cs, charset.UTF8)
		if err != nil {
			return nil, xmlerrors.New(xmlerrors.NotSupported, 0, 0, err)
		}
		s.conv = conv
		initial = max(initial, minTranscodeWindow)
		ceiling = max(ceiling, initial)
		s.decoded = bytebuf.New(initial * 2)
		logger.Debug("xmlsource: transcoding", "from", conv.From(), "to", conv.To())
	}
	s.buf = make([]byte, initial)
	s.ceiling = ceiling
	return s, nil
}

func windowSizes(cfg Config) (int, int) {
	initial := cfg.InitialBufferSize
	if initial <= 0 {
		initial = os.Getpagesize()
	}
	ceiling := cfg.MaxBufferSize
	if ceiling <= 0 {
		ceiling = DefaultMaxBufferSize
		if total := memory.TotalMemory(); total > 0 && uint64(ceiling) > total/memoryFraction {
			ceiling = int(total / memoryFraction)
		}
	}
	if ceiling < initial {
		ceiling = initial
	}
	return initial, ceiling
}

func resolveCharset(br *bufio.Reader, forced charset.Charset) (charset.Charset, error) {
	if !forced.IsZero() {
		return forced, nil
	}
	prefix, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return charset.Charset{}, xmlerrors.New(xmlerrors.IoError, 0, 0, err)
	}
	cs, bomLen := charset.Detect(prefix)
	if bomLen > 0 {
		if _, err := br.Discard(bomLen); err != nil {
			return charset.Charset{}, xmlerrors.New(xmlerrors.IoError, 0, 0, err)
		}
	}
	if !cs.IsZero() {
		return cs, nil
	}
	decl, err := br.Peek(maxDeclScan)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return charset.Charset{}, xmlerrors.New(xmlerrors.IoError, 0, 0, err)
	}
	label := charset.DeclaredEncoding(decl)
	if label == "" {
		return charset.UTF8, nil
	}
	cs, err = charset.Lookup(label)
	if err != nil {
		return charset.Charset{}, xmlerrors.New(xmlerrors.NotSupported, 0, 0, err)
	}
	return cs, nil
}

func discardUTF8BOM(r *bufio.Reader) error {
	peek, err := r.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if bytes.HasPrefix(peek, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}
	return nil
}

// ReadByte returns the next UTF-8 code unit. It implements io.ByteReader.
// Errors are sticky: io.EOF at a clean end, an errors.IllegalChars syntax
// error for malformed UTF-8 or a disallowed character, or an errors.IoError
// syntax error wrapping a read failure.
func (s *Source) ReadByte() (byte, error) {
	for {
		if s.err != nil {
			return 0, s.err
		}
		if s.pos == s.end {
			if err := s.fill(); err != nil {
				return 0, err
			}
		}
		c := s.win[s.pos]
		s.pos++
		if s.pending > 0 {
			if err := s.continuation(c); err != nil {
				return 0, err
			}
			return c, nil
		}
		if c < utf8.RuneSelf {
			if !xmlchars.IsValidChar(rune(c)) {
				return 0, s.fail(xmlerrors.IllegalChars, fmt.Errorf("character %U is not allowed", c))
			}
			if s.pendingL {
				s.pendingL = false
				if c == '\n' {
					continue
				}
			}
			if c == '\r' {
				s.pendingL = true
				c = '\n'
			}
			if c == '\n' {
				s.row++
				s.col = 1
			} else {
				s.col++
			}
			return c, nil
		}
		s.pendingL = false
		n := sequenceLength(c)
		if n == 0 {
			return 0, s.fail(xmlerrors.IllegalChars, fmt.Errorf("invalid UTF-8 lead byte %#02x", c))
		}
		s.pending = n - 1
		s.lead = c
		s.char = rune(c) & (0x7F >> n)
		return c, nil
	}
}

// continuation checks one continuation byte. The byte after the lead is
// range-limited to exclude overlong forms, surrogates and code points above
// U+10FFFF; the completed character must be an allowed document character.
// The column advances once the character is complete.
func (s *Source) continuation(c byte) error {
	lo, hi := byte(0x80), byte(0xBF)
	if s.lead != 0 {
		lo, hi = secondByteRange(s.lead)
		s.lead = 0
	}
	if c < lo || c > hi {
		return s.fail(xmlerrors.IllegalChars, fmt.Errorf("invalid UTF-8 continuation byte %#02x", c))
	}
	s.char = s.char<<6 | rune(c&0x3F)
	s.pending--
	if s.pending > 0 {
		return nil
	}
	if !xmlchars.IsValidChar(s.char) {
		return s.fail(xmlerrors.IllegalChars, fmt.Errorf("character %U is not allowed", s.char))
	}
	s.col++
	return nil
}

func sequenceLength(lead byte) int {
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		return 2
	case lead >= 0xE0 && lead <= 0xEF:
		return 3
	case lead >= 0xF0 && lead <= 0xF4:
		return 4
	default:
		return 0
	}
}

func secondByteRange(lead byte) (byte, byte) {
	switch lead {
	case 0xE0:
		return 0xA0, 0xBF
	case 0xED:
		return 0x80, 0x9F
	case 0xF0:
		return 0x90, 0xBF
	case 0xF4:
		return 0x80, 0x8F
	default:
		return 0x80, 0xBF
	}
}

func (s *Source) fill() error {
	if s.deferred != nil {
		return s.finish(s.deferred)
	}
	if s.refills > 0 && len(s.buf) < s.ceiling {
		size := min(len(s.buf)*2, s.ceiling)
		next := make([]byte, size)
		copy(next, s.buf[:s.carry])
		s.buf = next
		s.logger.Debug("xmlsource: window grown", "size", size, "refills", s.refills)
	}
	s.refills++
	s.pos, s.end = 0, 0
	for range maxEmptyRead {
		n, err := s.r.Read(s.buf[s.carry:])
		if s.conv != nil {
			if n > 0 || errors.Is(err, io.EOF) {
				if cerr := s.decode(n, errors.Is(err, io.EOF)); cerr != nil {
					return s.finish(cerr)
				}
			}
		} else if n > 0 {
			s.win = s.buf[:n]
			s.pos, s.end = 0, n
		}
		if s.end > 0 {
			s.deferred = err
			return nil
		}
		if err != nil {
			return s.finish(err)
		}
	}
	return s.finish(io.ErrNoProgress)
}

// decode transcodes the carried bytes and n fresh ones into the decoded
// window. Bytes of an incomplete sequence are carried to the next fill.
func (s *Source) decode(n int, final bool) error {
	total := s.carry + n
	s.decoded.Clear()
	consumed, err := s.conv.Convert(s.decoded, s.buf[:total], final)
	if err != nil {
		return err
	}
	s.carry = copy(s.buf, s.buf[consumed:total])
	s.decoded.Flip()
	if !s.bomDone && s.decoded.Len() > 0 {
		s.bomDone = true
		if bytes.HasPrefix(s.decoded.Bytes(), utf8BOM) {
			s.decoded.Shift(len(utf8BOM))
		}
	}
	s.win = s.decoded.Bytes()
	s.pos, s.end = 0, len(s.win)
	return nil
}

func (s *Source) finish(err error) error {
	s.pos, s.end = 0, 0
	if errors.Is(err, io.EOF) {
		if s.pending > 0 {
			return s.fail(xmlerrors.IllegalChars, errors.New("truncated UTF-8 sequence"))
		}
		s.err = io.EOF
		return s.err
	}
	var syntax *xmlerrors.Syntax
	if errors.As(err, &syntax) {
		s.err = err
		return err
	}
	for _, code := range []xmlerrors.Code{xmlerrors.IllegalChars, xmlerrors.OutOfMemory} {
		if errors.Is(err, code) {
			return s.fail(code, err)
		}
	}
	return s.fail(xmlerrors.IoError, err)
}

func (s *Source) fail(code xmlerrors.Code, cause error) error {
	s.err = xmlerrors.New(code, s.row, s.col, cause)
	return s.err
}

// Row reports the 1-based line of the next character.
func (s *Source) Row() int { return s.row }

// Col reports the 1-based column, in characters, of the next character.
func (s *Source) Col() int { return s.col }

// Err returns the sticky error, or nil before failure and at a clean end.
func (s *Source) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// Charset reports the charset the input is decoded from.
func (s *Source) Charset() charset.Charset { return s.charset }

// Refills reports how many times the window was refilled.
func (s *Source) Refills() int { return s.refills }

// WindowSize reports the current read window size.
func (s *Source) WindowSize() int { return len(s.buf) }
