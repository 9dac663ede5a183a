package eventstream

import "github.com/jacoelho/xmlpull/pkg/bytebuf"

// Span is a view into a parser-owned buffer. It is valid until the next Scan
// or parse call; use String to keep the content.
type Span struct {
	buf   *spanBuffer
	start int
	end   int
	gen   uint32
}

type spanBuffer struct {
	data   *bytebuf.Buffer
	gen    uint32
	poison bool
}

func makeSpan(buf *spanBuffer, start, end int) Span {
	return Span{buf: buf, start: start, end: end, gen: buf.gen}
}

// Bytes returns the viewed bytes without copying.
func (s Span) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	if s.buf.poison && s.gen != s.buf.gen {
		panic("eventstream: span is invalid after buffer reuse")
	}
	return s.buf.data.Slice(s.start, s.end)
}

// String returns a copy of the viewed bytes.
func (s Span) String() string {
	return string(s.Bytes())
}

// Len reports the span length in bytes.
func (s Span) Len() int {
	return s.end - s.start
}

// IsZero reports whether the span views nothing.
func (s Span) IsZero() bool {
	return s.buf == nil
}
