package charset

import (
	"errors"
	"fmt"

	"golang.org/x/text/transform"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/pkg/bytebuf"
)

// Converter transcodes between UTF-8 and one other charset. It keeps the
// transcoder state between calls to Convert, so a Converter serves one
// stream and is not safe for concurrent use.
type Converter struct {
	from Charset
	to   Charset
	t    transform.Transformer
}

// Open returns a converter from one charset to another. One side must be
// UTF-8 and the two sides must differ; other pairs fail with
// errors.NotSupported.
func Open(from, to Charset) (*Converter, error) {
	switch {
	case from.IsZero() || to.IsZero():
		return nil, fmt.Errorf("charset: convert %s to %s: %w", from, to, xmlerrors.NotSupported)
	case from.Equal(to):
		return nil, fmt.Errorf("charset: convert %s to itself: %w", from, xmlerrors.NotSupported)
	case to.IsUTF8() && from.enc != nil:
		return &Converter{from: from, to: to, t: from.enc.NewDecoder()}, nil
	case from.IsUTF8() && to.enc != nil:
		return &Converter{from: from, to: to, t: to.enc.NewEncoder()}, nil
	}
	return nil, fmt.Errorf("charset: convert %s to %s: %w", from, to, xmlerrors.NotSupported)
}

// From returns the source charset.
func (c *Converter) From() Charset { return c.from }

// To returns the target charset.
func (c *Converter) To() Charset { return c.to }

// Convert transcodes src and appends the result to dst, growing dst as
// needed. It returns the number of src bytes consumed. Unless final is set,
// an incomplete sequence at the end of src is left unconsumed for the next
// call; final flushes it and resets the converter.
//
// Malformed input that the decoder replaces with U+FFFD is not an error.
// Decoder failures are reported as errors.IllegalChars and growth past the
// limit of dst as errors.OutOfMemory.
func (c *Converter) Convert(dst *bytebuf.Buffer, src []byte, final bool) (int, error) {
	consumed := 0
	for {
		nDst, nSrc, err := c.t.Transform(dst.Tail(), src[consumed:], final)
		dst.Advance(nDst)
		consumed += nSrc
		switch {
		case err == nil:
			if final {
				c.t.Reset()
			}
			return consumed, nil
		case errors.Is(err, transform.ErrShortSrc) && !final:
			return consumed, nil
		case errors.Is(err, transform.ErrShortDst):
			if !dst.ExpGrow() {
				return consumed, fmt.Errorf("charset: convert %s to %s: %w", c.from, c.to, xmlerrors.OutOfMemory)
			}
		default:
			return consumed, fmt.Errorf("charset: convert %s to %s: %w", c.from, c.to, errors.Join(xmlerrors.IllegalChars, err))
		}
	}
}
