// Package xmlpull is a non-validating pull parser for XML-like markup.
//
// The parser lives in package eventstream and reads from the decoding cursor
// in package xmlsource. This package offers the common entry points.
package xmlpull

import (
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/xmlpull/pkg/eventstream"
)

// Open returns a parser over r. The charset is detected unless forced with
// eventstream.WithCharset.
func Open(r io.Reader, opts ...eventstream.Options) (*eventstream.Parser, error) {
	p, err := eventstream.Open(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("open xml: %w", err)
	}
	return p, nil
}

// OpenFile opens path and returns a parser over it. The caller closes the
// returned Closer when done.
func OpenFile(path string, opts ...eventstream.Options) (*eventstream.Parser, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	p, err := eventstream.Open(f, opts...)
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, nil, fmt.Errorf("open xml file %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	return p, f, nil
}

// CheckWellFormed reads every token of r and reports the first syntax error.
// Text is discarded without buffering; tags are parsed to track nesting.
func CheckWellFormed(r io.Reader, opts ...eventstream.Options) error {
	p, err := Open(r, opts...)
	if err != nil {
		return err
	}
	return walk(p)
}

// CheckFile is CheckWellFormed for a file path.
func CheckFile(path string, opts ...eventstream.Options) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open xml file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close xml file %s: %w", path, closeErr)
		}
	}()
	if err := CheckWellFormed(f, opts...); err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	return nil
}

func walk(p *eventstream.Parser) error {
	for p.Scan() != eventstream.StateEod {
		if err := p.Skip(); err != nil {
			return err
		}
	}
	return p.Err()
}
