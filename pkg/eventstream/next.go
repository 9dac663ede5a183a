package eventstream

import (
	"errors"
	"io"
	"iter"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/internal/xmlchars"
)

// Next materializes the next event of any kind. It returns io.EOF once the
// document has ended cleanly and the sticky error after a failure.
func (p *Parser) Next() (Event, error) {
	for {
		switch p.Scan() {
		case StateEod:
			if p.err != nil {
				return Event{}, p.err
			}
			return Event{}, io.EOF
		case StateCharacters:
			text, err := p.ReadCharacters()
			if err != nil {
				return Event{}, err
			}
			if p.opts.skipWhitespace && xmlchars.IsWhitespaceBytes(text.Bytes()) {
				continue
			}
			return Event{Kind: KindCharacters, Text: text}, nil
		case StateComment:
			return p.textEvent(KindComment, p.ReadComment)
		case StateCData:
			return p.textEvent(KindCData, p.ReadCDATA)
		case StateDtd:
			return p.textEvent(KindDoctype, p.ReadDTD)
		case StateEvent:
			return p.structuralEvent()
		default:
			return Event{}, p.misuse(errWrongStateForOp)
		}
	}
}

func (p *Parser) textEvent(kind Kind, read func() (Span, error)) (Event, error) {
	text, err := read()
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: kind, Text: text}, nil
}

func (p *Parser) structuralEvent() (Event, error) {
	switch p.kind {
	case KindStartDocument:
		doc, err := p.ParseStartDocument()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindStartDocument, Document: doc}, nil
	case KindProcessingInstruction:
		pi, err := p.ParseProcessingInstruction()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindProcessingInstruction, Instruction: pi}, nil
	case KindStartElement:
		start, err := p.ParseStartElement()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindStartElement, Start: start}, nil
	case KindEndElement:
		end, err := p.ParseEndElement()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindEndElement, End: end}, nil
	default:
		return Event{}, p.misuse(errWrongStateForOp)
	}
}

// All returns an iterator over the remaining events. Iteration stops after
// the first error, which is yielded, or silently at a clean end.
func (p *Parser) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// Skip consumes the current token, advancing first when it is already
// consumed. Text-like tokens are discarded without buffering; tags are still
// parsed because nesting depends on them. Skip returns nil at a clean end.
func (p *Parser) Skip() error {
	switch p.Scan() {
	case StateEod:
		return p.err
	case StateCharacters:
		return p.SkipCharacters()
	case StateComment:
		return p.SkipComment()
	case StateDtd:
		return p.SkipDTD()
	case StateCData:
		if err := p.begin(StateCData, KindNone, "Skip"); err != nil {
			return err
		}
		if !p.scanCDATA(false) {
			return p.err
		}
		return nil
	case StateEvent:
		return p.skipEvent()
	default:
		return p.misuse(errWrongStateForOp)
	}
}

func (p *Parser) skipEvent() error {
	var err error
	switch p.kind {
	case KindStartDocument:
		_, err = p.ParseStartDocument()
	case KindProcessingInstruction:
		if err = p.begin(StateEvent, KindProcessingInstruction, "Skip"); err == nil && !p.skipInstruction() {
			err = p.err
		}
	case KindStartElement:
		_, err = p.ParseStartElement()
	case KindEndElement:
		_, err = p.ParseEndElement()
	default:
		err = p.fail(xmlerrors.InvalidState, errWrongStateForOp)
	}
	return err
}
