package eventstream

import xmlerrors "github.com/jacoelho/xmlpull/errors"

// ReadCharacters returns the current run of character data. The run ends
// before the next '<'. Entity references are returned as written.
func (p *Parser) ReadCharacters() (Span, error) {
	if err := p.begin(StateCharacters, KindNone, "ReadCharacters"); err != nil {
		return Span{}, err
	}
	if !p.scanCharacters(true) {
		return Span{}, p.err
	}
	return p.tokenSpan(), nil
}

// SkipCharacters discards the current run of character data.
func (p *Parser) SkipCharacters() error {
	if err := p.begin(StateCharacters, KindNone, "SkipCharacters"); err != nil {
		return err
	}
	if !p.scanCharacters(false) {
		return p.err
	}
	return nil
}

// ReadComment returns the body of the current comment.
func (p *Parser) ReadComment() (Span, error) {
	if err := p.begin(StateComment, KindNone, "ReadComment"); err != nil {
		return Span{}, err
	}
	if !p.scanComment(true) {
		return Span{}, p.err
	}
	return p.tokenSpan(), nil
}

// SkipComment discards the current comment.
func (p *Parser) SkipComment() error {
	if err := p.begin(StateComment, KindNone, "SkipComment"); err != nil {
		return err
	}
	if !p.scanComment(false) {
		return p.err
	}
	return nil
}

// ReadCDATA returns the body of the current CDATA section.
func (p *Parser) ReadCDATA() (Span, error) {
	if err := p.begin(StateCData, KindNone, "ReadCDATA"); err != nil {
		return Span{}, err
	}
	if !p.scanCDATA(true) {
		return Span{}, p.err
	}
	return p.tokenSpan(), nil
}

// ReadDTD returns the raw DOCTYPE body after "<!DOCTYPE ", up to but not
// including the closing '>'.
func (p *Parser) ReadDTD() (Span, error) {
	if err := p.begin(StateDtd, KindNone, "ReadDTD"); err != nil {
		return Span{}, err
	}
	if !p.scanDTD(true) {
		return Span{}, p.err
	}
	return p.tokenSpan(), nil
}

// SkipDTD discards the current DOCTYPE.
func (p *Parser) SkipDTD() error {
	if err := p.begin(StateDtd, KindNone, "SkipDTD"); err != nil {
		return err
	}
	if !p.scanDTD(false) {
		return p.err
	}
	return nil
}

func (p *Parser) tokenSpan() Span {
	p.token.data.Flip()
	return makeSpan(&p.token, 0, p.token.data.Len())
}

// scanCharacters reads up to '<' and leaves it for the next token.
func (p *Parser) scanCharacters(keep bool) bool {
	brackets := 0
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.RootElementUnbalanced)
			return false
		}
		switch {
		case c == '<':
			p.stash = '<'
			return true
		case c == ']':
			brackets++
		case c == '>' && brackets >= 2:
			p.fail(xmlerrors.IllegalChars, errCDATAEndInText)
			return false
		default:
			brackets = 0
		}
		if keep && !p.putText(p.token.data, c) {
			return false
		}
	}
}

// scanComment reads up to "--", which must be followed by '>'.
func (p *Parser) scanComment(keep bool) bool {
	dash := false
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalCommentary)
			return false
		}
		if c == '-' {
			if !dash {
				dash = true
				continue
			}
			c, err = p.next()
			if err != nil {
				p.readFailure(err, xmlerrors.IllegalCommentary)
				return false
			}
			if c != '>' {
				p.fail(xmlerrors.IllegalCommentary, errDoubleHyphen)
				return false
			}
			return true
		}
		if keep {
			if dash && !p.putText(p.token.data, '-') {
				return false
			}
			if !p.putText(p.token.data, c) {
				return false
			}
		}
		dash = false
	}
}

// scanCDATA reads up to "]]>". A "]]" not followed by '>' is content.
func (p *Parser) scanCDATA(keep bool) bool {
	brackets := 0
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalCdataSection)
			return false
		}
		if c == ']' {
			brackets++
			continue
		}
		if c == '>' && brackets >= 2 {
			return !keep || p.putBrackets(brackets-2)
		}
		if keep && (!p.putBrackets(brackets) || !p.putText(p.token.data, c)) {
			return false
		}
		brackets = 0
	}
}

func (p *Parser) putBrackets(n int) bool {
	if n == 0 {
		return true
	}
	if !p.token.data.Grow(n) {
		p.tooLarge(p.token.data)
		return false
	}
	for range n {
		p.token.data.Put(']')
	}
	return true
}

const commentOpen = uint32('<')<<24 | uint32('!')<<16 | uint32('-')<<8 | uint32('-')

const commentClose = uint32('-')<<16 | uint32('-')<<8 | uint32('>')

// scanDTD reads the DOCTYPE body. Angle brackets nest outside quoted
// literals and comments; the '>' that closes the DOCTYPE is not stored.
func (p *Parser) scanDTD(keep bool) bool {
	depth := 1
	var quote byte
	var window uint32
	inComment := false
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalDtd)
			return false
		}
		window = window<<8 | uint32(c)
		switch {
		case inComment:
			if window&0xFFFFFF == commentClose {
				inComment = false
				depth--
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '<':
			depth++
		case c == '>':
			depth--
			if depth == 0 {
				return true
			}
		case window == commentOpen:
			inComment = true
		}
		if keep && !p.putText(p.token.data, c) {
			return false
		}
	}
}
