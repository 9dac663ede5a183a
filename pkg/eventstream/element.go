package eventstream

import (
	"fmt"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/internal/xmlchars"
)

// ParseStartElement materializes the current start tag. A tag that is not
// self-closing opens an element; a self-closing root ends the document.
func (p *Parser) ParseStartElement() (StartElement, error) {
	if err := p.begin(StateEvent, KindStartElement, "ParseStartElement"); err != nil {
		return StartElement{}, err
	}
	if !p.readElementToken() {
		return StartElement{}, p.err
	}
	data := p.token.data.Bytes()
	name, i, err := p.extractQName(data, 0, true)
	if err != nil {
		return StartElement{}, err
	}
	selfClosing, err := p.extractAttributes(data, i)
	if err != nil {
		return StartElement{}, err
	}
	if selfClosing {
		if p.depth == 0 {
			p.state = StateEod
		}
	} else {
		if p.opts.maxDepth > 0 && p.depth >= p.opts.maxDepth {
			return StartElement{}, p.fail(xmlerrors.RootElementUnbalanced, errDepthLimit)
		}
		p.depth++
		p.open = append(p.open, name)
	}
	return StartElement{Name: name, Attrs: p.attrs, SelfClosing: selfClosing}, nil
}

// ParseEndElement materializes the current end tag and closes the innermost
// element. Closing the root ends the document without reading further input.
func (p *Parser) ParseEndElement() (EndElement, error) {
	if err := p.begin(StateEvent, KindEndElement, "ParseEndElement"); err != nil {
		return EndElement{}, err
	}
	if p.depth == 0 {
		return EndElement{}, p.fail(xmlerrors.RootElementUnbalanced, errNoOpenElement)
	}
	if !p.readElementToken() {
		return EndElement{}, p.err
	}
	data := p.token.data.Bytes()
	name, i, err := p.extractQName(data, 0, true)
	if err != nil {
		return EndElement{}, err
	}
	for i < len(data) && xmlchars.IsWhitespace(data[i]) {
		i++
	}
	if i != len(data) {
		return EndElement{}, p.fail(xmlerrors.IllegalMarkup, errEndTagJunk)
	}
	top := p.open[len(p.open)-1]
	if p.opts.matchEndTags && name != top {
		return EndElement{}, p.fail(xmlerrors.TagMismatch, fmt.Errorf("got </%s>, want </%s>", name, top))
	}
	p.open = p.open[:len(p.open)-1]
	p.depth--
	if p.depth == 0 {
		p.state = StateEod
	}
	return EndElement{Name: name}, nil
}

// readElementToken accumulates a tag up to its closing '>', which is not
// stored. A '>' inside a quoted value does not end the tag.
func (p *Parser) readElementToken() bool {
	var quote byte
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return false
		}
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '<' {
				p.fail(xmlerrors.IllegalAttribute, errLtInValue)
				return false
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			p.token.data.Flip()
			return true
		case c == '<':
			p.fail(xmlerrors.IllegalMarkup, errUnexpectedLt)
			return false
		}
		if !p.putEntity(p.token.data, c) {
			return false
		}
	}
}

// extractQName reads a name starting at data[start] and splits it at the
// first colon. Element names fail with IllegalName, attribute names with
// IllegalAttribute.
func (p *Parser) extractQName(data []byte, start int, element bool) (QName, int, error) {
	code := xmlerrors.IllegalAttribute
	if element {
		code = xmlerrors.IllegalName
	}
	end := start
	colon := -1
	for end < len(data) && !xmlchars.IsDelimiter(data[end]) {
		if data[end] == ':' && colon < 0 {
			colon = end
		}
		end++
	}
	if end == start {
		return QName{}, end, p.fail(code, errEmptyName)
	}
	if colon < 0 {
		local, err := p.checkName(data[start:end], element)
		if err != nil {
			return QName{}, end, p.fail(code, err)
		}
		return QName{Local: local}, end, nil
	}
	if colon == start || colon == end-1 {
		return QName{}, end, p.fail(code, errEmptyNamePart)
	}
	prefix, err := p.checkName(data[start:colon], element)
	if err != nil {
		return QName{}, end, p.fail(code, err)
	}
	local, err := p.checkName(data[colon+1:end], element)
	if err != nil {
		return QName{}, end, p.fail(code, err)
	}
	return QName{Prefix: prefix, Local: local}, end, nil
}

// checkName interns raw and validates it against the name grammar once.
func (p *Parser) checkName(raw []byte, element bool) (string, error) {
	name := p.names.Intern(raw)
	seen := p.attrNames
	if element {
		seen = p.elemNames
	}
	if _, ok := seen[name]; ok {
		return name, nil
	}
	p.nameScans++
	if !xmlchars.ValidNCName(name) {
		return "", fmt.Errorf("%w %q", errInvalidName, name)
	}
	if element && xmlchars.Reserved(name) {
		return "", fmt.Errorf("%w: %q", errReservedName, name)
	}
	seen[name] = struct{}{}
	return name, nil
}

// extractAttributes reads the attributes after the element name. It reports
// whether the tag is self-closing.
func (p *Parser) extractAttributes(data []byte, i int) (bool, error) {
	clear(p.attrSeen)
	for {
		sep := i
		for i < len(data) && xmlchars.IsWhitespace(data[i]) {
			i++
		}
		if i == len(data) {
			return false, nil
		}
		if data[i] == '/' {
			if i+1 != len(data) {
				return false, p.fail(xmlerrors.IllegalMarkup, errMisplacedSlash)
			}
			return true, nil
		}
		if i == sep {
			return false, p.fail(xmlerrors.IllegalAttribute, errMissingSpace)
		}
		name, next, err := p.extractQName(data, i, false)
		if err != nil {
			return false, err
		}
		i = skipSpace(data, next)
		if i == len(data) || data[i] != '=' {
			return false, p.fail(xmlerrors.IllegalAttribute, errMissingEquals)
		}
		i = skipSpace(data, i+1)
		if i == len(data) || data[i] != '"' && data[i] != '\'' {
			return false, p.fail(xmlerrors.IllegalAttribute, errMissingQuote)
		}
		quote := data[i]
		i++
		start := p.values.data.Len()
		for i < len(data) && data[i] != quote {
			c := data[i]
			if c == '\t' || c == '\n' || c == '\r' {
				c = ' '
			}
			if !p.putEntity(p.values.data, c) {
				return false, p.err
			}
			i++
		}
		if i == len(data) {
			return false, p.fail(xmlerrors.IllegalAttribute, errUnterminated)
		}
		i++
		if _, dup := p.attrSeen[name]; dup {
			return false, p.fail(xmlerrors.IllegalAttribute, fmt.Errorf("%w %q", errDuplicateAttr, name))
		}
		p.attrSeen[name] = struct{}{}
		p.attrs = append(p.attrs, Attr{Name: name, Value: makeSpan(&p.values, start, p.values.data.Len())})
	}
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && xmlchars.IsWhitespace(data[i]) {
		i++
	}
	return i
}
