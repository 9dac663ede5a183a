package eventstream

import (
	"bytes"
	"strings"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/internal/xmlchars"
)

// ParseStartDocument materializes the "<?xml ...?>" declaration.
func (p *Parser) ParseStartDocument() (StartDocument, error) {
	if err := p.begin(StateEvent, KindStartDocument, "ParseStartDocument"); err != nil {
		return StartDocument{}, err
	}
	if !p.readInstructionToken() {
		return StartDocument{}, p.err
	}
	doc, err := parseDeclaration(p.token.data.Bytes()[len("xml"):])
	if err != nil {
		return StartDocument{}, p.fail(xmlerrors.IllegalPrologue, err)
	}
	return doc, nil
}

// ParseProcessingInstruction materializes the current "<?target data?>".
func (p *Parser) ParseProcessingInstruction() (ProcessingInstruction, error) {
	if err := p.begin(StateEvent, KindProcessingInstruction, "ParseProcessingInstruction"); err != nil {
		return ProcessingInstruction{}, err
	}
	if !p.readInstructionToken() {
		return ProcessingInstruction{}, p.err
	}
	data := p.token.data.Bytes()
	end := 0
	for end < len(data) && !xmlchars.IsWhitespace(data[end]) {
		end++
	}
	if end == 0 {
		return ProcessingInstruction{}, p.fail(xmlerrors.IllegalName, errEmptyTarget)
	}
	target := p.names.Intern(data[:end])
	if strings.EqualFold(target, "xml") {
		return ProcessingInstruction{}, p.fail(xmlerrors.IllegalName, errReservedTarget)
	}
	if !xmlchars.ValidNCName(target) {
		return ProcessingInstruction{}, p.fail(xmlerrors.IllegalName, errInvalidName)
	}
	start := skipSpace(data, end)
	return ProcessingInstruction{Target: target, Data: makeSpan(&p.token, start, len(data))}, nil
}

// readInstructionToken accumulates up to "?>", which is not stored.
func (p *Parser) readInstructionToken() bool {
	buf := p.token.data
	for !bytes.HasSuffix(buf.Bytes(), []byte("?>")) {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return false
		}
		if !p.putEntity(buf, c) {
			return false
		}
	}
	buf.Truncate(buf.Len() - 2)
	buf.Flip()
	return true
}

// skipInstruction discards input up to "?>".
func (p *Parser) skipInstruction() bool {
	if bytes.HasSuffix(p.token.data.Bytes(), []byte("?>")) {
		return true
	}
	prev := p.token.data.Last()
	for {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return false
		}
		if prev == '?' && c == '>' {
			return true
		}
		prev = c
	}
}

// parseDeclaration parses the pseudo-attributes after "<?xml": version, then
// optional encoding, then optional standalone, in that order.
func parseDeclaration(data []byte) (StartDocument, error) {
	var doc StartDocument
	name, value, rest, ok := declAttr(data)
	if !ok || name != "version" {
		return StartDocument{}, errMissingVersion
	}
	if value == "" {
		return StartDocument{}, errEmptyDeclValue
	}
	doc.Version = value
	data = rest
	if name, value, rest, ok := declAttr(data); ok && name == "encoding" {
		if value == "" {
			return StartDocument{}, errEmptyDeclValue
		}
		doc.Encoding = value
		data = rest
	}
	if name, value, rest, ok := declAttr(data); ok && name == "standalone" {
		switch value {
		case "yes":
			doc.Standalone = true
		case "no":
		default:
			return StartDocument{}, errBadStandalone
		}
		doc.HasStandalone = true
		data = rest
	}
	if skipSpace(data, 0) != len(data) {
		return StartDocument{}, errDeclJunk
	}
	return doc, nil
}

// declAttr reads one whitespace-led name="value" pair.
func declAttr(data []byte) (string, string, []byte, bool) {
	i := skipSpace(data, 0)
	if i == 0 || i == len(data) {
		return "", "", data, false
	}
	start := i
	for i < len(data) && (data[i] >= 'a' && data[i] <= 'z') {
		i++
	}
	name := string(data[start:i])
	i = skipSpace(data, i)
	if i == len(data) || data[i] != '=' {
		return "", "", data, false
	}
	i = skipSpace(data, i+1)
	if i == len(data) || data[i] != '"' && data[i] != '\'' {
		return "", "", data, false
	}
	quote := data[i]
	end := bytes.IndexByte(data[i+1:], quote)
	if end < 0 {
		return "", "", data, false
	}
	value := string(data[i+1 : i+1+end])
	return name, value, data[i+2+end:], true
}
