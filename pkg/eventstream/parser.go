// Package eventstream implements a pull parser over a decoding Source.
//
// Scan reports the coarse lexical state of the next token without reading
// it. The caller then materializes the token with the matching parse or read
// call, or skips it. Names are interned and validated once per parser.
// Every failure is sticky: the parser moves to StateEod and every later call
// returns the same *errors.Syntax value.
package eventstream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/internal/xmlchars"
	"github.com/jacoelho/xmlpull/pkg/bytebuf"
	"github.com/jacoelho/xmlpull/pkg/intern"
	"github.com/jacoelho/xmlpull/pkg/xmlsource"
)

const defaultTokenSize = 256

// Stats reports parser activity.
type Stats struct {
	Names     intern.Stats
	NameScans int
	Tokens    int
}

// Parser is a pull parser. A Parser is not safe for concurrent use.
type Parser struct {
	src         *xmlsource.Source
	logger      *slog.Logger
	err         error
	names       *intern.Pool
	elemNames   map[string]struct{}
	attrNames   map[string]struct{}
	attrSeen    map[QName]struct{}
	token       spanBuffer
	values      spanBuffer
	attrs       []Attr
	open        []QName
	opts        parserOptions
	depth       int
	tokens      int
	nameScans   int
	stash       int
	state       State
	kind        Kind
	consumed    bool
	seenRoot    bool
	seenDoctype bool
}

// New returns a parser reading from src.
func New(src *xmlsource.Source, opts ...Options) *Parser {
	resolved := resolveOptions(JoinOptions(opts...))
	p := &Parser{
		src:       src,
		opts:      resolved,
		logger:    resolved.logger,
		names:     intern.New(resolved.maxNameEntries),
		elemNames: make(map[string]struct{}),
		attrNames: make(map[string]struct{}),
		attrSeen:  make(map[QName]struct{}),
		stash:     -1,
	}
	size := defaultTokenSize
	if resolved.maxTokenSize > 0 && size > resolved.maxTokenSize {
		size = resolved.maxTokenSize
	}
	p.token = spanBuffer{data: bytebuf.New(size), poison: resolved.debugChecks}
	p.values = spanBuffer{data: bytebuf.New(size), poison: resolved.debugChecks}
	p.token.data.SetLimit(resolved.maxTokenSize)
	p.values.data.SetLimit(resolved.maxTokenSize)
	if src == nil {
		p.err = xmlerrors.New(xmlerrors.IoError, 0, 0, errNilSource)
		p.state = StateEod
	}
	return p
}

// Open detects the charset of r and returns a parser over it.
func Open(r io.Reader, opts ...Options) (*Parser, error) {
	resolved := resolveOptions(JoinOptions(opts...))
	src, err := xmlsource.New(r, xmlsource.Config{
		Logger:            resolved.logger,
		Charset:           resolved.charset,
		InitialBufferSize: resolved.initialBufferSize,
		MaxBufferSize:     resolved.maxBufferSize,
	})
	if err != nil {
		return nil, err
	}
	return New(src, opts...), nil
}

// Scan reports the state of the current token. It advances to the next token
// only once the current one has been parsed, read or skipped, so repeated
// calls return the same state.
func (p *Parser) Scan() State {
	if p.err != nil || p.state == StateEod {
		return StateEod
	}
	if p.state != StateInitial && !p.consumed {
		return p.state
	}
	p.advance()
	return p.state
}

// State reports the current state without advancing.
func (p *Parser) State() State {
	return p.state
}

// EventKind reports which structural token StateEvent refers to.
// It is KindNone in every other state.
func (p *Parser) EventKind() Kind {
	if p.state != StateEvent {
		return KindNone
	}
	return p.kind
}

// Err returns the sticky error, or nil.
func (p *Parser) Err() error {
	return p.err
}

// Row reports the 1-based line of the read position.
func (p *Parser) Row() int {
	if p.src == nil {
		return 0
	}
	return p.src.Row()
}

// Col reports the 1-based column, in characters, of the read position.
func (p *Parser) Col() int {
	if p.src == nil {
		return 0
	}
	return p.src.Col()
}

// Depth reports the number of open elements.
func (p *Parser) Depth() int {
	return p.depth
}

// Stats returns a snapshot of the parser counters.
func (p *Parser) Stats() Stats {
	return Stats{
		Names:     p.names.Stats(),
		NameScans: p.nameScans,
		Tokens:    p.tokens,
	}
}

func (p *Parser) advance() {
	p.token.data.Clear()
	p.values.data.Clear()
	p.token.gen++
	p.values.gen++
	p.attrs = p.attrs[:0]
	p.consumed = false
	p.kind = KindNone

	if p.depth > 0 {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.RootElementUnbalanced)
			return
		}
		if c != '<' {
			p.stash = int(c)
			p.state = StateCharacters
			p.tokens++
			return
		}
		p.classify()
		return
	}

	c, err := p.next()
	for err == nil && xmlchars.IsWhitespace(c) {
		c, err = p.next()
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			p.state = StateEod
			p.logger.Debug("eventstream: end of document", "tokens", p.tokens)
			return
		}
		p.record(err)
		return
	}
	if c != '<' {
		p.fail(xmlerrors.IllegalMarkup, errOutsideRoot)
		return
	}
	p.classify()
}

// classify identifies the construct after '<'. It reads only as far as needed
// and never past a '>'.
func (p *Parser) classify() {
	c, err := p.next()
	if err != nil {
		p.readFailure(err, xmlerrors.IllegalMarkup)
		return
	}
	first := p.tokens == 0
	p.tokens++
	switch {
	case c == '?':
		p.classifyInstruction(first)
	case c == '!':
		p.classifyBang()
	case c == '/':
		p.setEvent(KindEndElement)
	case c == '>':
		p.fail(xmlerrors.IllegalMarkup, errEmptyTag)
	case c == '<':
		p.fail(xmlerrors.IllegalMarkup, errUnexpectedLt)
	case xmlchars.IsWhitespace(c):
		p.fail(xmlerrors.IllegalMarkup, errSpaceAfterOpen)
	default:
		if !p.putEntity(p.token.data, c) {
			return
		}
		if p.depth == 0 {
			p.seenRoot = true
		}
		p.setEvent(KindStartElement)
	}
}

func (p *Parser) classifyInstruction(first bool) {
	for range 4 {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return
		}
		if !p.putEntity(p.token.data, c) {
			return
		}
		if c == '>' {
			break
		}
	}
	head := p.token.data.Bytes()
	if len(head) == 4 && string(head[:3]) == "xml" && xmlchars.IsWhitespace(head[3]) {
		if !first {
			p.fail(xmlerrors.IllegalPrologue, errMisplacedDecl)
			return
		}
		p.setEvent(KindStartDocument)
		return
	}
	p.setEvent(KindProcessingInstruction)
}

func (p *Parser) classifyBang() {
	c, err := p.next()
	if err != nil {
		p.readFailure(err, xmlerrors.IllegalMarkup)
		return
	}
	switch c {
	case '-':
		if !p.expect("-") {
			return
		}
		p.state = StateComment
	case '[':
		if !p.expect("CDATA[") {
			return
		}
		if p.depth == 0 {
			p.fail(xmlerrors.IllegalCdataSection, errMisplacedCDATA)
			return
		}
		p.state = StateCData
	case 'D':
		if !p.expect("OCTYPE") {
			return
		}
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return
		}
		if !xmlchars.IsWhitespace(c) {
			p.fail(xmlerrors.IllegalMarkup, errUnknownMarkup)
			return
		}
		switch {
		case p.seenDoctype:
			p.fail(xmlerrors.IllegalDtd, errDuplicateDTD)
			return
		case p.seenRoot || p.depth > 0:
			p.fail(xmlerrors.IllegalDtd, errMisplacedDTD)
			return
		}
		p.seenDoctype = true
		p.state = StateDtd
	default:
		p.fail(xmlerrors.IllegalMarkup, errUnknownMarkup)
	}
}

// expect consumes literal, stopping at the first mismatch.
func (p *Parser) expect(literal string) bool {
	for i := 0; i < len(literal); i++ {
		c, err := p.next()
		if err != nil {
			p.readFailure(err, xmlerrors.IllegalMarkup)
			return false
		}
		if c != literal[i] {
			p.fail(xmlerrors.IllegalMarkup, errUnknownMarkup)
			return false
		}
	}
	return true
}

func (p *Parser) setEvent(kind Kind) {
	p.state = StateEvent
	p.kind = kind
}

func (p *Parser) next() (byte, error) {
	if p.stash >= 0 {
		c := byte(p.stash)
		p.stash = -1
		return c, nil
	}
	return p.src.ReadByte()
}

// begin checks that a parse call matches the current token and marks the
// token consumed.
func (p *Parser) begin(state State, kind Kind, op string) error {
	if p.err != nil {
		return p.err
	}
	if p.state != state || p.kind != kind {
		return p.misuse(fmt.Errorf("%s in state %s/%s: %w", op, p.state, p.kind, errWrongStateForOp))
	}
	if p.consumed {
		return p.misuse(fmt.Errorf("%s: %w", op, errTokenConsumedYet))
	}
	p.consumed = true
	return nil
}

func (p *Parser) misuse(cause error) error {
	err := p.fail(xmlerrors.InvalidState, cause)
	if p.opts.debugChecks {
		panic(err)
	}
	return err
}

func (p *Parser) putEntity(buf *bytebuf.Buffer, c byte) bool {
	if buf.Put(c) || buf.LnGrow() && buf.Put(c) {
		return true
	}
	p.tooLarge(buf)
	return false
}

func (p *Parser) putText(buf *bytebuf.Buffer, c byte) bool {
	if buf.Put(c) || buf.ExpGrow() && buf.Put(c) {
		return true
	}
	p.tooLarge(buf)
	return false
}

func (p *Parser) tooLarge(buf *bytebuf.Buffer) {
	p.fail(xmlerrors.OutOfMemory, fmt.Errorf("%w: limit %d bytes", errTokenTooLarge, buf.Limit()))
}

func (p *Parser) readFailure(err error, eofCode xmlerrors.Code) error {
	if errors.Is(err, io.EOF) {
		return p.fail(eofCode, errUnexpectedEOF)
	}
	return p.record(err)
}

func (p *Parser) fail(code xmlerrors.Code, cause error) error {
	if p.err != nil {
		return p.err
	}
	err := xmlerrors.New(code, p.Row(), p.Col(), cause)
	err.Path = p.path()
	return p.record(err)
}

func (p *Parser) record(err error) error {
	if p.err != nil {
		return p.err
	}
	if syntax, ok := xmlerrors.AsSyntax(err); ok && syntax.Path == "" {
		syntax.Path = p.path()
	}
	p.err = err
	p.state = StateEod
	p.kind = KindNone
	p.consumed = true
	p.logger.Debug("eventstream: parse failed",
		"code", string(xmlerrors.CodeOf(err)),
		"row", p.Row(),
		"col", p.Col(),
		"error", err)
	return err
}

func (p *Parser) path() string {
	if len(p.open) == 0 {
		return ""
	}
	var b strings.Builder
	for _, name := range p.open {
		b.WriteByte('/')
		b.WriteString(name.String())
	}
	return b.String()
}
