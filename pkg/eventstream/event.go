package eventstream

// QName is a name split at its first colon. Both parts are interned, so
// names compare with ==.
type QName struct {
	Prefix string
	Local  string
}

// String returns the name in prefix:local form.
func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// HasPrefix reports whether the name carries a prefix.
func (q QName) HasPrefix() bool {
	return q.Prefix != ""
}

// Attr is an attribute of a start element. Value has tab and newline
// characters replaced by spaces.
type Attr struct {
	Name  QName
	Value Span
}

// StartDocument is the document declaration.
type StartDocument struct {
	Version       string
	Encoding      string
	Standalone    bool
	HasStandalone bool
}

// ProcessingInstruction is a "<?target data?>" construct.
type ProcessingInstruction struct {
	Target string
	Data   Span
}

// StartElement is a start tag. Attrs is reused by the next call.
type StartElement struct {
	Name        QName
	Attrs       []Attr
	SelfClosing bool
}

// Attr returns the value of the named attribute.
func (s StartElement) Attr(name QName) (Span, bool) {
	for _, attr := range s.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return Span{}, false
}

// EndElement is an end tag.
type EndElement struct {
	Name QName
}

// Event is one materialized construct. Kind selects which fields are set:
// Document, Instruction, Start and End for the structural kinds, Text for
// character data, comments, CDATA sections and DOCTYPE bodies.
type Event struct {
	Instruction ProcessingInstruction
	Start       StartElement
	End         EndElement
	Document    StartDocument
	Text        Span
	Kind        Kind
}
