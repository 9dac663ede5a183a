package eventstream

// State is the coarse lexical state of the parser.
type State byte

const (
	// StateInitial precedes the first Scan.
	StateInitial State = iota
	// StateCharacters is a run of character data.
	StateCharacters
	// StateEvent is a structural token; EventKind tells which.
	StateEvent
	// StateComment is a comment body.
	StateComment
	// StateCData is a CDATA section body.
	StateCData
	// StateDtd is a DOCTYPE body.
	StateDtd
	// StateEod is the end of the document or a sticky failure.
	StateEod
)

// String returns a stable name for the state, suitable for debugging.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateCharacters:
		return "Characters"
	case StateEvent:
		return "Event"
	case StateComment:
		return "Comment"
	case StateCData:
		return "CData"
	case StateDtd:
		return "Dtd"
	case StateEod:
		return "Eod"
	default:
		return "Unknown"
	}
}

// Kind identifies a materialized event.
type Kind byte

const (
	KindNone Kind = iota
	KindStartDocument
	KindProcessingInstruction
	KindStartElement
	KindEndElement
	KindCharacters
	KindComment
	KindCData
	KindDoctype
)

// String returns a stable name for the kind, suitable for debugging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindStartDocument:
		return "StartDocument"
	case KindProcessingInstruction:
		return "ProcessingInstruction"
	case KindStartElement:
		return "StartElement"
	case KindEndElement:
		return "EndElement"
	case KindCharacters:
		return "Characters"
	case KindComment:
		return "Comment"
	case KindCData:
		return "CData"
	case KindDoctype:
		return "Doctype"
	default:
		return "Unknown"
	}
}
