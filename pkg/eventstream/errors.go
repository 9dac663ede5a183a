package eventstream

import "errors"

var (
	errNilSource        = errors.New("nil source")
	errUnexpectedEOF    = errors.New("unexpected end of input")
	errOutsideRoot      = errors.New("character data outside the root element")
	errSpaceAfterOpen   = errors.New("whitespace after '<'")
	errEmptyTag         = errors.New("empty tag")
	errUnexpectedLt     = errors.New("unexpected '<' inside markup")
	errLtInValue        = errors.New("'<' inside attribute value")
	errUnknownMarkup    = errors.New("unknown '<!' construct")
	errMisplacedDecl    = errors.New("document declaration is not the first construct")
	errMisplacedCDATA   = errors.New("CDATA section outside the root element")
	errMisplacedDTD     = errors.New("DOCTYPE after the root element")
	errDuplicateDTD     = errors.New("duplicate DOCTYPE")
	errEmptyName        = errors.New("empty name")
	errEmptyNamePart    = errors.New("empty prefix or local name")
	errInvalidName      = errors.New("invalid name")
	errReservedName     = errors.New("name begins with reserved \"xml\"")
	errMissingSpace     = errors.New("missing whitespace before attribute")
	errMissingEquals    = errors.New("missing '=' after attribute name")
	errMissingQuote     = errors.New("attribute value is not quoted")
	errUnterminated     = errors.New("unterminated attribute value")
	errDuplicateAttr    = errors.New("duplicate attribute name")
	errMisplacedSlash   = errors.New("'/' is not at the end of the tag")
	errEndTagJunk       = errors.New("unexpected content in end tag")
	errNoOpenElement    = errors.New("end tag without open element")
	errDepthLimit       = errors.New("element depth exceeds MaxDepth")
	errTokenTooLarge    = errors.New("token exceeds MaxTokenSize")
	errMissingVersion   = errors.New("missing version")
	errEmptyDeclValue   = errors.New("empty declaration value")
	errBadStandalone    = errors.New("standalone must be yes or no")
	errDeclJunk         = errors.New("unexpected content in document declaration")
	errEmptyTarget      = errors.New("empty processing instruction target")
	errReservedTarget   = errors.New("processing instruction target \"xml\" is reserved")
	errCDATAEndInText   = errors.New("\"]]>\" in character data")
	errDoubleHyphen     = errors.New("\"--\" inside comment")
	errWrongStateForOp  = errors.New("call does not match the current token")
	errTokenConsumedYet = errors.New("token already consumed")
)
