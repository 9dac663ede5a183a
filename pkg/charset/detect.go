package charset

import "bytes"

// Detect inspects the first bytes of a document. It returns the charset
// implied by a byte-order mark or by the encoding of a leading "<?", and the
// length of the byte-order mark to discard. The zero Charset means the prefix
// is not conclusive.
func Detect(prefix []byte) (Charset, int) {
	switch {
	case bytes.HasPrefix(prefix, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8, 3
	case bytes.HasPrefix(prefix, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return UTF32BE, 4
	case bytes.HasPrefix(prefix, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return UTF32LE, 4
	case bytes.HasPrefix(prefix, []byte{0xFE, 0xFF}):
		return UTF16BE, 2
	case bytes.HasPrefix(prefix, []byte{0xFF, 0xFE}):
		return UTF16LE, 2
	case bytes.HasPrefix(prefix, []byte{0x00, 0x00, 0x00, 0x3C}):
		return UTF32BE, 0
	case bytes.HasPrefix(prefix, []byte{0x3C, 0x00, 0x00, 0x00}):
		return UTF32LE, 0
	case bytes.HasPrefix(prefix, []byte{0x00, 0x3C, 0x00, 0x3F}):
		return UTF16BE, 0
	case bytes.HasPrefix(prefix, []byte{0x3C, 0x00, 0x3F, 0x00}):
		return UTF16LE, 0
	}
	return Charset{}, 0
}

// DeclaredEncoding returns the encoding label of a leading "<?xml ... ?>"
// declaration in prefix, or "" when there is none.
func DeclaredEncoding(prefix []byte) string {
	const open = "<?xml"
	if !bytes.HasPrefix(prefix, []byte(open)) {
		return ""
	}
	end := bytes.Index(prefix, []byte("?>"))
	if end < 0 {
		return ""
	}
	data := prefix[len(open):end]
	for {
		data = bytes.TrimLeft(data, " \t\r\n")
		if len(data) == 0 {
			return ""
		}
		name, rest := scanDeclName(data)
		if len(name) == 0 {
			return ""
		}
		data = bytes.TrimLeft(rest, " \t\r\n")
		if len(data) == 0 || data[0] != '=' {
			return ""
		}
		data = bytes.TrimLeft(data[1:], " \t\r\n")
		if len(data) == 0 {
			return ""
		}
		quote := data[0]
		if quote != '\'' && quote != '"' {
			return ""
		}
		data = data[1:]
		n := bytes.IndexByte(data, quote)
		if n < 0 {
			return ""
		}
		value := data[:n]
		data = data[n+1:]
		if string(name) == "encoding" {
			return string(value)
		}
	}
}

func scanDeclName(data []byte) ([]byte, []byte) {
	i := 0
	for i < len(data) {
		c := data[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			i++
			continue
		}
		break
	}
	return data[:i], data[i:]
}
