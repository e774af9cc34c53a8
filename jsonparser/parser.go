// Package jsonparser implements a recursive-descent parser for JSON and a
// family of JSON-like dialects, filling a cfgdata.Data with the result.
//
// Settings selects which dialect extensions are accepted; the zero
// Settings parses strict JSON. A parse failure is reported as a
// *SyntaxError carrying the 1-based line number it occurred on, and the
// returned Data still has a valid (empty object) root, matching what a
// caller gets from malformed SJSON/config input in practice: something to
// inspect rather than nothing at all.
package jsonparser

import (
	"fmt"
	"math"

	"golang.org/x/text/encoding/charmap"

	"github.com/relocore/cfgdata/cfgdata"
)

// allocAbort is the panic value used to unwind out of the parser when a
// cfgdata allocation fails. It is kept distinct from parseAbort so the
// top-level recover can report the underlying allocator error as-is
// instead of wrapping it in a SyntaxError.
type allocAbort struct {
	err error
}

type parser struct {
	s        string
	pos      int
	line     int
	data     *cfgdata.Data
	settings Settings
	latin1   *latin1Decoder
}

// latin1Decoder lazily wraps the Windows-1252 decoder so documents that
// never set AllowLatin1Input never pay for constructing one.
type latin1Decoder struct {
	dec interface {
		Bytes([]byte) ([]byte, error)
	}
}

func newLatin1Decoder() *latin1Decoder {
	return &latin1Decoder{dec: charmap.Windows1252.NewDecoder()}
}

func (l *latin1Decoder) decodeByte(b byte) []byte {
	out, err := l.dec.Bytes([]byte{b})
	if err != nil {
		// Windows-1252 maps every byte value to some rune, including the
		// handful of officially unassigned codepoints, so this path is not
		// reachable in practice; fall back to passing the byte through.
		return []byte{b}
	}
	return out
}

// Parse parses s as strict JSON into a freshly created Data.
func Parse(s string) (*cfgdata.Data, error) {
	return ParseWithSettings(s, Settings{})
}

// ParseWithSettings parses s under the given dialect Settings into a
// freshly created Data, using cfgdata.DefaultAllocator.
func ParseWithSettings(s string, settings Settings) (data *cfgdata.Data, err error) {
	d, makeErr := cfgdata.Make(nil, 0, 0)
	if makeErr != nil {
		return nil, makeErr
	}

	p := &parser{s: s, line: 1, data: d, settings: settings}
	if settings.AllowLatin1Input {
		p.latin1 = newLatin1Decoder()
	}

	defer func() {
		if r := recover(); r == nil {
			return
		} else if v, ok := r.(parseAbort); ok {
			obj, objErr := d.AddObject(0)
			if objErr != nil {
				err = objErr
				return
			}
			d.SetRoot(obj)
			data = d
			err = v.err
		} else if v, ok := r.(allocAbort); ok {
			err = v.err
		} else {
			panic(r)
		}
	}()

	p.run()
	return d, nil
}

func (p *parser) run() {
	p.skipWhitespace()

	var root cfgdata.Loc
	if p.settings.ImplicitRootObject && p.cur() != '{' {
		if p.cur() == 0 {
			root = p.mustAddObject(0)
		} else {
			root = p.parseMembers()
		}
	} else {
		root = p.parseValue()
	}

	p.skipWhitespace()
	if p.cur() != 0 {
		p.errorf("Unexpected character `%c`", p.cur())
	}
	p.data.SetRoot(root)
}

func (p *parser) errorf(format string, args ...interface{}) {
	panic(parseAbort{&SyntaxError{Line: p.line, Message: fmt.Sprintf(format, args...)}})
}

func (p *parser) mustAddObject(sizeHint int) cfgdata.Loc {
	l, err := p.data.AddObject(sizeHint)
	if err != nil {
		panic(allocAbort{err})
	}
	return l
}

func (p *parser) mustAddArray(sizeHint int) cfgdata.Loc {
	l, err := p.data.AddArray(sizeHint)
	if err != nil {
		panic(allocAbort{err})
	}
	return l
}

func (p *parser) mustAddString(s string) cfgdata.Loc {
	l, err := p.data.AddString(s)
	if err != nil {
		panic(allocAbort{err})
	}
	return l
}

func (p *parser) mustAddNumber(v float64) cfgdata.Loc {
	l, err := p.data.AddNumber(v)
	if err != nil {
		panic(allocAbort{err})
	}
	return l
}

func (p *parser) mustPush(arr, item cfgdata.Loc) {
	if err := p.data.Push(arr, item); err != nil {
		panic(allocAbort{err})
	}
}

func (p *parser) mustSetLoc(obj, key, value cfgdata.Loc) {
	if err := p.data.SetLoc(obj, key, value); err != nil {
		panic(allocAbort{err})
	}
}

func (p *parser) byteAt(i int) byte {
	if i < 0 || i >= len(p.s) {
		return 0
	}
	return p.s[i]
}

func (p *parser) cur() byte        { return p.byteAt(p.pos) }
func (p *parser) peek(off int) byte { return p.byteAt(p.pos + off) }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skipWhitespace skips past whitespace, and, depending on settings,
// comments and stray commas.
func (p *parser) skipWhitespace() {
	for {
		c := p.cur()
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case isSpace(c):
			p.pos++
		case c == '/' && p.settings.CComments:
			if p.peek(1) == '/' {
				for p.cur() != 0 && p.cur() != '\n' {
					p.pos++
				}
				p.line++
				p.pos++
			} else if p.peek(1) == '*' {
				p.pos += 2
				for p.cur() != 0 && !(p.cur() == '*' && p.peek(1) == '/') {
					if p.cur() == '\n' {
						p.line++
					}
					p.pos++
				}
				p.skipChar('*')
				p.skipChar('/')
			} else {
				return
			}
		case c == ',' && p.settings.OptionalCommas:
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) skipChar(c byte) {
	if p.cur() != c {
		if p.cur() >= 32 {
			p.errorf("Expected `%c`, saw `%c`", c, p.cur())
		} else {
			p.errorf("Expected `%c`, saw `\\x%02x`", c, p.cur())
		}
	}
	p.pos++
}

func (p *parser) parseValue() cfgdata.Loc {
	c := p.cur()
	switch {
	case c == '"':
		return p.parseString()
	case (c >= '0' && c <= '9') || c == '-':
		return p.parseNumber()
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == 't':
		return p.parseTrue()
	case c == 'f':
		return p.parseFalse()
	case c == 'n':
		return p.parseNull()
	default:
		p.errorf("Unexpected character `%c`", c)
	}
	return cfgdata.Null()
}

func (p *parser) parseString() cfgdata.Loc {
	p.skipChar('"')

	if p.settings.PythonMultilineStrings && p.cur() == '"' && p.peek(1) == '"' {
		p.pos += 2
		buf := make([]byte, 0, 128)
		for p.cur() != 0 && p.peek(1) != 0 && p.peek(2) != 0 &&
			(p.cur() != '"' || p.peek(1) != '"' || p.peek(2) != '"' || p.peek(3) == '"') {
			buf = append(buf, p.cur())
			p.pos++
		}
		p.skipChar('"')
		p.skipChar('"')
		p.skipChar('"')
		return p.mustAddString(string(buf))
	}

	buf := make([]byte, 0, 128)
	for {
		c := p.cur()
		if c == 0 || c == '"' {
			break
		}
		if !p.settings.AllowControlCharacters && c < 32 {
			p.errorf("Literal control character in string")
		}
		if !p.settings.SkipEscapeSequences && c == '\\' {
			p.pos++
			ec := p.cur()
			p.pos++
			switch ec {
			case '"', '\\', '/':
				buf = append(buf, ec)
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				buf = p.pushUTF8Codepoint(buf, p.parseCodepoint())
			default:
				p.errorf("Unexpected character `%c`", ec)
			}
			continue
		}

		if p.settings.AllowLatin1Input && c >= 0x80 {
			buf = append(buf, p.latin1.decodeByte(c)...)
		} else {
			buf = append(buf, c)
		}
		p.pos++
	}

	p.skipChar('"')
	return p.mustAddString(string(buf))
}

// parseNumber parses a JSON number using integer-scaled accumulation for
// the integer, fractional, and exponent parts, combining them with a
// single floating-point multiply at the end rather than accumulating
// floating-point error digit by digit.
func (p *parser) parseNumber() cfgdata.Loc {
	sign := 1
	if p.cur() == '-' {
		sign = -1
		p.pos++
	}

	intp := 0
	switch {
	case p.cur() == '0':
		p.pos++
	case p.cur() >= '1' && p.cur() <= '9':
		intp = int(p.cur() - '0')
		p.pos++
		for p.cur() >= '0' && p.cur() <= '9' {
			intp = 10*intp + int(p.cur()-'0')
			p.pos++
		}
	default:
		p.errorf("Bad number format")
	}

	fracp := 0
	fracdiv := 1
	if p.cur() == '.' {
		p.pos++
		if p.cur() < '0' || p.cur() > '9' {
			p.errorf("Bad number format")
		}
		for p.cur() >= '0' && p.cur() <= '9' {
			fracp = 10*fracp + int(p.cur()-'0')
			fracdiv *= 10
			p.pos++
		}
	}

	esign := 1
	ep := 0
	if p.cur() == 'e' || p.cur() == 'E' {
		p.pos++
		if p.cur() == '+' {
			p.pos++
		} else if p.cur() == '-' {
			esign = -1
			p.pos++
		}

		if p.cur() >= '0' && p.cur() <= '9' {
			ep = int(p.cur() - '0')
			p.pos++
		} else {
			p.errorf("Bad number format")
		}

		for p.cur() >= '0' && p.cur() <= '9' {
			ep = ep*10 + int(p.cur()-'0')
			p.pos++
		}
	}

	v := float64(sign) * (float64(intp) + float64(fracp)/float64(fracdiv)) *
		math.Pow(10, float64(esign*ep))
	return p.mustAddNumber(v)
}

func (p *parser) parseObject() cfgdata.Loc {
	p.skipChar('{')
	p.skipWhitespace()
	var obj cfgdata.Loc
	if p.cur() == '}' {
		obj = p.mustAddObject(0)
	} else {
		obj = p.parseMembers()
	}
	p.skipChar('}')
	return obj
}

func isBareword(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '-'
}

func (p *parser) parseKey() cfgdata.Loc {
	p.skipWhitespace()
	if p.settings.UnquotedKeys && isBareword(p.cur()) {
		buf := make([]byte, 0, 128)
		for isBareword(p.cur()) {
			buf = append(buf, p.cur())
			p.pos++
		}
		return p.mustAddString(string(buf))
	}
	return p.parseString()
}

func (p *parser) parseMembers() cfgdata.Loc {
	keys := make([]cfgdata.Loc, 0, 16)
	values := make([]cfgdata.Loc, 0, 16)

	for {
		key := p.parseKey()
		keys = append(keys, key)
		p.skipWhitespace()
		if p.settings.EqualsForColon && p.cur() == '=' {
			p.skipChar('=')
		} else {
			p.skipChar(':')
		}
		p.skipWhitespace()
		value := p.parseValue()
		values = append(values, value)
		p.skipWhitespace()
		if p.cur() == '}' || p.cur() == 0 {
			break
		}
		if !p.settings.OptionalCommas {
			p.skipChar(',')
		}
		p.skipWhitespace()
	}

	obj := p.mustAddObject(len(keys))
	for i := range keys {
		p.mustSetLoc(obj, keys[i], values[i])
	}
	return obj
}

func (p *parser) parseArray() cfgdata.Loc {
	p.skipChar('[')
	p.skipWhitespace()
	if p.cur() == ']' {
		p.skipChar(']')
		return p.mustAddArray(0)
	}
	return p.parseElements()
}

func (p *parser) parseElements() cfgdata.Loc {
	elements := make([]cfgdata.Loc, 0, 16)

	for {
		p.skipWhitespace()
		elements = append(elements, p.parseValue())
		p.skipWhitespace()
		if p.cur() == ']' {
			break
		}
		if !p.settings.OptionalCommas {
			p.skipChar(',')
		}
	}
	p.skipChar(']')

	arr := p.mustAddArray(len(elements))
	for _, e := range elements {
		p.mustPush(arr, e)
	}
	return arr
}

func (p *parser) parseTrue() cfgdata.Loc {
	p.skipChar('t')
	p.skipChar('r')
	p.skipChar('u')
	p.skipChar('e')
	return cfgdata.True()
}

func (p *parser) parseFalse() cfgdata.Loc {
	p.skipChar('f')
	p.skipChar('a')
	p.skipChar('l')
	p.skipChar('s')
	p.skipChar('e')
	return cfgdata.False()
}

func (p *parser) parseNull() cfgdata.Loc {
	p.skipChar('n')
	p.skipChar('u')
	p.skipChar('l')
	p.skipChar('l')
	return cfgdata.Null()
}

// parseCodepoint parses a 4-hex-digit \uXXXX escape.
func (p *parser) parseCodepoint() uint32 {
	var codepoint uint32
	for i := 0; i < 4; i++ {
		codepoint <<= 4
		c := p.cur()
		switch {
		case c >= 'a' && c <= 'f':
			codepoint += uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			codepoint += uint32(c-'A') + 10
		case c >= '0' && c <= '9':
			codepoint += uint32(c - '0')
		default:
			p.errorf("Unexpected character `%c`", c)
		}
		p.pos++
	}
	return codepoint
}

// pushUTF8Codepoint appends codepoint's UTF-8 encoding to buf. Surrogate
// pairs from two consecutive \uXXXX escapes are not combined into a single
// codepoint; each half is encoded independently, matching how the
// reference parser this was ported from treats them (each \uXXXX escape
// is a single, self-contained codepoint as far as the parser is
// concerned).
func (p *parser) pushUTF8Codepoint(buf []byte, codepoint uint32) []byte {
	switch {
	case codepoint <= 0x7f:
		buf = append(buf, byte(codepoint))
	case codepoint <= 0x7ff:
		buf = append(buf, byte(0xc0|((codepoint>>6)&0x1f)))
		buf = append(buf, byte(0x80|((codepoint>>0)&0x3f)))
	case codepoint <= 0xffff:
		buf = append(buf, byte(0xe0|((codepoint>>12)&0x0f)))
		buf = append(buf, byte(0x80|((codepoint>>6)&0x3f)))
		buf = append(buf, byte(0x80|((codepoint>>0)&0x3f)))
	case codepoint <= 0x1fffff:
		buf = append(buf, byte(0xf0|((codepoint>>18)&0x07)))
		buf = append(buf, byte(0x80|((codepoint>>12)&0x3f)))
		buf = append(buf, byte(0x80|((codepoint>>6)&0x3f)))
		buf = append(buf, byte(0x80|((codepoint>>0)&0x3f)))
	default:
		p.errorf("Not an UTF-8 codepoint `%d`", codepoint)
	}
	return buf
}
