// Package params implements the Parameter Binder (C9): a hand-written
// recursive-descent JSON reader for query parameter payloads, and a Binder
// that maps a Cypher `$name` reference to its translated `:name` SQL
// placeholder. The reader is hand-rolled so a malformed payload reports the
// same located error shape as the rest of the engine.
package params

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// ParseError is a located JSON parameter-payload parse failure.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parameter json: offset %d: %s", e.Pos, e.Msg)
}

// ParseObject reads a top-level JSON object of parameters into a
// name->Value map. Any malformed payload is reported as *ParseError.
func ParseObject(payload string) (map[string]graphvalue.Value, error) {
	p := &jsonParser{src: payload}
	p.skipWS()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return nil, p.errorf("expected top-level '{'")
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing content")
	}
	if v.Kind != graphvalue.KindMap {
		return nil, p.errorf("expected top-level object")
	}
	return v.Map, nil
}

type jsonParser struct {
	src string
	pos int
}

func (p *jsonParser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *jsonParser) skipWS() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue() (graphvalue.Value, error) {
	p.skipWS()
	if p.pos >= len(p.src) {
		return graphvalue.Value{}, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return graphvalue.Value{}, err
		}
		return graphvalue.Str(s), nil
	case c == 't' || c == 'f':
		return p.parseBool()
	case c == 'n':
		return p.parseNull()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return graphvalue.Value{}, p.errorf("unexpected character %q", c)
	}
}

func (p *jsonParser) parseObject() (graphvalue.Value, error) {
	p.pos++ // consume '{'
	m := make(map[string]graphvalue.Value)
	p.skipWS()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return graphvalue.MapVal(m), nil
	}
	for {
		p.skipWS()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return graphvalue.Value{}, p.errorf("expected string key")
		}
		key, err := p.parseString()
		if err != nil {
			return graphvalue.Value{}, err
		}
		p.skipWS()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return graphvalue.Value{}, p.errorf("expected ':' after key %q", key)
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return graphvalue.Value{}, err
		}
		m[key] = val
		p.skipWS()
		if p.pos >= len(p.src) {
			return graphvalue.Value{}, p.errorf("unterminated object")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return graphvalue.MapVal(m), nil
		}
		return graphvalue.Value{}, p.errorf("expected ',' or '}' in object")
	}
}

func (p *jsonParser) parseArray() (graphvalue.Value, error) {
	p.pos++ // consume '['
	var items []graphvalue.Value
	p.skipWS()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return graphvalue.ListVal(items), nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return graphvalue.Value{}, err
		}
		items = append(items, val)
		p.skipWS()
		if p.pos >= len(p.src) {
			return graphvalue.Value{}, p.errorf("unterminated array")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return graphvalue.ListVal(items), nil
		}
		return graphvalue.Value{}, p.errorf("expected ',' or ']' in array")
	}
}

func (p *jsonParser) parseString() (string, error) {
	p.pos++ // consume opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			switch esc := p.src[p.pos]; esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
				continue
			default:
				return "", p.errorf("invalid escape '\\%c'", esc)
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *jsonParser) parseUnicodeEscape() (rune, error) {
	hi, err := p.readHex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(hi)) && p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		p.pos += 2
		lo, err := p.readHex4()
		if err != nil {
			return 0, err
		}
		r := utf16.DecodeRune(rune(hi), rune(lo))
		if r != utf8.RuneError {
			return r, nil
		}
	}
	return rune(hi), nil
}

func (p *jsonParser) readHex4() (uint16, error) {
	p.pos++ // consume 'u'
	if p.pos+4 > len(p.src) {
		return 0, p.errorf("truncated \\u escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 16)
	if err != nil {
		return 0, p.errorf("invalid \\u escape")
	}
	p.pos += 4
	return uint16(v), nil
}

func (p *jsonParser) parseBool() (graphvalue.Value, error) {
	if strings.HasPrefix(p.src[p.pos:], "true") {
		p.pos += 4
		return graphvalue.Bool(true), nil
	}
	if strings.HasPrefix(p.src[p.pos:], "false") {
		p.pos += 5
		return graphvalue.Bool(false), nil
	}
	return graphvalue.Value{}, p.errorf("invalid literal")
}

func (p *jsonParser) parseNull() (graphvalue.Value, error) {
	if strings.HasPrefix(p.src[p.pos:], "null") {
		p.pos += 4
		return graphvalue.Null, nil
	}
	return graphvalue.Value{}, p.errorf("invalid literal")
}

func (p *jsonParser) parseNumber() (graphvalue.Value, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			isFloat = true
			p.pos++
		default:
			goto done
		}
	}
done:
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return graphvalue.Value{}, p.errorf("invalid number %q", text)
		}
		return graphvalue.Float(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return graphvalue.Value{}, p.errorf("invalid number %q", text)
	}
	return graphvalue.Int(n), nil
}
