package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relcypher/graphengine/pkg/token"
)

func TestNextTokenCoreQuery(t *testing.T) {
	input := `MATCH (a:Person {name:'Alice'})-[:KNOWS*1..3]->(b) WHERE a.age <> $min RETURN a.name`
	l := New(input)

	var types []token.Type
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	assert.Equal(t, token.MATCH, types[0])
	assert.Contains(t, types, token.COLON)
	assert.Contains(t, types, token.LBRACE)
	assert.Contains(t, types, token.DOTDOT)
	assert.Contains(t, types, token.ARROW_R)
	assert.Contains(t, types, token.PARAM)
	assert.Contains(t, types, token.NEQ)
	assert.Equal(t, token.EOF, types[len(types)-1])
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New(`'a\nb\'c'`)
	tok := l.NextToken()
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, "a\nb'c", tok.Literal)
}

func TestNextTokenBacktickIdentifier(t *testing.T) {
	l := New("`weird name`.prop")
	tok := l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "weird name", tok.Literal)
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	l := New("match Return where")
	assert.Equal(t, token.MATCH, l.NextToken().Type)
	assert.Equal(t, token.RETURN, l.NextToken().Type)
	assert.Equal(t, token.WHERE, l.NextToken().Type)
}
