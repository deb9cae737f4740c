// Package parser implements a recursive-descent parser for the Cypher
// dialect, producing pkg/ast nodes directly (no separate parse-tree stage).
// Expression precedence is resolved with a Pratt prefix/infix table, the
// same shape as a conventional hand-rolled SQL parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/lexer"
	"github.com/relcypher/graphengine/pkg/token"
)

// Operator precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR_PREC
	XOR_PREC
	AND_PREC
	NOT_PREC
	COMPARE
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	POSTFIX
)

var precedences = map[token.Type]int{
	token.OR:       OR_PREC,
	token.XOR:      XOR_PREC,
	token.AND:      AND_PREC,
	token.EQ:       COMPARE,
	token.NEQ:      COMPARE,
	token.LT:       COMPARE,
	token.GT:       COMPARE,
	token.LTE:      COMPARE,
	token.GTE:      COMPARE,
	token.IN:       COMPARE,
	token.STARTS:   COMPARE,
	token.ENDS:     COMPARE,
	token.CONTAINS: COMPARE,
	token.REGEX:    COMPARE,
	token.IS:       COMPARE,
	token.PLUS:     ADDITIVE,
	token.MINUS:    ADDITIVE,
	token.ASTERISK: MULTIPLICATIVE,
	token.SLASH:    MULTIPLICATIVE,
	token.PERCENT:  MULTIPLICATIVE,
	token.DOT:      POSTFIX,
	token.LBRACKET: POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser parses Cypher query text into an ast.Root.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	firstErr *ParseError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser over l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.Type]prefixParseFn{}
	p.infixParseFns = map[token.Type]infixParseFn{}

	p.registerPrefix(token.IDENT, p.parseIdentifierOrFunctionCall)
	p.registerPrefix(token.PARAM, p.parseParameter)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE_KW, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE_KW, p.parseBoolLiteral)
	p.registerPrefix(token.NULL_KW, p.parseNullLiteral)
	p.registerPrefix(token.MINUS, p.parseUnaryMinus)
	p.registerPrefix(token.NOT, p.parseNot)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrPatternExpression)
	p.registerPrefix(token.LBRACKET, p.parseListOrComprehension)
	p.registerPrefix(token.LBRACE, p.parseMapLiteral)
	p.registerPrefix(token.CASE, p.parseCaseExpression)
	p.registerPrefix(token.EXISTS, p.parseExistsExpression)
	p.registerPrefix(token.REDUCE, p.parseReduceExpression)
	p.registerPrefix(token.ANY_KW, p.parseListPredicate)
	p.registerPrefix(token.ALL, p.parseListPredicate)
	p.registerPrefix(token.NONE_KW, p.parseListPredicate)
	p.registerPrefix(token.SINGLE_KW, p.parseListPredicate)
	p.registerPrefix(token.SHORTESTPATH, p.parsePathFunctionExpr)
	p.registerPrefix(token.ALLSHORTESTPATHS, p.parsePathFunctionExpr)

	p.registerInfix(token.OR, p.parseBinary)
	p.registerInfix(token.XOR, p.parseBinary)
	p.registerInfix(token.AND, p.parseBinary)
	p.registerInfix(token.EQ, p.parseBinary)
	p.registerInfix(token.NEQ, p.parseBinary)
	p.registerInfix(token.LT, p.parseBinary)
	p.registerInfix(token.GT, p.parseBinary)
	p.registerInfix(token.LTE, p.parseBinary)
	p.registerInfix(token.GTE, p.parseBinary)
	p.registerInfix(token.REGEX, p.parseBinary)
	p.registerInfix(token.PLUS, p.parseBinary)
	p.registerInfix(token.MINUS, p.parseBinary)
	p.registerInfix(token.ASTERISK, p.parseBinary)
	p.registerInfix(token.SLASH, p.parseBinary)
	p.registerInfix(token.PERCENT, p.parseBinary)
	p.registerInfix(token.IN, p.parseBinary)
	p.registerInfix(token.STARTS, p.parseStartsWith)
	p.registerInfix(token.ENDS, p.parseEndsWith)
	p.registerInfix(token.CONTAINS, p.parseBinary)
	p.registerInfix(token.DOT, p.parsePropertyAccess)
	p.registerInfix(token.LBRACKET, p.parseSubscript)
	p.registerInfix(token.IS, p.parseIsNull)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) loc() ast.Location {
	return ast.Location{Line: p.curToken.Line, Col: p.curToken.Column}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	if p.firstErr != nil {
		return
	}
	p.firstErr = &ParseError{Line: p.curToken.Line, Col: p.curToken.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.curToken.Type, p.curToken.Literal)
	return false
}

func precedenceOf(t token.Type) int {
	if pr, ok := precedences[t]; ok {
		return pr
	}
	return LOWEST
}

// Parse parses the full query text into an ast.Root (Query or Union).
// It returns a *ParseError (not a generic error) on syntax failure so
// callers can surface the one-based line/column verbatim.
func Parse(query string) (ast.Root, error) {
	p := New(lexer.New(query))
	root := p.parseQueryOrUnion()
	if p.firstErr == nil && !p.curIs(token.EOF) {
		p.errorf("unexpected token %s (%q) after query", p.curToken.Type, p.curToken.Literal)
	}
	if p.firstErr != nil {
		return nil, p.firstErr
	}
	return root, nil
}

func (p *Parser) parseQueryOrUnion() ast.Root {
	loc := p.loc()
	explain, profile := false, false
	if p.curIs(token.EXPLAIN) {
		explain = true
		p.nextToken()
	} else if p.curIs(token.PROFILE) {
		profile = true
		p.nextToken()
	}

	left := p.parseSingleQuery()
	left.Explain = explain
	left.Profile = profile

	if !p.curIs(token.UNION) {
		return left
	}

	var root ast.Root = left
	for p.curIs(token.UNION) {
		p.nextToken()
		all := false
		if p.curIs(token.ALL) {
			all = true
			p.nextToken()
		}
		right := p.parseSingleQuery()
		root = ast.NewUnion(loc, root, right, all)
	}
	return root
}

func (p *Parser) parseSingleQuery() *ast.Query {
	loc := p.loc()
	var clauses []ast.Clause
	for p.clauseStartsHere() {
		c := p.parseClause()
		if c == nil || p.firstErr != nil {
			break
		}
		clauses = append(clauses, c)
	}
	return ast.NewQuery(loc, clauses)
}

func (p *Parser) clauseStartsHere() bool {
	switch p.curToken.Type {
	case token.MATCH, token.OPTIONAL, token.RETURN, token.WITH, token.CREATE,
		token.MERGE, token.SET, token.DELETE, token.DETACH, token.REMOVE,
		token.UNWIND, token.FOREACH, token.LOAD:
		return true
	}
	return false
}

func (p *Parser) parseClause() ast.Clause {
	switch p.curToken.Type {
	case token.MATCH, token.OPTIONAL:
		return p.parseMatchClause()
	case token.RETURN:
		return p.parseReturnClause()
	case token.WITH:
		return p.parseWithClause()
	case token.CREATE:
		return p.parseCreateClause()
	case token.MERGE:
		return p.parseMergeClause()
	case token.SET:
		return p.parseSetClause()
	case token.DELETE, token.DETACH:
		return p.parseDeleteClause()
	case token.REMOVE:
		return p.parseRemoveClause()
	case token.UNWIND:
		return p.parseUnwindClause()
	case token.FOREACH:
		return p.parseForeachClause()
	case token.LOAD:
		return p.parseLoadCsvClause()
	}
	p.errorf("unexpected token %s at start of clause", p.curToken.Type)
	return nil
}

// --- MATCH ---

func (p *Parser) parseMatchClause() *ast.MatchClause {
	loc := p.loc()
	optional := false
	if p.curIs(token.OPTIONAL) {
		optional = true
		p.nextToken()
	}
	if !p.expect(token.MATCH) {
		return nil
	}
	patterns := []*ast.Path{p.parsePattern()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		patterns = append(patterns, p.parsePattern())
	}
	var where ast.Expression
	if p.curIs(token.WHERE) {
		p.nextToken()
		where = p.parseExpression(LOWEST)
	}
	mc := &ast.MatchClause{Patterns: patterns, Where: where, Optional: optional}
	mc.Location = loc
	return mc
}

func (p *Parser) parsePattern() *ast.Path {
	loc := p.loc()
	var pathVar string
	if p.curIs(token.IDENT) && p.peekIs(token.EQ) {
		pathVar = p.curToken.Literal
		p.nextToken()
		p.nextToken()
	}

	kind := ast.PathNormal
	if p.curIs(token.SHORTESTPATH) {
		kind = ast.PathShortest
		p.nextToken()
		p.expect(token.LPAREN)
		path := p.parseRawPath(loc, pathVar, kind)
		p.expect(token.RPAREN)
		return path
	}
	if p.curIs(token.ALLSHORTESTPATHS) {
		kind = ast.PathAllShortest
		p.nextToken()
		p.expect(token.LPAREN)
		path := p.parseRawPath(loc, pathVar, kind)
		p.expect(token.RPAREN)
		return path
	}
	return p.parseRawPath(loc, pathVar, kind)
}

func (p *Parser) parseRawPath(loc ast.Location, pathVar string, kind ast.PathKind) *ast.Path {
	nodes := []*ast.NodePattern{p.parseNodePattern()}
	var rels []*ast.RelPattern
	for p.curIs(token.DASH) || p.curIs(token.ARROW_L) {
		rel := p.parseRelPattern()
		rels = append(rels, rel)
		nodes = append(nodes, p.parseNodePattern())
	}
	return ast.NewPath(loc, pathVar, kind, nodes, rels)
}

func (p *Parser) parseNodePattern() *ast.NodePattern {
	loc := p.loc()
	if !p.expect(token.LPAREN) {
		return &ast.NodePattern{}
	}
	n := &ast.NodePattern{}
	n.Location = loc
	if p.curIs(token.IDENT) {
		n.Var = p.curToken.Literal
		p.nextToken()
	}
	for p.curIs(token.COLON) {
		p.nextToken()
		if p.curIs(token.IDENT) {
			n.Labels = append(n.Labels, p.curToken.Literal)
			p.nextToken()
		}
	}
	if p.curIs(token.LBRACE) {
		n.Properties = p.parseMapLiteral().(*ast.MapLiteral)
	}
	p.expect(token.RPAREN)
	return n
}

func (p *Parser) parseRelPattern() *ast.RelPattern {
	loc := p.loc()
	r := &ast.RelPattern{}
	r.Location = loc

	leftArrow := false
	if p.curIs(token.ARROW_L) {
		leftArrow = true
		p.nextToken()
	} else {
		p.expect(token.DASH)
	}

	if p.curIs(token.LBRACKET) {
		p.nextToken()
		if p.curIs(token.IDENT) {
			r.Var = p.curToken.Literal
			p.nextToken()
		}
		if p.curIs(token.COLON) {
			p.nextToken()
			if p.curIs(token.IDENT) {
				r.Types = append(r.Types, p.curToken.Literal)
				p.nextToken()
			}
			for p.curIs(token.PIPE) {
				p.nextToken()
				if p.curIs(token.COLON) {
					p.nextToken()
				}
				if p.curIs(token.IDENT) {
					r.Types = append(r.Types, p.curToken.Literal)
					p.nextToken()
				}
			}
		}
		if p.curIs(token.ASTERISK) {
			p.nextToken()
			r.Varlen = p.parseVarlenRange(loc)
		}
		if p.curIs(token.LBRACE) {
			r.Properties = p.parseMapLiteral().(*ast.MapLiteral)
		}
		p.expect(token.RBRACKET)
	}

	rightArrow := false
	if p.curIs(token.ARROW_R) {
		rightArrow = true
		p.nextToken()
	} else {
		p.expect(token.DASH)
	}

	switch {
	case leftArrow && !rightArrow:
		r.Direction = ast.DirLeft
	case rightArrow && !leftArrow:
		r.Direction = ast.DirRight
	default:
		r.Direction = ast.DirEither
	}
	return r
}

// parseVarlenRange parses the remainder of `*min..max` after the `*` has
// already been consumed. Min defaults to 1, an absent max means -1
// (unbounded).
func (p *Parser) parseVarlenRange(loc ast.Location) *ast.VarlenRange {
	v := &ast.VarlenRange{Min: 1, Max: -1}
	v.Location = loc
	if p.curIs(token.INT) {
		n, _ := strconv.Atoi(p.curToken.Literal)
		v.Min = n
		v.Max = n
		p.nextToken()
	}
	if p.curIs(token.DOTDOT) {
		p.nextToken()
		if p.curIs(token.INT) {
			n, _ := strconv.Atoi(p.curToken.Literal)
			v.Max = n
			p.nextToken()
		} else {
			v.Max = -1
		}
	}
	return v
}
