package parser

import (
	"strconv"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("no prefix parse function for %s (%q)", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	left := prefix()

	for !p.curIs(token.EOF) && precedence < precedenceOf(p.curToken.Type) {
		infix := p.infixParseFns[p.curToken.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierOrFunctionCall() ast.Expression {
	loc := p.loc()
	name := p.curToken.Literal
	p.nextToken()
	if !p.curIs(token.LPAREN) {
		id := &ast.Identifier{Name: name}
		id.Location = loc
		return id
	}
	p.nextToken() // consume '('
	distinct := false
	if p.curIs(token.DISTINCT) {
		distinct = true
		p.nextToken()
	}
	var args []ast.Expression
	if p.curIs(token.ASTERISK) && p.peekIs(token.RPAREN) {
		star := &ast.Identifier{Name: "*"}
		star.Location = loc
		args = append(args, star)
		p.nextToken()
	} else if !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpression(LOWEST))
		for p.curIs(token.COMMA) {
			p.nextToken()
			args = append(args, p.parseExpression(LOWEST))
		}
	}
	p.expect(token.RPAREN)
	fc := &ast.FunctionCall{Name: name, Args: args, Distinct: distinct}
	fc.Location = loc
	return fc
}

func (p *Parser) parseParameter() ast.Expression {
	loc := p.loc()
	name := p.curToken.Literal
	p.nextToken()
	pr := &ast.Parameter{Name: name}
	pr.Location = loc
	return pr
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	loc := p.loc()
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf("invalid integer literal %q", p.curToken.Literal)
	}
	p.nextToken()
	return ast.IntLiteral(loc, v)
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	loc := p.loc()
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf("invalid float literal %q", p.curToken.Literal)
	}
	p.nextToken()
	return ast.FloatLiteral(loc, v)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	loc := p.loc()
	v := p.curToken.Literal
	p.nextToken()
	return ast.StringLiteral(loc, v)
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	loc := p.loc()
	v := p.curIs(token.TRUE_KW)
	p.nextToken()
	return ast.BoolLiteral(loc, v)
}

func (p *Parser) parseNullLiteral() ast.Expression {
	loc := p.loc()
	p.nextToken()
	return ast.NullLiteral(loc)
}

func (p *Parser) parseUnaryMinus() ast.Expression {
	loc := p.loc()
	p.nextToken()
	operand := p.parseExpression(UNARY)
	be := &ast.BinaryExpr{Op: ast.OpSub, Left: ast.IntLiteral(loc, 0), Right: operand}
	be.Location = loc
	return be
}

func (p *Parser) parseNot() ast.Expression {
	loc := p.loc()
	p.nextToken()
	operand := p.parseExpression(NOT_PREC)
	ne := &ast.NotExpr{Expr: operand}
	ne.Location = loc
	return ne
}

// parseGroupedOrPatternExpression handles `(expr)`.
func (p *Parser) parseGroupedOrPatternExpression() ast.Expression {
	p.nextToken() // consume '('
	e := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return e
}

func (p *Parser) parseListOrComprehension() ast.Expression {
	loc := p.loc()
	p.nextToken() // consume '['
	if p.curIs(token.RBRACKET) {
		p.nextToken()
		le := &ast.ListExpr{}
		le.Location = loc
		return le
	}

	// Disambiguate `[x IN list ...]` from a plain list literal by looking
	// one identifier ahead for the IN keyword.
	if p.curIs(token.IDENT) && p.peekIs(token.IN) {
		varName := p.curToken.Literal
		p.nextToken() // ident
		p.nextToken() // IN
		list := p.parseExpression(LOWEST)
		var where, transform ast.Expression
		if p.curIs(token.WHERE) {
			p.nextToken()
			where = p.parseExpression(LOWEST)
		}
		if p.curIs(token.PIPE) {
			p.nextToken()
			transform = p.parseExpression(LOWEST)
		}
		p.expect(token.RBRACKET)
		lc := &ast.ListComprehension{Var: varName, List: list, Where: where, Transform: transform}
		lc.Location = loc
		return lc
	}

	items := []ast.Expression{p.parseExpression(LOWEST)}
	for p.curIs(token.COMMA) {
		p.nextToken()
		items = append(items, p.parseExpression(LOWEST))
	}
	p.expect(token.RBRACKET)
	le := &ast.ListExpr{Items: items}
	le.Location = loc
	return le
}

func (p *Parser) parseMapLiteral() ast.Expression {
	loc := p.loc()
	p.expect(token.LBRACE)
	m := &ast.MapLiteral{}
	m.Location = loc
	if p.curIs(token.RBRACE) {
		p.nextToken()
		return m
	}
	for {
		key := p.curToken.Literal
		p.nextToken() // key ident
		p.expect(token.COLON)
		val := p.parseExpression(LOWEST)
		m.Entries = append(m.Entries, ast.MapEntry{Key: key, Value: val})
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return m
}

func (p *Parser) parseCaseExpression() ast.Expression {
	loc := p.loc()
	p.nextToken() // consume CASE
	var scrutinee ast.Expression
	if !p.curIs(token.WHEN) {
		scrutinee = p.parseExpression(LOWEST)
	}
	var whens []ast.WhenClause
	for p.curIs(token.WHEN) {
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		p.expect(token.THEN)
		result := p.parseExpression(LOWEST)
		whens = append(whens, ast.WhenClause{Cond: cond, Result: result})
	}
	var elseExpr ast.Expression
	if p.curIs(token.ELSE) {
		p.nextToken()
		elseExpr = p.parseExpression(LOWEST)
	}
	p.expect(token.END)
	ce := &ast.CaseExpr{Scrutinee: scrutinee, Whens: whens, Else: elseExpr}
	ce.Location = loc
	return ce
}

func (p *Parser) parseExistsExpression() ast.Expression {
	loc := p.loc()
	p.nextToken() // consume EXISTS
	p.expect(token.LPAREN)
	// exists(n.prop) vs exists((n)-[:T]->(m))
	if p.curIs(token.IDENT) && p.peekIs(token.DOT) {
		expr := p.parseExpression(LOWEST)
		p.expect(token.RPAREN)
		ee := &ast.ExistsExpr{}
		ee.Location = loc
		if prop, ok := expr.(*ast.PropertyExpr); ok {
			ee.Property = prop
		}
		return ee
	}
	path := p.parsePattern()
	p.expect(token.RPAREN)
	ee := &ast.ExistsExpr{Pattern: path}
	ee.Location = loc
	return ee
}

func (p *Parser) parseReduceExpression() ast.Expression {
	loc := p.loc()
	p.nextToken() // REDUCE
	p.expect(token.LPAREN)
	acc := p.curToken.Literal
	p.nextToken()
	p.expect(token.EQ)
	initial := p.parseExpression(LOWEST)
	p.expect(token.COMMA)
	v := p.curToken.Literal
	p.nextToken()
	p.expect(token.IN)
	list := p.parseExpression(LOWEST)
	p.expect(token.PIPE)
	body := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	re := &ast.ReduceExpr{Accumulator: acc, Initial: initial, Var: v, List: list, Body: body}
	re.Location = loc
	return re
}

func (p *Parser) parseListPredicate() ast.Expression {
	loc := p.loc()
	var kind ast.ListPredicateKind
	switch p.curToken.Type {
	case token.ALL:
		kind = ast.PredAll
	case token.ANY_KW:
		kind = ast.PredAny
	case token.NONE_KW:
		kind = ast.PredNone
	case token.SINGLE_KW:
		kind = ast.PredSingle
	}
	p.nextToken()
	p.expect(token.LPAREN)
	v := p.curToken.Literal
	p.nextToken()
	p.expect(token.IN)
	list := p.parseExpression(LOWEST)
	var pred ast.Expression
	if p.curIs(token.WHERE) {
		p.nextToken()
		pred = p.parseExpression(LOWEST)
	}
	p.expect(token.RPAREN)
	lp := &ast.ListPredicate{Kind: kind, Var: v, List: list, Predicate: pred}
	lp.Location = loc
	return lp
}

func (p *Parser) parsePathFunctionExpr() ast.Expression {
	loc := p.loc()
	path := p.parsePattern()
	// shortestPath/allShortestPaths used as an expression (e.g. inside a
	// WITH projection) resolves to the path's bound variable.
	if path.Var == "" {
		path.Var = "__path"
	}
	id := &ast.Identifier{Name: path.Var}
	id.Location = loc
	return id
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	loc := p.loc()
	opTok := p.curToken.Type
	prec := precedenceOf(opTok)
	p.nextToken()
	right := p.parseExpression(prec)
	be := &ast.BinaryExpr{Op: binOpFor(opTok), Left: left, Right: right}
	be.Location = loc
	return be
}

func binOpFor(t token.Type) ast.BinaryOp {
	switch t {
	case token.OR:
		return ast.OpOr
	case token.XOR:
		return ast.OpXor
	case token.AND:
		return ast.OpAnd
	case token.EQ:
		return ast.OpEq
	case token.NEQ:
		return ast.OpNeq
	case token.LT:
		return ast.OpLt
	case token.GT:
		return ast.OpGt
	case token.LTE:
		return ast.OpLte
	case token.GTE:
		return ast.OpGte
	case token.PLUS:
		return ast.OpAdd
	case token.MINUS:
		return ast.OpSub
	case token.ASTERISK:
		return ast.OpMul
	case token.SLASH:
		return ast.OpDiv
	case token.PERCENT:
		return ast.OpMod
	case token.IN:
		return ast.OpIn
	case token.CONTAINS:
		return ast.OpContains
	case token.REGEX:
		return ast.OpRegex
	}
	return ast.OpEq
}

func (p *Parser) parseStartsWith(left ast.Expression) ast.Expression {
	loc := p.loc()
	p.nextToken() // STARTS
	p.expect(token.WITH)
	right := p.parseExpression(COMPARE)
	be := &ast.BinaryExpr{Op: ast.OpStartsWith, Left: left, Right: right}
	be.Location = loc
	return be
}

func (p *Parser) parseEndsWith(left ast.Expression) ast.Expression {
	loc := p.loc()
	p.nextToken() // ENDS
	p.expect(token.WITH)
	right := p.parseExpression(COMPARE)
	be := &ast.BinaryExpr{Op: ast.OpEndsWith, Left: left, Right: right}
	be.Location = loc
	return be
}

func (p *Parser) parsePropertyAccess(left ast.Expression) ast.Expression {
	loc := p.loc()
	p.nextToken() // consume '.'
	if p.curIs(token.ASTERISK) {
		p.nextToken()
		return left
	}
	name := p.curToken.Literal
	p.nextToken()
	pe := &ast.PropertyExpr{Target: left, Name: name}
	pe.Location = loc
	return pe
}

func (p *Parser) parseSubscript(left ast.Expression) ast.Expression {
	loc := p.loc()
	p.nextToken() // consume '['
	if p.curIs(token.DOTDOT) {
		p.nextToken()
		end := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET)
		sub := &ast.Subscript{Target: left, IndexEnd: end}
		sub.Location = loc
		return sub
	}
	idx := p.parseExpression(LOWEST)
	if p.curIs(token.DOTDOT) {
		p.nextToken()
		var end ast.Expression
		if !p.curIs(token.RBRACKET) {
			end = p.parseExpression(LOWEST)
		}
		p.expect(token.RBRACKET)
		sub := &ast.Subscript{Target: left, Index: idx, IndexEnd: end}
		sub.Location = loc
		return sub
	}
	p.expect(token.RBRACKET)
	sub := &ast.Subscript{Target: left, Index: idx}
	sub.Location = loc
	return sub
}

func (p *Parser) parseIsNull(left ast.Expression) ast.Expression {
	loc := p.loc()
	p.nextToken() // consume IS
	not := false
	if p.curIs(token.NOT) {
		not = true
		p.nextToken()
	}
	p.expect(token.NULL_KW)
	nc := &ast.NullCheck{Expr: left, Not: not}
	nc.Location = loc
	return nc
}
