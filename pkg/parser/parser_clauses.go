package parser

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/token"
)

// --- RETURN / WITH shared projection parsing ---

func (p *Parser) parseReturnItems() []*ast.ReturnItem {
	items := []*ast.ReturnItem{p.parseReturnItem()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		items = append(items, p.parseReturnItem())
	}
	return items
}

func (p *Parser) parseReturnItem() *ast.ReturnItem {
	loc := p.loc()
	if p.curIs(token.ASTERISK) {
		p.nextToken()
		id := &ast.Identifier{Name: "*"}
		id.Location = loc
		ri := &ast.ReturnItem{Expr: id}
		ri.Location = loc
		return ri
	}
	expr := p.parseExpression(LOWEST)
	alias := ""
	if p.curIs(token.AS) {
		p.nextToken()
		alias = p.curToken.Literal
		p.nextToken()
	}
	ri := &ast.ReturnItem{Expr: expr, Alias: alias}
	ri.Location = loc
	return ri
}

func (p *Parser) parseOrderBy() []*ast.OrderItem {
	p.nextToken() // ORDER
	p.expect(token.BY)
	items := []*ast.OrderItem{p.parseOrderItem()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		items = append(items, p.parseOrderItem())
	}
	return items
}

func (p *Parser) parseOrderItem() *ast.OrderItem {
	loc := p.loc()
	expr := p.parseExpression(LOWEST)
	desc := false
	if p.curIs(token.DESC) {
		desc = true
		p.nextToken()
	} else if p.curIs(token.ASC) {
		p.nextToken()
	}
	oi := &ast.OrderItem{Expr: expr, Desc: desc}
	oi.Location = loc
	return oi
}

// --- RETURN ---

func (p *Parser) parseReturnClause() *ast.ReturnClause {
	loc := p.loc()
	p.expect(token.RETURN)
	distinct := false
	if p.curIs(token.DISTINCT) {
		distinct = true
		p.nextToken()
	}
	items := p.parseReturnItems()
	rc := &ast.ReturnClause{Items: items, Distinct: distinct}
	rc.Location = loc
	if p.curIs(token.ORDER) {
		rc.OrderBy = p.parseOrderBy()
	}
	if p.curIs(token.SKIP) {
		p.nextToken()
		rc.Skip = p.parseExpression(LOWEST)
	}
	if p.curIs(token.LIMIT) {
		p.nextToken()
		rc.Limit = p.parseExpression(LOWEST)
	}
	return rc
}

// --- WITH ---

func (p *Parser) parseWithClause() *ast.WithClause {
	loc := p.loc()
	p.expect(token.WITH)
	distinct := false
	if p.curIs(token.DISTINCT) {
		distinct = true
		p.nextToken()
	}
	items := p.parseReturnItems()
	wc := &ast.WithClause{Items: items, Distinct: distinct}
	wc.Location = loc
	if p.curIs(token.ORDER) {
		wc.OrderBy = p.parseOrderBy()
	}
	if p.curIs(token.SKIP) {
		p.nextToken()
		wc.Skip = p.parseExpression(LOWEST)
	}
	if p.curIs(token.LIMIT) {
		p.nextToken()
		wc.Limit = p.parseExpression(LOWEST)
	}
	if p.curIs(token.WHERE) {
		p.nextToken()
		wc.Where = p.parseExpression(LOWEST)
	}
	return wc
}

// --- CREATE ---

func (p *Parser) parseCreateClause() *ast.CreateClause {
	loc := p.loc()
	p.expect(token.CREATE)
	patterns := []*ast.Path{p.parsePattern()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		patterns = append(patterns, p.parsePattern())
	}
	cc := &ast.CreateClause{Patterns: patterns}
	cc.Location = loc
	return cc
}

// --- MERGE ---

func (p *Parser) parseMergeClause() *ast.MergeClause {
	loc := p.loc()
	p.expect(token.MERGE)
	pattern := p.parsePattern()
	mc := &ast.MergeClause{Pattern: pattern}
	mc.Location = loc
	for p.curIs(token.ON) {
		p.nextToken()
		switch p.curToken.Type {
		case token.CREATE:
			p.nextToken()
			p.expect(token.SET)
			mc.OnCreate = p.parseSetItems()
		case token.MATCH:
			p.nextToken()
			p.expect(token.SET)
			mc.OnMatch = p.parseSetItems()
		default:
			p.errorf("expected CREATE or MATCH after ON, got %s", p.curToken.Type)
			return mc
		}
	}
	return mc
}

// --- SET ---

func (p *Parser) parseSetClause() *ast.SetClause {
	loc := p.loc()
	p.expect(token.SET)
	items := p.parseSetItems()
	sc := &ast.SetClause{Items: items}
	sc.Location = loc
	return sc
}

func (p *Parser) parseSetItems() []*ast.SetItem {
	items := []*ast.SetItem{p.parseSetItem()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		items = append(items, p.parseSetItem())
	}
	return items
}

func (p *Parser) parseSetItem() *ast.SetItem {
	loc := p.loc()
	variable := p.curToken.Literal
	p.nextToken() // ident
	if p.curIs(token.COLON) {
		p.nextToken()
		label := p.curToken.Literal
		p.nextToken()
		si := &ast.SetItem{Kind: ast.SetItemLabel, Variable: variable, Label: label}
		si.Location = loc
		return si
	}
	p.expect(token.DOT)
	propName := p.curToken.Literal
	p.nextToken()
	id := &ast.Identifier{Name: variable}
	id.Location = loc
	prop := &ast.PropertyExpr{Target: id, Name: propName}
	prop.Location = loc
	p.expect(token.EQ)
	value := p.parseExpression(LOWEST)
	si := &ast.SetItem{Kind: ast.SetItemProperty, Property: prop, Value: value}
	si.Location = loc
	return si
}

// --- DELETE ---

func (p *Parser) parseDeleteClause() *ast.DeleteClause {
	loc := p.loc()
	detach := false
	if p.curIs(token.DETACH) {
		detach = true
		p.nextToken()
	}
	p.expect(token.DELETE)
	vars := []string{p.curToken.Literal}
	p.nextToken()
	for p.curIs(token.COMMA) {
		p.nextToken()
		vars = append(vars, p.curToken.Literal)
		p.nextToken()
	}
	dc := &ast.DeleteClause{Variables: vars, Detach: detach}
	dc.Location = loc
	return dc
}

// --- REMOVE ---

func (p *Parser) parseRemoveClause() *ast.RemoveClause {
	loc := p.loc()
	p.expect(token.REMOVE)
	items := []*ast.RemoveItem{p.parseRemoveItem()}
	for p.curIs(token.COMMA) {
		p.nextToken()
		items = append(items, p.parseRemoveItem())
	}
	rc := &ast.RemoveClause{Items: items}
	rc.Location = loc
	return rc
}

func (p *Parser) parseRemoveItem() *ast.RemoveItem {
	loc := p.loc()
	variable := p.curToken.Literal
	p.nextToken()
	if p.curIs(token.COLON) {
		p.nextToken()
		label := p.curToken.Literal
		p.nextToken()
		ri := &ast.RemoveItem{Kind: ast.RemoveItemLabel, Variable: variable, Label: label}
		ri.Location = loc
		return ri
	}
	p.expect(token.DOT)
	propName := p.curToken.Literal
	p.nextToken()
	id := &ast.Identifier{Name: variable}
	id.Location = loc
	prop := &ast.PropertyExpr{Target: id, Name: propName}
	prop.Location = loc
	ri := &ast.RemoveItem{Kind: ast.RemoveItemProperty, Variable: variable, Property: prop}
	ri.Location = loc
	return ri
}

// --- UNWIND ---

func (p *Parser) parseUnwindClause() *ast.UnwindClause {
	loc := p.loc()
	p.expect(token.UNWIND)
	expr := p.parseExpression(LOWEST)
	p.expect(token.AS)
	alias := p.curToken.Literal
	p.nextToken()
	uc := &ast.UnwindClause{Expr: expr, Alias: alias}
	uc.Location = loc
	return uc
}

// --- FOREACH ---

func (p *Parser) parseForeachClause() *ast.ForeachClause {
	loc := p.loc()
	p.expect(token.FOREACH)
	p.expect(token.LPAREN)
	variable := p.curToken.Literal
	p.nextToken()
	p.expect(token.IN)
	list := p.parseExpression(LOWEST)
	p.expect(token.PIPE)
	var body []ast.Clause
	for p.clauseStartsHere() {
		c := p.parseClause()
		if c == nil || p.firstErr != nil {
			break
		}
		body = append(body, c)
	}
	p.expect(token.RPAREN)
	fc := &ast.ForeachClause{Variable: variable, List: list, Body: body}
	fc.Location = loc
	return fc
}

// --- LOAD CSV ---

func (p *Parser) parseLoadCsvClause() *ast.LoadCsvClause {
	loc := p.loc()
	p.expect(token.LOAD)
	p.expect(token.CSV)
	withHeaders := false
	if p.curIs(token.WITH) {
		p.nextToken()
		p.expect(token.HEADERS)
		withHeaders = true
	}
	p.expect(token.FROM)
	path := p.parseExpression(LOWEST)
	p.expect(token.AS)
	alias := p.curToken.Literal
	p.nextToken()
	terminator := ","
	if p.curIs(token.FIELDTERMINATOR) {
		p.nextToken()
		terminator = p.curToken.Literal
		p.nextToken()
	}
	lc := &ast.LoadCsvClause{Path: path, Alias: alias, WithHeaders: withHeaders, Terminator: terminator}
	lc.Location = loc
	return lc
}
