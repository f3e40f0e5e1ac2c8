package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// parseFnItem разбирает `fn name(параметры) -> Type { тело }`.
// Возвращаемый тип необязателен: его отсутствие означает unit.
func (p *Parser) parseFnItem(startSpan source.Span, hasStart bool) (ast.ItemID, bool) {
	fnTok := p.advance()
	start := fnTok.Span
	if hasStart {
		start = startSpan.Cover(start)
	}

	name, nameSpan, ok := p.parseIdent("function name")
	if !ok {
		return ast.NoItemID, false
	}

	params, ok := p.parseFnParams()
	if !ok {
		return ast.NoItemID, false
	}

	returnType := ast.NoTypeID
	if p.at(token.Arrow) {
		p.advance()
		returnType, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
	}

	if !p.at(token.LBrace) {
		p.errHere(diag.SynUnexpectedToken, "expected `{` to start function body, found "+describeToken(p.lx.Peek()))
		return ast.NoItemID, false
	}
	body, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoItemID, false
	}

	span := start.Cover(p.arenas.Exprs.Get(body).Span)
	return p.arenas.Items.NewFn(name, nameSpan, params, returnType, body, span), true
}

// parseFnParams разбирает список параметров. Параметр — это полный
// паттерн с обязательной аннотацией типа: `(x, y): (int, int)` законно.
func (p *Parser) parseFnParams() ([]ast.FnParam, bool) {
	openTok, ok := p.expect(token.LParen, "`(` after function name")
	if !ok {
		return nil, false
	}

	var params []ast.FnParam
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pat, ok := p.parsePat()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, "`:` after parameter pattern"); !ok {
			return nil, false
		}
		typeID, ok := p.parseType()
		if !ok {
			return nil, false
		}
		patSpan := p.arenas.Pats.Get(pat).Span
		typeSpan := p.arenas.Types.Get(typeID).Span
		params = append(params, ast.FnParam{
			Pat:  pat,
			Type: typeID,
			Span: patSpan.Cover(typeSpan),
		})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	if _, ok := p.expectClose(token.RParen, ")", openTok.Span); !ok {
		return nil, false
	}
	return params, true
}
