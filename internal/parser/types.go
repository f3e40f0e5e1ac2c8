package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// parseType разбирает записанный тип.
func (p *Parser) parseType() (ast.TypeID, bool) {
	switch p.lx.Peek().Kind {
	case token.Amp:
		ampTok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		span := ampTok.Span.Cover(p.arenas.Types.Get(elem).Span)
		return p.arenas.Types.NewRef(span, elem, mutable), true

	case token.AndAnd:
		// `&&T` — ссылка на ссылку, `mut` относится к внутренней
		tok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		elemSpan := p.arenas.Types.Get(elem).Span
		innerSpan := source.Span{File: tok.Span.File, Start: tok.Span.Start + 1, End: elemSpan.End}
		inner := p.arenas.Types.NewRef(innerSpan, elem, mutable)
		return p.arenas.Types.NewRef(tok.Span.Cover(elemSpan), inner, false), true

	case token.KwOwn:
		ownTok := p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		span := ownTok.Span.Cover(p.arenas.Types.Get(elem).Span)
		return p.arenas.Types.NewOwn(span, elem), true

	case token.LParen:
		return p.parseTupleType()

	case token.LBracket:
		return p.parseSliceOrArrayType()

	case token.KwAny:
		anyTok := p.advance()
		name, nameSpan, ok := p.parseIdent("contract name")
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.NewContract(anyTok.Span.Cover(nameSpan), name, nameSpan), true

	case token.Underscore:
		tok := p.advance()
		return p.arenas.Types.NewInfer(tok.Span), true

	case token.Ident:
		return p.parseNamedType()

	default:
		p.errHere(diag.SynExpectedType, "expected a type, found "+describeToken(p.lx.Peek()))
		return ast.NoTypeID, false
	}
}

// parseTupleType различает unit `()`, группировку `(T)` и кортеж.
func (p *Parser) parseTupleType() (ast.TypeID, bool) {
	openTok := p.advance()

	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.arenas.Types.NewTuple(openTok.Span.Cover(closeTok.Span), nil), true
	}

	var elems []ast.TypeID
	sawComma := false
	for {
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		elems = append(elems, elem)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		sawComma = true
		if p.at(token.RParen) {
			break
		}
	}

	closeTok, ok := p.expectClose(token.RParen, ")", openTok.Span)
	if !ok {
		return ast.NoTypeID, false
	}

	if !sawComma && len(elems) == 1 {
		// `(T)` — это просто T
		return elems[0], true
	}
	return p.arenas.Types.NewTuple(openTok.Span.Cover(closeTok.Span), elems), true
}

// parseSliceOrArrayType разбирает `[T]` и `[T; длина]`.
func (p *Parser) parseSliceOrArrayType() (ast.TypeID, bool) {
	openTok := p.advance()

	elem, ok := p.parseType()
	if !ok {
		return ast.NoTypeID, false
	}

	if p.at(token.Semicolon) {
		p.advance()
		length, ok := p.parseExpr()
		if !ok {
			return ast.NoTypeID, false
		}
		closeTok, ok := p.expectClose(token.RBracket, "]", openTok.Span)
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.NewArray(openTok.Span.Cover(closeTok.Span), elem, length), true
	}

	closeTok, ok := p.expectClose(token.RBracket, "]", openTok.Span)
	if !ok {
		return ast.NoTypeID, false
	}
	return p.arenas.Types.NewSlice(openTok.Span.Cover(closeTok.Span), elem), true
}

// parseNamedType разбирает `Name` и `Name<T, U>`. `>>` в `Pair<Pair<int>>`
// проблемы не создаёт: лексер выдаёт два отдельных `>`.
func (p *Parser) parseNamedType() (ast.TypeID, bool) {
	nameTok := p.advance()
	name := p.arenas.Strings.Intern(nameTok.Text)

	if !p.at(token.Lt) {
		return p.arenas.Types.NewName(nameTok.Span, name, nameTok.Span, nil), true
	}

	ltTok := p.advance()
	var args []ast.TypeID
	if p.at(token.Gt) {
		p.err(diag.SynExpectedType, p.diagSpan(), "expected a type argument after `<`")
	}
	for !p.at(token.Gt) && !p.at(token.EOF) {
		arg, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	closeTok, ok := p.expectClose(token.Gt, ">", ltTok.Span)
	if !ok {
		return ast.NoTypeID, false
	}
	return p.arenas.Types.NewName(nameTok.Span.Cover(closeTok.Span), name, nameTok.Span, args), true
}
