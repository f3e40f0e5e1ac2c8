package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// parsePat разбирает полный паттерн, включая альтернативы через `|`.
func (p *Parser) parsePat() (ast.PatID, bool) {
	first, ok := p.parsePatNoAlt()
	if !ok {
		return ast.NoPatID, false
	}
	return p.parseOrTail(first)
}

// parseOrTail довешивает `| alt` к уже разобранной первой альтернативе.
func (p *Parser) parseOrTail(first ast.PatID) (ast.PatID, bool) {
	if !p.at(token.Pipe) {
		return first, true
	}

	alts := []ast.PatID{first}
	for p.at(token.Pipe) {
		p.advance()
		alt, ok := p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		alts = append(alts, alt)
	}

	firstSpan := p.arenas.Pats.Get(first).Span
	lastSpan := p.arenas.Pats.Get(alts[len(alts)-1]).Span
	return p.arenas.Pats.NewOr(firstSpan.Cover(lastSpan), alts), true
}

// parsePatNoAlt разбирает одну альтернативу, без `|` на верхнем уровне.
func (p *Parser) parsePatNoAlt() (ast.PatID, bool) {
	switch p.lx.Peek().Kind {
	case token.Underscore:
		tok := p.advance()
		return p.arenas.Pats.NewWild(tok.Span), true

	case token.Amp:
		ampTok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		sub, ok := p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		span := ampTok.Span.Cover(p.arenas.Pats.Get(sub).Span)
		return p.arenas.Pats.NewRef(span, sub, mutable), true

	case token.AndAnd:
		// лексер выдаёт `&&` одним токеном; в паттерне это две ссылки,
		// причём `mut` относится к внутренней
		tok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		sub, ok := p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		subSpan := p.arenas.Pats.Get(sub).Span
		innerSpan := source.Span{File: tok.Span.File, Start: tok.Span.Start + 1, End: subSpan.End}
		inner := p.arenas.Pats.NewRef(innerSpan, sub, mutable)
		return p.arenas.Pats.NewRef(tok.Span.Cover(subSpan), inner, false), true

	case token.KwOwn:
		ownTok := p.advance()
		sub, ok := p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		span := ownTok.Span.Cover(p.arenas.Pats.Get(sub).Span)
		return p.arenas.Pats.NewOwn(span, sub), true

	case token.KwMut:
		mutTok := p.advance()
		return p.parseAnnotBinding(mutTok.Span, ast.BindMut)

	case token.KwRef:
		refTok := p.advance()
		annot := ast.BindRef
		if p.at(token.KwMut) {
			p.advance()
			annot = ast.BindRefMut
		}
		return p.parseAnnotBinding(refTok.Span, annot)

	case token.Minus, token.IntLit, token.FloatLit, token.CharLit, token.ByteLit,
		token.StringLit, token.ByteStringLit, token.KwTrue, token.KwFalse:
		return p.parseLitOrRangePat()

	case token.LParen:
		return p.parseTuplePat()

	case token.LBracket:
		return p.parseSlicePat()

	case token.Ident:
		return p.parseIdentPat(p.advance())

	default:
		p.errHere(diag.SynExpectedPattern, "expected a pattern, found "+describeToken(p.lx.Peek()))
		return ast.NoPatID, false
	}
}

// parseAnnotBinding дочитывает `name (@ sub)?` после `mut`, `ref` или
// `ref mut`.
func (p *Parser) parseAnnotBinding(start source.Span, annot ast.BindingAnnot) (ast.PatID, bool) {
	name, nameSpan, ok := p.parseIdent("binding name")
	if !ok {
		return ast.NoPatID, false
	}

	sub := ast.NoPatID
	end := nameSpan
	if p.at(token.At) {
		p.advance()
		sub, ok = p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		end = p.arenas.Pats.Get(sub).Span
	}
	return p.arenas.Pats.NewBinding(start.Cover(end), annot, name, nameSpan, sub), true
}

// parseLitOrRangePat разбирает литеральный паттерн и его возможное
// продолжение в диапазон: `0..10`, `'a'..='z'`, `-1..=1`.
func (p *Parser) parseLitOrRangePat() (ast.PatID, bool) {
	lo, ok := p.parsePatLitExpr()
	if !ok {
		return ast.NoPatID, false
	}
	if p.atOr(token.DotDot, token.DotDotEq) {
		return p.parseRangeTail(lo)
	}
	return p.arenas.Pats.NewLit(p.arenas.Exprs.Get(lo).Span, lo), true
}

func (p *Parser) parsePatLitExpr() (ast.ExprID, bool) {
	if p.at(token.Minus) {
		return p.parseNegLitExpr()
	}
	return p.parseLitExpr()
}

// parseRangeTail дочитывает `..` либо `..=` и правую границу диапазона.
func (p *Parser) parseRangeTail(lo ast.ExprID) (ast.PatID, bool) {
	opTok := p.advance()
	inclusive := opTok.Kind == token.DotDotEq

	hi, ok := p.parseRangeEndpoint()
	if !ok {
		return ast.NoPatID, false
	}
	span := p.arenas.Exprs.Get(lo).Span.Cover(p.arenas.Exprs.Get(hi).Span)
	return p.arenas.Pats.NewRange(span, lo, hi, inclusive), true
}

// parseRangeEndpoint разбирает границу диапазона: литерал или путь к
// константе. Пригодность типа границы проверяет sema.
func (p *Parser) parseRangeEndpoint() (ast.ExprID, bool) {
	switch p.lx.Peek().Kind {
	case token.Minus:
		return p.parseNegLitExpr()
	case token.IntLit, token.FloatLit, token.CharLit, token.ByteLit,
		token.StringLit, token.ByteStringLit, token.KwTrue, token.KwFalse:
		return p.parseLitExpr()
	case token.Ident:
		return p.parsePathExpr()
	default:
		p.errHere(diag.SynExpectedPattern, "expected a range endpoint, found "+describeToken(p.lx.Peek()))
		return ast.NoExprID, false
	}
}

// parseTuplePat различает unit `()`, группировку `(pat)` и кортеж,
// включая `..` в любой позиции элемента.
func (p *Parser) parseTuplePat() (ast.PatID, bool) {
	openTok := p.advance()

	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.arenas.Pats.NewTuple(openTok.Span.Cover(closeTok.Span), nil, -1), true
	}

	var elems []ast.PatID
	rest := -1
	sawComma := false
	for {
		if p.at(token.DotDot) {
			restTok := p.advance()
			if rest >= 0 {
				p.err(diag.SynUnexpectedToken, restTok.Span, "`..` can appear at most once in a tuple pattern")
			} else {
				rest = len(elems)
			}
		} else {
			elem, ok := p.parsePat()
			if !ok {
				return ast.NoPatID, false
			}
			elems = append(elems, elem)
		}
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
		return ast.NoPatID, false
	}

	if !sawComma && rest < 0 && len(elems) == 1 {
		// скобки вокруг одного паттерна без запятой — просто
		// группировка, отдельного узла для неё нет
		return elems[0], true
	}
	return p.arenas.Pats.NewTuple(openTok.Span.Cover(closeTok.Span), elems, rest), true
}

// parseSlicePat разбирает `[a, b]`, `[head, ..]`, `[first, rest @ .., last]`.
func (p *Parser) parseSlicePat() (ast.PatID, bool) {
	openTok := p.advance()

	var before, after []ast.PatID
	hasRest := false
	restBind := ast.NoPatID

	for !p.at(token.RBracket) && !p.at(token.EOF) {
		if p.tooManyErrors() {
			break
		}
		elem, isRest, ok := p.parseSliceElem()
		if !ok {
			p.resyncUntil(token.Comma, token.RBracket)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		switch {
		case isRest && hasRest:
			span := p.lastSpan
			if elem.IsValid() {
				span = p.arenas.Pats.Get(elem).Span
			}
			p.err(diag.SynUnexpectedToken, span, "`..` can appear at most once in a slice pattern")
		case isRest:
			hasRest = true
			restBind = elem
		case hasRest:
			after = append(after, elem)
		default:
			before = append(before, elem)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	closeTok, ok := p.expectClose(token.RBracket, "]", openTok.Span)
	if !ok {
		return ast.NoPatID, false
	}
	span := openTok.Span.Cover(closeTok.Span)
	return p.arenas.Pats.NewSlice(span, before, hasRest, restBind, after), true
}

// parseSliceElem возвращает либо обычный элемент, либо позицию `..`.
// Для rest-биндинга `rest @ ..` элементом становится сам биндинг, для
// голого `..` возвращается NoPatID.
func (p *Parser) parseSliceElem() (elem ast.PatID, isRest bool, ok bool) {
	if p.at(token.DotDot) {
		p.advance()
		return ast.NoPatID, true, true
	}
	if !p.at(token.Ident) {
		elem, ok = p.parsePat()
		return elem, false, ok
	}

	// у лексера один токен заглядывания, поэтому `rest @ ..` приходится
	// распознавать, уже съев идентификатор
	identTok := p.advance()
	if p.at(token.At) {
		p.advance()
		if p.at(token.DotDot) {
			ddTok := p.advance()
			span := identTok.Span.Cover(ddTok.Span)
			bind := p.arenas.Pats.NewBinding(span, ast.BindDefault,
				p.arenas.Strings.Intern(identTok.Text), identTok.Span, ast.NoPatID)
			return bind, true, true
		}
		sub, subOK := p.parsePatNoAlt()
		if !subOK {
			return ast.NoPatID, false, false
		}
		span := identTok.Span.Cover(p.arenas.Pats.Get(sub).Span)
		bind := p.arenas.Pats.NewBinding(span, ast.BindDefault,
			p.arenas.Strings.Intern(identTok.Text), identTok.Span, sub)
		elem, ok = p.parseOrTail(bind)
		return elem, false, ok
	}

	pat, patOK := p.parseIdentPat(identTok)
	if !patOK {
		return ast.NoPatID, false, false
	}
	elem, ok = p.parseOrTail(pat)
	return elem, false, ok
}

// parseIdentPat продолжает паттерн, начавшийся с уже съеденного
// идентификатора: путь, конструктор, структурный паттерн, диапазон от
// константы, `name @ sub` или простой биндинг.
func (p *Parser) parseIdentPat(first token.Token) (ast.PatID, bool) {
	segments := []ast.PathSegment{{
		Name: p.arenas.Strings.Intern(first.Text),
		Span: first.Span,
	}}
	span := first.Span
	for p.at(token.ColonColon) {
		p.advance()
		name, nameSpan, ok := p.parseIdent("path segment")
		if !ok {
			return ast.NoPatID, false
		}
		segments = append(segments, ast.PathSegment{Name: name, Span: nameSpan})
		span = span.Cover(nameSpan)
	}

	switch p.lx.Peek().Kind {
	case token.LParen:
		return p.parseTupleStructPat(span, segments)
	case token.LBrace:
		return p.parseStructPat(span, segments)
	case token.DotDot, token.DotDotEq:
		lo := p.arenas.Exprs.NewPath(span, segments)
		return p.parseRangeTail(lo)
	}

	if len(segments) > 1 {
		return p.arenas.Pats.NewPath(span, segments), true
	}

	// одиночное имя записываем как биндинг; совпадение с константой или
	// unit-структурой распознаёт sema
	sub := ast.NoPatID
	end := span
	if p.at(token.At) {
		p.advance()
		var ok bool
		sub, ok = p.parsePatNoAlt()
		if !ok {
			return ast.NoPatID, false
		}
		end = p.arenas.Pats.Get(sub).Span
	}
	return p.arenas.Pats.NewBinding(span.Cover(end), ast.BindDefault, segments[0].Name, first.Span, sub), true
}

// parseTupleStructPat дочитывает `Name(a, b, ..)` после пути.
func (p *Parser) parseTupleStructPat(pathSpan source.Span, path []ast.PathSegment) (ast.PatID, bool) {
	openTok := p.advance()

	var elems []ast.PatID
	rest := -1
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			restTok := p.advance()
			if rest >= 0 {
				p.err(diag.SynUnexpectedToken, restTok.Span, "`..` can appear at most once in a tuple struct pattern")
			} else {
				rest = len(elems)
			}
		} else {
			elem, ok := p.parsePat()
			if !ok {
				return ast.NoPatID, false
			}
			elems = append(elems, elem)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	closeTok, ok := p.expectClose(token.RParen, ")", openTok.Span)
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Pats.NewTupleStruct(pathSpan.Cover(closeTok.Span), path, elems, rest), true
}

// parseStructPat дочитывает `Name { field: pat, shorthand, .. }` после
// пути.
func (p *Parser) parseStructPat(pathSpan source.Span, path []ast.PathSegment) (ast.PatID, bool) {
	openTok := p.advance()

	var fields []ast.PatFieldID
	hasRest := false
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.tooManyErrors() {
			break
		}
		if p.at(token.DotDot) {
			restTok := p.advance()
			if hasRest {
				p.err(diag.SynUnexpectedToken, restTok.Span, "`..` can appear at most once in a struct pattern")
			}
			hasRest = true
			if p.at(token.Comma) {
				p.err(diag.SynUnexpectedToken, restTok.Span, "`..` must be the last entry of a struct pattern")
				p.advance()
				continue
			}
			break
		}
		fieldID, ok := p.parseStructPatField()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		fields = append(fields, fieldID)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	closeTok, ok := p.expectClose(token.RBrace, "}", openTok.Span)
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Pats.NewStruct(pathSpan.Cover(closeTok.Span), path, fields, hasRest), true
}

// parseStructPatField разбирает `name: pat` либо сокращённую форму
// `name` / `ref name` / `mut name`.
func (p *Parser) parseStructPatField() (ast.PatFieldID, bool) {
	annot := ast.BindDefault
	var start source.Span
	hasAnnot := false
	switch p.lx.Peek().Kind {
	case token.KwRef:
		refTok := p.advance()
		start = refTok.Span
		hasAnnot = true
		annot = ast.BindRef
		if p.at(token.KwMut) {
			p.advance()
			annot = ast.BindRefMut
		}
	case token.KwMut:
		mutTok := p.advance()
		start = mutTok.Span
		hasAnnot = true
		annot = ast.BindMut
	}

	name, nameSpan, ok := p.parseIdent("field name")
	if !ok {
		return ast.NoPatFieldID, false
	}
	if !hasAnnot {
		start = nameSpan
	}

	if p.at(token.Colon) {
		colonTok := p.advance()
		if hasAnnot {
			p.err(diag.SynUnexpectedToken, colonTok.Span, "binding modifiers are only allowed in the shorthand form")
		}
		pat, ok := p.parsePat()
		if !ok {
			return ast.NoPatFieldID, false
		}
		return p.arenas.Pats.NewStructField(ast.PatStructField{
			Name:      name,
			NameSpan:  nameSpan,
			Pat:       pat,
			Shorthand: false,
			Span:      start.Cover(p.arenas.Pats.Get(pat).Span),
		}), true
	}

	bind := p.arenas.Pats.NewBinding(start.Cover(nameSpan), annot, name, nameSpan, ast.NoPatID)
	return p.arenas.Pats.NewStructField(ast.PatStructField{
		Name:      name,
		NameSpan:  nameSpan,
		Pat:       bind,
		Shorthand: true,
		Span:      start.Cover(nameSpan),
	}), true
}
