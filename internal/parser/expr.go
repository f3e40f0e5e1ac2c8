package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// parseExpr разбирает выражение. Поверхность намеренно узкая: скрутини
// и тела веток, а не полный язык выражений.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	switch p.lx.Peek().Kind {
	case token.Minus:
		return p.parseNegLitExpr()

	case token.IntLit, token.FloatLit, token.CharLit, token.ByteLit,
		token.StringLit, token.ByteStringLit, token.KwTrue, token.KwFalse:
		return p.parseLitExpr()

	case token.Ident:
		return p.parsePathExpr()

	case token.Amp:
		ampTok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		operand, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		span := ampTok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
		return p.arenas.Exprs.NewRef(span, operand, mutable), true

	case token.AndAnd:
		// && в префиксе — двойная ссылка
		tok := p.advance()
		mutable := false
		if p.at(token.KwMut) {
			p.advance()
			mutable = true
		}
		operand, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		operandSpan := p.arenas.Exprs.Get(operand).Span
		innerSpan := source.Span{File: tok.Span.File, Start: tok.Span.Start + 1, End: operandSpan.End}
		inner := p.arenas.Exprs.NewRef(innerSpan, operand, mutable)
		return p.arenas.Exprs.NewRef(tok.Span.Cover(operandSpan), inner, false), true

	case token.KwOwn:
		ownTok := p.advance()
		operand, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		span := ownTok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
		return p.arenas.Exprs.NewOwn(span, operand), true

	case token.LParen:
		return p.parseParenExpr()

	case token.LBrace:
		return p.parseBlockExpr()

	case token.KwMatch:
		return p.parseMatchExpr()

	case token.KwIf:
		return p.parseIfExpr()

	case token.KwWhile:
		return p.parseWhileExpr()

	default:
		p.errHere(diag.SynExpectedExpr, "expected an expression, found "+describeToken(p.lx.Peek()))
		return ast.NoExprID, false
	}
}

var litKindOf = map[token.Kind]ast.ExprLitKind{
	token.IntLit:        ast.LitInt,
	token.FloatLit:      ast.LitFloat,
	token.CharLit:       ast.LitChar,
	token.ByteLit:       ast.LitByte,
	token.StringLit:     ast.LitString,
	token.ByteStringLit: ast.LitByteString,
	token.KwTrue:        ast.LitBool,
	token.KwFalse:       ast.LitBool,
}

func (p *Parser) parseLitExpr() (ast.ExprID, bool) {
	tok := p.advance()
	kind, ok := litKindOf[tok.Kind]
	if !ok {
		p.err(diag.SynExpectedExpr, tok.Span, "expected a literal, found "+describeToken(tok))
		return ast.NoExprID, false
	}
	value := p.arenas.Strings.Intern(tok.Text)
	return p.arenas.Exprs.NewLit(tok.Span, kind, value, false), true
}

// parseNegLitExpr сворачивает ведущий минус в числовой литерал.
func (p *Parser) parseNegLitExpr() (ast.ExprID, bool) {
	minusTok := p.advance()
	if !p.atOr(token.IntLit, token.FloatLit) {
		p.errHere(diag.SynExpectedExpr, "expected a numeric literal after `-`, found "+describeToken(p.lx.Peek()))
		return ast.NoExprID, false
	}
	litTok := p.advance()
	kind := ast.LitInt
	if litTok.Kind == token.FloatLit {
		kind = ast.LitFloat
	}
	value := p.arenas.Strings.Intern(litTok.Text)
	return p.arenas.Exprs.NewLit(minusTok.Span.Cover(litTok.Span), kind, value, true), true
}

// parsePathExpr разбирает `ident(::ident)*`.
func (p *Parser) parsePathExpr() (ast.ExprID, bool) {
	firstTok := p.advance()
	segments := []ast.PathSegment{{
		Name: p.arenas.Strings.Intern(firstTok.Text),
		Span: firstTok.Span,
	}}
	span := firstTok.Span

	for p.at(token.ColonColon) {
		p.advance()
		name, nameSpan, ok := p.parseIdent("path segment")
		if !ok {
			return ast.NoExprID, false
		}
		segments = append(segments, ast.PathSegment{Name: name, Span: nameSpan})
		span = span.Cover(nameSpan)
	}

	return p.arenas.Exprs.NewPath(span, segments), true
}

// parseParenExpr различает unit `()`, группировку `(e)` и кортеж `(a, b)`.
func (p *Parser) parseParenExpr() (ast.ExprID, bool) {
	openTok := p.advance()

	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.arenas.Exprs.NewTuple(openTok.Span.Cover(closeTok.Span), nil), true
	}

	first, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	if !p.at(token.Comma) {
		closeTok, ok := p.expectClose(token.RParen, ")", openTok.Span)
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(openTok.Span.Cover(closeTok.Span), first), true
	}

	elements := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		elem, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elements = append(elements, elem)
	}

	closeTok, ok := p.expectClose(token.RParen, ")", openTok.Span)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewTuple(openTok.Span.Cover(closeTok.Span), elements), true
}

// parseMatchExpr разбирает `match скрутини { паттерн => тело, ... }`.
func (p *Parser) parseMatchExpr() (ast.ExprID, bool) {
	matchTok := p.advance()

	scrutinee, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	openTok, ok := p.expect(token.LBrace, "`{` to start match arms")
	if !ok {
		return ast.NoExprID, false
	}

	var arms []ast.ArmID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.tooManyErrors() {
			break
		}
		armID, ok := p.parseMatchArm()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		arms = append(arms, armID)

		if p.at(token.Comma) {
			p.advance()
			continue
		}
		if p.at(token.RBrace) {
			break
		}
		arm := p.arenas.Exprs.Arm(armID)
		if arm != nil && p.isBlockish(arm.Body) {
			// запятая после блочного тела необязательна
			continue
		}
		p.countError()
		p.handler.StructSpanErrWithCode(p.diagSpan(), "expected `,` after match arm", diag.SynUnexpectedToken).
			SpanSuggestionShort(p.lastSpan.CollapseToEnd(), "insert `,` here", ",", diag.ApplicabilityMachineApplicable).
			Emit()
	}

	closeTok, ok := p.expectClose(token.RBrace, "}", openTok.Span)
	if !ok {
		return ast.NoExprID, false
	}

	span := matchTok.Span.Cover(closeTok.Span)
	return p.arenas.Exprs.NewMatch(span, scrutinee, ast.MatchNormal, arms), true
}

func (p *Parser) parseMatchArm() (ast.ArmID, bool) {
	pat, ok := p.parsePat()
	if !ok {
		return ast.NoArmID, false
	}

	if _, ok := p.expect(token.FatArrow, "`=>` after match pattern"); !ok {
		return ast.NoArmID, false
	}

	body, ok := p.parseExpr()
	if !ok {
		return ast.NoArmID, false
	}

	patSpan := p.arenas.Pats.Get(pat).Span
	bodySpan := p.arenas.Exprs.Get(body).Span
	return p.arenas.Exprs.NewArm(patSpan.Cover(bodySpan), pat, body), true
}

// parseIfExpr десахаривает `if cond { .. } else { .. }` в булев match.
// Скрутини помечается как условие, чтобы проверка типов не шумела на
// синтетических литеральных паттернах.
func (p *Parser) parseIfExpr() (ast.ExprID, bool) {
	ifTok := p.advance()

	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	thenBlock, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoExprID, false
	}
	thenSpan := p.arenas.Exprs.Get(thenBlock).Span

	elseExpr := ast.NoExprID
	endSpan := thenSpan
	if p.at(token.KwElse) {
		p.advance()
		switch p.lx.Peek().Kind {
		case token.KwIf:
			elseExpr, ok = p.parseIfExpr()
		case token.LBrace:
			elseExpr, ok = p.parseBlockExpr()
		default:
			p.errHere(diag.SynUnexpectedToken, "expected `{` or `if` after `else`, found "+describeToken(p.lx.Peek()))
			ok = false
		}
		if !ok {
			return ast.NoExprID, false
		}
		endSpan = p.arenas.Exprs.Get(elseExpr).Span
	}

	falseBody := elseExpr
	if !falseBody.IsValid() {
		falseBody = p.arenas.Exprs.NewBlock(thenSpan.CollapseToEnd(), nil, ast.NoExprID)
	}

	span := ifTok.Span.Cover(endSpan)
	return p.desugarCondMatch(span, cond, thenBlock, falseBody, ast.MatchIfDesugar), true
}

// parseWhileExpr десахаривает `while cond { .. }` тем же способом, с
// пустой веткой false.
func (p *Parser) parseWhileExpr() (ast.ExprID, bool) {
	whileTok := p.advance()

	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	body, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoExprID, false
	}
	bodySpan := p.arenas.Exprs.Get(body).Span

	emptyElse := p.arenas.Exprs.NewBlock(bodySpan.CollapseToEnd(), nil, ast.NoExprID)
	span := whileTok.Span.Cover(bodySpan)
	return p.desugarCondMatch(span, cond, body, emptyElse, ast.MatchWhileDesugar), true
}

// desugarCondMatch строит `match cond { true => thenBody, false => elseBody }`.
// Синтетические литеральные паттерны наследуют спан условия.
func (p *Parser) desugarCondMatch(span source.Span, cond, thenBody, elseBody ast.ExprID, src ast.MatchSource) ast.ExprID {
	condSpan := p.arenas.Exprs.Get(cond).Span

	truePat := p.boolLitPat(condSpan, "true")
	falsePat := p.boolLitPat(condSpan, "false")

	thenSpan := p.arenas.Exprs.Get(thenBody).Span
	elseSpan := p.arenas.Exprs.Get(elseBody).Span
	trueArm := p.arenas.Exprs.NewArm(thenSpan, truePat, thenBody)
	falseArm := p.arenas.Exprs.NewArm(elseSpan, falsePat, elseBody)

	return p.arenas.Exprs.NewMatch(span, cond, src, []ast.ArmID{trueArm, falseArm})
}

func (p *Parser) boolLitPat(span source.Span, text string) ast.PatID {
	lit := p.arenas.Exprs.NewLit(span, ast.LitBool, p.arenas.Strings.Intern(text), false)
	return p.arenas.Pats.NewLit(span, lit)
}
