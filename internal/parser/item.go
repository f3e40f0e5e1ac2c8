package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// parseItem выбирает распознаватель top-level конструкции по первому токену.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	nonExhaustive, attrSpan, hasAttr := p.parseAttrs()

	start := attrSpan
	hasStart := hasAttr
	if p.at(token.KwPub) {
		// Видимость не влияет на проверку одного модуля; съедаем и
		// учитываем только в спане.
		pubTok := p.advance()
		if hasStart {
			start = start.Cover(pubTok.Span)
		} else {
			start = pubTok.Span
			hasStart = true
		}
	}

	switch p.lx.Peek().Kind {
	case token.KwType:
		return p.parseTypeItem(start, hasStart, nonExhaustive)
	case token.KwConst:
		p.warnDanglingAttr(nonExhaustive, attrSpan)
		return p.parseConstItem(start, hasStart)
	case token.KwFn:
		p.warnDanglingAttr(nonExhaustive, attrSpan)
		return p.parseFnItem(start, hasStart)
	case token.KwContract:
		p.warnDanglingAttr(nonExhaustive, attrSpan)
		return p.parseContractItem(start, hasStart)
	default:
		p.errHere(diag.SynExpectedItem, "expected a declaration, found "+describeToken(p.lx.Peek()))
		return ast.NoItemID, false
	}
}

// parseAttrs собирает атрибуты вида `@name` перед декларацией.
// Распознаётся только `@non_exhaustive`; незнакомые атрибуты дают warning
// и пропускаются.
func (p *Parser) parseAttrs() (nonExhaustive bool, span source.Span, has bool) {
	for p.at(token.At) {
		atTok := p.advance()
		if !p.at(token.Ident) {
			p.errHere(diag.SynUnexpectedToken, "expected attribute name after `@`")
			return nonExhaustive, span, has
		}
		nameTok := p.advance()
		attrSpan := atTok.Span.Cover(nameTok.Span)
		if nameTok.Text == "non_exhaustive" {
			nonExhaustive = true
		} else {
			p.handler.StructSpanWarnWithCode(attrSpan, "unknown attribute `"+nameTok.Text+"`", diag.SynUnexpectedToken).
				Help("the only recognized attribute is `@non_exhaustive`").
				Emit()
		}
		if has {
			span = span.Cover(attrSpan)
		} else {
			span = attrSpan
			has = true
		}
	}
	return nonExhaustive, span, has
}

func (p *Parser) warnDanglingAttr(nonExhaustive bool, attrSpan source.Span) {
	if !nonExhaustive {
		return
	}
	p.handler.SpanWarn(attrSpan, "`@non_exhaustive` only applies to type declarations")
}

// parseTypeItem разбирает `type Name<params> struct|enum|union ...`.
func (p *Parser) parseTypeItem(startSpan source.Span, hasStart bool, nonExhaustive bool) (ast.ItemID, bool) {
	typeTok := p.advance()
	start := typeTok.Span
	if hasStart {
		start = startSpan.Cover(start)
	}

	name, nameSpan, ok := p.parseIdent("type name")
	if !ok {
		return ast.NoItemID, false
	}

	params, ok := p.parseTypeParams()
	if !ok {
		return ast.NoItemID, false
	}

	switch p.lx.Peek().Kind {
	case token.KwStruct:
		return p.parseStructDecl(start, name, nameSpan, params, nonExhaustive)
	case token.KwEnum:
		return p.parseEnumDecl(start, name, nameSpan, params, nonExhaustive)
	case token.KwUnion:
		if nonExhaustive {
			p.handler.SpanWarn(p.lx.Peek().Span, "`@non_exhaustive` has no effect on unions")
		}
		return p.parseUnionDecl(start, name, nameSpan, params)
	default:
		p.errHere(diag.SynUnexpectedToken, "expected `struct`, `enum` or `union` after type name, found "+describeToken(p.lx.Peek()))
		return ast.NoItemID, false
	}
}

// parseTypeParams разбирает необязательный список параметров `<T, U>`.
func (p *Parser) parseTypeParams() ([]ast.TypeParam, bool) {
	if !p.at(token.Lt) {
		return nil, true
	}
	openTok := p.advance()

	var params []ast.TypeParam
	for !p.at(token.Gt) && !p.at(token.EOF) {
		name, nameSpan, ok := p.parseIdent("type parameter name")
		if !ok {
			return nil, false
		}
		params = append(params, ast.TypeParam{Name: name, Span: nameSpan})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	if _, ok := p.expectClose(token.Gt, ">", openTok.Span); !ok {
		return nil, false
	}
	if len(params) == 0 {
		p.err(diag.SynUnexpectedToken, openTok.Span.Cover(p.lastSpan), "type parameter list cannot be empty")
	}
	return params, true
}

// parseStructDecl разбирает именованный `struct { поля }` и позиционный
// `struct(типы);`.
func (p *Parser) parseStructDecl(start source.Span, name source.StringID, nameSpan source.Span, params []ast.TypeParam, nonExhaustive bool) (ast.ItemID, bool) {
	p.advance() // struct

	switch p.lx.Peek().Kind {
	case token.LParen:
		openTok := p.advance()
		var fields []ast.TypeField
		for !p.at(token.RParen) && !p.at(token.EOF) {
			typeID, ok := p.parseType()
			if !ok {
				return ast.NoItemID, false
			}
			typeSpan := p.arenas.Types.Get(typeID).Span
			fields = append(fields, ast.TypeField{Name: source.NoStringID, Type: typeID, Span: typeSpan})
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, ok := p.expectClose(token.RParen, ")", openTok.Span); !ok {
			return ast.NoItemID, false
		}
		semiTok, ok := p.expect(token.Semicolon, "`;` after positional struct declaration")
		if !ok {
			return ast.NoItemID, false
		}
		span := start.Cover(semiTok.Span)
		return p.arenas.Items.NewTypeStruct(name, nameSpan, params, nonExhaustive, true, fields, span), true

	case token.LBrace:
		openTok := p.advance()
		fields, bodySpan, ok := p.parseFieldList(openTok)
		if !ok {
			return ast.NoItemID, false
		}
		span := start.Cover(bodySpan)
		if p.at(token.Semicolon) {
			semiTok := p.advance()
			span = span.Cover(semiTok.Span)
		}
		return p.arenas.Items.NewTypeStruct(name, nameSpan, params, nonExhaustive, false, fields, span), true

	default:
		p.errHere(diag.SynUnexpectedToken, "expected `{` or `(` after `struct`, found "+describeToken(p.lx.Peek()))
		return ast.NoItemID, false
	}
}

// parseEnumDecl разбирает `enum { Variant, Variant(типы), Variant{поля} }`.
func (p *Parser) parseEnumDecl(start source.Span, name source.StringID, nameSpan source.Span, params []ast.TypeParam, nonExhaustive bool) (ast.ItemID, bool) {
	p.advance() // enum

	openTok, ok := p.expect(token.LBrace, "`{` after `enum`")
	if !ok {
		return ast.NoItemID, false
	}

	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		variant, ok := p.parseEnumVariant()
		if !ok {
			return ast.NoItemID, false
		}
		variants = append(variants, variant)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	closeTok, ok := p.expectClose(token.RBrace, "}", openTok.Span)
	if !ok {
		return ast.NoItemID, false
	}

	span := start.Cover(closeTok.Span)
	if p.at(token.Semicolon) {
		semiTok := p.advance()
		span = span.Cover(semiTok.Span)
	}
	return p.arenas.Items.NewTypeEnum(name, nameSpan, params, nonExhaustive, variants, span), true
}

// parseEnumVariant разбирает один вариант. Поля варианта кладутся в арену
// до самого варианта, вариант хранит только границы блока.
func (p *Parser) parseEnumVariant() (ast.EnumVariant, bool) {
	name, nameSpan, ok := p.parseIdent("variant name")
	if !ok {
		return ast.EnumVariant{}, false
	}

	switch p.lx.Peek().Kind {
	case token.LParen:
		openTok := p.advance()
		var fields []ast.TypeField
		for !p.at(token.RParen) && !p.at(token.EOF) {
			typeID, ok := p.parseType()
			if !ok {
				return ast.EnumVariant{}, false
			}
			typeSpan := p.arenas.Types.Get(typeID).Span
			fields = append(fields, ast.TypeField{Name: source.NoStringID, Type: typeID, Span: typeSpan})
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		closeTok, ok := p.expectClose(token.RParen, ")", openTok.Span)
		if !ok {
			return ast.EnumVariant{}, false
		}
		fieldsStart, fieldsCount := p.arenas.Items.AllocateFields(fields)
		return ast.EnumVariant{
			Name:        name,
			Kind:        ast.EnumVariantTuple,
			FieldsStart: fieldsStart,
			FieldsCount: fieldsCount,
			Span:        nameSpan.Cover(closeTok.Span),
		}, true

	case token.LBrace:
		openTok := p.advance()
		fields, bodySpan, ok := p.parseFieldList(openTok)
		if !ok {
			return ast.EnumVariant{}, false
		}
		fieldsStart, fieldsCount := p.arenas.Items.AllocateFields(fields)
		return ast.EnumVariant{
			Name:        name,
			Kind:        ast.EnumVariantStruct,
			FieldsStart: fieldsStart,
			FieldsCount: fieldsCount,
			Span:        nameSpan.Cover(bodySpan),
		}, true

	default:
		return ast.EnumVariant{
			Name: name,
			Kind: ast.EnumVariantUnit,
			Span: nameSpan,
		}, true
	}
}

// parseUnionDecl разбирает `union { поля }`.
func (p *Parser) parseUnionDecl(start source.Span, name source.StringID, nameSpan source.Span, params []ast.TypeParam) (ast.ItemID, bool) {
	p.advance() // union

	openTok, ok := p.expect(token.LBrace, "`{` after `union`")
	if !ok {
		return ast.NoItemID, false
	}
	fields, bodySpan, ok := p.parseFieldList(openTok)
	if !ok {
		return ast.NoItemID, false
	}

	span := start.Cover(bodySpan)
	if p.at(token.Semicolon) {
		semiTok := p.advance()
		span = span.Cover(semiTok.Span)
	}
	return p.arenas.Items.NewTypeUnion(name, nameSpan, params, fields, span), true
}

// parseFieldList разбирает `имя: тип, ...` до закрывающей фигурной скобки.
// Открывающая скобка уже съедена.
func (p *Parser) parseFieldList(openTok token.Token) ([]ast.TypeField, source.Span, bool) {
	var fields []ast.TypeField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name, nameSpan, ok := p.parseIdent("field name")
		if !ok {
			return nil, source.Span{}, false
		}
		if _, ok := p.expect(token.Colon, "`:` after field name"); !ok {
			return nil, source.Span{}, false
		}
		typeID, ok := p.parseType()
		if !ok {
			return nil, source.Span{}, false
		}
		typeSpan := p.arenas.Types.Get(typeID).Span
		fields = append(fields, ast.TypeField{Name: name, Type: typeID, Span: nameSpan.Cover(typeSpan)})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	closeTok, ok := p.expectClose(token.RBrace, "}", openTok.Span)
	if !ok {
		return nil, source.Span{}, false
	}
	return fields, openTok.Span.Cover(closeTok.Span), true
}

// parseConstItem разбирает `const NAME: Type = expr;`. Аннотация типа
// необязательна.
func (p *Parser) parseConstItem(startSpan source.Span, hasStart bool) (ast.ItemID, bool) {
	constTok := p.advance()
	start := constTok.Span
	if hasStart {
		start = startSpan.Cover(start)
	}

	name, nameSpan, ok := p.parseIdent("constant name")
	if !ok {
		return ast.NoItemID, false
	}

	typeID := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		typeID, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
	}

	if _, ok := p.expect(token.Assign, "`=` in constant declaration"); !ok {
		return ast.NoItemID, false
	}

	value, ok := p.parseExpr()
	if !ok {
		return ast.NoItemID, false
	}

	semiTok, ok := p.expectSemicolon("constant declaration")
	if !ok {
		return ast.NoItemID, false
	}

	span := start.Cover(semiTok.Span)
	return p.arenas.Items.NewConst(name, nameSpan, typeID, value, span), true
}

// parseContractItem разбирает `contract Name;`.
func (p *Parser) parseContractItem(startSpan source.Span, hasStart bool) (ast.ItemID, bool) {
	contractTok := p.advance()
	start := contractTok.Span
	if hasStart {
		start = startSpan.Cover(start)
	}

	name, nameSpan, ok := p.parseIdent("contract name")
	if !ok {
		return ast.NoItemID, false
	}

	semiTok, ok := p.expectSemicolon("contract declaration")
	if !ok {
		return ast.NoItemID, false
	}

	span := start.Cover(semiTok.Span)
	return p.arenas.Items.NewContract(name, nameSpan, span), true
}

// expectSemicolon требует `;` и вешает на ошибку вставочную подсказку.
func (p *Parser) expectSemicolon(after string) (token.Token, bool) {
	if p.at(token.Semicolon) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	insert := p.lastSpan.CollapseToEnd()
	p.countError()
	p.handler.StructSpanErrWithCode(sp, "expected `;` after "+after, diag.SynUnexpectedToken).
		SpanSuggestionShort(insert, "insert `;` here", ";", diag.ApplicabilityMachineApplicable).
		Emit()
	return token.Token{Kind: token.Invalid, Span: sp}, false
}
