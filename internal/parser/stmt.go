package parser

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/token"
)

// parseBlockExpr разбирает `{ операторы; хвост }`. Последнее выражение без
// `;` становится значением блока.
func (p *Parser) parseBlockExpr() (ast.ExprID, bool) {
	openTok, ok := p.expect(token.LBrace, "`{` to start a block")
	if !ok {
		return ast.NoExprID, false
	}

	var stmts []ast.StmtID
	tail := ast.NoExprID

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.tooManyErrors() {
			break
		}
		if isItemStarter(p.lx.Peek().Kind) {
			// похоже, блок не закрыт; item оставляем верхнему уровню
			break
		}
		switch p.lx.Peek().Kind {
		case token.KwLet:
			stmtID, ok := p.parseLetStmt()
			if !ok {
				p.resyncStmt()
				continue
			}
			stmts = append(stmts, stmtID)

		case token.KwReturn:
			stmtID, ok := p.parseReturnStmt()
			if !ok {
				p.resyncStmt()
				continue
			}
			stmts = append(stmts, stmtID)

		case token.Semicolon:
			// пустой оператор
			p.advance()

		default:
			exprID, ok := p.parseExpr()
			if !ok {
				p.resyncStmt()
				continue
			}
			exprSpan := p.arenas.Exprs.Get(exprID).Span

			if p.at(token.Semicolon) {
				semiTok := p.advance()
				stmts = append(stmts, p.arenas.Stmts.NewExpr(exprSpan.Cover(semiTok.Span), exprID))
				continue
			}
			if p.at(token.RBrace) {
				tail = exprID
				continue
			}
			if p.isBlockish(exprID) {
				// после блочного выражения `;` необязательна
				stmts = append(stmts, p.arenas.Stmts.NewExpr(exprSpan, exprID))
				continue
			}
			p.expectSemicolon("expression")
			stmts = append(stmts, p.arenas.Stmts.NewExpr(exprSpan, exprID))
		}
	}

	closeTok, ok := p.expectClose(token.RBrace, "}", openTok.Span)
	if !ok {
		return ast.NoExprID, false
	}

	return p.arenas.Exprs.NewBlock(openTok.Span.Cover(closeTok.Span), stmts, tail), true
}

// isBlockish сообщает, завершается ли выражение фигурной скобкой.
// if и while уже десахарены в match.
func (p *Parser) isBlockish(id ast.ExprID) bool {
	expr := p.arenas.Exprs.Get(id)
	if expr == nil {
		return false
	}
	return expr.Kind == ast.ExprMatch || expr.Kind == ast.ExprBlock
}

// resyncStmt прокручивает до границы оператора внутри блока. Стартеры
// item тоже останавливают: после пропущенной `}` они принадлежат
// верхнему уровню.
func (p *Parser) resyncStmt() {
	p.resyncUntil(token.Semicolon, token.RBrace, token.KwLet, token.KwReturn,
		token.At, token.KwPub, token.KwType, token.KwConst, token.KwFn, token.KwContract)
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// parseLetStmt разбирает `let паттерн[: тип] = выражение;`.
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	letTok := p.advance()

	pat, ok := p.parsePat()
	if !ok {
		return ast.NoStmtID, false
	}

	typeID := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		typeID, ok = p.parseType()
		if !ok {
			return ast.NoStmtID, false
		}
	}

	init := ast.NoExprID
	if p.at(token.Assign) {
		p.advance()
		init, ok = p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
	} else {
		// `let x: int;` — ошибка, но узел сохраняем, чтобы sema увидела
		// биндинг
		p.errHere(diag.SynUnexpectedToken, "expected `=` in let statement, found "+describeToken(p.lx.Peek()))
		if !p.at(token.Semicolon) {
			return ast.NoStmtID, false
		}
	}

	semiTok, ok := p.expectSemicolon("let statement")
	if !ok {
		return ast.NoStmtID, false
	}

	span := letTok.Span.Cover(semiTok.Span)
	return p.arenas.Stmts.NewLet(span, pat, typeID, init), true
}

// parseReturnStmt разбирает `return [выражение];`.
func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()

	value := ast.NoExprID
	if !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
		var ok bool
		value, ok = p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
	}

	semiTok, ok := p.expectSemicolon("return statement")
	if !ok {
		return ast.NoStmtID, false
	}

	span := retTok.Span.Cover(semiTok.Span)
	return p.arenas.Stmts.NewReturn(span, value), true
}
