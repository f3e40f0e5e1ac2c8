package parser

import (
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// advance съедает следующий токен и обновляет lastSpan.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan возвращает лучший спан для диагностики. На EOF спан токена
// пуст и указывает в конец файла; позиция сразу после последнего
// съеденного токена читается лучше.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && !p.lastSpan.Empty() {
		return p.lastSpan.CollapseToEnd()
	}
	return peek.Span
}

// expect требует конкретный токен. Если его нет — ошибка SynUnexpectedToken
// и (invalid, false).
func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.err(diag.SynUnexpectedToken, sp, "expected "+what+", found "+describeToken(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectClose требует закрывающий разделитель. Отдельный код, и к ошибке
// прикрепляется подсказка со вставкой.
func (p *Parser) expectClose(k token.Kind, closing string, open source.Span) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.countError()
	p.handler.StructSpanErrWithCode(sp, "expected `"+closing+"`, found "+describeToken(p.lx.Peek()), diag.SynUnclosedDelimiter).
		SpanLabel(open, "unclosed delimiter starts here").
		SpanSuggestionShort(p.lastSpan.CollapseToEnd(), "insert `"+closing+"` here", closing, diag.ApplicabilityMachineApplicable).
		Emit()
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// err репортит ошибку с кодом в указанной позиции.
func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.countError()
	p.handler.SpanErrWithCode(sp, msg, code)
}

// errHere — как err, но спан выбирается автоматически.
func (p *Parser) errHere(code diag.Code, msg string) {
	p.err(code, p.diagSpan(), msg)
}

func (p *Parser) countError() {
	p.errCount++
}

// resyncUntil прокручивает поток до одного из стоп-токенов или EOF.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(stop...) {
		p.advance()
	}
}

// describeToken печатает токен для сообщений об ошибках.
func describeToken(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Invalid:
		return "invalid token"
	case token.Ident:
		return "identifier `" + tok.Text + "`"
	case token.IntLit, token.FloatLit, token.CharLit, token.ByteLit, token.StringLit, token.ByteStringLit:
		return "literal `" + tok.Text + "`"
	default:
		return "`" + tok.Text + "`"
	}
}
