package lexer

import (
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// Lexer produces the significant tokens of one file. Whitespace and comments
// are skipped, not preserved; Token.Text всегда ровно исходный срез.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	handler *diag.Handler
	look    *token.Token // 1-элементный буфер для Peek
}

// New creates a lexer over the file. The handler receives lexical errors and
// may be nil when the caller only wants tokens.
func New(file *source.File, handler *diag.Handler) *Lexer {
	return &Lexer{
		file:    file,
		cursor:  NewCursor(file),
		handler: handler,
	}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipTrivia()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '_':
		// одиночный "_" — токен Underscore, "_foo" — идентификатор
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && isIdentContinueByte(b1) {
			return lx.scanIdentOrKeyword()
		}
		return lx.scanOperatorOrPunct()

	case ch == 'b':
		// b'x' и b"..." лексятся как байтовые литералы, голый b — идентификатор
		if _, b1, ok := lx.cursor.Peek2(); ok && (b1 == '\'' || b1 == '"') {
			return lx.scanBytePrefixed()
		}
		return lx.scanIdentOrKeyword()

	case isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()

	case ch >= utf8RuneSelf:
		// возможный Unicode идентификатор; scanIdentOrKeyword разберётся
		return lx.scanIdentOrKeyword()

	case isDec(ch):
		return lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		return lx.scanNumber()

	case ch == '"':
		return lx.scanString()

	case ch == '\'':
		return lx.scanChar()

	default:
		return lx.scanOperatorOrPunct()
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan returns a zero-width span at the current position. Парсеру
// нужен такой спан для пустых файлов и стартовых значений.
func (lx *Lexer) EmptySpan() source.Span {
	return lx.emptySpan()
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.handler == nil {
		return
	}
	lx.handler.SpanErrWithCode(sp, msg, code)
}
