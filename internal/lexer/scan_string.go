package lexer

import (
	"fmt"

	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/token"
)

// scanString сканирует "..." с валидацией escape-последовательностей.
func (lx *Lexer) scanString() token.Token {
	return lx.finishString(lx.cursor.Mark(), token.StringLit)
}

// scanChar сканирует '...'.
func (lx *Lexer) scanChar() token.Token {
	return lx.finishChar(lx.cursor.Mark(), token.CharLit)
}

// scanBytePrefixed сканирует b'x' или b"...". Курсор стоит на 'b'.
func (lx *Lexer) scanBytePrefixed() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // 'b'
	if lx.cursor.Peek() == '"' {
		return lx.finishString(start, token.ByteStringLit)
	}
	return lx.finishChar(start, token.ByteLit)
}

func (lx *Lexer) finishString(start Mark, kind token.Kind) token.Token {
	lx.cursor.Bump() // открывающая '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.textAt(sp)}
		}
		if b == '\\' {
			lx.cursor.Bump()
			lx.scanEscapeTail()
			continue
		}
		if b == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
}

func (lx *Lexer) finishChar(start Mark, kind token.Kind) token.Token {
	lx.cursor.Bump() // открывающая '\''
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		return lx.unterminatedChar(start)
	}
	switch lx.cursor.Peek() {
	case '\'':
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnterminatedChar, sp, "empty character literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
	case '\\':
		lx.cursor.Bump()
		lx.scanEscapeTail()
	default:
		lx.bumpRune()
	}
	if lx.cursor.Eat('\'') {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: kind, Span: sp, Text: lx.textAt(sp)}
	}
	return lx.unterminatedChar(start)
}

func (lx *Lexer) unterminatedChar(start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedChar, sp, "unterminated character literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
}

// scanEscapeTail валидирует escape после уже съеденного '\\'. Текст токена
// остаётся сырым срезом; декодирование значений живёт в sema.
func (lx *Lexer) scanEscapeTail() {
	escStart := lx.cursor.Off - 1
	if lx.cursor.EOF() {
		return // незакрытый литерал отрепортит вызывающий
	}
	b := lx.cursor.Bump()
	switch b {
	case 'n', 'r', 't', '0', '\\', '\'', '"':
		return
	case 'x':
		for range 2 {
			if !isHex(lx.cursor.Peek()) {
				lx.errEscape(escStart, "expected two hex digits after `\\x`")
				return
			}
			lx.cursor.Bump()
		}
	case 'u':
		if !lx.cursor.Eat('{') {
			lx.errEscape(escStart, "expected `{` after `\\u`")
			return
		}
		digits := 0
		for {
			b2 := lx.cursor.Peek()
			if b2 == '_' {
				lx.cursor.Bump()
				continue
			}
			if !isHex(b2) {
				break
			}
			lx.cursor.Bump()
			digits++
		}
		if !lx.cursor.Eat('}') {
			lx.errEscape(escStart, "unterminated `\\u{...}` escape")
			return
		}
		if digits == 0 {
			lx.errEscape(escStart, "empty `\\u{...}` escape")
		}
	default:
		lx.errEscape(escStart, fmt.Sprintf("unknown escape `\\%c`", rune(b)))
	}
}

func (lx *Lexer) errEscape(escStart uint32, msg string) {
	sp := source.Span{File: lx.file.ID, Start: escStart, End: lx.cursor.Off}
	lx.errLex(diag.LexBadEscape, sp, msg)
}
