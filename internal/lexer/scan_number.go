package lexer

import (
	"fmt"

	"volt/internal/diag"
	"volt/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b..., 0o..., 0x..., 1.0, 1., .5, 1e-3, 1.0e+10.
// Суффиксов нет: ширина литерала выводится из контекста, так что приклеенный
// к числу идентификатор — это ошибка.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	// форма ".digits"; вызывающий уже проверил isNumberAfterDot
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		lx.eatDecDigits()
		return lx.finishNumber(start, lx.scanExponent(start, token.FloatLit))
	}

	// базовые префиксы
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' {
		base := 0
		switch b1 {
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		case 'x', 'X':
			base = 16
		}
		if base != 0 {
			lx.cursor.Bump()
			lx.cursor.Bump()
			if !lx.eatBaseDigits(start, base) {
				sp := lx.cursor.SpanFrom(start)
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
			}
			return lx.finishNumber(start, token.IntLit)
		}
	}

	// десятичная целая часть
	lx.eatDecDigits()
	kind := token.IntLit

	// дробная часть; ".." и "..=" числу не принадлежат
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && b1 != '.' && b1 != '=' {
		lx.cursor.Bump()
		kind = token.FloatLit
		// "1." без цифр после точки — тоже допустимый float
		lx.eatDecDigits()
	} else if !ok && lx.cursor.Peek() == '.' {
		// точка — последний байт файла
		lx.cursor.Bump()
		kind = token.FloatLit
	}

	kind = lx.scanExponent(start, kind)
	return lx.finishNumber(start, kind)
}

// scanExponent доедает экспоненту, если она есть. Invalid — уже отрепортили.
func (lx *Lexer) scanExponent(start Mark, kind token.Kind) token.Kind {
	if b := lx.cursor.Peek(); b != 'e' && b != 'E' {
		return kind
	}
	lx.cursor.Bump()
	if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
	}
	if !isDec(lx.cursor.Peek()) {
		lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start), "expected digit after exponent")
		return token.Invalid
	}
	lx.eatDecDigits()
	return token.FloatLit
}

func (lx *Lexer) eatDecDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

// eatBaseDigits съедает цифры после базового префикса, false — отрепортили.
// Для меньших баз сначала дочитываем всё похожее на цифру, чтобы ошибка
// накрыла весь литерал, а не резала его посередине.
func (lx *Lexer) eatBaseDigits(start Mark, base int) bool {
	seen := false
	bad := byte(0)
	for {
		b := lx.cursor.Peek()
		if b == '_' {
			lx.cursor.Bump()
			continue
		}
		if !isHex(b) {
			break
		}
		if hexDigitVal(b) >= base && bad == 0 {
			bad = b
		}
		seen = true
		lx.cursor.Bump()
	}
	if !seen {
		lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start), "missing digits after base prefix")
		return false
	}
	if bad != 0 {
		lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start),
			fmt.Sprintf("invalid digit %q for base-%d literal", rune(bad), base))
		return false
	}
	return true
}

// finishNumber проверяет, что к числу не приклеен идентификатор, и собирает
// токен.
func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	if kind == token.Invalid {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
	}

	b := lx.cursor.Peek()
	glued := isIdentStartByte(b)
	if !glued && b >= utf8RuneSelf {
		r, sz := lx.peekRune()
		glued = sz > 0 && isIdentStartRune(r)
	}
	if glued {
		suffixStart := lx.cursor.Off
		for {
			b2 := lx.cursor.Peek()
			if b2 < utf8RuneSelf {
				if !isIdentContinueByte(b2) {
					break
				}
				lx.cursor.Bump()
				continue
			}
			r, sz := lx.peekRune()
			if sz == 0 || !isIdentContinueRune(r) {
				break
			}
			lx.bumpRune()
		}
		sp := lx.cursor.SpanFrom(start)
		suffix := string(lx.file.Content[suffixStart:sp.End])
		lx.errLex(diag.LexBadNumber, sp, fmt.Sprintf("invalid suffix `%s` on numeric literal", suffix))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.textAt(sp)}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.textAt(sp)}
}
