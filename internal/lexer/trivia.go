package lexer

import (
	"volt/internal/diag"
)

// skipTrivia пропускает пробелы, переводы строк и комментарии до следующего
// значимого токена. Ничего не сохраняем: слоя trivia у токенов нет, исходный
// текст восстанавливается по спанам.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			lx.cursor.Bump()
			continue
		}
		if b == '/' && lx.skipComment() {
			continue
		}
		break
	}
}

// skipComment пропускает //-комментарий до конца строки или /* ... */ с
// поддержкой вложенности. Незакрытый блочный комментарий репортится и
// обрезается на EOF.
func (lx *Lexer) skipComment() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}
	switch b1 {
	case '/':
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		return true

	case '*':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			if c0, c1, ok := lx.cursor.Peek2(); ok {
				if c0 == '/' && c1 == '*' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth++
					continue
				}
				if c0 == '*' && c1 == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth--
					continue
				}
			}
			lx.cursor.Bump()
		}
		if depth > 0 {
			lx.errLex(diag.LexUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated block comment")
		}
		return true

	default:
		return false
	}
}
