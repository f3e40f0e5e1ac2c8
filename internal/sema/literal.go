package sema

import (
	"strconv"
	"unicode/utf8"

	"volt/internal/ast"
	"volt/internal/types"
)

// literalType выводит тип литерала. Числа без аннотаций остаются untyped и
// дожимаются юнификацией; байтовая строка сразу знает свою длину.
func (c *checker) literalType(lit *ast.ExprLitData) types.TypeID {
	bt := c.types.Builtins()
	switch lit.Kind {
	case ast.LitInt:
		return bt.UntypedInt
	case ast.LitFloat:
		return bt.UntypedFloat
	case ast.LitChar:
		return bt.Char
	case ast.LitByte:
		return bt.Byte
	case ast.LitString:
		return bt.String
	case ast.LitByteString:
		raw := c.lookupName(lit.Value)
		arr := c.types.Intern(types.MakeArray(bt.Byte, byteStringLen(raw)))
		return c.types.Intern(types.MakeReference(arr, false))
	case ast.LitBool:
		return bt.Bool
	}
	return bt.Error
}

// parseIntLit разбирает сырой текст целочисленного литерала. База ноль
// покрывает префиксы 0b/0o/0x и подчёркивания.
func parseIntLit(text string) (uint64, bool) {
	v, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// byteStringLen считает байты литерала вида b"...". Текст токена сырой,
// escape-последовательности уже провалидированы лексером.
func byteStringLen(raw string) uint32 {
	body := raw
	if len(body) > 0 && body[0] == 'b' {
		body = body[1:]
	}
	if len(body) >= 2 && body[0] == '"' && body[len(body)-1] == '"' {
		body = body[1 : len(body)-1]
	}
	n := uint32(0)
	for i := 0; i < len(body); {
		if body[i] != '\\' || i+1 >= len(body) {
			i++
			n++
			continue
		}
		switch body[i+1] {
		case 'x':
			// \xNN — один байт
			i += 4
			n++
		case 'u':
			// \u{...} вносит UTF-8 длину руны
			j := i + 3
			val := uint32(0)
			for j < len(body) && body[j] != '}' {
				if body[j] != '_' {
					val = val*16 + uint32(hexDigit(body[j]))
				}
				j++
			}
			i = j + 1
			if l := utf8.RuneLen(rune(val)); l > 0 {
				n += uint32(l)
			} else {
				n++
			}
		default:
			// \n, \t, \\ и прочие одиночные
			i += 2
			n++
		}
	}
	return n
}

func hexDigit(b byte) uint32 {
	switch {
	case b >= '0' && b <= '9':
		return uint32(b - '0')
	case b >= 'a' && b <= 'f':
		return uint32(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return uint32(b-'A') + 10
	}
	return 0
}
