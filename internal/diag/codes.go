package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a stable numeric identifier for a diagnostic. Числовые диапазоны
// закреплены за фазами:
//
//	1000–1999 lexer      (LEX)
//	2000–2999 syntax     (SYN)
//	3000–3999 types      (TYP)
//	4000–4999 io         (IO)
//	5000–5999 project    (PRJ)
//
// Numbers inside a range are append-only; a published code never changes
// meaning.
type Code uint16

// NoCode marks diagnostics without a stable identifier.
const NoCode Code = 0

const (
	// Lexer.
	LexUnterminatedString  Code = 1001
	LexUnterminatedChar    Code = 1002
	LexBadEscape           Code = 1003
	LexStrayByte           Code = 1004
	LexBadNumber           Code = 1005
	LexUnterminatedComment Code = 1006

	// Syntax.
	SynUnexpectedToken   Code = 2001
	SynExpectedPattern   Code = 2002
	SynExpectedType      Code = 2003
	SynExpectedItem      Code = 2004
	SynUnclosedDelimiter Code = 2005
	SynExpectedExpr      Code = 2006

	// Types and patterns.
	TypUnknownName       Code = 3001
	TypDuplicateDecl     Code = 3002
	TypWrongTypeArgCount Code = 3004
	TypCondNotBool       Code = 3005
	TypPatArity          Code = 3023
	TypFieldBoundTwice   Code = 3025
	TypUnknownField      Code = 3026
	TypMissingFields     Code = 3027
	TypRangeEndpoint     Code = 3029
	TypDerefContract     Code = 3033
	TypExpectedTupleCtor Code = 3164
	TypMismatch          Code = 3308
	TypSliceCount        Code = 3527
	TypSliceMin          Code = 3528
	TypExpectedSlice     Code = 3529
	TypNonExhaustive     Code = 3638
	TypStructPatOnTuple  Code = 3769

	// IO and project surface.
	IoUnreadableFile Code = 4001
	PrjBadManifest   Code = 5001
)

// ID renders the user-visible form, e.g. "TYP3023".
func (c Code) ID() string {
	switch {
	case c == NoCode:
		return ""
	case c < 2000:
		return fmt.Sprintf("LEX%04d", uint16(c))
	case c < 3000:
		return fmt.Sprintf("SYN%04d", uint16(c))
	case c < 4000:
		return fmt.Sprintf("TYP%04d", uint16(c))
	case c < 5000:
		return fmt.Sprintf("IO%04d", uint16(c))
	case c < 6000:
		return fmt.Sprintf("PRJ%04d", uint16(c))
	default:
		return fmt.Sprintf("DIA%04d", uint16(c))
	}
}

// ParseCode parses a user-supplied identifier such as "TYP3308" back into
// a Code. Принимает форму с префиксом (регистр не важен) и голый номер;
// незарегистрированные номера отклоняются.
func ParseCode(s string) (Code, bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (s[i] >= 'A' && s[i] <= 'Z' || s[i] >= 'a' && s[i] <= 'z') {
		i++
	}
	prefix := strings.ToUpper(s[:i])
	n, err := strconv.ParseUint(s[i:], 10, 16)
	if err != nil || n == 0 {
		return NoCode, false
	}
	c := Code(n)
	if _, known := codeTitles[c]; !known {
		return NoCode, false
	}
	if prefix != "" && !strings.HasPrefix(c.ID(), prefix) {
		return NoCode, false
	}
	return c, true
}

var codeTitles = map[Code]string{
	LexUnterminatedString:  "unterminated string literal",
	LexUnterminatedChar:    "unterminated character literal",
	LexBadEscape:           "unknown escape sequence",
	LexStrayByte:           "stray byte in source",
	LexBadNumber:           "malformed numeric literal",
	LexUnterminatedComment: "unterminated block comment",
	SynUnexpectedToken:     "unexpected token",
	SynExpectedPattern:     "expected a pattern",
	SynExpectedType:        "expected a type",
	SynExpectedItem:        "expected an item",
	SynUnclosedDelimiter:   "unclosed delimiter",
	SynExpectedExpr:        "expected an expression",
	TypUnknownName:         "unresolved name",
	TypDuplicateDecl:       "duplicate declaration",
	TypWrongTypeArgCount:   "wrong number of type arguments",
	TypCondNotBool:         "condition is not boolean",
	TypPatArity:            "pattern field count mismatch",
	TypFieldBoundTwice:     "field bound multiple times in pattern",
	TypUnknownField:        "pattern names unknown field",
	TypMissingFields:       "pattern does not mention all fields",
	TypRangeEndpoint:       "invalid range pattern endpoint",
	TypDerefContract:       "cannot dereference contract object in pattern",
	TypExpectedTupleCtor:   "path is not a tuple constructor",
	TypMismatch:            "mismatched types",
	TypSliceCount:          "array pattern element count mismatch",
	TypSliceMin:            "array pattern needs more elements",
	TypExpectedSlice:       "expected an array or slice",
	TypNonExhaustive:       "non-exhaustive type pattern needs `..`",
	TypStructPatOnTuple:    "tuple constructor written as struct pattern",
	IoUnreadableFile:       "cannot read source file",
	PrjBadManifest:         "malformed project manifest",
}

// Title returns a short human summary for the code, or "" when unknown.
func (c Code) Title() string {
	return codeTitles[c]
}

func (c Code) String() string {
	if c == NoCode {
		return "no-code"
	}
	if t := c.Title(); t != "" {
		return fmt.Sprintf("%s (%s)", c.ID(), t)
	}
	return c.ID()
}
