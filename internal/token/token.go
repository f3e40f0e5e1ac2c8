package token

import (
	"volt/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, character, string, or
// boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, ByteLit, StringLit, ByteStringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	switch t.Kind {
	case Plus, Minus, Star, Slash, Percent, Assign, EqEq, Bang, BangEq,
		Lt, LtEq, Gt, GtEq, Amp, AndAnd, Pipe, OrOr,
		Colon, ColonColon, Semicolon, Comma, Dot, DotDot, DotDotEq,
		Arrow, FatArrow, LParen, RParen, LBrace, RBrace, LBracket, RBracket,
		At, Underscore:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwFn, KwLet, KwConst, KwMut, KwRef, KwOwn, KwIf, KwElse, KwWhile,
		KwMatch, KwReturn, KwType, KwStruct, KwEnum, KwUnion, KwContract,
		KwPub, KwAny, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
