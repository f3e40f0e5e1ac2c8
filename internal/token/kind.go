package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// KwFn represents the 'fn' keyword.
	KwFn // fn
	// KwLet represents the 'let' keyword.
	KwLet // let
	// KwConst represents the 'const' keyword.
	KwConst // const
	// KwMut represents the 'mut' keyword.
	KwMut // mut
	// KwRef represents the 'ref' keyword.
	KwRef // ref
	// KwOwn represents the 'own' keyword.
	KwOwn // own
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwWhile represents the 'while' keyword.
	KwWhile // while
	// KwMatch represents the 'match' keyword.
	KwMatch // match
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwType represents the 'type' keyword.
	KwType // type
	// KwStruct represents the 'struct' keyword.
	KwStruct // struct
	// KwEnum represents the 'enum' keyword.
	KwEnum // enum
	// KwUnion represents the 'union' keyword.
	KwUnion // union
	// KwContract represents the 'contract' keyword.
	KwContract // contract
	// KwPub represents the 'pub' keyword.
	KwPub // pub
	// KwAny represents the 'any' keyword.
	KwAny // any
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false

	// IntLit represents the integer literal token.
	IntLit
	// FloatLit represents the float literal token.
	FloatLit
	// CharLit represents the character literal token.
	CharLit // 'a'
	// ByteLit represents the byte literal token.
	ByteLit // b'a'
	// StringLit represents the string literal token.
	StringLit
	// ByteStringLit represents the byte string literal token.
	ByteStringLit // b"..."

	// Plus represents the plus operator token.
	Plus // +
	// Minus represents the minus operator token.
	Minus // -
	// Star represents the star operator token.
	Star // *
	// Slash represents the slash operator token.
	Slash // /
	// Percent represents the percent operator token.
	Percent // %
	// Assign represents the assign operator token.
	Assign // =
	// EqEq represents the eq eq operator token.
	EqEq // ==
	// Bang represents the bang operator token.
	Bang // !
	// BangEq represents the bang eq operator token.
	BangEq // !=
	// Lt represents the lt operator token.
	Lt // <
	// LtEq represents the lt eq operator token.
	LtEq // <=
	// Gt represents the gt operator token.
	Gt // >
	// GtEq represents the gt eq operator token.
	GtEq // >=
	// Amp represents the amp operator token.
	Amp // &
	// AndAnd represents the and and operator token.
	AndAnd // &&
	// Pipe represents the pipe operator token.
	Pipe // |
	// OrOr represents the or or operator token.
	OrOr // ||
	// Colon represents the colon operator token.
	Colon // :
	// ColonColon represents the colon colon operator token.
	ColonColon // ::
	// Semicolon represents the semicolon operator token.
	Semicolon // ;
	// Comma represents the comma operator token.
	Comma // ,
	// Dot represents the dot operator token.
	Dot // .
	// DotDot represents the dot dot operator token.
	DotDot // ..
	// DotDotEq represents the dot dot eq operator token.
	DotDotEq // ..=
	// Arrow represents the arrow operator token.
	Arrow // ->
	// FatArrow represents the fat arrow operator token.
	FatArrow // =>
	// LParen represents the left parenthesis operator token.
	LParen // (
	// RParen represents the right parenthesis operator token.
	RParen // )
	// LBrace represents the left brace operator token.
	LBrace // {
	// RBrace represents the right brace operator token.
	RBrace // }
	// LBracket represents the left bracket operator token.
	LBracket // [
	// RBracket represents the right bracket operator token.
	RBracket // ]
	// At represents the at operator token.
	At // @
	// Underscore represents the underscore operator token.
	Underscore // _
)
