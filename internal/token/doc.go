// Package token defines lexical token kinds for the Volt compiler.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Attributes are lexed as '@' (Kind: At) + Ident; no per-attribute token kinds.
//   - 'true'/'false' lex as keywords; the parser turns them into bool literals.
//   - Built-in type names (int, int32, uint8, float64, ...) are identifiers.
//     They are recognized by the semantic layer, not the lexer.
package token
