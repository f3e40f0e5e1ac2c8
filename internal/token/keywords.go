package token

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"const":    KwConst,
	"mut":      KwMut,
	"ref":      KwRef,
	"own":      KwOwn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"match":    KwMatch,
	"return":   KwReturn,
	"type":     KwType,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"union":    KwUnion,
	"contract": KwContract,
	"pub":      KwPub,
	"any":      KwAny,
	"true":     KwTrue,
	"false":    KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые — только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
