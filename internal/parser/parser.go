package parser

import (
	"slices"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/lexer"
	"volt/internal/source"
	"volt/internal/token"
)

// Options управляет поведением парсера одного файла.
type Options struct {
	// MaxErrors останавливает разбор после N синтаксических ошибок.
	// Ноль — без ограничения.
	MaxErrors uint
}

// Parser — состояние разбора одного файла. Диагностики уходят в Handler
// сессии, узлы — в арены Builder.
type Parser struct {
	lx      *lexer.Lexer
	arenas  *ast.Builder
	handler *diag.Handler
	file    ast.FileID
	opts    Options

	// lastSpan — спан последнего съеденного токена; даёт осмысленную
	// позицию диагностикам на EOF.
	lastSpan source.Span
	errCount uint
}

// ParseFile разбирает один файл до EOF. Лексер должен быть свежим.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, handler *diag.Handler, opts Options) ast.FileID {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		handler:  handler,
		file:     arenas.Files.New(lx.EmptySpan()),
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.parseItems()
	return p.file
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) tooManyErrors() bool {
	return p.opts.MaxErrors != 0 && p.errCount >= p.opts.MaxErrors
}

// parseItems — цикл верхнего уровня: пока не EOF — parseItem.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		if p.tooManyErrors() {
			break
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lastSpan)
}

// resyncTop прокручивает поток до следующего стартера item либо до ';'.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.Semicolon, token.At, token.KwPub, token.KwType, token.KwConst, token.KwFn, token.KwContract)
	if p.at(token.Semicolon) {
		p.advance()
	}
}

func isItemStarter(k token.Kind) bool {
	switch k {
	case token.At, token.KwPub, token.KwType, token.KwConst, token.KwFn, token.KwContract:
		return true
	default:
		return false
	}
}

// parseIdent ожидает идентификатор и интернирует его текст.
func (p *Parser) parseIdent(what string) (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.Strings.Intern(tok.Text), tok.Span, true
	}
	p.errHere(diag.SynUnexpectedToken, "expected "+what+", found "+describeToken(p.lx.Peek()))
	return source.NoStringID, p.diagSpan(), false
}
