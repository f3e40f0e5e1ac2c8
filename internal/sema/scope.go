package sema

import (
	"volt/internal/source"
	"volt/internal/types"
)

// binding — локальное имя, введённое паттерном.
type binding struct {
	name source.StringID
	typ  types.TypeID
	mode BindingMode
	span source.Span
}

type scope struct {
	names map[source.StringID]*binding
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, scope{names: make(map[source.StringID]*binding)})
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare вводит имя в текущий scope. Повтор имени перекрывает предыдущее,
// как в цепочке let.
func (c *checker) declare(b binding) {
	if len(c.scopes) == 0 {
		c.pushScope()
	}
	nb := b
	c.scopes[len(c.scopes)-1].names[b.name] = &nb
}

func (c *checker) lookupLocal(name source.StringID) (*binding, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i].names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// rebind обновляет тип ближайшего к вершине вхождения имени.
func (c *checker) rebind(name source.StringID, typ types.TypeID) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i].names[name]; ok {
			b.typ = typ
			return
		}
	}
}

// visibleValueNames собирает кандидатов для подсказок "did you mean" в
// позиции значения: локалы, константы, функции.
func (c *checker) visibleValueNames() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id source.StringID) {
		name, ok := c.builder.Strings.Lookup(id)
		if !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		for id := range c.scopes[i].names {
			add(id)
		}
	}
	for id := range c.consts {
		add(id)
	}
	for id := range c.fns {
		add(id)
	}
	return out
}

// visibleTypeNames — то же для позиции типа.
func (c *checker) visibleTypeNames() []string {
	out := make([]string, 0, len(c.typeDecls)+len(c.typeParams))
	for id := range c.typeParams {
		if name, ok := c.builder.Strings.Lookup(id); ok {
			out = append(out, name)
		}
	}
	for id := range c.typeDecls {
		if name, ok := c.builder.Strings.Lookup(id); ok {
			out = append(out, name)
		}
	}
	return out
}
