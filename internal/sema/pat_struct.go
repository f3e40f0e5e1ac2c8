package sema

import (
	"fmt"
	"strings"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// tupleCtor — разрешённый конструктор для паттерна `Path(...)`: либо
// позиционная структура, либо tuple-вариант енума.
type tupleCtor struct {
	instance types.TypeID
	fields   []types.TypeID
	name     string
	what     string
	declSpan source.Span
}

func (c *checker) checkPatTupleStruct(id ast.PatID, data *ast.PatTupleStructData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	ctor, ok := c.resolveTupleCtor(id, data, expected)
	if !ok {
		for _, el := range data.Elems {
			c.checkPat(el, bt.Error, defMode, ctx.sub())
		}
		c.result.PatTypes[id] = bt.Error
		return
	}
	c.demand(expected, ctor.instance, c.patSpan(id))

	hasRest := data.Rest >= 0
	arityOK := len(data.Elems) == len(ctor.fields)
	if hasRest {
		arityOK = len(data.Elems) <= len(ctor.fields)
	}
	if !arityOK {
		c.reportTupleStructArity(id, data, ctor)
		for _, el := range data.Elems {
			c.checkPat(el, bt.Error, defMode, ctx.sub())
		}
		c.result.PatTypes[id] = c.resolve(ctor.instance)
		return
	}
	total := len(ctor.fields)
	for i, el := range data.Elems {
		idx := i
		if hasRest && i >= data.Rest {
			idx = total - (len(data.Elems) - i)
		}
		c.checkPat(el, ctor.fields[idx], defMode, ctx.sub())
	}
	c.result.PatTypes[id] = c.resolve(ctor.instance)
}

func (c *checker) resolveTupleCtor(id ast.PatID, data *ast.PatTupleStructData, expected types.TypeID) (*tupleCtor, bool) {
	span := c.patSpan(id)
	switch len(data.Path) {
	case 1:
		return c.resolveTupleCtorSingle(span, data.Path[0], expected)
	case 2:
		return c.resolveTupleCtorVariant(span, data.Path, expected)
	}
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("cannot find tuple struct or tuple variant `%s` in this scope", c.renderPath(data.Path)),
		diag.TypUnknownName,
	).Emit()
	return nil, false
}

func (c *checker) resolveTupleCtorSingle(span source.Span, seg ast.PathSegment, expected types.TypeID) (*tupleCtor, bool) {
	text := c.lookupName(seg.Name)
	if _, ok := c.consts[seg.Name]; ok {
		c.reportNotTupleCtor(span, fmt.Sprintf("constant `%s`", text))
		return nil, false
	}
	if _, ok := c.fns[seg.Name]; ok {
		c.reportNotTupleCtor(span, fmt.Sprintf("function `%s`", text))
		return nil, false
	}
	decl, ok := c.typeDecls[seg.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(
			seg.Span,
			fmt.Sprintf("cannot find tuple struct or tuple variant `%s` in this scope", text),
			diag.TypUnknownName,
		)
		if hint, ok := nearestName(text, c.visibleTypeNames()); ok {
			b.SpanSuggestionShort(seg.Span, "a type with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return nil, false
	}
	if decl.kind != declStruct {
		c.reportNotTupleCtor(span, fmt.Sprintf("%s `%s`", decl.kind, text))
		return nil, false
	}
	info, ok := c.types.StructInfo(decl.typeID)
	if !ok {
		return nil, false
	}
	if !info.Positional {
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected tuple struct or tuple variant, found struct `%s`", text),
			diag.TypExpectedTupleCtor,
		).
			Help("use the struct pattern syntax instead").
			Emit()
		return nil, false
	}
	instance := c.instanceFor(decl, expected)
	mapping := c.memberMapping(decl, instance)
	raw := c.types.StructFields(decl.typeID)
	fields := make([]types.TypeID, len(raw))
	for i, f := range raw {
		fields[i] = c.memberType(f.Type, mapping)
	}
	return &tupleCtor{
		instance: instance,
		fields:   fields,
		name:     text,
		what:     "tuple struct",
		declSpan: decl.nameSpan,
	}, true
}

func (c *checker) resolveTupleCtorVariant(span source.Span, path []ast.PathSegment, expected types.TypeID) (*tupleCtor, bool) {
	head, tail := path[0], path[1]
	headText := c.lookupName(head.Name)
	decl, ok := c.typeDecls[head.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("cannot find type `%s` in this scope", headText),
			diag.TypUnknownName,
		)
		if hint, ok := nearestName(headText, c.visibleTypeNames()); ok {
			b.SpanSuggestionShort(head.Span, "a type with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return nil, false
	}
	if decl.kind != declEnum {
		c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("`%s` is not an enum", headText),
			diag.TypUnknownName,
		).
			SpanLabel(decl.nameSpan, fmt.Sprintf("%s declared here", decl.kind)).
			Emit()
		return nil, false
	}
	_, variant, ok := c.types.EnumVariant(decl.typeID, tail.Name)
	if !ok {
		c.reportUnknownVariant(decl, tail)
		return nil, false
	}
	full := fmt.Sprintf("%s::%s", headText, c.lookupName(tail.Name))
	switch variant.Kind {
	case types.VariantUnit:
		c.reportNotTupleCtor(span, fmt.Sprintf("unit variant `%s`", full))
		return nil, false
	case types.VariantStruct:
		c.reportNotTupleCtor(span, fmt.Sprintf("struct variant `%s`", full))
		return nil, false
	}
	instance := c.instanceFor(decl, expected)
	mapping := c.memberMapping(decl, instance)
	fields := make([]types.TypeID, len(variant.Fields))
	for i, f := range variant.Fields {
		fields[i] = c.memberType(f.Type, mapping)
	}
	return &tupleCtor{
		instance: instance,
		fields:   fields,
		name:     full,
		what:     "tuple variant",
		declSpan: variant.Span,
	}, true
}

func (c *checker) reportNotTupleCtor(span source.Span, found string) {
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("expected tuple struct or tuple variant, found %s", found),
		diag.TypExpectedTupleCtor,
	).Emit()
}

func (c *checker) reportTupleStructArity(id ast.PatID, data *ast.PatTupleStructData, ctor *tupleCtor) {
	subN := len(data.Elems)
	fieldN := len(ctor.fields)
	span := c.patSpan(id)
	b := c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("this pattern has %d field%s, but the corresponding %s has %d field%s",
			subN, plural(subN), ctor.what, fieldN, plural(fieldN)),
		diag.TypPatArity,
	).
		SpanLabel(span, fmt.Sprintf("expected %d field%s, found %d", fieldN, plural(fieldN), subN)).
		SpanLabel(ctor.declSpan, fmt.Sprintf("%s defined here", ctor.what))
	// единственное поле-кортеж и несколько подпаттернов: похоже, пропали
	// скобки вокруг элементов
	if fieldN == 1 && subN > 1 {
		if info, ok := c.types.TupleInfo(c.resolve(ctor.fields[0])); ok && len(info.Elems) == subN {
			first := c.patSpan(data.Elems[0])
			last := c.patSpan(data.Elems[subN-1])
			b.MultipartSuggestion(
				"missing parentheses",
				[]diag.SubstitutionPart{
					{Span: first.CollapseToStart(), Snippet: "("},
					{Span: last.CollapseToEnd(), Snippet: ")"},
				},
				diag.ApplicabilityMachineApplicable,
			)
		}
	}
	b.Emit()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// structMatch — разрешённый тип для паттерна `Path { ... }`.
type structMatch struct {
	instance      types.TypeID
	fields        []types.StructField
	what          string
	name          string
	declSpan      source.Span
	isUnion       bool
	nonExhaustive bool
	foreign       bool
}

func (c *checker) checkPatStruct(id ast.PatID, data *ast.PatStructData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	m, ok := c.resolveStructPattern(id, data, expected)
	if !ok {
		for _, fid := range data.Fields {
			if f := c.builder.Pats.StructField(fid); f != nil {
				c.checkPat(f.Pat, bt.Error, defMode, ctx.sub())
			}
		}
		c.result.PatTypes[id] = bt.Error
		return
	}
	c.demand(expected, m.instance, c.patSpan(id))
	c.result.PatTypes[id] = c.resolve(m.instance)

	if m.isUnion {
		c.checkUnionPatFields(id, data, m, defMode, ctx)
		return
	}

	byName := make(map[source.StringID]types.TypeID, len(m.fields))
	for _, f := range m.fields {
		byName[f.Name] = f.Type
	}
	bound := make(map[source.StringID]source.Span, len(data.Fields))
	type unknownField struct {
		name source.StringID
		span source.Span
	}
	var unknowns []unknownField

	for _, fid := range data.Fields {
		f := c.builder.Pats.StructField(fid)
		if f == nil {
			continue
		}
		prev, dup := bound[f.Name]
		if dup {
			fieldText := c.lookupName(f.Name)
			c.handler.StructSpanErrWithCode(
				f.NameSpan,
				fmt.Sprintf("field `%s` bound multiple times in the pattern", fieldText),
				diag.TypFieldBoundTwice,
			).
				SpanLabel(f.NameSpan, fmt.Sprintf("multiple uses of `%s` in pattern", fieldText)).
				SpanLabel(prev, fmt.Sprintf("first use of `%s`", fieldText)).
				Emit()
		} else {
			bound[f.Name] = f.NameSpan
		}
		ft, known := byName[f.Name]
		if !known {
			if !dup {
				unknowns = append(unknowns, unknownField{f.Name, f.NameSpan})
			}
			c.checkPat(f.Pat, bt.Error, defMode, ctx.sub())
			continue
		}
		c.checkPat(f.Pat, ft, defMode, ctx.sub())
	}

	if len(unknowns) > 0 {
		names := make([]string, len(unknowns))
		for i, u := range unknowns {
			names[i] = fmt.Sprintf("`%s`", c.lookupName(u.name))
		}
		var msg string
		if len(unknowns) == 1 {
			msg = fmt.Sprintf("%s `%s` does not have a field named %s", m.what, m.name, names[0])
		} else {
			msg = fmt.Sprintf("%s `%s` does not have fields named %s", m.what, m.name, strings.Join(names, ", "))
		}
		b := c.handler.StructSpanErrWithCode(unknowns[0].span, msg, diag.TypUnknownField)
		for _, u := range unknowns {
			b.SpanLabel(u.span, fmt.Sprintf("%s `%s` does not have this field", m.what, m.name))
		}
		if len(unknowns) == 1 {
			var unmentioned []string
			for _, f := range m.fields {
				if _, used := bound[f.Name]; !used {
					unmentioned = append(unmentioned, c.lookupName(f.Name))
				}
			}
			if hint, ok := nearestName(c.lookupName(unknowns[0].name), unmentioned); ok {
				b.SpanSuggestionShort(unknowns[0].span, "a field with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
			}
		}
		b.Emit()
	}

	var unmentioned []types.StructField
	for _, f := range m.fields {
		if _, used := bound[f.Name]; !used {
			unmentioned = append(unmentioned, f)
		}
	}
	if m.nonExhaustive && m.foreign && !data.HasRest {
		c.reportNonExhaustivePat(id, data, m)
		return
	}
	if len(unmentioned) > 0 && !data.HasRest {
		c.reportMissingFields(id, data, m, unmentioned)
	}
}

func (c *checker) resolveStructPattern(id ast.PatID, data *ast.PatStructData, expected types.TypeID) (*structMatch, bool) {
	span := c.patSpan(id)
	switch len(data.Path) {
	case 1:
		return c.resolveStructPatternSingle(span, data.Path[0], expected)
	case 2:
		return c.resolveStructPatternVariant(span, data.Path, expected)
	}
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("cannot find struct, variant or union type `%s` in this scope", c.renderPath(data.Path)),
		diag.TypUnknownName,
	).Emit()
	return nil, false
}

func (c *checker) resolveStructPatternSingle(span source.Span, seg ast.PathSegment, expected types.TypeID) (*structMatch, bool) {
	text := c.lookupName(seg.Name)
	decl, ok := c.typeDecls[seg.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(
			seg.Span,
			fmt.Sprintf("cannot find struct, variant or union type `%s` in this scope", text),
			diag.TypUnknownName,
		)
		if hint, ok := nearestName(text, c.visibleTypeNames()); ok {
			b.SpanSuggestionShort(seg.Span, "a type with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return nil, false
	}
	switch decl.kind {
	case declStruct:
		info, ok := c.types.StructInfo(decl.typeID)
		if !ok {
			return nil, false
		}
		if info.Positional {
			c.handler.StructSpanErrWithCode(
				span,
				fmt.Sprintf("tuple struct `%s` written as struct pattern", text),
				diag.TypStructPatOnTuple,
			).
				Help("use the tuple pattern syntax instead").
				Emit()
			return nil, false
		}
		instance := c.instanceFor(decl, expected)
		return &structMatch{
			instance:      instance,
			fields:        c.substFields(c.types.StructFields(decl.typeID), decl, instance),
			what:          "struct",
			name:          text,
			declSpan:      decl.nameSpan,
			nonExhaustive: info.NonExhaustive,
			foreign:       decl.file != c.fileID,
		}, true
	case declUnion:
		info, ok := c.types.UnionInfo(decl.typeID)
		if !ok {
			return nil, false
		}
		instance := c.instanceFor(decl, expected)
		return &structMatch{
			instance: instance,
			fields:   c.substFields(info.Fields, decl, instance),
			what:     "union",
			name:     text,
			declSpan: decl.nameSpan,
			isUnion:  true,
		}, true
	}
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("expected struct, variant or union type, found %s `%s`", decl.kind, text),
		diag.TypUnknownName,
	).
		SpanLabel(decl.nameSpan, fmt.Sprintf("%s declared here", decl.kind)).
		Emit()
	return nil, false
}

func (c *checker) resolveStructPatternVariant(span source.Span, path []ast.PathSegment, expected types.TypeID) (*structMatch, bool) {
	head, tail := path[0], path[1]
	headText := c.lookupName(head.Name)
	decl, ok := c.typeDecls[head.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("cannot find type `%s` in this scope", headText),
			diag.TypUnknownName,
		)
		if hint, ok := nearestName(headText, c.visibleTypeNames()); ok {
			b.SpanSuggestionShort(head.Span, "a type with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return nil, false
	}
	if decl.kind != declEnum {
		c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("`%s` is not an enum", headText),
			diag.TypUnknownName,
		).
			SpanLabel(decl.nameSpan, fmt.Sprintf("%s declared here", decl.kind)).
			Emit()
		return nil, false
	}
	_, variant, ok := c.types.EnumVariant(decl.typeID, tail.Name)
	if !ok {
		c.reportUnknownVariant(decl, tail)
		return nil, false
	}
	full := fmt.Sprintf("%s::%s", headText, c.lookupName(tail.Name))
	switch variant.Kind {
	case types.VariantUnit:
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected struct variant, found unit variant `%s`", full),
			diag.TypUnknownName,
		).Emit()
		return nil, false
	case types.VariantTuple:
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected struct variant, found tuple variant `%s`", full),
			diag.TypUnknownName,
		).
			Help("use the tuple variant pattern syntax instead").
			Emit()
		return nil, false
	}
	nonExhaustive := false
	if info, ok := c.types.EnumInfo(decl.typeID); ok {
		nonExhaustive = info.NonExhaustive
	}
	instance := c.instanceFor(decl, expected)
	return &structMatch{
		instance:      instance,
		fields:        c.substFields(variant.Fields, decl, instance),
		what:          "variant",
		name:          full,
		declSpan:      variant.Span,
		nonExhaustive: nonExhaustive,
		foreign:       decl.file != c.fileID,
	}, true
}

// substFields подставляет аргументы инстанса в типы полей декларации.
func (c *checker) substFields(raw []types.StructField, decl *typeDecl, instance types.TypeID) []types.StructField {
	mapping := c.memberMapping(decl, instance)
	if len(mapping) == 0 {
		return raw
	}
	out := make([]types.StructField, len(raw))
	for i, f := range raw {
		out[i] = f
		out[i].Type = c.memberType(f.Type, mapping)
	}
	return out
}

func (c *checker) checkUnionPatFields(id ast.PatID, data *ast.PatStructData, m *structMatch, defMode BindingMode, ctx patCtx) {
	if data.HasRest {
		c.handler.SpanErr(c.patSpan(id), "`..` cannot be used in union patterns")
	}
	if len(data.Fields) != 1 {
		c.handler.SpanErr(c.patSpan(id), "union patterns should have exactly one field")
	}
	byName := make(map[source.StringID]types.TypeID, len(m.fields))
	for _, f := range m.fields {
		byName[f.Name] = f.Type
	}
	bt := c.types.Builtins()
	for _, fid := range data.Fields {
		f := c.builder.Pats.StructField(fid)
		if f == nil {
			continue
		}
		ft, known := byName[f.Name]
		if !known {
			c.handler.StructSpanErrWithCode(
				f.NameSpan,
				fmt.Sprintf("union `%s` does not have a field named `%s`", m.name, c.lookupName(f.Name)),
				diag.TypUnknownField,
			).
				SpanLabel(f.NameSpan, fmt.Sprintf("union `%s` does not have this field", m.name)).
				Emit()
			c.checkPat(f.Pat, bt.Error, defMode, ctx.sub())
			continue
		}
		c.checkPat(f.Pat, ft, defMode, ctx.sub())
	}
}

// reportNonExhaustivePat требует `..` для типов, помеченных non-exhaustive
// и объявленных в другом файле.
func (c *checker) reportNonExhaustivePat(id ast.PatID, data *ast.PatStructData, m *structMatch) {
	span := c.patSpan(id)
	rep, prefix := c.fieldListTail(span, data)
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("`..` required with %s marked as non-exhaustive", m.what),
		diag.TypNonExhaustive,
	).
		SpanSuggestion(
			rep,
			"add `..` at the end of the field list to ignore all other fields",
			prefix+".. }",
			diag.ApplicabilityMachineApplicable,
		).
		Emit()
}

func (c *checker) reportMissingFields(id ast.PatID, data *ast.PatStructData, m *structMatch, unmentioned []types.StructField) {
	span := c.patSpan(id)
	quoted := make([]string, len(unmentioned))
	bare := make([]string, len(unmentioned))
	for i, f := range unmentioned {
		bare[i] = c.lookupName(f.Name)
		quoted[i] = fmt.Sprintf("`%s`", bare[i])
	}
	noun := "fields"
	ignoreMsg := "if you don't care about these missing fields, you can explicitly ignore them"
	if len(unmentioned) == 1 {
		noun = "field"
		ignoreMsg = "if you don't care about this missing field, you can explicitly ignore it"
	}
	list := strings.Join(quoted, ", ")
	rep, prefix := c.fieldListTail(span, data)
	c.handler.StructSpanErrWithCode(
		span,
		fmt.Sprintf("pattern does not mention %s %s", noun, list),
		diag.TypMissingFields,
	).
		SpanLabel(span, fmt.Sprintf("missing %s %s", noun, list)).
		SpanSuggestion(
			rep,
			fmt.Sprintf("include the missing %s in the pattern", noun),
			prefix+strings.Join(bare, ", ")+" }",
			diag.ApplicabilityMachineApplicable,
		).
		SpanSuggestion(rep, ignoreMsg, prefix+".. }", diag.ApplicabilityMaybeIncorrect).
		Emit()
}

// fieldListTail возвращает регион от конца последнего поля до закрывающей
// скобки и префикс для дописываемого хвоста.
func (c *checker) fieldListTail(span source.Span, data *ast.PatStructData) (source.Span, string) {
	if len(data.Fields) == 0 {
		return source.Span{File: span.File, Start: span.End - 1, End: span.End}, " "
	}
	last := c.builder.Pats.StructField(data.Fields[len(data.Fields)-1])
	if last == nil {
		return source.Span{File: span.File, Start: span.End - 1, End: span.End}, " "
	}
	return source.Span{File: span.File, Start: last.Span.End, End: span.End}, ", "
}
