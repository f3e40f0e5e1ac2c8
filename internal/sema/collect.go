package sema

import (
	"fmt"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

type declKind uint8

const (
	declStruct declKind = iota
	declEnum
	declUnion
	declContract
)

func (k declKind) String() string {
	switch k {
	case declEnum:
		return "enum"
	case declUnion:
		return "union"
	case declContract:
		return "contract"
	default:
		return "struct"
	}
}

// typeDecl — зарегистрированная типовая декларация. Для generic-деклараций
// typeID указывает на инстанс, аргументы которого — сами параметры;
// конкретные инстансы получаются подстановкой.
type typeDecl struct {
	item       ast.ItemID
	file       ast.FileID
	kind       declKind
	typeID     types.TypeID
	params     []types.TypeID
	paramNames []source.StringID
	name       source.StringID
	nameSpan   source.Span
	populated  bool
}

type constState uint8

const (
	constUnresolved constState = iota
	constResolving
	constResolved
)

type constDecl struct {
	item     ast.ItemID
	name     source.StringID
	nameSpan source.Span
	state    constState
	typ      types.TypeID
}

type fnDecl struct {
	item     ast.ItemID
	name     source.StringID
	nameSpan source.Span
	typ      types.TypeID
	params   []types.TypeID
	result   types.TypeID
}

// registerDecls занимает имена верхнего уровня. Типы и контракты живут в
// одном пространстве имён, константы и функции — в другом.
func (c *checker) registerDecls(fileID ast.FileID) {
	file := c.builder.Files.Get(fileID)
	if file == nil {
		return
	}
	for _, itemID := range file.Items {
		item := c.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemType:
			c.registerTypeItem(fileID, itemID)
		case ast.ItemContract:
			c.registerContractItem(fileID, itemID)
		case ast.ItemConst:
			c.registerConstItem(itemID)
		case ast.ItemFn:
			c.registerFnItem(itemID)
		}
	}
}

func (c *checker) registerTypeItem(fileID ast.FileID, itemID ast.ItemID) {
	ti, ok := c.builder.Items.Type(itemID)
	if !ok {
		return
	}
	if prev, exists := c.typeDecls[ti.Name]; exists {
		c.reportRedeclared(ti.Name, ti.NameSpan, prev.nameSpan)
		return
	}
	decl := &typeDecl{
		item:     itemID,
		file:     fileID,
		name:     ti.Name,
		nameSpan: ti.NameSpan,
	}
	params := c.builder.Items.CollectTypeParams(ti.ParamStart, ti.ParamCount)
	if len(params) > 0 {
		decl.params = make([]types.TypeID, len(params))
		decl.paramNames = make([]source.StringID, len(params))
		for i, p := range params {
			decl.params[i] = c.types.RegisterTypeParam(p.Name, uint32(itemID), uint32(i))
			decl.paramNames[i] = p.Name
		}
	}
	switch ti.Kind {
	case ast.TypeDeclStruct:
		decl.kind = declStruct
		decl.typeID = c.types.RegisterStructInstance(ti.Name, ti.NameSpan, decl.params)
	case ast.TypeDeclEnum:
		decl.kind = declEnum
		decl.typeID = c.types.RegisterEnumInstance(ti.Name, ti.NameSpan, decl.params)
	case ast.TypeDeclUnion:
		decl.kind = declUnion
		decl.typeID = c.types.RegisterUnionInstance(ti.Name, ti.NameSpan, decl.params)
	default:
		return
	}
	c.typeDecls[ti.Name] = decl
	c.typeItems[itemID] = decl
}

func (c *checker) registerContractItem(fileID ast.FileID, itemID ast.ItemID) {
	ci, ok := c.builder.Items.Contract(itemID)
	if !ok {
		return
	}
	if prev, exists := c.typeDecls[ci.Name]; exists {
		c.reportRedeclared(ci.Name, ci.NameSpan, prev.nameSpan)
		return
	}
	decl := &typeDecl{
		item:     itemID,
		file:     fileID,
		kind:     declContract,
		name:     ci.Name,
		nameSpan: ci.NameSpan,
		typeID:   c.types.RegisterContract(ci.Name, ci.NameSpan),
	}
	c.typeDecls[ci.Name] = decl
	c.typeItems[itemID] = decl
}

func (c *checker) registerConstItem(itemID ast.ItemID) {
	ci, ok := c.builder.Items.Const(itemID)
	if !ok {
		return
	}
	if prev, taken := c.valueDeclSpan(ci.Name); taken {
		c.reportRedeclared(ci.Name, ci.NameSpan, prev)
		return
	}
	decl := &constDecl{item: itemID, name: ci.Name, nameSpan: ci.NameSpan}
	c.consts[ci.Name] = decl
	c.constItems[itemID] = decl
}

func (c *checker) registerFnItem(itemID ast.ItemID) {
	fi, ok := c.builder.Items.Fn(itemID)
	if !ok {
		return
	}
	if prev, taken := c.valueDeclSpan(fi.Name); taken {
		c.reportRedeclared(fi.Name, fi.NameSpan, prev)
		return
	}
	decl := &fnDecl{item: itemID, name: fi.Name, nameSpan: fi.NameSpan}
	c.fns[fi.Name] = decl
	c.fnItems[itemID] = decl
}

func (c *checker) valueDeclSpan(name source.StringID) (source.Span, bool) {
	if d, ok := c.consts[name]; ok {
		return d.nameSpan, true
	}
	if d, ok := c.fns[name]; ok {
		return d.nameSpan, true
	}
	return source.Span{}, false
}

// reportRedeclared: первая декларация выигрывает, повтор получает ошибку.
func (c *checker) reportRedeclared(name source.StringID, redecl, first source.Span) {
	text := c.lookupName(name)
	c.handler.StructSpanErrWithCode(redecl,
		fmt.Sprintf("the name `%s` is defined multiple times", text), diag.TypDuplicateDecl).
		SpanLabel(first, "first defined here").
		SpanLabel(redecl, fmt.Sprintf("`%s` redefined here", text)).
		Emit()
}

// populateDecls заполняет тела типов и сигнатуры функций. Дубликаты в
// typeItems не попадают, поэтому первый победитель заполняется один раз.
func (c *checker) populateDecls(fileID ast.FileID) {
	file := c.builder.Files.Get(fileID)
	if file == nil {
		return
	}
	for _, itemID := range file.Items {
		if decl, ok := c.typeItems[itemID]; ok && !decl.populated {
			decl.populated = true
			c.populateTypeDecl(decl)
			continue
		}
		if decl, ok := c.fnItems[itemID]; ok && decl.typ == types.NoTypeID {
			c.populateFnDecl(decl)
		}
	}
}

func (c *checker) populateTypeDecl(decl *typeDecl) {
	ti, ok := c.builder.Items.Type(decl.item)
	if !ok {
		return
	}
	saved := c.typeParams
	c.typeParams = make(map[source.StringID]types.TypeID, len(decl.params))
	for i, id := range decl.params {
		c.typeParams[decl.paramNames[i]] = id
	}
	defer func() { c.typeParams = saved }()

	switch decl.kind {
	case declStruct:
		c.populateStruct(decl, ti)
	case declEnum:
		c.populateEnum(decl, ti)
	case declUnion:
		c.populateUnion(decl, ti)
	}
}

func (c *checker) populateStruct(decl *typeDecl, ti *ast.TypeItem) {
	sd := c.builder.Items.TypeStruct(ti)
	if sd == nil {
		return
	}
	fields := c.builder.Items.CollectFields(sd.FieldsStart, sd.FieldsCount)
	c.types.SetStructFields(decl.typeID, c.buildFieldList(fields))
	c.types.SetStructShape(decl.typeID, sd.Positional, ti.NonExhaustive)
}

func (c *checker) populateUnion(decl *typeDecl, ti *ast.TypeItem) {
	ud := c.builder.Items.TypeUnion(ti)
	if ud == nil {
		return
	}
	fields := c.builder.Items.CollectFields(ud.FieldsStart, ud.FieldsCount)
	c.types.SetUnionFields(decl.typeID, c.buildFieldList(fields))
}

func (c *checker) populateEnum(decl *typeDecl, ti *ast.TypeItem) {
	ed := c.builder.Items.TypeEnum(ti)
	if ed == nil {
		return
	}
	variants := c.builder.Items.CollectVariants(ed.VariantsStart, ed.VariantsCount)
	infos := make([]types.EnumVariantInfo, 0, len(variants))
	seen := make(map[source.StringID]source.Span, len(variants))
	for _, v := range variants {
		if first, dup := seen[v.Name]; dup {
			c.reportMemberRedeclared("variant", v.Name, v.Span, first)
			continue
		}
		seen[v.Name] = v.Span
		kind := types.VariantUnit
		switch v.Kind {
		case ast.EnumVariantTuple:
			kind = types.VariantTuple
		case ast.EnumVariantStruct:
			kind = types.VariantStruct
		}
		fields := c.builder.Items.CollectFields(v.FieldsStart, v.FieldsCount)
		infos = append(infos, types.EnumVariantInfo{
			Name:   v.Name,
			Kind:   kind,
			Span:   v.Span,
			Fields: c.buildFieldList(fields),
		})
	}
	c.types.SetEnumVariants(decl.typeID, infos)
	c.types.SetEnumNonExhaustive(decl.typeID, ti.NonExhaustive)
}

// buildFieldList резолвит типы полей, отбрасывая повторные имена.
func (c *checker) buildFieldList(fields []ast.TypeField) []types.StructField {
	out := make([]types.StructField, 0, len(fields))
	seen := make(map[source.StringID]source.Span, len(fields))
	for _, f := range fields {
		if f.Name != source.NoStringID {
			if first, dup := seen[f.Name]; dup {
				c.reportMemberRedeclared("field", f.Name, f.Span, first)
				continue
			}
			seen[f.Name] = f.Span
		}
		out = append(out, types.StructField{
			Name: f.Name,
			Type: c.resolveTypeExpr(f.Type),
			Span: f.Span,
		})
	}
	return out
}

func (c *checker) reportMemberRedeclared(what string, name source.StringID, redecl, first source.Span) {
	text := c.lookupName(name)
	c.handler.StructSpanErrWithCode(redecl,
		fmt.Sprintf("%s `%s` is declared more than once", what, text), diag.TypDuplicateDecl).
		SpanLabel(first, "first declaration here").
		Emit()
}

func (c *checker) populateFnDecl(decl *fnDecl) {
	fi, ok := c.builder.Items.Fn(decl.item)
	if !ok {
		return
	}
	params := c.builder.Items.CollectFnParams(fi.ParamStart, fi.ParamCount)
	decl.params = make([]types.TypeID, len(params))
	for i, p := range params {
		decl.params[i] = c.resolveTypeExpr(p.Type)
	}
	decl.result = c.types.Builtins().Unit
	if fi.ReturnType != ast.NoTypeID {
		decl.result = c.resolveTypeExpr(fi.ReturnType)
	}
	decl.typ = c.types.RegisterFn(decl.params, decl.result)
}
