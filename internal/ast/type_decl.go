package ast

import (
	"fmt"

	"fortio.org/safecast"

	"volt/internal/source"
)

type TypeDeclKind uint8

const (
	TypeDeclStruct TypeDeclKind = iota
	TypeDeclEnum
	TypeDeclUnion
)

type TypeItem struct {
	Name     source.StringID
	NameSpan source.Span
	Kind     TypeDeclKind
	Payload  PayloadID
	// Generic parameters, contiguous run in Items.TypeParams.
	ParamStart TypeParamID
	ParamCount uint32
	// NonExhaustive is set by the @non_exhaustive attribute.
	NonExhaustive bool
	Span          source.Span
}

type TypeParam struct {
	Name source.StringID
	Span source.Span
}

type TypeStructDecl struct {
	// Positional marks the tuple form: `type Meters struct(int)`.
	Positional  bool
	FieldsStart FieldID
	FieldsCount uint32
}

// TypeField is a struct/union/variant field. Positional fields carry
// NoStringID names.
type TypeField struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

type TypeEnumDecl struct {
	VariantsStart VariantID
	VariantsCount uint32
}

type EnumVariantKind uint8

const (
	EnumVariantUnit EnumVariantKind = iota
	EnumVariantTuple
	EnumVariantStruct
)

type EnumVariant struct {
	Name        source.StringID
	Kind        EnumVariantKind
	FieldsStart FieldID
	FieldsCount uint32
	Span        source.Span
}

type TypeUnionDecl struct {
	FieldsStart FieldID
	FieldsCount uint32
}

// NewTypeStruct allocates a struct type declaration item.
func (i *Items) NewTypeStruct(
	name source.StringID,
	nameSpan source.Span,
	params []TypeParam,
	nonExhaustive bool,
	positional bool,
	fields []TypeField,
	span source.Span,
) ItemID {
	fieldsStart, fieldsCount := i.allocateFields(fields)
	payload := i.Structs.Allocate(TypeStructDecl{
		Positional:  positional,
		FieldsStart: fieldsStart,
		FieldsCount: fieldsCount,
	})
	return i.newTypeItem(name, nameSpan, TypeDeclStruct, PayloadID(payload), params, nonExhaustive, span)
}

// NewTypeEnum allocates an enum type declaration item. Variant fields must
// already be placed in Items.Fields; the variants themselves are copied.
func (i *Items) NewTypeEnum(
	name source.StringID,
	nameSpan source.Span,
	params []TypeParam,
	nonExhaustive bool,
	variants []EnumVariant,
	span source.Span,
) ItemID {
	variantsStart, variantsCount := i.allocateVariants(variants)
	payload := i.Enums.Allocate(TypeEnumDecl{
		VariantsStart: variantsStart,
		VariantsCount: variantsCount,
	})
	return i.newTypeItem(name, nameSpan, TypeDeclEnum, PayloadID(payload), params, nonExhaustive, span)
}

// NewTypeUnion allocates a union type declaration item.
func (i *Items) NewTypeUnion(
	name source.StringID,
	nameSpan source.Span,
	params []TypeParam,
	fields []TypeField,
	span source.Span,
) ItemID {
	fieldsStart, fieldsCount := i.allocateFields(fields)
	payload := i.Unions.Allocate(TypeUnionDecl{
		FieldsStart: fieldsStart,
		FieldsCount: fieldsCount,
	})
	return i.newTypeItem(name, nameSpan, TypeDeclUnion, PayloadID(payload), params, false, span)
}

func (i *Items) newTypeItem(
	name source.StringID,
	nameSpan source.Span,
	kind TypeDeclKind,
	payload PayloadID,
	params []TypeParam,
	nonExhaustive bool,
	span source.Span,
) ItemID {
	paramStart, paramCount := i.allocateTypeParams(params)
	typePayload := i.Types.Allocate(TypeItem{
		Name:          name,
		NameSpan:      nameSpan,
		Kind:          kind,
		Payload:       payload,
		ParamStart:    paramStart,
		ParamCount:    paramCount,
		NonExhaustive: nonExhaustive,
		Span:          span,
	})
	return i.new(ItemType, span, PayloadID(typePayload))
}

// Type returns the type declaration payload for the given item ID.
func (i *Items) Type(id ItemID) (*TypeItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemType || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Types.Get(uint32(item.Payload)), true
}

func (i *Items) TypeStruct(item *TypeItem) *TypeStructDecl {
	if item == nil || item.Kind != TypeDeclStruct || !item.Payload.IsValid() {
		return nil
	}
	return i.Structs.Get(uint32(item.Payload))
}

func (i *Items) TypeEnum(item *TypeItem) *TypeEnumDecl {
	if item == nil || item.Kind != TypeDeclEnum || !item.Payload.IsValid() {
		return nil
	}
	return i.Enums.Get(uint32(item.Payload))
}

func (i *Items) TypeUnion(item *TypeItem) *TypeUnionDecl {
	if item == nil || item.Kind != TypeDeclUnion || !item.Payload.IsValid() {
		return nil
	}
	return i.Unions.Get(uint32(item.Payload))
}

// CollectFields returns a copy of the field run starting at start.
func (i *Items) CollectFields(start FieldID, count uint32) []TypeField {
	if count == 0 || !start.IsValid() {
		return nil
	}
	result := make([]TypeField, 0, count)
	base := uint32(start)
	for offset := range count {
		field := i.Fields.Get(base + offset)
		if field == nil {
			continue
		}
		result = append(result, *field)
	}
	return result
}

// CollectVariants returns a copy of the variant run starting at start.
func (i *Items) CollectVariants(start VariantID, count uint32) []EnumVariant {
	if count == 0 || !start.IsValid() {
		return nil
	}
	result := make([]EnumVariant, 0, count)
	base := uint32(start)
	for offset := range count {
		variant := i.Variants.Get(base + offset)
		if variant == nil {
			continue
		}
		result = append(result, *variant)
	}
	return result
}

// CollectTypeParams returns a copy of the generic parameter run.
func (i *Items) CollectTypeParams(start TypeParamID, count uint32) []TypeParam {
	if count == 0 || !start.IsValid() {
		return nil
	}
	result := make([]TypeParam, 0, count)
	base := uint32(start)
	for offset := range count {
		param := i.TypeParams.Get(base + offset)
		if param == nil {
			continue
		}
		result = append(result, *param)
	}
	return result
}

// AllocateFields places fields contiguously and returns the run handle.
// Exposed for the parser, which builds variant field runs before variants.
func (i *Items) AllocateFields(fields []TypeField) (FieldID, uint32) {
	return i.allocateFields(fields)
}

func (i *Items) allocateFields(fields []TypeField) (FieldID, uint32) {
	if len(fields) == 0 {
		return NoFieldID, 0
	}
	var start FieldID
	for idx, field := range fields {
		id := FieldID(i.Fields.Allocate(field))
		if idx == 0 {
			start = id
		}
	}
	count, err := safecast.Conv[uint32](len(fields))
	if err != nil {
		panic(fmt.Errorf("fields count overflow: %w", err))
	}
	return start, count
}

func (i *Items) allocateVariants(variants []EnumVariant) (VariantID, uint32) {
	if len(variants) == 0 {
		return NoVariantID, 0
	}
	var start VariantID
	for idx, variant := range variants {
		id := VariantID(i.Variants.Allocate(variant))
		if idx == 0 {
			start = id
		}
	}
	count, err := safecast.Conv[uint32](len(variants))
	if err != nil {
		panic(fmt.Errorf("variants count overflow: %w", err))
	}
	return start, count
}

func (i *Items) allocateTypeParams(params []TypeParam) (TypeParamID, uint32) {
	if len(params) == 0 {
		return NoTypeParamID, 0
	}
	var start TypeParamID
	for idx, param := range params {
		id := TypeParamID(i.TypeParams.Allocate(param))
		if idx == 0 {
			start = id
		}
	}
	count, err := safecast.Conv[uint32](len(params))
	if err != nil {
		panic(fmt.Errorf("type params count overflow: %w", err))
	}
	return start, count
}
