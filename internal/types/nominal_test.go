package types

import (
	"testing"

	"volt/internal/source"
)

func TestStructFieldsRoundTrip(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Point")
	x := strs.Intern("x")
	y := strs.Intern("y")

	id := in.RegisterStruct(name, source.Span{})
	in.SetStructFields(id, []StructField{
		{Name: x, Type: in.Builtins().Int},
		{Name: y, Type: in.Builtins().Int},
	})

	fields := in.StructFields(id)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != x || fields[1].Name != y {
		t.Fatalf("field names not preserved")
	}
	info, ok := in.StructInfo(id)
	if !ok || info.Name != name {
		t.Fatalf("struct info lookup failed")
	}
}

func TestStructShapeFlags(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	id := in.RegisterStruct(strs.Intern("Wrapper"), source.Span{})
	in.SetStructShape(id, true, true)
	info, ok := in.StructInfo(id)
	if !ok {
		t.Fatalf("struct info lookup failed")
	}
	if !info.Positional || !info.NonExhaustive {
		t.Fatalf("shape flags not stored: %+v", info)
	}
}

func TestSameNameStructsStayDistinct(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Shadowed")
	a := in.RegisterStruct(name, source.Span{})
	b := in.RegisterStruct(name, source.Span{})
	if a == b {
		t.Fatalf("nominal registrations must never collapse")
	}
}

func TestFindStructInstance(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	b := in.Builtins()
	name := strs.Intern("Pair")

	inst := in.RegisterStructInstance(name, source.Span{}, []TypeID{b.Int, b.Bool})
	got, ok := in.FindStructInstance(name, []TypeID{b.Int, b.Bool})
	if !ok || got != inst {
		t.Fatalf("expected to find the registered instance, got %v ok=%v", got, ok)
	}
	if _, ok := in.FindStructInstance(name, []TypeID{b.Bool, b.Int}); ok {
		t.Fatalf("argument order must matter")
	}
	if _, ok := in.FindStructInstance(strs.Intern("Other"), []TypeID{b.Int, b.Bool}); ok {
		t.Fatalf("name must matter")
	}
}

func TestEnumVariantLookup(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Shape")
	circle := strs.Intern("Circle")
	rect := strs.Intern("Rect")

	id := in.RegisterEnum(name, source.Span{})
	in.SetEnumVariants(id, []EnumVariantInfo{
		{Name: circle, Kind: VariantTuple, Fields: []StructField{{Type: in.Builtins().Float}}},
		{Name: rect, Kind: VariantUnit},
	})

	idx, info, ok := in.EnumVariant(id, rect)
	if !ok || idx != 1 || info.Kind != VariantUnit {
		t.Fatalf("variant lookup failed: idx=%d ok=%v", idx, ok)
	}
	idx, info, ok = in.EnumVariant(id, circle)
	if !ok || idx != 0 || len(info.Fields) != 1 {
		t.Fatalf("tuple variant lookup failed: idx=%d ok=%v", idx, ok)
	}
	if _, _, ok := in.EnumVariant(id, strs.Intern("Triangle")); ok {
		t.Fatalf("unknown variant must not resolve")
	}
}

func TestEnumNonExhaustiveFlag(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	id := in.RegisterEnum(strs.Intern("Signal"), source.Span{})
	in.SetEnumNonExhaustive(id, true)
	info, ok := in.EnumInfo(id)
	if !ok || !info.NonExhaustive {
		t.Fatalf("non-exhaustive flag not stored")
	}
}

func TestUnionFieldsRoundTrip(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Raw")
	bits := strs.Intern("bits")

	id := in.RegisterUnion(name, source.Span{})
	in.SetUnionFields(id, []StructField{{Name: bits, Type: in.Builtins().Uint}})

	info, ok := in.UnionInfo(id)
	if !ok || info.Name != name {
		t.Fatalf("union info lookup failed")
	}
	if len(info.Fields) != 1 || info.Fields[0].Name != bits {
		t.Fatalf("union fields not stored: %+v", info.Fields)
	}
}

func TestContractLookup(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Display")
	id := in.RegisterContract(name, source.Span{})
	info, ok := in.ContractInfo(id)
	if !ok || info.Name != name {
		t.Fatalf("contract info lookup failed")
	}
	tt, _ := in.Lookup(id)
	if tt.Kind != KindContract {
		t.Fatalf("expected contract kind, got %v", tt.Kind)
	}
}

func TestTupleDeduplicated(t *testing.T) {
	in := newTestInterner()
	b := in.Builtins()
	first := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	second := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	if first != second {
		t.Fatalf("identical tuples should share a TypeID")
	}
	swapped := in.RegisterTuple([]TypeID{b.Bool, b.Int})
	if swapped == first {
		t.Fatalf("element order must matter")
	}
}

func TestFnDeduplicated(t *testing.T) {
	in := newTestInterner()
	b := in.Builtins()
	first := in.RegisterFn([]TypeID{b.Int}, b.Bool)
	second := in.RegisterFn([]TypeID{b.Int}, b.Bool)
	if first != second {
		t.Fatalf("identical signatures should share a TypeID")
	}
	other := in.RegisterFn([]TypeID{b.Int}, b.Unit)
	if other == first {
		t.Fatalf("result type must matter")
	}
}

func TestTypeParamInfoRoundTrip(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("T")
	id := in.RegisterTypeParam(name, 7, 1)
	info, ok := in.TypeParamInfo(id)
	if !ok || info.Name != name || info.Owner != 7 || info.Index != 1 {
		t.Fatalf("type param info mismatch: %+v ok=%v", info, ok)
	}
}
