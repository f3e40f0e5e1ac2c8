package ast

import (
	"volt/internal/source"
)

type ItemKind uint8

const (
	ItemType ItemKind = iota
	ItemConst
	ItemFn
	ItemContract
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// Items manages allocation of top-level declarations and their payloads.
type Items struct {
	Arena      *Arena[Item]
	Types      *Arena[TypeItem]
	TypeParams *Arena[TypeParam]
	Structs    *Arena[TypeStructDecl]
	Enums      *Arena[TypeEnumDecl]
	Unions     *Arena[TypeUnionDecl]
	Fields     *Arena[TypeField]
	Variants   *Arena[EnumVariant]
	Consts     *Arena[ConstItem]
	Fns        *Arena[FnItem]
	FnParams   *Arena[FnParam]
	Contracts  *Arena[ContractItem]
}

// NewItems creates an *Items with per-kind arenas initialized to capHint.
// If capHint is 0, a default of 1<<7 is used.
func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{
		Arena:      NewArena[Item](capHint),
		Types:      NewArena[TypeItem](capHint),
		TypeParams: NewArena[TypeParam](capHint),
		Structs:    NewArena[TypeStructDecl](capHint),
		Enums:      NewArena[TypeEnumDecl](capHint),
		Unions:     NewArena[TypeUnionDecl](capHint),
		Fields:     NewArena[TypeField](capHint),
		Variants:   NewArena[EnumVariant](capHint),
		Consts:     NewArena[ConstItem](capHint),
		Fns:        NewArena[FnItem](capHint),
		FnParams:   NewArena[FnParam](capHint),
		Contracts:  NewArena[ContractItem](capHint),
	}
}

func (i *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the item with the given ID.
func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}
