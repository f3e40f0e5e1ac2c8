package ast

import "volt/internal/source"

type ConstItem struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID // NoTypeID if the type is inferred from the value
	Value    ExprID
	Span     source.Span
}

func (i *Items) Const(id ItemID) (*ConstItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemConst {
		return nil, false
	}
	return i.Consts.Get(uint32(item.Payload)), true
}

func (i *Items) NewConst(
	name source.StringID,
	nameSpan source.Span,
	typeID TypeID,
	value ExprID,
	span source.Span,
) ItemID {
	payload := i.Consts.Allocate(ConstItem{
		Name:     name,
		NameSpan: nameSpan,
		Type:     typeID,
		Value:    value,
		Span:     span,
	})
	return i.new(ItemConst, span, PayloadID(payload))
}
