package ast

import "volt/internal/source"

// ContractItem declares a contract name. Bodies are not modeled; patterns
// only ever meet contracts through the erased `any Name` object type.
type ContractItem struct {
	Name     source.StringID
	NameSpan source.Span
	Span     source.Span
}

func (i *Items) Contract(id ItemID) (*ContractItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemContract {
		return nil, false
	}
	return i.Contracts.Get(uint32(item.Payload)), true
}

func (i *Items) NewContract(name source.StringID, nameSpan, span source.Span) ItemID {
	payload := i.Contracts.Allocate(ContractItem{
		Name:     name,
		NameSpan: nameSpan,
		Span:     span,
	})
	return i.new(ItemContract, span, PayloadID(payload))
}
