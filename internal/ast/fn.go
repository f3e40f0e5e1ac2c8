package ast

import (
	"fmt"

	"fortio.org/safecast"

	"volt/internal/source"
)

type FnItem struct {
	Name       source.StringID
	NameSpan   source.Span
	ParamStart FnParamID
	ParamCount uint32
	ReturnType TypeID // NoTypeID means unit
	Body       ExprID // block expression
	Span       source.Span
}

// FnParam is a function parameter. Params are full patterns, so the checker
// treats them like match bindings with a declared expected type.
type FnParam struct {
	Pat  PatID
	Type TypeID
	Span source.Span
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewFn(
	name source.StringID,
	nameSpan source.Span,
	params []FnParam,
	returnType TypeID,
	body ExprID,
	span source.Span,
) ItemID {
	paramStart, paramCount := i.allocateFnParams(params)
	payload := i.Fns.Allocate(FnItem{
		Name:       name,
		NameSpan:   nameSpan,
		ParamStart: paramStart,
		ParamCount: paramCount,
		ReturnType: returnType,
		Body:       body,
		Span:       span,
	})
	return i.new(ItemFn, span, PayloadID(payload))
}

// CollectFnParams returns a copy of the parameter run of a function.
func (i *Items) CollectFnParams(start FnParamID, count uint32) []FnParam {
	if count == 0 || !start.IsValid() {
		return nil
	}
	result := make([]FnParam, 0, count)
	base := uint32(start)
	for offset := range count {
		param := i.FnParams.Get(base + offset)
		if param == nil {
			continue
		}
		result = append(result, *param)
	}
	return result
}

func (i *Items) allocateFnParams(params []FnParam) (FnParamID, uint32) {
	if len(params) == 0 {
		return NoFnParamID, 0
	}
	var start FnParamID
	for idx, param := range params {
		id := FnParamID(i.FnParams.Allocate(param))
		if idx == 0 {
			start = id
		}
	}
	count, err := safecast.Conv[uint32](len(params))
	if err != nil {
		panic(fmt.Errorf("fn params count overflow: %w", err))
	}
	return start, count
}
