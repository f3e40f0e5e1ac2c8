package types

import (
	"fmt"

	"fortio.org/safecast"

	"volt/internal/source"
)

// ContractInfo stores metadata for a contract. The TypeID registered for a
// contract is the erased object type `any Name`: the concrete type behind it
// is unknown at the boundary, which is why patterns may not dereference it.
type ContractInfo struct {
	Name source.StringID
	Decl source.Span
}

// RegisterContract allocates a contract-object type and returns its TypeID.
func (in *Interner) RegisterContract(name source.StringID, decl source.Span) TypeID {
	slot := in.appendContractInfo(ContractInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindContract, Payload: slot})
}

// ContractInfo returns metadata for the provided contract TypeID.
func (in *Interner) ContractInfo(typeID TypeID) (*ContractInfo, bool) {
	info := in.contractInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) contractInfo(typeID TypeID) *ContractInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindContract {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.contracts) {
		return nil
	}
	return &in.contracts[tt.Payload]
}

func (in *Interner) appendContractInfo(info ContractInfo) uint32 {
	in.contracts = append(in.contracts, info)
	slot, err := safecast.Conv[uint32](len(in.contracts) - 1)
	if err != nil {
		panic(fmt.Errorf("contract info overflow: %w", err))
	}
	return slot
}
