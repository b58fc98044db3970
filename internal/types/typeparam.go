package types

import (
	"slices"

	"opcheck/internal/source"
)

// TypeParamInfo describes a type parameter and its constraints.
type TypeParamInfo struct {
	Name        string
	Decl        source.Span
	Constraints []TypeID
	// Reference / Value mirror `class` / `struct` constraints.
	Reference bool
	Value     bool
}

// RegisterTypeParam allocates a type-parameter slot.
func (in *Interner) RegisterTypeParam(info TypeParamInfo) TypeID {
	info.Constraints = slices.Clone(info.Constraints)
	slot := slotOf(len(in.typeParams))
	in.typeParams = append(in.typeParams, info)
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// TypeParamInfo returns metadata for a type parameter.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam || tt.Payload == 0 || int(tt.Payload) >= len(in.typeParams) {
		return nil, false
	}
	return &in.typeParams[tt.Payload], true
}
