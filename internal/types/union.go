package types

import "opcheck/internal/source"

// UnionMember is one tagged alternative of a union.
type UnionMember struct {
	Tag  string
	Type TypeID
}

// UnionInfo stores metadata for a tagged union.
type UnionInfo struct {
	Name    string
	Decl    source.Span
	Members []UnionMember
}

// RegisterUnion allocates a tagged union slot.
func (in *Interner) RegisterUnion(info UnionInfo) TypeID {
	slot := slotOf(len(in.unions))
	in.unions = append(in.unions, info)
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// UnionInfo returns metadata for the union type.
func (in *Interner) UnionInfo(id TypeID) (*UnionInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindUnion || tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil, false
	}
	return &in.unions[tt.Payload], true
}

// UnionMemberFor finds the alternative whose payload type is exactly member.
func (in *Interner) UnionMemberFor(union, member TypeID) (UnionMember, bool) {
	info, ok := in.UnionInfo(union)
	if !ok {
		return UnionMember{}, false
	}
	for _, m := range info.Members {
		if m.Type == member {
			return m, true
		}
	}
	return UnionMember{}, false
}
