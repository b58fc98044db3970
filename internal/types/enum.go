package types

import "opcheck/internal/source"

// EnumMember is a named constant of an enum.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name       string
	Decl       source.Span
	Underlying TypeID
	Members    []EnumMember
}

// RegisterEnum allocates an enum slot. A missing underlying type defaults
// to int32.
func (in *Interner) RegisterEnum(info EnumInfo) TypeID {
	if info.Underlying == NoTypeID {
		info.Underlying = in.builtins.Int32
	}
	slot := slotOf(len(in.enums))
	in.enums = append(in.enums, info)
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// EnumInfo returns metadata for the enum type.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil, false
	}
	return &in.enums[tt.Payload], true
}

// EnumUnderlying returns the underlying integral type of an enum.
func (in *Interner) EnumUnderlying(id TypeID) TypeID {
	if info, ok := in.EnumInfo(id); ok {
		return info.Underlying
	}
	return NoTypeID
}

// EnumMember finds a member constant by name.
func (in *Interner) EnumMember(id TypeID, name string) (EnumMember, bool) {
	info, ok := in.EnumInfo(id)
	if !ok {
		return EnumMember{}, false
	}
	for _, m := range info.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}
