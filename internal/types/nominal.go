package types

import (
	"slices"

	"opcheck/internal/source"
)

// OperatorDecl is a user-defined operator declared on a nominal type.
// Symbol is the source spelling ("+", "&", "true", "false", "++", ...);
// unary and binary forms are told apart by len(Params).
type OperatorDecl struct {
	Symbol string
	Params []TypeID
	Result TypeID
	Decl   source.Span
}

// NominalInfo stores metadata for class, interface and struct types.
type NominalInfo struct {
	Name       string
	Decl       source.Span
	Base       TypeID // classes only; NoTypeID means object
	Interfaces []TypeID
	Sealed     bool
	Size       uint32 // struct byte size for size-of and pointer scaling; 0 = unknown
	Operators  []OperatorDecl
}

// RegisterNominal allocates a class/interface/struct slot and returns its TypeID.
func (in *Interner) RegisterNominal(kind Kind, info NominalInfo) TypeID {
	switch kind {
	case KindClass, KindInterface, KindStruct:
	default:
		panic("types: RegisterNominal expects class, interface or struct")
	}
	slot := slotOf(len(in.nominals))
	info.Interfaces = slices.Clone(info.Interfaces)
	info.Operators = slices.Clone(info.Operators)
	in.nominals = append(in.nominals, info)
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// NominalInfo returns metadata for a class, interface or struct. The pointer
// stays valid until the next Register call and may be used to finish
// declarations (base, interfaces, operators) in a second pass.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindClass, KindInterface, KindStruct:
	default:
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil, false
	}
	return &in.nominals[tt.Payload], true
}

// Operators returns declarations on id matching symbol and arity.
func (in *Interner) Operators(id TypeID, symbol string, arity int) []OperatorDecl {
	info, ok := in.NominalInfo(id)
	if !ok {
		return nil
	}
	var out []OperatorDecl
	for _, op := range info.Operators {
		if op.Symbol == symbol && len(op.Params) == arity {
			out = append(out, op)
		}
	}
	return out
}

// HasOperator reports whether id declares any operator named symbol.
func (in *Interner) HasOperator(id TypeID, symbol string) bool {
	info, ok := in.NominalInfo(id)
	if !ok {
		return false
	}
	for _, op := range info.Operators {
		if op.Symbol == symbol {
			return true
		}
	}
	return false
}
