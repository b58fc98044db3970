package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive and well-known types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
	Uint8   TypeID
	Uint16  TypeID
	Uint32  TypeID
	Uint64  TypeID
	Float32 TypeID
	Float64 TypeID
	Decimal TypeID
	String  TypeID
	Object  TypeID
	Null    TypeID
	// TypeHandle is the result of type-of.
	TypeHandle TypeID
	Range      TypeID
	Maplet     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Derived types (pointer, nullable, ...) are interned on first use, so an
// Interner belongs to one goroutine at a time.
type Interner struct {
	types      []Type
	index      map[Type]TypeID
	builtins   Builtins
	nominals   []NominalInfo
	enums      []EnumInfo
	unions     []UnionInfo
	typeParams []TypeParamInfo
}

// NewInterner constructs an interner seeded with built-in types.
func NewInterner() *Interner {
	in := &Interner{index: make(map[Type]TypeID, 64)}
	// slot 0 of every side table is the invalid sentinel
	in.nominals = append(in.nominals, NominalInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.unions = append(in.unions, UnionInfo{})
	in.typeParams = append(in.typeParams, TypeParamInfo{})

	b := &in.builtins
	b.Invalid = in.internRaw(Type{Kind: KindInvalid})
	b.Void = in.Intern(Type{Kind: KindVoid})
	b.Bool = in.Intern(Type{Kind: KindBool})
	b.Char = in.Intern(Type{Kind: KindChar})
	b.Int8 = in.Intern(MakeInt(Width8))
	b.Int16 = in.Intern(MakeInt(Width16))
	b.Int32 = in.Intern(MakeInt(Width32))
	b.Int64 = in.Intern(MakeInt(Width64))
	b.Uint8 = in.Intern(MakeUint(Width8))
	b.Uint16 = in.Intern(MakeUint(Width16))
	b.Uint32 = in.Intern(MakeUint(Width32))
	b.Uint64 = in.Intern(MakeUint(Width64))
	b.Float32 = in.Intern(MakeFloat(Width32))
	b.Float64 = in.Intern(MakeFloat(Width64))
	b.Decimal = in.Intern(Type{Kind: KindDecimal})
	b.String = in.Intern(Type{Kind: KindString})
	b.Object = in.Intern(Type{Kind: KindObject})
	b.Null = in.Intern(Type{Kind: KindNull})
	b.TypeHandle = in.RegisterNominal(KindClass, NominalInfo{Name: "Type", Sealed: true})
	b.Range = in.RegisterNominal(KindStruct, NominalInfo{Name: "Range", Size: 8})
	b.Maplet = in.RegisterNominal(KindStruct, NominalInfo{Name: "Maplet", Size: 16})
	return in
}

// Builtins returns TypeIDs for built-in types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided structural descriptor has a stable TypeID.
// Nominal kinds must go through the Register* functions instead.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind is a shorthand for Lookup(id).Kind; unknown ids report KindInvalid.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

func (in *Interner) Pointer(elem TypeID) TypeID   { return in.Intern(MakePointer(elem)) }
func (in *Interner) Reference(elem TypeID) TypeID { return in.Intern(MakeReference(elem)) }
func (in *Interner) Optional(elem TypeID) TypeID  { return in.Intern(MakeOptional(elem)) }

// Nullable returns T? ; wrapping an already nullable type is a no-op.
func (in *Interner) Nullable(elem TypeID) TypeID {
	if in.Kind(elem) == KindNullable {
		return elem
	}
	return in.Intern(MakeNullable(elem))
}

func slotOf(n int) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("side table overflow: %w", err))
	}
	return slot
}
