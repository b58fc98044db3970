package types

// Layers records which wrapper layers Unwrap removed.
type Layers uint8

const (
	LayerReference Layers = 1 << iota
	LayerNullable
	LayerOptional
)

func (l Layers) Has(f Layers) bool { return l&f != 0 }

// maxHierarchyDepth bounds base/interface walks so malformed (cyclic)
// declarations cannot loop forever.
const maxHierarchyDepth = 64

// IsPrimitiveNumeric reports int, uint, float and decimal kinds.
func (in *Interner) IsPrimitiveNumeric(id TypeID) bool {
	switch in.Kind(id) {
	case KindInt, KindUint, KindFloat, KindDecimal:
		return true
	}
	return false
}

// IsPrimitiveInteger reports fixed-width integer kinds.
func (in *Interner) IsPrimitiveInteger(id TypeID) bool {
	switch in.Kind(id) {
	case KindInt, KindUint:
		return true
	}
	return false
}

// IsUnsigned reports unsigned integer kinds.
func (in *Interner) IsUnsigned(id TypeID) bool {
	return in.Kind(id) == KindUint
}

func (in *Interner) IsFloat(id TypeID) bool {
	return in.Kind(id) == KindFloat
}

// Width returns the bit width of a numeric primitive.
func (in *Interner) Width(id TypeID) Width {
	tt, _ := in.Lookup(id)
	return tt.Width
}

// Elem returns the element of a pointer/reference/nullable/optional.
func (in *Interner) Elem(id TypeID) TypeID {
	tt, _ := in.Lookup(id)
	return tt.Elem
}

// Unwrap strips reference, nullable and optional layers in any order.
func (in *Interner) Unwrap(id TypeID) (TypeID, Layers) {
	var layers Layers
	for range maxHierarchyDepth {
		tt, ok := in.Lookup(id)
		if !ok {
			return id, layers
		}
		switch tt.Kind {
		case KindReference:
			layers |= LayerReference
		case KindNullable:
			layers |= LayerNullable
		case KindOptional:
			layers |= LayerOptional
		default:
			return id, layers
		}
		id = tt.Elem
	}
	return id, layers
}

// StripModifiers removes reference and optional layers but keeps nullable,
// which is load-bearing for equality and lifting.
func (in *Interner) StripModifiers(id TypeID) TypeID {
	for range maxHierarchyDepth {
		tt, ok := in.Lookup(id)
		if !ok || (tt.Kind != KindReference && tt.Kind != KindOptional) {
			return id
		}
		id = tt.Elem
	}
	return id
}

// Promoted maps char to its assigned primitive (uint16) and enums to their
// underlying type; everything else is returned unchanged.
func (in *Interner) Promoted(id TypeID) TypeID {
	switch in.Kind(id) {
	case KindChar:
		return in.builtins.Uint16
	case KindEnum:
		return in.EnumUnderlying(id)
	}
	return id
}

// IsValueType reports types whose values are never null references.
func (in *Interner) IsValueType(id TypeID) bool {
	switch in.Kind(id) {
	case KindBool, KindChar, KindInt, KindUint, KindFloat, KindDecimal,
		KindEnum, KindStruct, KindNullable, KindPointer, KindUnion:
		return true
	case KindTypeParam:
		info, ok := in.TypeParamInfo(id)
		return ok && info.Value
	}
	return false
}

// IsReferenceType reports types whose values are references.
func (in *Interner) IsReferenceType(id TypeID) bool {
	switch in.Kind(id) {
	case KindString, KindObject, KindNull, KindClass, KindInterface:
		return true
	case KindTypeParam:
		info, ok := in.TypeParamInfo(id)
		if !ok {
			return false
		}
		if info.Reference {
			return true
		}
		for _, c := range info.Constraints {
			if in.Kind(c) == KindClass {
				return true
			}
		}
	}
	return false
}

// IsSealed reports types that cannot have subtypes.
func (in *Interner) IsSealed(id TypeID) bool {
	switch in.Kind(id) {
	case KindClass:
		info, ok := in.NominalInfo(id)
		return ok && info.Sealed
	case KindInterface, KindObject, KindTypeParam:
		return false
	}
	return true
}

// BaseOf returns the declared base class, or object for root classes.
func (in *Interner) BaseOf(id TypeID) TypeID {
	if in.Kind(id) != KindClass {
		return NoTypeID
	}
	if info, ok := in.NominalInfo(id); ok && info.Base != NoTypeID {
		return info.Base
	}
	return in.builtins.Object
}

// IsSubclassOf reports whether derived (strictly) inherits from base.
func (in *Interner) IsSubclassOf(derived, base TypeID) bool {
	cur := derived
	for range maxHierarchyDepth {
		next := in.BaseOf(cur)
		if next == NoTypeID {
			return false
		}
		if next == base {
			return true
		}
		if next == in.builtins.Object {
			return false
		}
		cur = next
	}
	return false
}

// Implements reports whether t (class, struct, interface or type
// parameter) implements iface directly or transitively.
func (in *Interner) Implements(t, iface TypeID) bool {
	return in.implements(t, iface, 0)
}

func (in *Interner) implements(t, iface TypeID, depth int) bool {
	if depth > maxHierarchyDepth || t == NoTypeID {
		return false
	}
	if t == iface && in.Kind(t) == KindInterface {
		return true
	}
	if tp, ok := in.TypeParamInfo(t); ok {
		for _, c := range tp.Constraints {
			if c == iface || in.implements(c, iface, depth+1) {
				return true
			}
		}
		return false
	}
	info, ok := in.NominalInfo(t)
	if !ok {
		return false
	}
	for _, i := range info.Interfaces {
		if i == iface || in.implements(i, iface, depth+1) {
			return true
		}
	}
	if in.Kind(t) == KindClass && info.Base != NoTypeID {
		return in.implements(info.Base, iface, depth+1)
	}
	return false
}

// IsAssignableTo is reference assignability: identity, null to any
// nullable/reference/pointer, derived to base, implementation to interface,
// reference types to object, constrained type parameters to their
// constraints. It never involves a representation change.
func (in *Interner) IsAssignableTo(src, dst TypeID) bool {
	if src == dst {
		return src != NoTypeID
	}
	srcKind, dstKind := in.Kind(src), in.Kind(dst)
	if srcKind == KindNull {
		return dstKind == KindNullable || dstKind == KindPointer || in.IsReferenceType(dst)
	}
	if !in.IsReferenceType(src) {
		return false
	}
	switch dstKind {
	case KindObject:
		return true
	case KindClass:
		if srcKind == KindTypeParam {
			return in.typeParamSatisfies(src, dst)
		}
		return srcKind == KindClass && in.IsSubclassOf(src, dst)
	case KindInterface:
		return in.Implements(src, dst)
	}
	return false
}

func (in *Interner) typeParamSatisfies(tp, dst TypeID) bool {
	info, ok := in.TypeParamInfo(tp)
	if !ok {
		return false
	}
	for _, c := range info.Constraints {
		if c == dst || in.IsAssignableTo(c, dst) {
			return true
		}
	}
	return false
}

// SizeOf returns the byte size of unmanaged types.
func (in *Interner) SizeOf(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindBool:
		return 1, true
	case KindChar:
		return 2, true
	case KindInt, KindUint, KindFloat:
		return uint32(tt.Width) / 8, true
	case KindDecimal:
		return 16, true
	case KindEnum:
		return in.SizeOf(in.EnumUnderlying(id))
	case KindPointer:
		return 8, true
	case KindStruct:
		if info, ok := in.NominalInfo(id); ok && info.Size > 0 {
			return info.Size, true
		}
	}
	return 0, false
}

// IsPrimitiveSized reports types whose size is a language constant (no
// unsafe context needed for size-of).
func (in *Interner) IsPrimitiveSized(id TypeID) bool {
	switch in.Kind(id) {
	case KindBool, KindChar, KindInt, KindUint, KindFloat, KindDecimal, KindEnum:
		return true
	}
	return false
}
