package types

// Unification is the outcome of UnifiedPrimitiveType.
type Unification uint8

const (
	UnifyOK Unification = iota
	// UnifyAmbiguous: a signed type meets uint64 and no integer holds both.
	UnifyAmbiguous
	// UnifyNone: an operand is outside the lattice, or float meets decimal.
	UnifyNone
)

func (u Unification) String() string {
	switch u {
	case UnifyOK:
		return "ok"
	case UnifyAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// WidensTo reports an implicit numeric widening from src to dst over the
// primitive numeric kinds. Identity is not a widening.
//
//	int8 < int16 < int32 < int64      signed grows within signed
//	uintN -> uintM (M>N), intM (M>N)  unsigned grows into either
//	any integer -> float32, float64, decimal
//	float32 -> float64
func (in *Interner) WidensTo(src, dst TypeID) bool {
	if src == dst {
		return false
	}
	s, ok1 := in.Lookup(src)
	d, ok2 := in.Lookup(dst)
	if !ok1 || !ok2 {
		return false
	}
	switch s.Kind {
	case KindInt:
		switch d.Kind {
		case KindInt:
			return d.Width > s.Width
		case KindFloat, KindDecimal:
			return true
		}
	case KindUint:
		switch d.Kind {
		case KindInt, KindUint:
			return d.Width > s.Width
		case KindFloat, KindDecimal:
			return true
		}
	case KindFloat:
		return d.Kind == KindFloat && d.Width > s.Width
	}
	return false
}

// UnifiedPrimitiveType returns the least type both primitive numeric
// operands widen into. The function is symmetric. When one operand widens
// into the other the wider one is returned. Mixed signedness without such a
// relation picks the next signed width (int32 + uint32 -> int64); a signed
// type against uint64 is ambiguous and callers must report it.
func (in *Interner) UnifiedPrimitiveType(a, b TypeID) (TypeID, Unification) {
	if !in.IsPrimitiveNumeric(a) || !in.IsPrimitiveNumeric(b) {
		return NoTypeID, UnifyNone
	}
	if a == b {
		return a, UnifyOK
	}
	if in.WidensTo(a, b) {
		return b, UnifyOK
	}
	if in.WidensTo(b, a) {
		return a, UnifyOK
	}
	ta, tb := in.MustLookup(a), in.MustLookup(b)
	if ta.Kind == KindUint {
		ta, tb = tb, ta
	}
	if ta.Kind == KindInt && tb.Kind == KindUint {
		if tb.Width >= Width64 {
			return NoTypeID, UnifyAmbiguous
		}
		return in.Intern(MakeInt(tb.Width * 2)), UnifyOK
	}
	// float against decimal
	return NoTypeID, UnifyNone
}
