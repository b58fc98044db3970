package sema

import (
	"math"

	"fortio.org/safecast"

	"opcheck/internal/hir"
	"opcheck/internal/types"
)

// literalFits reports whether the literal's value is representable in
// target without loss. It drives the literal-aware tie-break and the
// retyping of literals during coercion.
func (c *Checker) literalFits(lit hir.LiteralData, target types.TypeID) bool {
	in := c.types
	switch in.Kind(target) {
	case types.KindInt, types.KindUint:
		if !lit.IsIntegral() {
			return false
		}
		return integerFits(lit, in.Kind(target), in.Width(target))
	case types.KindFloat:
		switch lit.Kind {
		case hir.LitInt, hir.LitUint:
			return true
		case hir.LitFloat:
			if in.Width(target) == types.Width64 {
				return true
			}
			if math.IsNaN(lit.Float) || math.IsInf(lit.Float, 0) {
				return true
			}
			return float64(float32(lit.Float)) == lit.Float
		}
	case types.KindDecimal:
		return lit.IsIntegral() || lit.Kind == hir.LitDecimal
	case types.KindEnum:
		// the constant 0 converts to every enum
		return lit.IsIntegral() && lit.IsZero()
	case types.KindBool:
		return lit.Kind == hir.LitBool
	case types.KindChar:
		return lit.Kind == hir.LitChar
	case types.KindString:
		return lit.Kind == hir.LitString || lit.Kind == hir.LitNull
	case types.KindNullable:
		if lit.Kind == hir.LitNull {
			return true
		}
		return c.literalFits(lit, in.Elem(target))
	case types.KindPointer, types.KindObject, types.KindClass, types.KindInterface:
		return lit.Kind == hir.LitNull
	}
	return false
}

func integerFits(lit hir.LiteralData, kind types.Kind, width types.Width) bool {
	if lit.Kind == hir.LitUint {
		return uintFits(lit.Uint, kind, width)
	}
	v := lit.Int
	var err error
	switch {
	case kind == types.KindInt && width == types.Width8:
		_, err = safecast.Conv[int8](v)
	case kind == types.KindInt && width == types.Width16:
		_, err = safecast.Conv[int16](v)
	case kind == types.KindInt && width == types.Width32:
		_, err = safecast.Conv[int32](v)
	case kind == types.KindInt:
		return true
	case width == types.Width8:
		_, err = safecast.Conv[uint8](v)
	case width == types.Width16:
		_, err = safecast.Conv[uint16](v)
	case width == types.Width32:
		_, err = safecast.Conv[uint32](v)
	default:
		_, err = safecast.Conv[uint64](v)
	}
	return err == nil
}

func uintFits(v uint64, kind types.Kind, width types.Width) bool {
	var err error
	switch {
	case kind == types.KindInt && width == types.Width8:
		_, err = safecast.Conv[int8](v)
	case kind == types.KindInt && width == types.Width16:
		_, err = safecast.Conv[int16](v)
	case kind == types.KindInt && width == types.Width32:
		_, err = safecast.Conv[int32](v)
	case kind == types.KindInt:
		_, err = safecast.Conv[int64](v)
	case width == types.Width8:
		_, err = safecast.Conv[uint8](v)
	case width == types.Width16:
		_, err = safecast.Conv[uint16](v)
	case width == types.Width32:
		_, err = safecast.Conv[uint32](v)
	}
	return err == nil
}

// isLiteral reports a non-null literal operand. Null literals follow
// their own rules.
func isLiteral(e *hir.Expr) bool {
	lit, ok := e.Literal()
	return ok && lit.Kind != hir.LitNull
}

// NaturalIntType types an unsuffixed integer literal: the first of int32,
// uint32, int64, uint64 that holds it.
func NaturalIntType(b types.Builtins, lit hir.LiteralData) types.TypeID {
	candidates := [...]struct {
		id    types.TypeID
		kind  types.Kind
		width types.Width
	}{
		{b.Int32, types.KindInt, types.Width32},
		{b.Uint32, types.KindUint, types.Width32},
		{b.Int64, types.KindInt, types.Width64},
	}
	for _, cand := range candidates {
		if integerFits(lit, cand.kind, cand.width) {
			return cand.id
		}
	}
	return b.Uint64
}
