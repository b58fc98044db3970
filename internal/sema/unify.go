package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// operands is the outcome of unifying both sides of a binary operator.
type operands struct {
	left, right *hir.Expr
	// common is the unified type with nullable stripped.
	common types.TypeID
	// result is common, or common? when either operand was nullable.
	result   types.TypeID
	nullable bool
}

// unifyOperands applies the shared tie-break:
//
//  1. identical types (after stripping nullable) unify to that type;
//  2. exactly one literal whose value fits the other operand's type
//     unifies to that type, so b + 5 with b: uint8 stays uint8;
//  3. otherwise char promotes to uint16 and the primitive lattice decides.
//
// Both operands come back coerced to the result type. A signed type
// against uint64 is ambiguous. Equality and relational operators get an
// advisory when a literal cannot be represented in the other operand's type.
func (c *Checker) unifyOperands(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (operands, error) {
	in := c.types
	lb, ll := in.Unwrap(l.Type)
	rb, rl := in.Unwrap(r.Type)
	nullable := ll.Has(types.LayerNullable) || rl.Has(types.LayerNullable)

	common, err := c.commonType(ctx, op, l, r, lb, rb, span)
	if err != nil {
		return operands{}, err
	}
	result := common
	if nullable {
		result = in.Nullable(common)
	}
	left, okL := c.LiteralCoercion(ctx, l, result)
	right, okR := c.LiteralCoercion(ctx, r, result)
	if !okL || !okR {
		_, err := c.badBinary(op, l, r, span)
		return operands{}, err
	}
	return operands{left: left, right: right, common: common, result: result, nullable: nullable}, nil
}

func (c *Checker) commonType(ctx Context, op hir.BinaryOp, l, r *hir.Expr, lb, rb types.TypeID, span source.Span) (types.TypeID, error) {
	in := c.types
	if lb == rb {
		return lb, nil
	}
	useless := false
	lLit, rLit := isLiteral(l), isLiteral(r)
	if lLit != rLit {
		lit, otherType := l, rb
		if rLit {
			lit, otherType = r, lb
		}
		data, _ := lit.Literal()
		if c.literalFits(data, otherType) {
			return otherType, nil
		}
		useless = isComparison(op) && data.IsIntegral() && isNumericLike(in.Kind(otherType))
	}

	pl, pr := lb, rb
	if in.Kind(pl) == types.KindChar {
		pl = in.Promoted(pl)
	}
	if in.Kind(pr) == types.KindChar {
		pr = in.Promoted(pr)
	}
	u, how := in.UnifiedPrimitiveType(pl, pr)
	switch how {
	case types.UnifyOK:
		// только когда сравнение всё-таки типизируется, иначе одна ошибка
		if useless {
			c.warn(diag.SemaUselessLiteralComparison, span,
				"comparison '%s' between '%s' and '%s' is constant: the literal is out of range",
				op.Symbol(), c.label(l.Type), c.label(r.Type))
		}
		return u, nil
	case types.UnifyAmbiguous:
		_, err := c.ambiguousBinary(op, l, r, span)
		return types.NoTypeID, err
	default:
		_, err := c.badBinary(op, l, r, span)
		return types.NoTypeID, err
	}
}

func isComparison(op hir.BinaryOp) bool {
	switch op {
	case hir.OpEq, hir.OpNe, hir.OpLt, hir.OpLe, hir.OpGt, hir.OpGe:
		return true
	}
	return false
}

// enclosingToUnderlying converts operands typed with the enum whose
// declaration is being checked to its underlying type, so member
// initializers combine like integers.
func (c *Checker) enclosingToUnderlying(ctx Context, e *hir.Expr) *hir.Expr {
	if ctx.EnclosingType == types.NoTypeID || c.types.Kind(ctx.EnclosingType) != types.KindEnum {
		return e
	}
	base, layers := c.types.Unwrap(e.Type)
	if base != ctx.EnclosingType || layers.Has(types.LayerNullable) {
		return e
	}
	e = c.stripped(e)
	return hir.NewCoerce(e, c.types.EnumUnderlying(base), hir.CoerceData{Conv: hir.ConvEnumToUnderlying, Transparent: true})
}
