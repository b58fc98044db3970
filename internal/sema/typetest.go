package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// resolveTypeTest handles "x is T" and "x as T". Tests decided by the
// static types fold to a constant with an advisory.
func (c *Checker) resolveTypeTest(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if r.Kind != hir.ExprTypeRef {
		return c.badBinary(op, l, r, span)
	}
	target := in.StripModifiers(r.Type)
	value := c.stripped(l)
	src := value.Type

	if in.Kind(src) == types.KindPointer || in.Kind(target) == types.KindPointer {
		return c.fail(diag.SemaPointerInTypeTest, span,
			"operator '%s' cannot test pointer types ('%s' and '%s')",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	}
	if op == hir.OpAs && in.IsValueType(target) && in.Kind(target) != types.KindNullable {
		return c.fail(diag.SemaReferenceRequiredForTypeTest, span,
			"operator '%s' needs a reference or nullable target, '%s' as '%s' has none",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	}

	resultType := c.builtins.Bool
	if op == hir.OpAs {
		resultType = target
	}

	if in.Kind(src) == types.KindUnion && src != target {
		return c.unionTypeTest(op, l, r, value, target, resultType, span)
	}
	if op == hir.OpIs && in.Kind(src) == types.KindNullable && in.Elem(src) == target {
		return hir.NewHasValue(value, c.builtins.Bool, span), nil
	}

	switch {
	case c.alwaysOfType(src, target):
		c.warn(diag.SemaAlwaysOfType, span,
			"operator '%s': an expression of type '%s' is always of type '%s'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		if op == hir.OpIs {
			return hir.BoolLiteral(true, c.builtins.Bool, span), nil
		}
		if out, ok := c.ImplicitCoercion(ctx, value, target); ok {
			return out, nil
		}
		return c.badBinary(op, l, r, span)
	case !c.mayBeOfType(src, target):
		c.warn(diag.SemaNeverOfType, span,
			"operator '%s': an expression of type '%s' is never of type '%s'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		if op == hir.OpIs {
			return hir.BoolLiteral(false, c.builtins.Bool, span), nil
		}
		return hir.NullLiteral(target, span), nil
	}
	return hir.NewBinary(op, value, hir.NewTypeRef(target, r.Span), resultType, span), nil
}

// alwaysOfType: every non-null value of src is a target.
func (c *Checker) alwaysOfType(src, target types.TypeID) bool {
	in := c.types
	if src == target {
		return in.Kind(src) != types.KindTypeParam
	}
	if in.Kind(src) == types.KindNullable {
		return false
	}
	if in.Kind(src) == types.KindNull || in.Kind(src) == types.KindTypeParam {
		return false
	}
	return in.IsAssignableTo(src, target) || c.boxable(src, target)
}

// mayBeOfType reports whether some run-time value of src could be a target.
func (c *Checker) mayBeOfType(src, target types.TypeID) bool {
	in := c.types
	srcKind, dstKind := in.Kind(src), in.Kind(target)
	switch {
	case srcKind == types.KindNull:
		return false
	case srcKind == types.KindTypeParam || dstKind == types.KindTypeParam:
		return true
	case srcKind == types.KindNullable:
		elem := in.Elem(src)
		if dstKind == types.KindNullable {
			return elem == in.Elem(target)
		}
		return elem == target || c.boxable(elem, target)
	case dstKind == types.KindNullable:
		return c.mayBeOfType(src, in.Elem(target))
	case srcKind == types.KindObject:
		return true
	case srcKind == types.KindInterface:
		if in.IsValueType(target) {
			return in.Implements(target, src)
		}
		return dstKind == types.KindInterface || dstKind == types.KindObject ||
			!in.IsSealed(target) || in.Implements(target, src)
	case in.IsReferenceType(src) && in.IsReferenceType(target):
		return c.downcastable(src, target)
	}
	return false
}

// unionTypeTest checks the active tag of a union value.
//
//	u is T  -> TagTest(u, tag)
//	u as T  -> let $t = u in if TagTest($t, tag) then TagPayload($t, tag) else null
func (c *Checker) unionTypeTest(op hir.BinaryOp, l, r, value *hir.Expr, target, resultType types.TypeID, span source.Span) (*hir.Expr, error) {
	in := c.types
	member := target
	if op == hir.OpAs && in.Kind(target) == types.KindNullable {
		member = in.Elem(target)
	}
	m, ok := in.UnionMemberFor(value.Type, member)
	if !ok {
		c.warn(diag.SemaNeverOfType, span,
			"operator '%s': an expression of type '%s' is never of type '%s'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		if op == hir.OpIs {
			return hir.BoolLiteral(false, c.builtins.Bool, span), nil
		}
		return hir.NullLiteral(resultType, span), nil
	}
	if op == hir.OpIs {
		return hir.NewTagTest(value, m.Tag, c.builtins.Bool, span), nil
	}

	temp := c.newTemp()
	ref := func() *hir.Expr { return hir.NewTempRef(temp, value.Type, value.Span) }
	payload := hir.NewTagPayload(ref(), m.Tag, m.Type, span)
	if resultType != m.Type {
		payload = hir.NewCoerce(payload, resultType, hir.CoerceData{Conv: hir.ConvWrapNullable})
	}
	cond := hir.NewTagTest(ref(), m.Tag, c.builtins.Bool, span)
	body := hir.NewIf(cond, payload, hir.NullLiteral(resultType, span), resultType, span)
	return hir.NewLet(temp, value, body, span), nil
}
