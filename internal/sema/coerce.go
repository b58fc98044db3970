package sema

import (
	"opcheck/internal/hir"
	"opcheck/internal/types"
)

// ImplicitCoercion converts e to target using only conversions that
// cannot lose information or fail at run time. It returns a new node (or
// e itself when no conversion is needed) and false when no implicit
// conversion exists. Literals are not retyped here; see LiteralCoercion.
func (c *Checker) ImplicitCoercion(ctx Context, e *hir.Expr, target types.TypeID) (*hir.Expr, bool) {
	if e == nil || target == types.NoTypeID {
		return nil, false
	}
	if e.Type == target {
		return e, true
	}
	in := c.types
	if src, ok := c.stripSource(e); ok {
		return c.ImplicitCoercion(ctx, src, target)
	}
	src := e.Type
	srcKind, dstKind := in.Kind(src), in.Kind(target)

	switch dstKind {
	case types.KindOptional:
		inner, ok := c.ImplicitCoercion(ctx, e, in.Elem(target))
		if !ok {
			return nil, false
		}
		return hir.NewCoerce(inner, target, hir.CoerceData{Conv: hir.ConvIdentity, Transparent: true}), true
	case types.KindReference:
		// references are formed by binding, never by conversion
		return nil, false
	}

	if srcKind == types.KindNull {
		if dstKind == types.KindNullable || dstKind == types.KindPointer || in.IsReferenceType(target) {
			if e.IsNullLiteral() {
				return hir.Retyped(e, target), true
			}
			return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvIdentity, Transparent: true}), true
		}
		return nil, false
	}

	if in.WidensTo(src, target) {
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvWiden}), true
	}
	if srcKind == types.KindChar && (target == c.builtins.Uint16 || in.WidensTo(c.builtins.Uint16, target)) {
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvWiden}), true
	}
	if in.IsAssignableTo(src, target) {
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvUpcast, Transparent: true}), true
	}
	if c.boxable(src, target) {
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvBox}), true
	}

	if dstKind == types.KindNullable {
		elem := in.Elem(target)
		if srcKind == types.KindNullable {
			lifted, ok := c.liftableImplicit(in.Elem(src), elem)
			if !ok {
				return nil, false
			}
			return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvLift, Lifted: lifted}), true
		}
		inner, ok := c.ImplicitCoercion(ctx, e, elem)
		if !ok {
			return nil, false
		}
		return hir.NewCoerce(inner, target, hir.CoerceData{Conv: hir.ConvWrapNullable}), true
	}

	if srcKind == types.KindPointer && dstKind == types.KindPointer && in.Elem(target) == c.builtins.Void {
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvPointer, Transparent: true}), true
	}
	return nil, false
}

// LiteralCoercion is ImplicitCoercion that also retypes a literal whose
// value fits target (5 becomes uint8, 0 becomes any enum).
func (c *Checker) LiteralCoercion(ctx Context, e *hir.Expr, target types.TypeID) (*hir.Expr, bool) {
	if e == nil {
		return nil, false
	}
	lit, ok := e.Literal()
	if !ok || e.Type == target || lit.Kind == hir.LitNull {
		return c.ImplicitCoercion(ctx, e, target)
	}
	in := c.types
	switch in.Kind(target) {
	case types.KindNullable:
		elem := in.Elem(target)
		if c.literalFits(lit, elem) {
			return hir.NewCoerce(hir.Retyped(e, elem), target, hir.CoerceData{Conv: hir.ConvWrapNullable}), true
		}
	case types.KindOptional:
		inner, ok := c.LiteralCoercion(ctx, e, in.Elem(target))
		if !ok {
			return nil, false
		}
		return hir.NewCoerce(inner, target, hir.CoerceData{Conv: hir.ConvIdentity, Transparent: true}), true
	default:
		if c.literalFits(lit, target) && c.retypable(lit, target) {
			return hir.Retyped(e, target), true
		}
	}
	return c.ImplicitCoercion(ctx, e, target)
}

// retypable limits literal retyping to targets that hold the literal's
// own kind of value; reference targets box instead.
func (c *Checker) retypable(lit hir.LiteralData, target types.TypeID) bool {
	switch c.types.Kind(target) {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindDecimal,
		types.KindEnum, types.KindBool, types.KindChar, types.KindString:
		return true
	}
	return false
}

// ExplicitCoercion converts e to target allowing narrowing and other
// conversions that may fail or lose information. It is the engine behind
// the cast operator.
func (c *Checker) ExplicitCoercion(ctx Context, e *hir.Expr, target types.TypeID) (*hir.Expr, bool) {
	if e == nil || target == types.NoTypeID {
		return nil, false
	}
	if lit, ok := e.Literal(); ok && lit.Kind != hir.LitNull && c.literalFits(lit, target) && c.retypable(lit, target) {
		return hir.Retyped(e, target), true
	}
	if out, ok := c.ImplicitCoercion(ctx, e, target); ok {
		return out, true
	}
	if src, ok := c.stripSource(e); ok {
		return c.ExplicitCoercion(ctx, src, target)
	}
	in := c.types
	src := e.Type
	srcKind, dstKind := in.Kind(src), in.Kind(target)

	switch {
	case isNumericLike(srcKind) && isNumericLike(dstKind):
		return hir.NewCoerce(e, target, hir.CoerceData{
			Conv:    hir.ConvNarrow,
			Checked: ctx.Checked && (dstKind == types.KindInt || dstKind == types.KindUint || dstKind == types.KindChar),
		}), true

	case srcKind == types.KindEnum && (isNumericLike(dstKind) || dstKind == types.KindEnum):
		under := hir.NewCoerce(e, in.EnumUnderlying(src), hir.CoerceData{Conv: hir.ConvEnumToUnderlying, Transparent: true})
		return c.ExplicitCoercion(ctx, under, target)

	case isNumericLike(srcKind) && dstKind == types.KindEnum:
		under, ok := c.ExplicitCoercion(ctx, e, in.EnumUnderlying(target))
		if !ok {
			return nil, false
		}
		return hir.NewCoerce(under, target, hir.CoerceData{Conv: hir.ConvUnderlyingToEnum, Transparent: true}), true

	case in.IsReferenceType(src) && in.IsReferenceType(target):
		if c.downcastable(src, target) {
			return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvDowncast}), true
		}
		return nil, false

	case c.unboxable(src, target):
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvUnbox}), true

	case srcKind == types.KindNullable && dstKind == types.KindNullable:
		if !isNumericLike(in.Kind(in.Elem(src))) || !isNumericLike(in.Kind(in.Elem(target))) {
			return nil, false
		}
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvLift, Lifted: hir.ConvNarrow, Checked: ctx.Checked}), true

	case srcKind == types.KindNullable:
		unwrapped := hir.NewCoerce(e, in.Elem(src), hir.CoerceData{Conv: hir.ConvUnwrapNullable})
		return c.ExplicitCoercion(ctx, unwrapped, target)

	case dstKind == types.KindNullable:
		inner, ok := c.ExplicitCoercion(ctx, e, in.Elem(target))
		if !ok {
			return nil, false
		}
		return hir.NewCoerce(inner, target, hir.CoerceData{Conv: hir.ConvWrapNullable}), true

	case ctx.Unsafe && pointerConvertible(srcKind, dstKind):
		return hir.NewCoerce(e, target, hir.CoerceData{Conv: hir.ConvPointer}), true
	}
	return nil, false
}

// stripSource peels reference (auto-deref) and optional layers off e.
func (c *Checker) stripSource(e *hir.Expr) (*hir.Expr, bool) {
	in := c.types
	switch in.Kind(e.Type) {
	case types.KindReference:
		return hir.NewCoerce(e, in.Elem(e.Type), hir.CoerceData{Conv: hir.ConvDeref}), true
	case types.KindOptional:
		return hir.NewCoerce(e, in.Elem(e.Type), hir.CoerceData{Conv: hir.ConvIdentity, Transparent: true}), true
	}
	return nil, false
}

// stripped removes reference and optional layers from an operand,
// keeping nullable.
func (c *Checker) stripped(e *hir.Expr) *hir.Expr {
	for range 8 {
		next, ok := c.stripSource(e)
		if !ok {
			return e
		}
		e = next
	}
	return e
}

func (c *Checker) boxable(src, target types.TypeID) bool {
	in := c.types
	if !in.IsValueType(src) && in.Kind(src) != types.KindTypeParam {
		return false
	}
	switch in.Kind(target) {
	case types.KindObject:
		return in.Kind(src) != types.KindPointer
	case types.KindInterface:
		return in.Implements(src, target)
	}
	return false
}

func (c *Checker) unboxable(src, target types.TypeID) bool {
	in := c.types
	if !in.IsValueType(target) || in.Kind(target) == types.KindPointer {
		return false
	}
	switch in.Kind(src) {
	case types.KindObject:
		return true
	case types.KindInterface:
		elem := target
		if in.Kind(target) == types.KindNullable {
			elem = in.Elem(target)
		}
		return in.Implements(elem, src) || in.Kind(elem) == types.KindTypeParam
	}
	return false
}

// downcastable reports reference conversions that need a run-time check.
func (c *Checker) downcastable(src, target types.TypeID) bool {
	in := c.types
	if in.IsAssignableTo(target, src) {
		return true
	}
	srcKind, dstKind := in.Kind(src), in.Kind(target)
	switch {
	case srcKind == types.KindTypeParam || dstKind == types.KindTypeParam:
		return true
	case srcKind == types.KindInterface && dstKind == types.KindInterface:
		return true
	case srcKind == types.KindInterface && dstKind == types.KindClass:
		return !in.IsSealed(target) || in.Implements(target, src)
	case srcKind == types.KindClass && dstKind == types.KindInterface:
		return !in.IsSealed(src)
	}
	return false
}

// liftableImplicit decides the conversion applied inside a nullable when
// T? converts to U?.
func (c *Checker) liftableImplicit(src, dst types.TypeID) (hir.ConvKind, bool) {
	in := c.types
	switch {
	case src == dst:
		return hir.ConvIdentity, true
	case in.WidensTo(src, dst):
		return hir.ConvWiden, true
	case in.Kind(src) == types.KindChar && (dst == c.builtins.Uint16 || in.WidensTo(c.builtins.Uint16, dst)):
		return hir.ConvWiden, true
	}
	return 0, false
}

func isNumericLike(k types.Kind) bool {
	switch k {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindDecimal, types.KindChar:
		return true
	}
	return false
}

func pointerConvertible(src, dst types.Kind) bool {
	switch {
	case src == types.KindPointer && dst == types.KindPointer:
		return true
	case src == types.KindPointer && (dst == types.KindInt || dst == types.KindUint):
		return true
	case (src == types.KindInt || src == types.KindUint) && dst == types.KindPointer:
		return true
	}
	return false
}
