package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// IsAddressable reports whether e denotes a storage location: a local or
// parameter, a writable field of a location or of a reference, a
// dereferenced pointer, or a reference-typed value.
func (c *Checker) IsAddressable(e *hir.Expr) bool {
	if e == nil {
		return false
	}
	if c.types.Kind(e.Type) == types.KindReference {
		return true
	}
	switch d := e.Data.(type) {
	case hir.VarRefData:
		return d.Kind == hir.VarLocal || d.Kind == hir.VarParam
	case hir.FieldAccessData:
		if d.Readonly {
			return false
		}
		obj := c.types.StripModifiers(d.Object.Type)
		return c.types.IsReferenceType(obj) || c.IsAddressable(d.Object)
	case hir.UnaryOpData:
		return d.Op == hir.OpDeref && d.Method == nil
	case hir.CoerceData:
		return d.Conv == hir.ConvDeref || (d.Transparent && d.Conv == hir.ConvIdentity && c.IsAddressable(d.Value))
	}
	return false
}

// checkAddressable is shared by assignment, increment/decrement and
// address-of.
func (c *Checker) checkAddressable(what string, e *hir.Expr, span source.Span) error {
	if c.IsAddressable(e) {
		return nil
	}
	_, err := c.fail(diag.SemaNotAddressable, span,
		"operand of '%s' of type '%s' is not a variable, writable field or dereferenced pointer",
		what, c.label(e.Type))
	return err
}

// Assign checks target is a location and converts value to its type.
func (c *Checker) Assign(ctx Context, target, value *hir.Expr, span source.Span) (*hir.Expr, error) {
	if target == nil || value == nil {
		return nil, ErrOperandUnresolved
	}
	if err := c.checkAddressable("=", target, span); err != nil {
		return nil, err
	}
	dst := c.types.StripModifiers(target.Type)
	converted, ok := c.LiteralCoercion(ctx, value, dst)
	if !ok {
		return c.fail(diag.SemaNoConversion, span,
			"operator '=' cannot convert '%s' to '%s'",
			c.label(value.Type), c.label(target.Type))
	}
	res := hir.NewAssign(target, converted, span)
	c.traceResolved("sema.assign", "=", res, nil)
	return res, nil
}
