package sema

import "opcheck/internal/types"

// Context carries the ambient flags of the expression being resolved.
// It is passed by value; nested scopes derive a copy with With*.
type Context struct {
	// Checked selects overflow-checked arithmetic for integer results.
	Checked bool
	// Unsafe permits pointer arithmetic, address-of and dereference.
	Unsafe bool
	// EnclosingType is the type whose declaration encloses the expression.
	// Inside an enum declaration its members combine in the underlying type.
	EnclosingType types.TypeID
}

func (c Context) WithChecked(v bool) Context {
	c.Checked = v
	return c
}

func (c Context) WithUnsafe(v bool) Context {
	c.Unsafe = v
	return c
}

func (c Context) WithEnclosing(t types.TypeID) Context {
	c.EnclosingType = t
	return c
}
