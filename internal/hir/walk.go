package hir

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case FieldAccessData:
		return []*Expr{d.Object}
	case UnaryOpData:
		return []*Expr{d.Operand}
	case BinaryOpData:
		return []*Expr{d.Left, d.Right}
	case CoerceData:
		return []*Expr{d.Value}
	case CallData:
		return d.Args
	case HasValueData:
		return []*Expr{d.Value}
	case ValueOrDefaultData:
		return []*Expr{d.Value}
	case TagTestData:
		return []*Expr{d.Value}
	case TagPayloadData:
		return []*Expr{d.Value}
	case LetData:
		return []*Expr{d.Init, d.Body}
	case IfData:
		return []*Expr{d.Cond, d.Then, d.Else}
	case AssignData:
		return []*Expr{d.Target, d.Value}
	}
	return nil
}

// Walk visits e depth-first, pre-order. Returning false from fn skips the
// node's children.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, fn)
	}
}

// Aliased reports whether any node appears in more than one position.
func Aliased(e *Expr) bool {
	seen := make(map[*Expr]struct{})
	dup := false
	Walk(e, func(n *Expr) bool {
		if _, ok := seen[n]; ok {
			dup = true
			return false
		}
		seen[n] = struct{}{}
		return true
	})
	return dup
}
