package probe

import (
	"opcheck/internal/hir"
	"opcheck/internal/source"
)

// NodeKind classifies untyped probe expression nodes.
type NodeKind uint8

const (
	NodeIdent NodeKind = iota
	NodeLiteral
	NodeUnary
	NodeBinary
	NodeTypeOp
	NodeCast
	NodeBox
	NodeUnbox
	NodeScope
	NodeMember
	NodeAssign
)

// ScopeKind is the ambient flag a scope node switches.
type ScopeKind uint8

const (
	ScopeChecked ScopeKind = iota + 1
	ScopeUnchecked
	ScopeUnsafe
)

// Node is an untyped expression as written in a case.
//
//	Ident   Name
//	Literal Lit, Suffix
//	Unary   Unary, X            (also postfix ++/--)
//	Binary  Binary, X, Y        (is/as carry Type instead of Y)
//	TypeOp  Unary, Type         (sizeof/typeof/default)
//	Cast    Type, X
//	Box     Type (may be nil), X
//	Unbox   Type, X
//	Scope   Scope, X
//	Member  X, Name
//	Assign  X, Y
type Node struct {
	Kind   NodeKind
	Span   source.Span
	Name   string
	Lit    hir.LiteralData
	Suffix string
	Unary  hir.UnaryOp
	Binary hir.BinaryOp
	Scope  ScopeKind
	Type   *TypeExpr
	X, Y   *Node
}

// TypeKind classifies type expressions.
type TypeKind uint8

const (
	TypeName TypeKind = iota
	TypePointer
	TypeNullable
	TypeRef
	TypeOpt
)

// TypeExpr is a type as written: a name with prefix (ref, opt) and
// suffix (*, ?) modifiers.
type TypeExpr struct {
	Kind TypeKind
	Span source.Span
	Name string
	Elem *TypeExpr
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case TypePointer:
		return t.Elem.String() + "*"
	case TypeNullable:
		return t.Elem.String() + "?"
	case TypeRef:
		return "ref " + t.Elem.String()
	case TypeOpt:
		return "opt " + t.Elem.String()
	}
	return t.Name
}
