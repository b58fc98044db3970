package hir

import "fmt"

// BinaryOp is the closed set of binary operator kinds. The checked and
// unsigned variants only appear after resolution narrows an operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAddChecked
	OpSubChecked
	OpMulChecked
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpShrUn
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpLogicalAnd
	OpLogicalOr
	OpImplies
	OpIff
	OpIs
	OpAs
	OpBox
	OpUnbox
	OpCast
	OpRange
	OpMaplet

	binaryOpCount
)

var binarySymbols = [...]string{
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpRem:        "%",
	OpAddChecked: "+",
	OpSubChecked: "-",
	OpMulChecked: "*",
	OpAnd:        "&",
	OpOr:         "|",
	OpXor:        "^",
	OpShl:        "<<",
	OpShr:        ">>",
	OpShrUn:      ">>>",
	OpLt:         "<",
	OpLe:         "<=",
	OpGt:         ">",
	OpGe:         ">=",
	OpEq:         "==",
	OpNe:         "!=",
	OpLogicalAnd: "&&",
	OpLogicalOr:  "||",
	OpImplies:    "==>",
	OpIff:        "<==>",
	OpIs:         "is",
	OpAs:         "as",
	OpBox:        "box",
	OpUnbox:      "unbox",
	OpCast:       "cast",
	OpRange:      "..",
	OpMaplet:     "=>",
}

// Valid reports whether op belongs to the enumeration.
func (op BinaryOp) Valid() bool {
	return op > 0 && op < binaryOpCount
}

// Symbol is the source spelling used in diagnostics.
func (op BinaryOp) Symbol() string {
	if !op.Valid() {
		return fmt.Sprintf("BinaryOp(%d)", uint8(op))
	}
	return binarySymbols[op]
}

func (op BinaryOp) String() string {
	switch op {
	case OpAddChecked:
		return "checked+"
	case OpSubChecked:
		return "checked-"
	case OpMulChecked:
		return "checked*"
	}
	return op.Symbol()
}

// Unchecked maps overflow-checked variants back to their plain operator.
func (op BinaryOp) Unchecked() BinaryOp {
	switch op {
	case OpAddChecked:
		return OpAdd
	case OpSubChecked:
		return OpSub
	case OpMulChecked:
		return OpMul
	}
	return op
}

// Checked returns the overflow-checked variant of +, - and *.
func (op BinaryOp) Checked() BinaryOp {
	switch op {
	case OpAdd:
		return OpAddChecked
	case OpSub:
		return OpSubChecked
	case OpMul:
		return OpMulChecked
	}
	return op
}

// BinaryOpBySymbol resolves a source operator to its kind.
func BinaryOpBySymbol(sym string) (BinaryOp, bool) {
	for op := OpAdd; op < binaryOpCount; op++ {
		switch op {
		case OpAddChecked, OpSubChecked, OpMulChecked:
			continue
		}
		if binarySymbols[op] == sym {
			return op, true
		}
	}
	return 0, false
}

// UnaryOp is the closed set of unary operator kinds.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota + 1
	OpPlus
	OpBitNot
	OpNot
	OpAddressOf
	OpDeref
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
	OpSizeOf
	OpTypeOf
	OpDefault

	unaryOpCount
)

var unarySymbols = [...]string{
	OpNeg:       "-",
	OpPlus:      "+",
	OpBitNot:    "~",
	OpNot:       "!",
	OpAddressOf: "&",
	OpDeref:     "*",
	OpPreInc:    "++",
	OpPreDec:    "--",
	OpPostInc:   "++",
	OpPostDec:   "--",
	OpSizeOf:    "sizeof",
	OpTypeOf:    "typeof",
	OpDefault:   "default",
}

func (op UnaryOp) Valid() bool {
	return op > 0 && op < unaryOpCount
}

func (op UnaryOp) Symbol() string {
	if !op.Valid() {
		return fmt.Sprintf("UnaryOp(%d)", uint8(op))
	}
	return unarySymbols[op]
}

func (op UnaryOp) String() string {
	switch op {
	case OpPostInc:
		return "post++"
	case OpPostDec:
		return "post--"
	}
	return op.Symbol()
}

// IsIncDec reports the four increment/decrement forms.
func (op UnaryOp) IsIncDec() bool {
	switch op {
	case OpPreInc, OpPreDec, OpPostInc, OpPostDec:
		return true
	}
	return false
}
