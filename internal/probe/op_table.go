package probe

import "opcheck/internal/hir"

// Приоритеты бинарных операторов, больше = связывает сильнее.
const (
	precAssign         = 1  // =
	precMaplet         = 2  // =>
	precRange          = 3  // ..
	precIff            = 4  // <==>
	precImplies        = 5  // ==>
	precLogicalOr      = 6  // ||
	precLogicalAnd     = 7  // &&
	precBitwiseOr      = 8  // |
	precBitwiseXor     = 9  // ^
	precBitwiseAnd     = 10 // &
	precEquality       = 11 // == !=
	precComparison     = 12 // < <= > >= is as
	precShift          = 13 // << >> >>>
	precAdditive       = 14 // + -
	precMultiplicative = 15 // * / %
)

// infixPrec returns the precedence of tok as a binary operator and whether
// it associates to the right; -1 means tok is not infix.
func infixPrec(tok Token) (int, bool) {
	switch tok.Kind {
	case TokAssign:
		return precAssign, true
	case TokArrow:
		return precMaplet, false
	case TokDotDot:
		return precRange, false
	case TokIff:
		return precIff, false
	case TokImplies:
		return precImplies, true
	case TokOrOr:
		return precLogicalOr, false
	case TokAndAnd:
		return precLogicalAnd, false
	case TokPipe:
		return precBitwiseOr, false
	case TokCaret:
		return precBitwiseXor, false
	case TokAmp:
		return precBitwiseAnd, false
	case TokEqEq, TokBangEq:
		return precEquality, false
	case TokLt, TokLe, TokGt, TokGe:
		return precComparison, false
	case TokIdent:
		if tok.Text == "is" || tok.Text == "as" {
			return precComparison, false
		}
	case TokShl, TokShr, TokShrUn:
		return precShift, false
	case TokPlus, TokMinus:
		return precAdditive, false
	case TokStar, TokSlash, TokPercent:
		return precMultiplicative, false
	}
	return -1, false
}

var infixOps = map[TokenKind]hir.BinaryOp{
	TokArrow:   hir.OpMaplet,
	TokDotDot:  hir.OpRange,
	TokIff:     hir.OpIff,
	TokImplies: hir.OpImplies,
	TokOrOr:    hir.OpLogicalOr,
	TokAndAnd:  hir.OpLogicalAnd,
	TokPipe:    hir.OpOr,
	TokCaret:   hir.OpXor,
	TokAmp:     hir.OpAnd,
	TokEqEq:    hir.OpEq,
	TokBangEq:  hir.OpNe,
	TokLt:      hir.OpLt,
	TokLe:      hir.OpLe,
	TokGt:      hir.OpGt,
	TokGe:      hir.OpGe,
	TokShl:     hir.OpShl,
	TokShr:     hir.OpShr,
	TokShrUn:   hir.OpShrUn,
	TokPlus:    hir.OpAdd,
	TokMinus:   hir.OpSub,
	TokStar:    hir.OpMul,
	TokSlash:   hir.OpDiv,
	TokPercent: hir.OpRem,
}

// prefixOp maps a token to the unary operator it starts.
func prefixOp(kind TokenKind) (hir.UnaryOp, bool) {
	switch kind {
	case TokMinus:
		return hir.OpNeg, true
	case TokPlus:
		return hir.OpPlus, true
	case TokBang:
		return hir.OpNot, true
	case TokTilde:
		return hir.OpBitNot, true
	case TokAmp:
		return hir.OpAddressOf, true
	case TokStar:
		return hir.OpDeref, true
	case TokPlusPlus:
		return hir.OpPreInc, true
	case TokMinusMinus:
		return hir.OpPreDec, true
	}
	return 0, false
}

// integer and float literal suffixes
var literalSuffixes = map[string]string{
	"i8":  "int8",
	"i16": "int16",
	"i32": "int32",
	"i64": "int64",
	"u8":  "uint8",
	"u16": "uint16",
	"u32": "uint32",
	"u64": "uint64",
	"u":   "uint32",
	"l":   "int64",
	"ul":  "uint64",
	"f32": "float32",
	"f64": "float64",
	"f":   "float32",
	"d":   "float64",
	"m":   "decimal",
}
