package probe

import "opcheck/internal/source"

// TokenKind classifies probe expression tokens.
type TokenKind uint8

const (
	TokInvalid TokenKind = iota
	TokEOF
	TokIdent
	TokInt
	TokFloat
	TokChar
	TokString

	TokLParen
	TokRParen
	TokComma
	TokDot
	TokColon

	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokQuestion
	TokShl
	TokShr
	TokShrUn
	TokLt
	TokLe
	TokGt
	TokGe
	TokEqEq
	TokBangEq
	TokAndAnd
	TokOrOr
	TokImplies
	TokIff
	TokArrow
	TokDotDot
	TokAssign
	TokPlusPlus
	TokMinusMinus
)

var tokenNames = [...]string{
	TokInvalid:    "invalid",
	TokEOF:        "end of expression",
	TokIdent:      "identifier",
	TokInt:        "integer literal",
	TokFloat:      "float literal",
	TokChar:       "char literal",
	TokString:     "string literal",
	TokLParen:     "(",
	TokRParen:     ")",
	TokComma:      ",",
	TokDot:        ".",
	TokColon:      ":",
	TokPlus:       "+",
	TokMinus:      "-",
	TokStar:       "*",
	TokSlash:      "/",
	TokPercent:    "%",
	TokAmp:        "&",
	TokPipe:       "|",
	TokCaret:      "^",
	TokTilde:      "~",
	TokBang:       "!",
	TokQuestion:   "?",
	TokShl:        "<<",
	TokShr:        ">>",
	TokShrUn:      ">>>",
	TokLt:         "<",
	TokLe:         "<=",
	TokGt:         ">",
	TokGe:         ">=",
	TokEqEq:       "==",
	TokBangEq:     "!=",
	TokAndAnd:     "&&",
	TokOrOr:       "||",
	TokImplies:    "==>",
	TokIff:        "<==>",
	TokArrow:      "=>",
	TokDotDot:     "..",
	TokAssign:     "=",
	TokPlusPlus:   "++",
	TokMinusMinus: "--",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "token?"
}

// Token is one lexeme. Text is the NFC-normalised source slice for
// identifiers and char literals and the raw slice otherwise.
type Token struct {
	Kind TokenKind
	Span source.Span
	Text string
}

// punctuators is ordered longest first so the scanner can take the first
// prefix match.
var punctuators = []struct {
	text string
	kind TokenKind
}{
	{"<==>", TokIff},
	{">>>", TokShrUn},
	{"==>", TokImplies},
	{"<<", TokShl},
	{">>", TokShr},
	{"<=", TokLe},
	{">=", TokGe},
	{"==", TokEqEq},
	{"!=", TokBangEq},
	{"&&", TokAndAnd},
	{"||", TokOrOr},
	{"=>", TokArrow},
	{"..", TokDotDot},
	{"++", TokPlusPlus},
	{"--", TokMinusMinus},
	{"(", TokLParen},
	{")", TokRParen},
	{",", TokComma},
	{".", TokDot},
	{":", TokColon},
	{"+", TokPlus},
	{"-", TokMinus},
	{"*", TokStar},
	{"/", TokSlash},
	{"%", TokPercent},
	{"&", TokAmp},
	{"|", TokPipe},
	{"^", TokCaret},
	{"~", TokTilde},
	{"!", TokBang},
	{"?", TokQuestion},
	{"<", TokLt},
	{">", TokGt},
	{"=", TokAssign},
}
