package probe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
)

// ParseOptions configures expression parsing.
type ParseOptions struct {
	Reporter diag.Reporter
	// IsTypeName tells a cast "(T)x" from a parenthesised expression.
	IsTypeName func(name string) bool
}

// Parser is a Pratt parser over a pre-scanned token list.
type Parser struct {
	toks     []Token
	pos      int
	reporter diag.Reporter
	isType   func(string) bool
}

func newParser(file source.FileID, base uint32, src []byte, opts ParseOptions) *Parser {
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	isType := opts.IsTypeName
	if isType == nil {
		isType = func(string) bool { return false }
	}
	sc := NewScanner(file, base, src, rep)
	var toks []Token
	for {
		t := sc.Next()
		toks = append(toks, t)
		if t.Kind == TokEOF {
			break
		}
	}
	return &Parser{toks: toks, reporter: rep, isType: isType}
}

// ParseExpr parses a whole case expression. It returns false after
// reporting a syntax diagnostic.
func ParseExpr(file source.FileID, base uint32, src []byte, opts ParseOptions) (*Node, bool) {
	p := newParser(file, base, src, opts)
	if p.hasInvalid() {
		return nil, false
	}
	n, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	if t := p.peek(); t.Kind != TokEOF {
		p.errorf(diag.SynUnexpectedToken, t.Span, "unexpected %s after expression", describe(t))
		return nil, false
	}
	return n, true
}

// ParseType parses a standalone type such as "ref Foo?" or "int32*".
func ParseType(file source.FileID, base uint32, src []byte, opts ParseOptions) (*TypeExpr, bool) {
	p := newParser(file, base, src, opts)
	if p.hasInvalid() {
		return nil, false
	}
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	if tok := p.peek(); tok.Kind != TokEOF {
		p.errorf(diag.SynUnexpectedToken, tok.Span, "unexpected %s after type", describe(tok))
		return nil, false
	}
	return t, true
}

func (p *Parser) hasInvalid() bool {
	for _, t := range p.toks {
		if t.Kind == TokInvalid {
			return true
		}
	}
	return false
}

func (p *Parser) peek() Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.Kind == TokIdent && t.Text == kw
}

func (p *Parser) expect(kind TokenKind, code diag.Code, what string) (Token, bool) {
	t := p.peek()
	if t.Kind != kind {
		p.errorf(code, t.Span, "expected %s, found %s", what, describe(t))
		return t, false
	}
	return p.advance(), true
}

func (p *Parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(p.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func describe(t Token) string {
	switch t.Kind {
	case TokEOF:
		return "end of expression"
	case TokIdent, TokInt, TokFloat:
		return fmt.Sprintf("%q", t.Text)
	}
	return fmt.Sprintf("'%s'", t.Kind)
}

// parseExpr реализует Pratt parsing для бинарных операторов.
func (p *Parser) parseExpr(minPrec int) (*Node, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for {
		tok := p.peek()
		prec, rightAssoc := infixPrec(tok)
		if prec < 0 || prec < minPrec {
			break
		}
		p.advance()

		if tok.Kind == TokIdent {
			// is / as: правый операнд является типом
			ty, ok := p.parseType()
			if !ok {
				return nil, false
			}
			op := hir.OpIs
			if tok.Text == "as" {
				op = hir.OpAs
			}
			left = &Node{Kind: NodeBinary, Binary: op, X: left, Type: ty, Span: left.Span.Cover(ty.Span)}
			continue
		}

		next := prec + 1
		if rightAssoc {
			next = prec
		}
		right, ok := p.parseExpr(next)
		if !ok {
			return nil, false
		}
		span := left.Span.Cover(right.Span)
		if tok.Kind == TokAssign {
			left = &Node{Kind: NodeAssign, X: left, Y: right, Span: span}
			continue
		}
		left = &Node{Kind: NodeBinary, Binary: infixOps[tok.Kind], X: left, Y: right, Span: span}
	}
	return left, true
}

func (p *Parser) parseUnary() (*Node, bool) {
	tok := p.peek()
	if op, ok := prefixOp(tok.Kind); ok {
		p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return &Node{Kind: NodeUnary, Unary: op, X: x, Span: tok.Span.Cover(x.Span)}, true
	}
	if tok.Kind == TokLParen {
		if n, ok, isCast := p.tryCast(); isCast {
			return n, ok
		}
	}
	x, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	return p.parsePostfix(x)
}

// tryCast parses "(T)x" when the parenthesised tokens form a known type
// and an operand follows. isCast is false when the input is not a cast;
// the position is then unchanged.
func (p *Parser) tryCast() (n *Node, ok, isCast bool) {
	start := p.pos
	open := p.advance()
	head := p.peek()
	if head.Kind != TokIdent || !(p.isType(head.Text) || head.Text == "ref" || head.Text == "opt") {
		p.pos = start
		return nil, false, false
	}
	silent := p.reporter
	p.reporter = diag.NopReporter{}
	ty, okType := p.parseType()
	p.reporter = silent
	if !okType || !p.at(TokRParen) {
		p.pos = start
		return nil, false, false
	}
	p.advance()
	if !p.startsCastOperand(ty) {
		p.pos = start
		return nil, false, false
	}
	x, ok := p.parseUnary()
	if !ok {
		return nil, false, true
	}
	return &Node{Kind: NodeCast, Type: ty, X: x, Span: open.Span.Cover(x.Span)}, true, true
}

func (p *Parser) startsCastOperand(ty *TypeExpr) bool {
	switch t := p.peek(); t.Kind {
	case TokIdent:
		return t.Text != "is" && t.Text != "as"
	case TokInt, TokFloat, TokChar, TokString, TokLParen, TokBang, TokTilde:
		return true
	case TokMinus, TokPlus:
		// (T)-x is a cast only for plain type names
		return ty.Kind == TypeName
	}
	return false
}

func (p *Parser) parsePostfix(x *Node) (*Node, bool) {
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokPlusPlus, TokMinusMinus:
			p.advance()
			op := hir.OpPostInc
			if tok.Kind == TokMinusMinus {
				op = hir.OpPostDec
			}
			x = &Node{Kind: NodeUnary, Unary: op, X: x, Span: x.Span.Cover(tok.Span)}
		case TokDot:
			p.advance()
			name, ok := p.expect(TokIdent, diag.SynUnexpectedToken, "member name")
			if !ok {
				return nil, false
			}
			x = &Node{Kind: NodeMember, X: x, Name: name.Text, Span: x.Span.Cover(name.Span)}
		default:
			return x, true
		}
	}
}

func (p *Parser) parsePrimary() (*Node, bool) {
	tok := p.peek()
	switch tok.Kind {
	case TokInt, TokFloat:
		p.advance()
		return p.numberLiteral(tok)
	case TokChar:
		p.advance()
		r := []rune(tok.Text)[0]
		return &Node{Kind: NodeLiteral, Lit: hir.LiteralData{Kind: hir.LitChar, Char: r}, Span: tok.Span}, true
	case TokString:
		p.advance()
		return &Node{Kind: NodeLiteral, Lit: hir.LiteralData{Kind: hir.LitString, Str: tok.Text}, Span: tok.Span}, true
	case TokLParen:
		p.advance()
		inner, ok := p.parseExpr(0)
		if !ok {
			return nil, false
		}
		closing, ok := p.expect(TokRParen, diag.SynUnclosedParen, "')'")
		if !ok {
			return nil, false
		}
		inner.Span = tok.Span.Cover(closing.Span)
		return inner, true
	case TokIdent:
		return p.parseIdentLike()
	}
	p.errorf(diag.SynUnexpectedToken, tok.Span, "expected expression, found %s", describe(tok))
	return nil, false
}

func (p *Parser) parseIdentLike() (*Node, bool) {
	tok := p.advance()
	switch tok.Text {
	case "true", "false":
		return &Node{Kind: NodeLiteral, Lit: hir.LiteralData{Kind: hir.LitBool, Bool: tok.Text == "true"}, Span: tok.Span}, true
	case "null":
		return &Node{Kind: NodeLiteral, Lit: hir.LiteralData{Kind: hir.LitNull}, Span: tok.Span}, true
	}
	if !p.at(TokLParen) && !p.at(TokLt) {
		return &Node{Kind: NodeIdent, Name: tok.Text, Span: tok.Span}, true
	}

	switch tok.Text {
	case "sizeof", "typeof", "default":
		if !p.at(TokLParen) {
			break
		}
		p.advance()
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		closing, ok := p.expect(TokRParen, diag.SynUnclosedParen, "')'")
		if !ok {
			return nil, false
		}
		op := map[string]hir.UnaryOp{"sizeof": hir.OpSizeOf, "typeof": hir.OpTypeOf, "default": hir.OpDefault}[tok.Text]
		return &Node{Kind: NodeTypeOp, Unary: op, Type: ty, Span: tok.Span.Cover(closing.Span)}, true

	case "checked", "unchecked", "unsafe":
		if !p.at(TokLParen) {
			break
		}
		x, closing, ok := p.parenthesised()
		if !ok {
			return nil, false
		}
		scope := map[string]ScopeKind{"checked": ScopeChecked, "unchecked": ScopeUnchecked, "unsafe": ScopeUnsafe}[tok.Text]
		return &Node{Kind: NodeScope, Scope: scope, X: x, Span: tok.Span.Cover(closing)}, true

	case "box", "unbox":
		var ty *TypeExpr
		if p.at(TokLt) {
			p.advance()
			var ok bool
			if ty, ok = p.parseType(); !ok {
				return nil, false
			}
			if _, ok := p.expect(TokGt, diag.SynUnexpectedToken, "'>'"); !ok {
				return nil, false
			}
		}
		if tok.Text == "unbox" && ty == nil {
			p.errorf(diag.SynExpectType, tok.Span, "unbox needs a target type: unbox<T>(x)")
			return nil, false
		}
		x, closing, ok := p.parenthesised()
		if !ok {
			return nil, false
		}
		kind := NodeBox
		if tok.Text == "unbox" {
			kind = NodeUnbox
		}
		return &Node{Kind: kind, Type: ty, X: x, Span: tok.Span.Cover(closing)}, true
	}
	return &Node{Kind: NodeIdent, Name: tok.Text, Span: tok.Span}, true
}

func (p *Parser) parenthesised() (*Node, source.Span, bool) {
	if _, ok := p.expect(TokLParen, diag.SynUnexpectedToken, "'('"); !ok {
		return nil, source.Span{}, false
	}
	x, ok := p.parseExpr(0)
	if !ok {
		return nil, source.Span{}, false
	}
	closing, ok := p.expect(TokRParen, diag.SynUnclosedParen, "')'")
	if !ok {
		return nil, source.Span{}, false
	}
	return x, closing.Span, true
}

// parseType reads prefix modifiers, a name and suffix modifiers.
func (p *Parser) parseType() (*TypeExpr, bool) {
	tok := p.peek()
	if tok.Kind != TokIdent {
		p.errorf(diag.SynExpectType, tok.Span, "expected type, found %s", describe(tok))
		return nil, false
	}
	p.advance()
	if tok.Text == "ref" || tok.Text == "opt" {
		elem, ok := p.parseType()
		if !ok {
			return nil, false
		}
		kind := TypeRef
		if tok.Text == "opt" {
			kind = TypeOpt
		}
		return &TypeExpr{Kind: kind, Elem: elem, Span: tok.Span.Cover(elem.Span)}, true
	}
	t := &TypeExpr{Kind: TypeName, Name: tok.Text, Span: tok.Span}
	for {
		switch suffix := p.peek(); suffix.Kind {
		case TokStar:
			p.advance()
			t = &TypeExpr{Kind: TypePointer, Elem: t, Span: t.Span.Cover(suffix.Span)}
		case TokQuestion:
			p.advance()
			t = &TypeExpr{Kind: TypeNullable, Elem: t, Span: t.Span.Cover(suffix.Span)}
		default:
			return t, true
		}
	}
}

// numberLiteral splits digits from the suffix and parses the value.
func (p *Parser) numberLiteral(tok Token) (*Node, bool) {
	text := strings.ReplaceAll(tok.Text, "_", "")
	digits, suffix := splitNumberSuffix(text, tok.Kind == TokFloat)
	typeName := ""
	if suffix != "" {
		name, ok := literalSuffixes[strings.ToLower(suffix)]
		if !ok {
			p.errorf(diag.SynBadLiteral, tok.Span, "unknown literal suffix %q", suffix)
			return nil, false
		}
		typeName = name
	}
	node := &Node{Kind: NodeLiteral, Suffix: typeName, Span: tok.Span}

	floatLike := tok.Kind == TokFloat || typeName == "float32" || typeName == "float64" || typeName == "decimal"
	if floatLike {
		if tok.Kind == TokFloat && typeName != "" && typeName != "float32" && typeName != "float64" && typeName != "decimal" {
			p.errorf(diag.SynBadLiteral, tok.Span, "integer suffix %q on a float literal", suffix)
			return nil, false
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			p.errorf(diag.SynBadLiteral, tok.Span, "invalid number %q", tok.Text)
			return nil, false
		}
		node.Lit = hir.LiteralData{Kind: hir.LitFloat, Float: v}
		if typeName == "decimal" {
			node.Lit.Kind = hir.LitDecimal
		}
		return node, true
	}

	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		p.errorf(diag.SynBadLiteral, tok.Span, "integer literal %q out of range", tok.Text)
		return nil, false
	}
	if v > math.MaxInt64 {
		node.Lit = hir.LiteralData{Kind: hir.LitUint, Uint: v}
	} else {
		node.Lit = hir.LiteralData{Kind: hir.LitInt, Int: int64(v)}
	}
	return node, true
}

// splitNumberSuffix separates "5u8" into "5" and "u8". Hex digits are
// never taken as a suffix.
func splitNumberSuffix(text string, isFloat bool) (digits, suffix string) {
	i := 0
	hex := strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X")
	bin := strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B")
	if hex || bin {
		i = 2
	}
	for i < len(text) {
		c := text[i]
		switch {
		case isDec(c):
		case hex && isHex(c):
		case isFloat && c == '.':
		case isFloat && (c == 'e' || c == 'E') && i+1 < len(text) && (isDec(text[i+1]) || text[i+1] == '+' || text[i+1] == '-'):
			i++
		default:
			return text[:i], text[i:]
		}
		i++
	}
	return text, ""
}
