package probe

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"opcheck/internal/diag"
	"opcheck/internal/source"
)

// Scanner splits a case expression into tokens. Spans are absolute in the
// probe file: base is the offset of the expression text inside it.
type Scanner struct {
	src      []byte
	off      uint32
	base     uint32
	file     source.FileID
	reporter diag.Reporter
	look     *Token
}

// NewScanner creates a scanner over src, which starts at offset base of
// file.
func NewScanner(file source.FileID, base uint32, src []byte, reporter diag.Reporter) *Scanner {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		panic(fmt.Errorf("expression too long: %w", err))
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Scanner{src: src, base: base, file: file, reporter: reporter}
}

func (s *Scanner) eof() bool { return int(s.off) >= len(s.src) }

func (s *Scanner) peekByte() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.off]
}

func (s *Scanner) peekByteAt(n uint32) byte {
	if int(s.off+n) >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *Scanner) peekRune() (rune, uint32) {
	if s.eof() {
		return utf8.RuneError, 0
	}
	if b := s.src[s.off]; b < utf8.RuneSelf {
		return rune(b), 1
	}
	r, sz := utf8.DecodeRune(s.src[s.off:])
	// sz is at most utf8.UTFMax
	return r, uint32(sz) // #nosec G115
}

func (s *Scanner) spanFrom(start uint32) source.Span {
	return source.Span{File: s.file, Start: s.base + start, End: s.base + s.off}
}

func (s *Scanner) report(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(s.reporter, code, sp, msg).Emit()
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() Token {
	if s.look == nil {
		t := s.scan()
		s.look = &t
	}
	return *s.look
}

// Next consumes and returns the next token. After the end it keeps
// returning TokEOF.
func (s *Scanner) Next() Token {
	if s.look != nil {
		t := *s.look
		s.look = nil
		return t
	}
	return s.scan()
}

func (s *Scanner) scan() Token {
	s.skipSpace()
	if s.eof() {
		return Token{Kind: TokEOF, Span: s.spanFrom(s.off)}
	}
	ch := s.peekByte()
	switch {
	case isIdentStartByte(ch) || ch >= utf8.RuneSelf:
		return s.scanIdent()
	case isDec(ch):
		return s.scanNumber()
	case ch == '\'':
		return s.scanChar()
	case ch == '"':
		return s.scanString()
	}
	return s.scanPunct()
}

func (s *Scanner) skipSpace() {
	for !s.eof() {
		switch s.peekByte() {
		case ' ', '\t', '\n', '\r':
			s.off++
		default:
			return
		}
	}
}

func (s *Scanner) scanIdent() Token {
	start := s.off
	r, sz := s.peekRune()
	if !isIdentStartRune(r) {
		s.off += sz
		sp := s.spanFrom(start)
		s.report(diag.SynUnexpectedToken, sp, fmt.Sprintf("unexpected character %q", r))
		return Token{Kind: TokInvalid, Span: sp, Text: string(r)}
	}
	s.off += sz
	for {
		r, sz = s.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			break
		}
		s.off += sz
	}
	sp := s.spanFrom(start)
	// идентификаторы сравниваются в NFC
	text := norm.NFC.String(string(s.src[start:s.off]))
	return Token{Kind: TokIdent, Span: sp, Text: text}
}

// scanNumber accepts 123, 1_000, 0x1F, 0b101, 1.5, 1e-3 and a trailing
// suffix of letters and digits (5u8, 2i64, 1.0f32, 1.5m). The suffix is
// interpreted by the parser.
func (s *Scanner) scanNumber() Token {
	start := s.off
	kind := TokInt
	if s.peekByte() == '0' && (s.peekByteAt(1) == 'x' || s.peekByteAt(1) == 'X') {
		s.off += 2
		for isHex(s.peekByte()) || s.peekByte() == '_' {
			s.off++
		}
		s.scanSuffix()
		return Token{Kind: kind, Span: s.spanFrom(start), Text: string(s.src[start:s.off])}
	}
	if s.peekByte() == '0' && (s.peekByteAt(1) == 'b' || s.peekByteAt(1) == 'B') {
		s.off += 2
		for b := s.peekByte(); b == '0' || b == '1' || b == '_'; b = s.peekByte() {
			s.off++
		}
		s.scanSuffix()
		return Token{Kind: kind, Span: s.spanFrom(start), Text: string(s.src[start:s.off])}
	}
	for isDec(s.peekByte()) || s.peekByte() == '_' {
		s.off++
	}
	// "1..5" is a range, not a fraction
	if s.peekByte() == '.' && isDec(s.peekByteAt(1)) {
		kind = TokFloat
		s.off++
		for isDec(s.peekByte()) || s.peekByte() == '_' {
			s.off++
		}
	}
	if b := s.peekByte(); b == 'e' || b == 'E' {
		next := s.peekByteAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(s.peekByteAt(2))) {
			kind = TokFloat
			s.off += 2
			for isDec(s.peekByte()) {
				s.off++
			}
		}
	}
	s.scanSuffix()
	return Token{Kind: kind, Span: s.spanFrom(start), Text: string(s.src[start:s.off])}
}

func (s *Scanner) scanSuffix() {
	for isIdentContinueByte(s.peekByte()) {
		s.off++
	}
}

func (s *Scanner) scanChar() Token {
	start := s.off
	s.off++ // '
	var b strings.Builder
	closed := false
	for !s.eof() {
		ch := s.peekByte()
		if ch == '\'' {
			s.off++
			closed = true
			break
		}
		if ch == '\\' {
			r, ok := s.scanEscape()
			if !ok {
				sp := s.spanFrom(start)
				s.report(diag.SynBadLiteral, sp, "invalid escape in char literal")
				return Token{Kind: TokInvalid, Span: sp}
			}
			b.WriteRune(r)
			continue
		}
		r, sz := s.peekRune()
		s.off += sz
		b.WriteRune(r)
	}
	sp := s.spanFrom(start)
	if !closed {
		s.report(diag.SynBadLiteral, sp, "unterminated char literal")
		return Token{Kind: TokInvalid, Span: sp}
	}
	text := norm.NFC.String(b.String())
	if utf8.RuneCountInString(text) != 1 {
		s.report(diag.SynBadLiteral, sp, "char literal must hold exactly one character")
		return Token{Kind: TokInvalid, Span: sp}
	}
	return Token{Kind: TokChar, Span: sp, Text: text}
}

func (s *Scanner) scanString() Token {
	start := s.off
	s.off++ // "
	var b strings.Builder
	for !s.eof() {
		ch := s.peekByte()
		if ch == '"' {
			s.off++
			return Token{Kind: TokString, Span: s.spanFrom(start), Text: b.String()}
		}
		if ch == '\\' {
			r, ok := s.scanEscape()
			if !ok {
				sp := s.spanFrom(start)
				s.report(diag.SynBadLiteral, sp, "invalid escape in string literal")
				return Token{Kind: TokInvalid, Span: sp}
			}
			b.WriteRune(r)
			continue
		}
		r, sz := s.peekRune()
		s.off += sz
		b.WriteRune(r)
	}
	sp := s.spanFrom(start)
	s.report(diag.SynBadLiteral, sp, "unterminated string literal")
	return Token{Kind: TokInvalid, Span: sp}
}

// scanEscape consumes a backslash escape and returns the rune it denotes.
func (s *Scanner) scanEscape() (rune, bool) {
	s.off++ // backslash
	if s.eof() {
		return 0, false
	}
	ch := s.peekByte()
	s.off++
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '\'', '"':
		return rune(ch), true
	case 'u':
		if int(s.off)+4 > len(s.src) {
			return 0, false
		}
		v, err := strconv.ParseUint(string(s.src[s.off:s.off+4]), 16, 32)
		if err != nil {
			return 0, false
		}
		s.off += 4
		return rune(v), true
	}
	return 0, false
}

func (s *Scanner) scanPunct() Token {
	start := s.off
	rest := s.src[s.off:]
	for _, p := range punctuators {
		if len(rest) >= len(p.text) && string(rest[:len(p.text)]) == p.text {
			s.off += uint32(len(p.text)) // #nosec G115 -- at most 4
			return Token{Kind: p.kind, Span: s.spanFrom(start), Text: p.text}
		}
	}
	r, sz := s.peekRune()
	if sz == 0 {
		sz = 1
	}
	s.off += sz
	sp := s.spanFrom(start)
	s.report(diag.SynUnexpectedToken, sp, fmt.Sprintf("unexpected character %q", r))
	return Token{Kind: TokInvalid, Span: sp, Text: string(r)}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isIdentStartRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinueRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
