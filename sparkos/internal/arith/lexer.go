package arith

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// Display glyphs accepted in place of * and /.
const (
	GlyphMultiply = '×'
	GlyphDivide   = '÷'
)

var glyphReplacer = strings.NewReplacer(string(GlyphMultiply), "*", string(GlyphDivide), "/")

// Normalize replaces the display glyphs × and ÷ with * and /.
func Normalize(s string) string {
	return glyphReplacer.Replace(s)
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokInvalid
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "invalid token"
	}
}

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() token {
	for l.i < len(l.s) && unicode.IsSpace(rune(l.s[l.i])) {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}
	}

	pos := l.i
	switch l.s[l.i] {
	case '+':
		l.i++
		return token{kind: tokPlus, pos: pos, text: "+"}
	case '-':
		l.i++
		return token{kind: tokMinus, pos: pos, text: "-"}
	case '*':
		l.i++
		return token{kind: tokStar, pos: pos, text: "*"}
	case '/':
		l.i++
		return token{kind: tokSlash, pos: pos, text: "/"}
	case '(':
		l.i++
		return token{kind: tokLParen, pos: pos, text: "("}
	case ')':
		l.i++
		return token{kind: tokRParen, pos: pos, text: ")"}
	}

	ch := l.s[l.i]
	if ch == '.' || isDigit(ch) {
		l.i = scanNumber(l.s, l.i)
		txt := l.s[pos:l.i]
		f, err := strconv.ParseFloat(txt, 64)
		if errors.Is(err, strconv.ErrRange) {
			// Huge literals come back as ±Inf; the parser reports overflow.
			return token{kind: tokNumber, pos: pos, text: txt, num: f}
		}
		if err != nil {
			return token{kind: tokInvalid, pos: pos, text: txt}
		}
		return token{kind: tokNumber, pos: pos, text: txt, num: f}
	}

	// Report the whole offending word so errors read "unexpected \"abs\"".
	end := l.i + 1
	if isLetter(ch) {
		for end < len(l.s) && (isLetter(l.s[end]) || isDigit(l.s[end]) || l.s[end] == '_') {
			end++
		}
	}
	for end < len(l.s) && !isLeadByte(l.s[end]) {
		end++
	}
	l.i = end
	return token{kind: tokInvalid, pos: pos, text: l.s[pos:end]}
}

// scanNumber accepts 12, 12., .5, 1.5, 1e5, 1.5e-05. A dangling exponent
// marker is left for the parser to reject.
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// isLeadByte reports whether b starts a UTF-8 sequence.
func isLeadByte(b byte) bool { return b&0xC0 != 0x80 }
