package arith

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrSyntax       = errors.New("syntax error")
	ErrDivideByZero = errors.New("division by zero")
	ErrOverflow     = errors.New("result out of range")
)

// SyntaxError reports where in the (normalized) input parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at %d: %s", ErrSyntax, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Expr is a parsed arithmetic expression.
type Expr interface {
	Eval() (float64, error)
}

type number float64

func (n number) Eval() (float64, error) { return float64(n), nil }

type unary struct {
	op byte
	x  Expr
}

func (u unary) Eval() (float64, error) {
	v, err := u.x.Eval()
	if err != nil {
		return 0, err
	}
	if u.op == '-' {
		return -v, nil
	}
	return v, nil
}

type binary struct {
	op          byte
	left, right Expr
}

func (b binary) Eval() (float64, error) {
	l, err := b.left.Eval()
	if err != nil {
		return 0, err
	}
	r, err := b.right.Eval()
	if err != nil {
		return 0, err
	}
	var v float64
	switch b.op {
	case '+':
		v = l + r
	case '-':
		v = l - r
	case '*':
		v = l * r
	case '/':
		if r == 0 {
			return 0, ErrDivideByZero
		}
		v = l / r
	default:
		return 0, fmt.Errorf("%w: operator %q", ErrSyntax, b.op)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrOverflow
	}
	return v, nil
}

// Parse parses s after glyph normalization. The empty string is a syntax
// error; callers that treat blank input specially must check first.
func Parse(s string) (Expr, error) {
	p := &parser{l: lexer{s: Normalize(s)}}
	p.next()
	ex, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.unexpected()
	}
	return ex, nil
}

// Eval parses and evaluates s.
func Eval(s string) (float64, error) {
	ex, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return ex.Eval()
}

type parser struct {
	l   lexer
	cur token
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) unexpected() error {
	if p.cur.kind == tokEOF {
		return &SyntaxError{Pos: p.cur.pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Pos: p.cur.pos, Msg: fmt.Sprintf("unexpected %q", p.cur.text)}
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.text[0]
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash {
		op := p.cur.text[0]
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.text[0]
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unary{op: op, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.cur.kind {
	case tokNumber:
		v := p.cur.num
		p.next()
		if math.IsInf(v, 0) {
			return nil, ErrOverflow
		}
		return number(v), nil
	case tokLParen:
		open := p.cur.pos
		p.next()
		ex, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			if p.cur.kind == tokEOF {
				return nil, &SyntaxError{Pos: open, Msg: "unclosed '('"}
			}
			return nil, p.unexpected()
		}
		p.next()
		return ex, nil
	default:
		return nil, p.unexpected()
	}
}
