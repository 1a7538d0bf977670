// Package evaluator computes integer arithmetic over digits, whitespace and
// the four operators + - * /. Unary signs are accepted so substituted
// negative values ("1--1") evaluate. Division truncates toward zero and every
// operation is overflow-checked.
package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

var (
	ErrSyntax       = errors.New("evaluator: syntax error")
	ErrDivideByZero = errors.New("evaluator: division by zero")
	ErrOverflow     = errors.New("evaluator: integer overflow")
)

// Eval parses and evaluates expr.
func Eval(expr string) (int64, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, p.toks[p.pos], p.toks[p.pos].off)
	}
	return v, nil
}

// EvalOr returns Eval(expr), or fallback when evaluation fails.
func EvalOr(expr string, fallback int64) int64 {
	v, err := Eval(expr)
	if err != nil {
		return fallback
	}
	return v
}

type tokenKind uint8

const (
	tokNumber tokenKind = iota + 1
	tokOp
)

type token struct {
	kind   tokenKind
	op     rune
	digits string
	off    int
}

func (t token) String() string {
	if t.kind == tokNumber {
		return strconv.Quote(t.digits)
	}
	return strconv.QuoteRune(t.op)
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9':
			start := i
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
			toks = append(toks, token{kind: tokNumber, digits: string(runes[start:i]), off: start})
		case r == '+' || r == '-' || r == '*' || r == '/':
			toks = append(toks, token{kind: tokOp, op: r, off: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, r, i)
		}
	}
	return toks, nil
}

// parser is a recursive descent over:
//
//	expr  = term { ("+" | "-") term }
//	term  = unary { ("*" | "/") unary }
//	unary = ("+" | "-") unary | number
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peekOp(ops ...rune) (rune, bool) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokOp {
		return 0, false
	}
	for _, op := range ops {
		if p.toks[p.pos].op == op {
			return op, true
		}
	}
	return 0, false
}

func (p *parser) expr() (int64, error) {
	acc, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp('+', '-')
		if !ok {
			return acc, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			acc, err = add(acc, rhs)
		} else {
			acc, err = sub(acc, rhs)
		}
		if err != nil {
			return 0, err
		}
	}
}

func (p *parser) term() (int64, error) {
	acc, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp('*', '/')
		if !ok {
			return acc, nil
		}
		p.pos++
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			acc, err = mul(acc, rhs)
		} else {
			acc, err = div(acc, rhs)
		}
		if err != nil {
			return 0, err
		}
	}
}

func (p *parser) unary() (int64, error) {
	if p.pos >= len(p.toks) {
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	tok := p.toks[p.pos]
	if tok.kind == tokNumber {
		p.pos++
		return literal(tok.digits)
	}
	switch tok.op {
	case '+':
		p.pos++
		return p.unary()
	case '-':
		p.pos++
		// "-9223372036854775808" only fits when parsed as one literal.
		if p.pos < len(p.toks) && p.toks[p.pos].kind == tokNumber {
			next := p.toks[p.pos]
			p.pos++
			return literal("-" + next.digits)
		}
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		return neg(v)
	default:
		return 0, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok, tok.off)
	}
}

func literal(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: literal %s", ErrOverflow, s)
		}
		return 0, fmt.Errorf("%w: literal %s", ErrSyntax, s)
	}
	return v, nil
}

func add(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return c, nil
}

func sub(a, b int64) (int64, error) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, a, b)
	}
	return c, nil
}

func mul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return c, nil
}

func div(a, b int64) (int64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: %d / 0", ErrDivideByZero, a)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, fmt.Errorf("%w: %d / -1", ErrOverflow, a)
	}
	return a / b, nil
}

func neg(v int64) (int64, error) {
	if v == math.MinInt64 {
		return 0, fmt.Errorf("%w: -(%d)", ErrOverflow, v)
	}
	return -v, nil
}
