// Package calculator evaluates the arithmetic typed on the amount keypad.
//
// Grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = "-" unary | number
//	number = digits [ "." digits ]
//
// Arithmetic is decimal; the caller rounds for display.
package calculator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const field = "expression"

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrEmptyExpression = errors.New("empty expression")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrInputTooLong    = errors.New("expression too long")
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenEOF
)

type token struct {
	kind  tokenKind
	text  string
	value decimal.Decimal
	pos   int
}

func tokenize(input string) ([]token, error) {
	tokens := make([]token, 0, len(input)/2+1)
	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+':
			tokens = append(tokens, token{kind: tokenPlus, text: "+", pos: i})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-", pos: i})
			i++
		case c == '*':
			tokens = append(tokens, token{kind: tokenStar, text: "*", pos: i})
			i++
		case c == '/':
			tokens = append(tokens, token{kind: tokenSlash, text: "/", pos: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				if input[i] == '.' {
					dots++
				}
				i++
			}
			text := input[start:i]
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("malformed number %q at %d: %w", text, start, ErrUnexpectedToken)
			}
			value, err := decimal.NewFromString(text)
			if err != nil {
				return nil, fmt.Errorf("malformed number %q at %d: %w", text, start, ErrUnexpectedToken)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, value: value, pos: start})
		default:
			r, _ := utf8.DecodeRuneInString(input[i:])
			return nil, fmt.Errorf("character %q at %d: %w", r, i, ErrUnexpectedToken)
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (decimal.Decimal, error) {
	left, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokenPlus:
			p.next()
			right, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case tokenMinus:
			p.next()
			right, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	left, err := p.unary()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokenStar:
			p.next()
			right, err := p.unary()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case tokenSlash:
			op := p.next()
			right, err := p.unary()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("at %d: %w", op.pos, ErrDivisionByZero)
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (decimal.Decimal, error) {
	t := p.next()
	switch t.kind {
	case tokenMinus:
		v, err := p.unary()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case tokenNumber:
		return t.value, nil
	case tokenEOF:
		return decimal.Zero, fmt.Errorf("unexpected end of expression: %w", ErrUnexpectedToken)
	default:
		return decimal.Zero, fmt.Errorf("operator %q at %d: %w", t.text, t.pos, ErrUnexpectedToken)
	}
}

// Evaluate computes the value of a keypad expression such as "12.50 + 3 * 2".
// Every failure is a *domain.ParseError on the "expression" field.
func Evaluate(expression string) (decimal.Decimal, error) {
	if len(expression) > domain.MaxCalculatorInputLength {
		return decimal.Zero, domain.NewParseError(field, expression[:domain.MaxCalculatorInputLength], ErrInputTooLong)
	}
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return decimal.Zero, domain.NewParseError(field, expression, ErrEmptyExpression)
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return decimal.Zero, domain.NewParseError(field, expression, err)
	}

	p := &parser{tokens: tokens}
	value, err := p.expr()
	if err != nil {
		return decimal.Zero, domain.NewParseError(field, expression, err)
	}
	if t := p.peek(); t.kind != tokenEOF {
		return decimal.Zero, domain.NewParseError(field, expression,
			fmt.Errorf("trailing %q at %d: %w", t.text, t.pos, ErrUnexpectedToken))
	}
	return value, nil
}

// EvaluateAmount evaluates expression and requires a positive result, rounded to cents.
func EvaluateAmount(expression string) (decimal.Decimal, error) {
	value, err := Evaluate(expression)
	if err != nil {
		return decimal.Zero, err
	}
	value = value.Round(2)
	if !value.IsPositive() {
		return decimal.Zero, domain.NewValidationError("amount", "expression must evaluate to a positive amount")
	}
	if domain.ExceedsMaxAmount(value) {
		return decimal.Zero, domain.NewValidationError("amount", "amount must not exceed "+domain.MaxAmount.StringFixed(2))
	}
	return value, nil
}
