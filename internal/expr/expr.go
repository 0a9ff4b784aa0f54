// Package expr parses and evaluates one-line calculator expressions of the
// form "<value> <operator> <value>" over biguint values.
package expr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agbru/bigcalc/internal/biguint"
)

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

var opSymbols = map[Op]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
}

var opNames = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpRem: "rem",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpGt: "gt", OpLe: "le", OpGe: "ge",
}

// Operators lists every operator symbol in display order.
var Operators = []string{"+", "-", "*", "/", "%", "==", "!=", "<", ">", "<=", ">="}

// String returns the operator symbol.
func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Name returns a stable lowercase identifier, used as a metric label.
func (o Op) Name() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// IsComparison reports whether the operator yields a boolean.
func (o Op) IsComparison() bool { return o >= OpEq && o <= OpGe }

// ParseOp maps an operator symbol to its Op.
func ParseOp(s string) (Op, error) {
	for op, sym := range opSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w %q (want one of %s)", ErrUnknownOperator, s, strings.Join(Operators, " "))
}

var (
	// ErrSyntax matches malformed expression lines.
	ErrSyntax = errors.New("malformed expression")
	// ErrUnknownOperator matches operators outside Operators.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrTooLarge matches operands longer than the configured digit limit.
	ErrTooLarge = errors.New("operand too large")
)

// SyntaxError reports a line that is not "<value> <operator> <value>".
type SyntaxError struct {
	Line   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed expression %q: %s", e.Line, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// OperandError wraps the parse failure of one operand.
type OperandError struct {
	// Index is 1 for the left operand and 2 for the right one.
	Index int
	Text  string
	Err   error
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("operand %d (%q): %v", e.Index, truncate(e.Text, 40), e.Err)
}

func (e *OperandError) Unwrap() error { return e.Err }

// LimitError reports an operand over the digit limit.
type LimitError struct {
	Index  int
	Digits int
	Limit  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("operand %d has %d digits, limit is %d", e.Index, e.Digits, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrTooLarge }

// Expression is a parsed binary expression.
type Expression struct {
	Left  biguint.Int
	Op    Op
	Right biguint.Int
}

// String renders the expression in canonical form.
func (e Expression) String() string {
	return e.Left.String() + " " + e.Op.String() + " " + e.Right.String()
}

// Parse parses "<value> <operator> <value>" with no digit limit.
func Parse(line string) (Expression, error) {
	return ParseWithLimit(line, 0)
}

// ParseWithLimit parses a line, rejecting operands with more than maxDigits
// characters. A maxDigits of 0 disables the check.
//
// Fields are separated by any run of whitespace. Values may use '_' or ','
// as digit group separators.
func ParseWithLimit(line string, maxDigits int) (Expression, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		reason := fmt.Sprintf("want 3 fields, got %d", len(fields))
		if len(fields) == 0 {
			reason = "empty line"
		}
		return Expression{}, &SyntaxError{Line: line, Reason: reason}
	}

	op, err := ParseOp(fields[1])
	if err != nil {
		return Expression{}, err
	}

	var operands [2]biguint.Int
	for i, text := range []string{fields[0], fields[2]} {
		if maxDigits > 0 && len(text) > maxDigits {
			return Expression{}, &LimitError{Index: i + 1, Digits: len(text), Limit: maxDigits}
		}
		v, err := biguint.ParseGrouped(text)
		if err != nil {
			return Expression{}, &OperandError{Index: i + 1, Text: text, Err: err}
		}
		operands[i] = v
	}

	return Expression{Left: operands[0], Op: op, Right: operands[1]}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
