package expr

import (
	"fmt"
	"strconv"

	"github.com/agbru/bigcalc/internal/biguint"
)

// Result is the outcome of evaluating an Expression.
type Result struct {
	Op Op
	// Value holds the arithmetic result. It is zero for comparisons.
	Value biguint.Int
	// Remainder is set for OpDiv.
	Remainder *biguint.Int
	// Bool is set for comparison operators.
	Bool *bool
}

// String renders the result the way the CLI prints it: the decimal value for
// arithmetic, "true"/"false" for comparisons, and the truncated quotient for
// division.
func (r Result) String() string {
	if r.Bool != nil {
		return strconv.FormatBool(*r.Bool)
	}
	return r.Value.String()
}

// WithRemainder renders a division as "<quotient> r <remainder>". Other
// results render as String does.
func (r Result) WithRemainder() string {
	if r.Remainder == nil {
		return r.String()
	}
	return fmt.Sprintf("%s r %s", r.Value, r.Remainder)
}

// Eval applies the operator. Arithmetic errors are those of package biguint.
func (e Expression) Eval() (Result, error) {
	res := Result{Op: e.Op}
	switch e.Op {
	case OpAdd:
		res.Value = e.Left.Add(e.Right)
	case OpSub:
		v, err := e.Left.Sub(e.Right)
		if err != nil {
			return Result{}, err
		}
		res.Value = v
	case OpMul:
		res.Value = e.Left.Mul(e.Right)
	case OpDiv:
		q, r, err := e.Left.DivRem(e.Right)
		if err != nil {
			return Result{}, err
		}
		res.Value = q
		res.Remainder = &r
	case OpRem:
		r, err := e.Left.Rem(e.Right)
		if err != nil {
			return Result{}, err
		}
		res.Value = r
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		b := compare(e.Op, biguint.Compare(e.Left, e.Right))
		res.Value = biguint.Zero()
		res.Bool = &b
	default:
		return Result{}, fmt.Errorf("%w %v", ErrUnknownOperator, e.Op)
	}
	return res, nil
}

func compare(op Op, ord biguint.Ordering) bool {
	switch op {
	case OpEq:
		return ord == biguint.Equal
	case OpNe:
		return ord != biguint.Equal
	case OpLt:
		return ord == biguint.Less
	case OpGt:
		return ord == biguint.Greater
	case OpLe:
		return ord != biguint.Greater
	default:
		return ord != biguint.Less
	}
}

// Evaluate parses and evaluates a line in one step.
func Evaluate(line string) (Result, error) {
	e, err := Parse(line)
	if err != nil {
		return Result{}, err
	}
	return e.Eval()
}
