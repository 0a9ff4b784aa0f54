package biguint

import (
	"errors"
	"fmt"
)

// kindError is a sentinel that unwraps to its category (ErrParse or ErrArithmetic).
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }

// Error categories.
var (
	// ErrParse matches every error returned by Parse and ParseGrouped.
	ErrParse = errors.New("biguint: invalid number")
	// ErrArithmetic matches every error returned by an arithmetic operation.
	ErrArithmetic = errors.New("biguint: arithmetic error")
)

// Error kinds.
var (
	// ErrEmpty is returned when parsing an empty string.
	ErrEmpty error = &kindError{msg: "biguint: empty string", parent: ErrParse}
	// ErrInvalidDigit is returned when the input holds a non-digit character.
	ErrInvalidDigit error = &kindError{msg: "biguint: invalid digit", parent: ErrParse}
	// ErrUnderflow is returned by Sub when the subtrahend exceeds the minuend.
	ErrUnderflow error = &kindError{msg: "biguint: subtraction underflow", parent: ErrArithmetic}
	// ErrDivisionByZero is returned by DivRem, Div and Rem for a zero divisor.
	ErrDivisionByZero error = &kindError{msg: "biguint: division by zero", parent: ErrArithmetic}
)

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int

const (
	// ErrKindEmpty means the input was the empty string.
	ErrKindEmpty ParseErrorKind = iota + 1
	// ErrKindInvalidDigit means the input held a character outside 0-9.
	ErrKindInvalidDigit
)

func (k ParseErrorKind) String() string {
	switch k {
	case ErrKindEmpty:
		return "empty"
	case ErrKindInvalidDigit:
		return "invalid digit"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

// ParseError describes why a decimal string was rejected.
type ParseError struct {
	Kind ParseErrorKind
	// Char is the offending character (ErrKindInvalidDigit only).
	Char rune
	// Pos is the zero-based byte offset of Char in the input.
	Pos int
}

func (e *ParseError) Error() string {
	if e.Kind == ErrKindInvalidDigit {
		return fmt.Sprintf("biguint: invalid digit %q at position %d", e.Char, e.Pos)
	}
	return "biguint: empty string"
}

// Unwrap returns ErrEmpty or ErrInvalidDigit so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	if e.Kind == ErrKindInvalidDigit {
		return ErrInvalidDigit
	}
	return ErrEmpty
}
