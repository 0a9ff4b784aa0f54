package biguint

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse converts a string of ASCII decimal digits into an Int.
//
// Leading zeros are accepted and dropped ("0007" is 7). The empty string fails
// with a *ParseError of kind ErrKindEmpty; any character outside 0-9 fails with
// kind ErrKindInvalidDigit naming the first such character and its position.
func Parse(s string) (Int, error) {
	if s == "" {
		return Int{}, &ParseError{Kind: ErrKindEmpty}
	}
	for i, r := range s {
		if r < '0' || r > '9' {
			return Int{}, &ParseError{Kind: ErrKindInvalidDigit, Char: r, Pos: i}
		}
	}
	return fromDigits(s), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Int {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

// ParseGrouped is like Parse but also accepts '_' and ',' as digit group
// separators after the first character, as in "1,000,000" or "999_999".
// Error positions refer to s, separators included.
func ParseGrouped(s string) (Int, error) {
	if s == "" {
		return Int{}, &ParseError{Kind: ErrKindEmpty}
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteByte(byte(r))
		case (r == '_' || r == ',') && i > 0:
		default:
			return Int{}, &ParseError{Kind: ErrKindInvalidDigit, Char: r, Pos: i}
		}
	}
	return fromDigits(b.String()), nil
}

// fromDigits builds an Int from a non-empty string of ASCII digits.
func fromDigits(s string) Int {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return Zero()
	}
	limbs := make([]uint32, 0, (len(s)+LimbDigits-1)/LimbDigits)
	for end := len(s); end > 0; end -= LimbDigits {
		start := end - LimbDigits
		if start < 0 {
			start = 0
		}
		var v uint32
		for i := start; i < end; i++ {
			v = v*10 + uint32(s[i]-'0')
		}
		limbs = append(limbs, v)
	}
	return Int{limbs: limbs}
}

// String returns the canonical decimal representation of x: no leading zeros,
// and "0" for zero.
func (x Int) String() string {
	l := x.digits()
	var b strings.Builder
	b.Grow(len(l) * LimbDigits)
	b.WriteString(strconv.FormatUint(uint64(l[len(l)-1]), 10))

	var buf [LimbDigits]byte
	for i := len(l) - 2; i >= 0; i-- {
		v := l[i]
		for j := LimbDigits - 1; j >= 0; j-- {
			buf[j] = byte('0' + v%10)
			v /= 10
		}
		b.Write(buf[:])
	}
	return b.String()
}

// Format implements fmt.Formatter. The verbs v, s and d print the decimal
// value, q prints it quoted.
func (x Int) Format(s fmt.State, c rune) {
	switch c {
	case 'v', 's', 'd':
		str := x.String()
		if w, ok := s.Width(); ok && w > len(str) {
			pad := " "
			if s.Flag('0') && c == 'd' {
				pad = "0"
			}
			str = strings.Repeat(pad, w-len(str)) + str
		}
		io.WriteString(s, str)
	case 'q':
		io.WriteString(s, strconv.Quote(x.String()))
	default:
		fmt.Fprintf(s, "%%!%c(biguint.Int=%s)", c, x.String())
	}
}

// MarshalText implements encoding.TextMarshaler.
func (x Int) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Int) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*x = v
	return nil
}

// MarshalJSON encodes x as a quoted decimal string, since JSON numbers lose
// precision past 2^53 in most decoders.
func (x Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON integer.
func (x *Int) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' {
		if data[len(data)-1] != '"' {
			return fmt.Errorf("biguint: invalid JSON %q", string(data))
		}
		data = data[1 : len(data)-1]
	}
	return x.UnmarshalText(data)
}
