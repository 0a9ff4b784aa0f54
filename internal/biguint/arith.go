package biguint

// Add returns a + b.
func Add(a, b Int) Int {
	x, y := a.digits(), b.digits()
	if len(x) < len(y) {
		x, y = y, x
	}
	out := make([]uint32, len(x)+1)
	var carry uint32
	for i := range x {
		// At most 2*(Radix-1)+1, well inside uint32.
		sum := x[i] + carry
		if i < len(y) {
			sum += y[i]
		}
		out[i] = sum % Radix
		carry = sum / Radix
	}
	out[len(x)] = carry
	return normalize(out)
}

// Sub returns a - b. It fails with ErrUnderflow when a < b.
func Sub(a, b Int) (Int, error) {
	if Compare(a, b) == Less {
		return Int{}, ErrUnderflow
	}
	x, y := a.digits(), b.digits()
	out := make([]uint32, len(x))
	var borrow int64
	for i := range x {
		d := int64(x[i]) - borrow
		if i < len(y) {
			d -= int64(y[i])
		}
		if d < 0 {
			d += Radix
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = uint32(d)
	}
	return normalize(out), nil
}

// Mul returns a * b.
//
// Each limb of b yields a partial product a*b[i], shifted i limbs up, and the
// partial products are summed with Add.
func Mul(a, b Int) Int {
	x, y := a.digits(), b.digits()
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	acc := Zero()
	for i, m := range y {
		if m == 0 {
			continue
		}
		acc = Add(acc, Int{limbs: mulLimb(x, m, i)})
	}
	return acc
}

// mulLimb returns x*m shifted up by shift limbs, trimmed.
func mulLimb(x []uint32, m uint32, shift int) []uint32 {
	out := make([]uint32, shift+len(x)+1)
	var carry uint64
	for j, v := range x {
		// (Radix-1)^2 + carry stays below 10^18.
		p := uint64(v)*uint64(m) + carry
		out[shift+j] = uint32(p % Radix)
		carry = p / Radix
	}
	out[shift+len(x)] = uint32(carry)
	return trim(out)
}

// DivRem returns the quotient and remainder of a / b, such that
// a = q*b + r and r < b. It fails with ErrDivisionByZero when b is zero.
func DivRem(a, b Int) (q, r Int, err error) {
	if b.IsZero() {
		return Int{}, Int{}, ErrDivisionByZero
	}
	if Compare(a, b) == Less {
		return Zero(), a.clone(), nil
	}

	x, d := a.digits(), b.digits()
	quot := make([]uint32, len(x))
	rem := Zero()
	for i := len(x) - 1; i >= 0; i-- {
		rem = shiftIn(rem, x[i])
		digit := quotientDigit(rem, d)
		if digit > 0 {
			// digit*b <= rem by construction.
			rem, _ = Sub(rem, Int{limbs: mulLimb(d, digit, 0)})
		}
		quot[i] = digit
	}
	return normalize(quot), rem, nil
}

// Div returns the truncated quotient a / b.
func Div(a, b Int) (Int, error) {
	q, _, err := DivRem(a, b)
	return q, err
}

// Rem returns the remainder of a / b.
func Rem(a, b Int) (Int, error) {
	_, r, err := DivRem(a, b)
	return r, err
}

// shiftIn returns rem*Radix + limb.
func shiftIn(rem Int, limb uint32) Int {
	if rem.IsZero() {
		return Int{limbs: []uint32{limb}}
	}
	l := rem.digits()
	out := make([]uint32, len(l)+1)
	out[0] = limb
	copy(out[1:], l)
	return Int{limbs: out}
}

// quotientDigit returns the largest d in [0, Radix) with d*b <= rem, given
// rem < b*Radix.
//
// The top limbs of rem and b bound d to [top/(btop+1), top/btop]; a binary
// search over that range settles it.
func quotientDigit(rem Int, b []uint32) uint32 {
	r := rem.digits()
	n := len(b)
	if len(r) < n {
		return 0
	}
	top := uint64(r[n-1])
	if len(r) > n {
		top += uint64(r[n]) * Radix
	}
	btop := uint64(b[n-1])

	lo := top / (btop + 1)
	hi := top / btop
	if hi > Radix-1 {
		hi = Radix - 1
	}
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if Compare(Int{limbs: mulLimb(b, uint32(mid), 0)}, rem) != Greater {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint32(lo)
}

// Add returns x + y.
func (x Int) Add(y Int) Int { return Add(x, y) }

// Sub returns x - y, or ErrUnderflow when x < y.
func (x Int) Sub(y Int) (Int, error) { return Sub(x, y) }

// Mul returns x * y.
func (x Int) Mul(y Int) Int { return Mul(x, y) }

// DivRem returns the quotient and remainder of x / y.
func (x Int) DivRem(y Int) (q, r Int, err error) { return DivRem(x, y) }

// Div returns the truncated quotient x / y.
func (x Int) Div(y Int) (Int, error) { return Div(x, y) }

// Rem returns the remainder of x / y.
func (x Int) Rem(y Int) (Int, error) { return Rem(x, y) }
