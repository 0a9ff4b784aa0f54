package biguint

import (
	"math/bits"
)

const (
	// Radix is the base of one limb.
	Radix = 1_000_000_000
	// LimbDigits is the number of decimal digits held by one limb.
	LimbDigits = 9
)

// zeroLimbs backs the zero value of Int on read paths. It is never written.
var zeroLimbs = []uint32{0}

// Int is a non-negative integer of unbounded magnitude.
//
// The zero value is ready to use and represents 0.
type Int struct {
	limbs []uint32 // least-significant first, canonical
}

// Zero returns the canonical zero value.
func Zero() Int { return Int{limbs: []uint32{0}} }

// One returns 1.
func One() Int { return Int{limbs: []uint32{1}} }

// FromUint64 returns v as an Int.
func FromUint64(v uint64) Int {
	if v == 0 {
		return Zero()
	}
	limbs := make([]uint32, 0, 3)
	for v > 0 {
		limbs = append(limbs, uint32(v%Radix))
		v /= Radix
	}
	return Int{limbs: limbs}
}

// digits returns the limbs of x for reading, mapping Int{} to zero.
func (x Int) digits() []uint32 {
	if len(x.limbs) == 0 {
		return zeroLimbs
	}
	return x.limbs
}

// trim drops most-significant zero limbs, keeping at least one limb.
func trim(limbs []uint32) []uint32 {
	n := len(limbs)
	for n > 1 && limbs[n-1] == 0 {
		n--
	}
	if n == 0 {
		return []uint32{0}
	}
	return limbs[:n]
}

// normalize wraps a freshly allocated limb slice as a canonical Int.
func normalize(limbs []uint32) Int {
	return Int{limbs: trim(limbs)}
}

// clone returns a copy of x that shares no storage with it.
func (x Int) clone() Int {
	l := x.digits()
	out := make([]uint32, len(l))
	copy(out, l)
	return Int{limbs: out}
}

// IsZero reports whether x == 0.
func (x Int) IsZero() bool {
	l := x.digits()
	return len(l) == 1 && l[0] == 0
}

// Limbs returns a copy of the radix 10^9 limbs of x, least-significant first.
func (x Int) Limbs() []uint32 {
	return x.clone().limbs
}

// Len returns the number of decimal digits of x. Len of zero is 1.
func (x Int) Len() int {
	l := x.digits()
	top := l[len(l)-1]
	n := 1
	for top >= 10 {
		top /= 10
		n++
	}
	return n + (len(l)-1)*LimbDigits
}

// Uint64 returns x as a uint64. ok is false when x does not fit.
func (x Int) Uint64() (v uint64, ok bool) {
	l := x.digits()
	for i := len(l) - 1; i >= 0; i-- {
		hi, lo := bits.Mul64(v, Radix)
		if hi != 0 {
			return 0, false
		}
		sum, carry := bits.Add64(lo, uint64(l[i]), 0)
		if carry != 0 {
			return 0, false
		}
		v = sum
	}
	return v, true
}
