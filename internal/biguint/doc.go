// Package biguint implements an arbitrary-precision unsigned integer.
//
// An [Int] stores its magnitude as radix 10^9 limbs, least-significant limb
// first. Every value is kept in canonical form: no most-significant zero limbs,
// and zero is a single zero limb. Values are immutable; every operation returns
// a fresh [Int] that owns its own limbs, so an [Int] may be read from any number
// of goroutines without synchronization.
//
// Arithmetic uses schoolbook algorithms: linear addition and subtraction,
// quadratic multiplication and long division. Operations that can fail
// ([Sub], [DivRem], [Div], [Rem], [Parse]) report errors that match the
// sentinels of this package with errors.Is.
package biguint
