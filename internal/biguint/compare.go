package biguint

// Ordering is the result of comparing two values.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return "Ordering(?)"
	}
}

// Compare orders a and b by magnitude.
//
// Canonical form guarantees that a value with fewer limbs is smaller, so only
// equal-length values are compared limb by limb, most significant first.
func Compare(a, b Int) Ordering {
	x, y := a.digits(), b.digits()
	if len(x) != len(y) {
		if len(x) < len(y) {
			return Less
		}
		return Greater
	}
	for i := len(x) - 1; i >= 0; i-- {
		if x[i] != y[i] {
			if x[i] < y[i] {
				return Less
			}
			return Greater
		}
	}
	return Equal
}

// Cmp returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (x Int) Cmp(y Int) int { return int(Compare(x, y)) }

// Equal reports whether x == y.
func (x Int) Equal(y Int) bool { return Compare(x, y) == Equal }

// Less reports whether x < y.
func (x Int) Less(y Int) bool { return Compare(x, y) == Less }

// LessOrEqual reports whether x <= y.
func (x Int) LessOrEqual(y Int) bool { return Compare(x, y) != Greater }

// Greater reports whether x > y.
func (x Int) Greater(y Int) bool { return Compare(x, y) == Greater }

// GreaterOrEqual reports whether x >= y.
func (x Int) GreaterOrEqual(y Int) bool { return Compare(x, y) != Less }
