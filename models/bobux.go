package models

import (
	"fmt"
	"math"
)

// Bobux is an amount of currency: whole units plus an optional half unit ("spare change").
// A value represents Units + 0.5 when Half is set, so -5.5 is stored as {-6, true}.
type Bobux struct {
	Units int64 `json:"units"`
	Half  bool  `json:"spare_change"`
}

// ZeroBobux is the zero amount
var ZeroBobux = Bobux{}

// NewBobux creates an amount from whole units and a spare change flag
func NewBobux(units int64, half bool) Bobux {
	return Bobux{Units: units, Half: half}
}

// BobuxFromFloat converts a floating-point amount by truncating it to whole units and
// setting the spare change flag when any fractional part was present. 5.3 becomes 5 with
// spare change, not 5.5 rounded. Negative inputs are converted as the negation of their
// absolute value so that -0.5 stays negative.
func BobuxFromFloat(amount float64) Bobux {
	if amount < 0 {
		return BobuxFromFloat(-amount).Neg()
	}
	whole := math.Trunc(amount)
	return Bobux{Units: int64(whole), Half: whole != amount}
}

// BobuxFromHalfUnits converts a count of half units back into an amount
func BobuxFromHalfUnits(halves int64) Bobux {
	units := halves / 2
	if halves%2 != 0 && halves < 0 {
		units--
	}
	return Bobux{Units: units, Half: halves%2 != 0}
}

// HalfUnits returns the amount as a count of half units
func (b Bobux) HalfUnits() int64 {
	halves := b.Units * 2
	if b.Half {
		halves++
	}
	return halves
}

// Float64 returns the amount as a floating-point number
func (b Bobux) Float64() float64 {
	if b.Half {
		return float64(b.Units) + 0.5
	}
	return float64(b.Units)
}

// Add returns b + other
func (b Bobux) Add(other Bobux) Bobux {
	units := b.Units + other.Units
	if b.Half && other.Half {
		units++
	}
	return Bobux{Units: units, Half: b.Half != other.Half}
}

// Sub returns b - other
func (b Bobux) Sub(other Bobux) Bobux {
	units := b.Units - other.Units
	if !b.Half && other.Half {
		units--
	}
	return Bobux{Units: units, Half: b.Half != other.Half}
}

// Neg returns -b
func (b Bobux) Neg() Bobux {
	units := -b.Units
	if b.Half {
		units--
	}
	return Bobux{Units: units, Half: b.Half}
}

// Cmp compares by units, then by the spare change flag
func (b Bobux) Cmp(other Bobux) int {
	switch {
	case b.Units < other.Units:
		return -1
	case b.Units > other.Units:
		return 1
	case b.Half == other.Half:
		return 0
	case other.Half:
		return -1
	default:
		return 1
	}
}

// Less reports whether b < other
func (b Bobux) Less(other Bobux) bool {
	return b.Cmp(other) < 0
}

// IsNegative reports whether b < 0
func (b Bobux) IsNegative() bool {
	return b.Less(ZeroBobux)
}

// IsZero reports whether b == 0
func (b Bobux) IsZero() bool {
	return b == ZeroBobux
}

func (b Bobux) String() string {
	if b.Half {
		return fmt.Sprintf("%d bobux and some spare change", b.Units)
	}
	return fmt.Sprintf("%d bobux", b.Units)
}
