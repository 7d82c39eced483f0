package finance

// Rational is a fraction of amounts applied with Of.
type Rational struct {
	parts Amount
	total Amount
}

// NewRational panics on a zero total.
func NewRational(parts, total Amount) Rational {
	if total.IsZero() {
		panic("rational with a zero total")
	}
	return Rational{parts: parts, total: total}
}

// Of returns floor(a * parts / total). A whole fraction returns a unchanged.
func (r Rational) Of(a Amount) Amount {
	if r.parts.Equal(r.total) {
		return a
	}
	return a.MulDiv(r.parts, r.total)
}
