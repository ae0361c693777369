package fields

import "cmp"

// CompareNullsFirst orders two optional values, placing an absent value
// before every present one. Two absent values are equal.
func CompareNullsFirst[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}

func compareValid[T cmp.Ordered](aValid bool, a T, bValid bool, b T) int {
	switch {
	case !aValid && !bValid:
		return 0
	case !aValid:
		return -1
	case !bValid:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// Compare orders strings with absent values first.
func (s String) Compare(o String) int {
	return compareValid(s.Valid, s.Str, o.Valid, o.Str)
}

// Compare orders integers with absent values first.
func (n Int) Compare(o Int) int {
	return compareValid(n.Valid, n.Int64, o.Valid, o.Int64)
}

// Compare orders dates with absent values first.
func (d Date) Compare(o Date) int {
	var a, b int64
	if d.Valid {
		a = d.Time.Unix()
	}
	if o.Valid {
		b = o.Time.Unix()
	}
	return compareValid(d.Valid, a, o.Valid, b)
}

// Compare orders years with absent values first.
func (y Year) Compare(o Year) int {
	return compareValid(y.Valid, y.Year, o.Valid, o.Year)
}

// Chain returns the first non-zero comparison result.
func Chain(results ...int) int {
	for _, r := range results {
		if r != 0 {
			return r
		}
	}
	return 0
}
