package val

// U128 is an unsigned 128-bit integer as two 64-bit halves.
type U128 struct {
	Hi uint64
	Lo uint64
}

// I128 is a signed 128-bit integer in two's complement, as two 64-bit
// halves. Hi carries the sign.
type I128 struct {
	Hi uint64
	Lo uint64
}

// U128FromU64 widens a uint64.
func U128FromU64(v uint64) U128 {
	return U128{Lo: v}
}

// I128FromI64 sign-extends an int64.
func I128FromI64(v int64) I128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return I128{Hi: hi, Lo: uint64(v)}
}

// IsNegative reports the sign of the value.
func (v I128) IsNegative() bool {
	return v.Hi>>63 == 1
}

// Cmp compares by numeric magnitude.
func (v U128) Cmp(o U128) int {
	switch {
	case v.Hi < o.Hi:
		return -1
	case v.Hi > o.Hi:
		return 1
	case v.Lo < o.Lo:
		return -1
	case v.Lo > o.Lo:
		return 1
	default:
		return 0
	}
}

// Cmp compares by signed numeric value.
func (v I128) Cmp(o I128) int {
	vn, on := v.IsNegative(), o.IsNegative()
	if vn != on {
		if vn {
			return -1
		}
		return 1
	}
	// Same sign: two's complement bit patterns order like unsigned.
	return U128(v).Cmp(U128(o))
}

// fitsU128Small reports whether the value encodes inline.
func fitsU128Small(v U128) bool {
	return v.Hi == 0 && v.Lo <= MaxU64Small
}

// fitsI128Small reports whether the value is within the inline two's
// complement range.
func fitsI128Small(v I128) bool {
	if v.IsNegative() {
		return v.Hi == ^uint64(0) && int64(v.Lo) >= MinI64Small && int64(v.Lo) < 0
	}
	return v.Hi == 0 && v.Lo <= uint64(MaxI64Small)
}

func i128FromBody(body uint64) I128 {
	return I128FromI64(signExtendBody(body))
}
