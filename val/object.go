package val

import (
	"github.com/wippyai/contract-sdk/errors"
)

// Address identifies a contract. Encoded as an address object of AddressLen
// per-byte elements.
type Address [AddressLen]byte

// MapPair is one key/value entry of a map object.
type MapPair struct {
	Key Val
	Val Val
}

// NewU64 encodes a uint64, inline when it fits, as a 2-element object of
// (hi32, lo32) halves otherwise.
func NewU64(e Env, v uint64) (Val, error) {
	if v <= MaxU64Small {
		return makeVal(TagU64Small, v), nil
	}
	return NewObjectWith(e, KindU64Obj, halves64(v))
}

// NewI64 encodes an int64, inline two's complement when it fits.
func NewI64(e Env, v int64) (Val, error) {
	if v >= MinI64Small && v <= MaxI64Small {
		return makeVal(TagI64Small, uint64(v)&BodyMask), nil
	}
	return NewObjectWith(e, KindI64Obj, halves64(uint64(v)))
}

// NewU128 encodes an unsigned wide integer, inline when it fits, as a
// 4-element object of 32-bit quarters (hi to lo) otherwise.
func NewU128(e Env, v U128) (Val, error) {
	if fitsU128Small(v) {
		return makeVal(TagU128Small, v.Lo), nil
	}
	return NewObjectWith(e, KindU128Obj, quarters128(v.Hi, v.Lo))
}

// NewI128 encodes a signed wide integer with two's complement semantics.
// Conversion preserves exact value and sign in both directions.
func NewI128(e Env, v I128) (Val, error) {
	if fitsI128Small(v) {
		return makeVal(TagI128Small, v.Lo&BodyMask), nil
	}
	return NewObjectWith(e, KindI128Obj, quarters128(v.Hi, v.Lo))
}

// NewString encodes a string as a string object of per-byte elements.
func NewString(e Env, s string) (Val, error) {
	return NewObjectWith(e, KindStringObj, byteElems([]byte(s)))
}

// NewBytes encodes a byte sequence as a bytes object.
func NewBytes(e Env, b []byte) (Val, error) {
	return NewObjectWith(e, KindBytesObj, byteElems(b))
}

// NewVec encodes a vec object with the given elements in order.
func NewVec(e Env, elems []Val) (Val, error) {
	return NewObjectWith(e, KindVecObj, elems)
}

// NewMap encodes a map object. Pairs are sorted by key under the total
// value ordering before building, so maps constructed from the same logical
// key set encode identically regardless of insertion order. Duplicate keys
// are rejected.
func NewMap(e Env, pairs []MapPair) (Val, error) {
	sorted := make([]MapPair, len(pairs))
	copy(sorted, pairs)

	var sortErr error
	for i := 1; i < len(sorted) && sortErr == nil; i++ {
		for j := i; j > 0; j-- {
			c, err := Compare(e, sorted[j].Key, sorted[j-1].Key)
			if err != nil {
				sortErr = err
				break
			}
			if c >= 0 {
				break
			}
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if sortErr != nil {
		return Void(), sortErr
	}

	for i := 1; i < len(sorted); i++ {
		c, err := Compare(e, sorted[i-1].Key, sorted[i].Key)
		if err != nil {
			return Void(), err
		}
		if c == 0 {
			return Void(), errors.InvalidData(errors.PhaseEncode, []string{"map"}, "duplicate key")
		}
	}

	elems := make([]Val, 0, len(sorted)*2)
	for _, p := range sorted {
		elems = append(elems, p.Key, p.Val)
	}
	return NewObjectWith(e, KindMapObj, elems)
}

// NewAddress encodes a contract address object.
func NewAddress(e Env, a Address) (Val, error) {
	return NewObjectWith(e, KindAddressObj, byteElems(a[:]))
}

// NewLedgerKey encodes a ledger-key object wrapping the given components.
func NewLedgerKey(e Env, components []Val) (Val, error) {
	return NewObjectWith(e, KindLedgerKeyObj, components)
}

// U64Val decodes a uint64 from its inline or object form.
func U64Val(e Env, v Val) (uint64, error) {
	switch v.Tag() {
	case TagU64Small:
		return v.Body(), nil
	case TagU64Obj:
		return join64(e, v)
	default:
		return 0, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "u64")
	}
}

// I64Val decodes an int64 from its inline or object form.
func I64Val(e Env, v Val) (int64, error) {
	switch v.Tag() {
	case TagI64Small:
		return signExtendBody(v.Body()), nil
	case TagI64Obj:
		bits, err := join64(e, v)
		if err != nil {
			return 0, err
		}
		return int64(bits), nil
	default:
		return 0, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "i64")
	}
}

// U128Val decodes an unsigned wide integer.
func U128Val(e Env, v Val) (U128, error) {
	switch v.Tag() {
	case TagU128Small:
		return U128{Lo: v.Body()}, nil
	case TagU128Obj:
		hi, lo, err := join128(e, v)
		if err != nil {
			return U128{}, err
		}
		return U128{Hi: hi, Lo: lo}, nil
	default:
		return U128{}, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "u128")
	}
}

// I128Val decodes a signed wide integer, preserving exact value and sign.
func I128Val(e Env, v Val) (I128, error) {
	switch v.Tag() {
	case TagI128Small:
		return i128FromBody(v.Body()), nil
	case TagI128Obj:
		hi, lo, err := join128(e, v)
		if err != nil {
			return I128{}, err
		}
		return I128{Hi: hi, Lo: lo}, nil
	default:
		return I128{}, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "i128")
	}
}

// StringVal decodes a string object.
func StringVal(e Env, v Val) (string, error) {
	if v.Tag() != TagStringObj {
		return "", errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "string")
	}
	b, err := joinBytes(e, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BytesVal decodes a bytes object.
func BytesVal(e Env, v Val) ([]byte, error) {
	if v.Tag() != TagBytesObj {
		return nil, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "bytes")
	}
	return joinBytes(e, v)
}

// VecElems decodes a vec object's elements.
func VecElems(e Env, v Val) ([]Val, error) {
	if v.Tag() != TagVecObj {
		return nil, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "vec")
	}
	return ObjElems(e, v)
}

// MapPairs decodes a map object into its key-sorted pairs.
func MapPairs(e Env, v Val) ([]MapPair, error) {
	if v.Tag() != TagMapObj {
		return nil, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "map")
	}
	elems, err := ObjElems(e, v)
	if err != nil {
		return nil, err
	}
	if len(elems)%2 != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{"map"}, "odd element count")
	}
	pairs := make([]MapPair, len(elems)/2)
	for i := range pairs {
		pairs[i] = MapPair{Key: elems[2*i], Val: elems[2*i+1]}
	}
	return pairs, nil
}

// AddressVal decodes an address object.
func AddressVal(e Env, v Val) (Address, error) {
	var a Address
	if v.Tag() != TagAddressObj {
		return a, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "address")
	}
	b, err := joinBytes(e, v)
	if err != nil {
		return a, err
	}
	if len(b) != AddressLen {
		return a, errors.InvalidData(errors.PhaseDecode, []string{"address"}, "address object must have 32 byte elements")
	}
	copy(a[:], b)
	return a, nil
}

func halves64(bits uint64) []Val {
	return []Val{U32(uint32(bits >> 32)), U32(uint32(bits))}
}

func quarters128(hi, lo uint64) []Val {
	return []Val{
		U32(uint32(hi >> 32)), U32(uint32(hi)),
		U32(uint32(lo >> 32)), U32(uint32(lo)),
	}
}

func byteElems(b []byte) []Val {
	elems := make([]Val, len(b))
	for i, c := range b {
		elems[i] = U32(uint32(c))
	}
	return elems
}

func join64(e Env, obj Val) (uint64, error) {
	elems, err := ObjElems(e, obj)
	if err != nil {
		return 0, err
	}
	if len(elems) != 2 {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, "wide integer object must have 2 elements")
	}
	hi, err := AsU32(elems[0])
	if err != nil {
		return 0, err
	}
	lo, err := AsU32(elems[1])
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

func join128(e Env, obj Val) (hi, lo uint64, err error) {
	elems, err := ObjElems(e, obj)
	if err != nil {
		return 0, 0, err
	}
	if len(elems) != 4 {
		return 0, 0, errors.InvalidData(errors.PhaseDecode, nil, "wide integer object must have 4 elements")
	}
	var q [4]uint32
	for i, el := range elems {
		q[i], err = AsU32(el)
		if err != nil {
			return 0, 0, err
		}
	}
	hi = uint64(q[0])<<32 | uint64(q[1])
	lo = uint64(q[2])<<32 | uint64(q[3])
	return hi, lo, nil
}

func joinBytes(e Env, obj Val) ([]byte, error) {
	elems, err := ObjElems(e, obj)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(elems))
	for i, el := range elems {
		c, err := AsU32(el)
		if err != nil {
			return nil, err
		}
		if c > 0xff {
			return nil, errors.OutOfRange(errors.PhaseDecode, nil, c, "byte element")
		}
		b[i] = byte(c)
	}
	return b, nil
}
