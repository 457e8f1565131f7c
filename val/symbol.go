package val

import (
	"strings"

	"github.com/wippyai/contract-sdk/errors"
)

// Symbol is a short identifier over the character set [_0-9A-Za-z].
// Symbols up to MaxSymbolSmallChars characters encode entirely inline.
type Symbol string

// symbolCode maps a symbol character to its 6-bit code. Zero is reserved
// as padding so the inline packing stays injective per length.
func symbolCode(c byte) (uint64, bool) {
	switch {
	case c == '_':
		return 1, true
	case c >= '0' && c <= '9':
		return 2 + uint64(c-'0'), true
	case c >= 'A' && c <= 'Z':
		return 12 + uint64(c-'A'), true
	case c >= 'a' && c <= 'z':
		return 38 + uint64(c-'a'), true
	default:
		return 0, false
	}
}

func symbolChar(code uint64) byte {
	switch {
	case code == 1:
		return '_'
	case code >= 2 && code <= 11:
		return '0' + byte(code-2)
	case code >= 12 && code <= 37:
		return 'A' + byte(code-12)
	default:
		return 'a' + byte(code-38)
	}
}

// ValidSymbol reports whether s is a well-formed symbol: non-empty, at most
// MaxSymbolChars characters, all from the symbol character set.
func ValidSymbol(s string) bool {
	if len(s) == 0 || len(s) > MaxSymbolChars {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := symbolCode(s[i]); !ok {
			return false
		}
	}
	return true
}

func packSymbolSmall(s string) uint64 {
	var body uint64
	for i := 0; i < len(s); i++ {
		code, _ := symbolCode(s[i])
		body = body<<SymbolCharBits | code
	}
	return body
}

func unpackSymbolSmall(body uint64) string {
	var buf [MaxSymbolSmallChars]byte
	n := 0
	for body != 0 {
		code := body & (1<<SymbolCharBits - 1)
		buf[MaxSymbolSmallChars-1-n] = symbolChar(code)
		n++
		body >>= SymbolCharBits
	}
	return string(buf[MaxSymbolSmallChars-n:])
}

// NewSymbol encodes a symbol, inline when it fits, as a symbol object
// otherwise. Fails for strings outside the symbol character set or length
// bound.
func NewSymbol(e Env, s string) (Val, error) {
	if !ValidSymbol(s) {
		return Void(), errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Value(s).
			Detail("symbol must be 1..%d chars of [_0-9A-Za-z]", MaxSymbolChars).
			Build()
	}
	if len(s) <= MaxSymbolSmallChars {
		return makeVal(TagSymbolSmall, packSymbolSmall(s)), nil
	}
	elems := make([]Val, len(s))
	for i := 0; i < len(s); i++ {
		elems[i] = U32(uint32(s[i]))
	}
	return NewObjectWith(e, KindSymbolObj, elems)
}

// SymbolString decodes a symbol value back to its string form.
func SymbolString(e Env, v Val) (string, error) {
	switch v.Tag() {
	case TagSymbolSmall:
		return unpackSymbolSmall(v.Body()), nil
	case TagSymbolObj:
		elems, err := ObjElems(e, v)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.Grow(len(elems))
		for _, el := range elems {
			c, err := AsU32(el)
			if err != nil {
				return "", err
			}
			if c > 0x7f {
				return "", errors.OutOfRange(errors.PhaseDecode, []string{"symbol"}, c, "symbol char")
			}
			if _, ok := symbolCode(byte(c)); !ok {
				return "", errors.InvalidData(errors.PhaseDecode, []string{"symbol"}, "character outside symbol set")
			}
			b.WriteByte(byte(c))
		}
		return b.String(), nil
	default:
		return "", errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "symbol")
	}
}
