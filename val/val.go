package val

import (
	"fmt"

	"github.com/wippyai/contract-sdk/errors"
)

// Val is the fixed-width tagged value exchanged with the execution host.
// The low byte is the Tag, the high 56 bits are the body: either the whole
// payload (inline tags) or an opaque object handle (object tags).
//
// For a given (type, value) pair there is exactly one canonical encoding:
// constructors always pick the inline form when the value fits.
type Val uint64

// Tag returns the value's tag.
func (v Val) Tag() Tag {
	return Tag(v)
}

// Body returns the 56-bit payload.
func (v Val) Body() uint64 {
	return uint64(v) >> TagBits
}

// IsObject reports whether the value is backed by a host object.
func (v Val) IsObject() bool {
	return v.Tag().IsObject()
}

// Handle returns the object handle for object-tagged values. The result is
// meaningless for inline tags.
func (v Val) Handle() uint64 {
	return v.Body()
}

func (v Val) String() string {
	t := v.Tag()
	switch t {
	case TagVoid, TagFalse, TagTrue:
		return t.String()
	case TagU32, TagU64Small, TagU128Small:
		return fmt.Sprintf("%s(%d)", t, v.Body())
	case TagI32:
		return fmt.Sprintf("%s(%d)", t, int32(uint32(v.Body())))
	case TagI64Small:
		return fmt.Sprintf("%s(%d)", t, signExtendBody(v.Body()))
	case TagError:
		return fmt.Sprintf("error(%d)", uint32(v.Body()))
	case TagSymbolSmall:
		return fmt.Sprintf("symbol(%s)", unpackSymbolSmall(v.Body()))
	default:
		if t.IsObject() {
			return fmt.Sprintf("%s(#%d)", t, v.Body())
		}
		return fmt.Sprintf("invalid(%#x)", uint64(v))
	}
}

func makeVal(t Tag, body uint64) Val {
	return Val(body<<TagBits | uint64(t))
}

func makeObject(t Tag, handle uint64) Val {
	return makeVal(t, handle&BodyMask)
}

func signExtendBody(body uint64) int64 {
	return int64(body<<TagBits) >> TagBits
}

// Void returns the void value.
func Void() Val {
	return makeVal(TagVoid, 0)
}

// Bool encodes a boolean.
func Bool(b bool) Val {
	if b {
		return makeVal(TagTrue, 0)
	}
	return makeVal(TagFalse, 0)
}

// U32 encodes a uint32 inline. Total and injective.
func U32(v uint32) Val {
	return makeVal(TagU32, uint64(v))
}

// I32 encodes an int32 inline. Total and injective.
func I32(v int32) Val {
	return makeVal(TagI32, uint64(uint32(v)))
}

// ErrorVal encodes an error code inline.
func ErrorVal(code uint32) Val {
	return makeVal(TagError, uint64(code))
}

// AsVoid checks for the void value.
func AsVoid(v Val) error {
	if v.Tag() != TagVoid {
		return errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "void")
	}
	return nil
}

// AsBool decodes a boolean, failing on any other tag.
func AsBool(v Val) (bool, error) {
	switch v.Tag() {
	case TagTrue:
		return true, nil
	case TagFalse:
		return false, nil
	default:
		return false, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "bool")
	}
}

// AsU32 decodes a uint32, failing on any other tag.
func AsU32(v Val) (uint32, error) {
	if v.Tag() != TagU32 {
		return 0, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "u32")
	}
	return uint32(v.Body()), nil
}

// AsI32 decodes an int32, failing on any other tag.
func AsI32(v Val) (int32, error) {
	if v.Tag() != TagI32 {
		return 0, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "i32")
	}
	return int32(uint32(v.Body())), nil
}

// AsError decodes an error code, failing on any other tag.
func AsError(v Val) (uint32, error) {
	if v.Tag() != TagError {
		return 0, errors.WrongTag(errors.PhaseDecode, nil, v.Tag().String(), "error")
	}
	return uint32(v.Body()), nil
}
