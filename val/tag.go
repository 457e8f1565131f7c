package val

// Tag discriminates the category of a Val. It occupies the low byte of the
// 64-bit word; the remaining 56 bits are the body.
type Tag uint8

// Inline tags. The body carries the entire payload, no indirection.
const (
	TagVoid        Tag = 0
	TagFalse       Tag = 1
	TagTrue        Tag = 2
	TagError       Tag = 3 // body = error code
	TagU32         Tag = 4
	TagI32         Tag = 5
	TagU64Small    Tag = 6
	TagI64Small    Tag = 7 // two's complement in 56 bits
	TagU128Small   Tag = 8
	TagI128Small   Tag = 9
	TagSymbolSmall Tag = 10 // up to 9 chars, 6 bits each
)

// Object tags. The body is an opaque handle resolved by the host.
const (
	TagU64Obj       Tag = 64
	TagI64Obj       Tag = 65
	TagU128Obj      Tag = 66
	TagI128Obj      Tag = 67
	TagBytesObj     Tag = 68
	TagStringObj    Tag = 69
	TagSymbolObj    Tag = 70
	TagVecObj       Tag = 71
	TagMapObj       Tag = 72
	TagAddressObj   Tag = 73
	TagLedgerKeyObj Tag = 74
)

// IsObject reports whether the tag's payload is an object handle.
func (t Tag) IsObject() bool {
	return t >= TagU64Obj
}

func (t Tag) String() string {
	switch t {
	case TagVoid:
		return "void"
	case TagFalse:
		return "false"
	case TagTrue:
		return "true"
	case TagError:
		return "error"
	case TagU32:
		return "u32"
	case TagI32:
		return "i32"
	case TagU64Small:
		return "u64-small"
	case TagI64Small:
		return "i64-small"
	case TagU128Small:
		return "u128-small"
	case TagI128Small:
		return "i128-small"
	case TagSymbolSmall:
		return "symbol-small"
	case TagU64Obj:
		return "u64-object"
	case TagI64Obj:
		return "i64-object"
	case TagU128Obj:
		return "u128-object"
	case TagI128Obj:
		return "i128-object"
	case TagBytesObj:
		return "bytes-object"
	case TagStringObj:
		return "string-object"
	case TagSymbolObj:
		return "symbol-object"
	case TagVecObj:
		return "vec-object"
	case TagMapObj:
		return "map-object"
	case TagAddressObj:
		return "address-object"
	case TagLedgerKeyObj:
		return "ledger-key-object"
	default:
		return "invalid"
	}
}

// Category groups tags whose values are mutually comparable. Small and
// object representations of the same logical type share a category. The
// declared order is the first key of the total value ordering.
type Category uint8

const (
	CatVoid Category = iota
	CatBool
	CatU32
	CatI32
	CatU64
	CatI64
	CatU128
	CatI128
	CatSymbol
	CatString
	CatBytes
	CatVec
	CatMap
	CatAddress
	CatLedgerKey
	CatError
	catInvalid
)

// Category returns the ordering category for the tag.
func (t Tag) Category() Category {
	switch t {
	case TagVoid:
		return CatVoid
	case TagFalse, TagTrue:
		return CatBool
	case TagU32:
		return CatU32
	case TagI32:
		return CatI32
	case TagU64Small, TagU64Obj:
		return CatU64
	case TagI64Small, TagI64Obj:
		return CatI64
	case TagU128Small, TagU128Obj:
		return CatU128
	case TagI128Small, TagI128Obj:
		return CatI128
	case TagSymbolSmall, TagSymbolObj:
		return CatSymbol
	case TagStringObj:
		return CatString
	case TagBytesObj:
		return CatBytes
	case TagVecObj:
		return CatVec
	case TagMapObj:
		return CatMap
	case TagAddressObj:
		return CatAddress
	case TagLedgerKeyObj:
		return CatLedgerKey
	case TagError:
		return CatError
	default:
		return catInvalid
	}
}

// Valid reports whether the tag is one of the defined tags.
func (t Tag) Valid() bool {
	return t.Category() != catInvalid
}
